package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"storefront/internal/models"
)

// rawProduct mirrors the backend's product document before normalization.
// The read path is deliberately permissive: ids may be numbers, images may be
// a string, an array, or null, and optional fields may be absent.
type rawProduct struct {
	ID                  flexString        `json:"id"`
	Title               string            `json:"title"`
	Category            string            `json:"category"`
	Brand               string            `json:"brand"`
	Model               string            `json:"model"`
	Condition           string            `json:"condition"`
	Price               float64           `json:"price"`
	OriginalPrice       float64           `json:"originalPrice"`
	ListingType         string            `json:"listingType"`
	Description         string            `json:"description"`
	Storage             string            `json:"storage"`
	Ram                 string            `json:"ram"`
	Display             string            `json:"display"`
	Processor           string            `json:"processor"`
	Camera              string            `json:"camera"`
	Battery             string            `json:"battery"`
	OS                  string            `json:"os"`
	Images              models.StringList `json:"images"`
	Accessories         models.StringList `json:"accessories"`
	ExchangePreferences models.StringList `json:"exchangePreferences"`
	Seller              *rawSeller        `json:"seller"`
	PostedDate          string            `json:"postedDate"`
	Views               int               `json:"views"`
	Interested          int               `json:"interested"`
	Status              string            `json:"status"`
	Warranty            bool              `json:"warranty"`
}

type rawSeller struct {
	ID         flexString `json:"id"`
	Name       string     `json:"name"`
	Rating     float64    `json:"rating"`
	Location   string     `json:"location"`
	JoinedDate string     `json:"joinedDate"`
}

// flexString accepts both JSON strings and numbers; backends disagree on id
// types across versions.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		*f = ""
		return nil
	}
	if strings.HasPrefix(trimmed, "\"") {
		var value string
		if err := json.Unmarshal(data, &value); err != nil {
			return err
		}
		*f = flexString(value)
		return nil
	}
	var number json.Number
	if err := json.Unmarshal(data, &number); err != nil {
		return err
	}
	*f = flexString(number.String())
	return nil
}

// FetchProducts returns the full normalized catalog working set. Concurrent
// calls share one in-flight request.
func (c *Client) FetchProducts(ctx context.Context) ([]models.Product, error) {
	result, err, _ := c.fetchGroup.Do("products", func() (any, error) {
		payload, err := c.do(ctx, "GET", "/api/Products", "", nil, "")
		if err != nil {
			return nil, err
		}
		return decodeProductList(payload, c.placeholderImage)
	})
	if err != nil {
		return nil, err
	}
	return result.([]models.Product), nil
}

// GetProduct returns one normalized product; a missing id yields ErrNotFound.
func (c *Client) GetProduct(ctx context.Context, id string) (models.Product, error) {
	payload, err := c.do(ctx, "GET", "/api/Products/"+url.PathEscape(id), "", nil, "")
	if err != nil {
		return models.Product{}, err
	}

	var raw rawProduct
	if err := json.Unmarshal(payload, &raw); err != nil {
		return models.Product{}, fmt.Errorf("backend: decode product %s: %w", id, err)
	}
	if raw.ID == "" && raw.Title == "" {
		return models.Product{}, fmt.Errorf("%w: product %s", ErrNotFound, id)
	}

	return normalizeProduct(raw, c.placeholderImage), nil
}

func decodeProductList(payload []byte, placeholder string) ([]models.Product, error) {
	var raws []rawProduct
	if err := json.Unmarshal(payload, &raws); err != nil {
		// Some backend versions wrap the list in a data envelope.
		var envelope struct {
			Data []rawProduct `json:"data"`
		}
		if err := json.Unmarshal(payload, &envelope); err != nil {
			return nil, fmt.Errorf("backend: decode products: %w", err)
		}
		raws = envelope.Data
	}

	products := make([]models.Product, 0, len(raws))
	for _, raw := range raws {
		products = append(products, normalizeProduct(raw, placeholder))
	}
	return products, nil
}

// normalizeProduct coerces a loose backend document into the typed Product
// shape, defaulting every optional field instead of failing the record.
func normalizeProduct(raw rawProduct, placeholder string) models.Product {
	images := make([]string, 0, len(raw.Images))
	for _, img := range raw.Images {
		if strings.TrimSpace(img) != "" {
			images = append(images, img)
		}
	}
	if len(images) == 0 {
		images = []string{placeholder}
	}

	listingType := models.ListingType(raw.ListingType)
	if listingType == "" {
		listingType = models.ListingSell
	}

	status := models.Status(raw.Status)
	if status == "" {
		status = models.StatusAvailable
	}

	postedDate := raw.PostedDate
	if strings.TrimSpace(postedDate) == "" {
		postedDate = time.Now().UTC().Format(time.RFC3339)
	}

	seller := models.Seller{Name: "Unknown Seller", Rating: 4.5, Location: "Not specified"}
	if raw.Seller != nil {
		seller = models.Seller{
			ID:         string(raw.Seller.ID),
			Name:       raw.Seller.Name,
			Rating:     raw.Seller.Rating,
			Location:   raw.Seller.Location,
			JoinedDate: raw.Seller.JoinedDate,
		}
		if strings.TrimSpace(seller.Name) == "" {
			seller.Name = "Unknown Seller"
		}
	}

	return models.Product{
		ID:            string(raw.ID),
		Title:         raw.Title,
		Category:      raw.Category,
		Brand:         raw.Brand,
		Model:         raw.Model,
		Condition:     models.Condition(raw.Condition),
		ListingType:   listingType,
		Price:         raw.Price,
		OriginalPrice: raw.OriginalPrice,
		Description:   raw.Description,
		Specifications: models.Specifications{
			Storage:   raw.Storage,
			RAM:       raw.Ram,
			Display:   raw.Display,
			Processor: raw.Processor,
			Camera:    raw.Camera,
			Battery:   raw.Battery,
			OS:        raw.OS,
		},
		Images:              images,
		Accessories:         raw.Accessories,
		ExchangePreferences: raw.ExchangePreferences,
		Seller:              seller,
		PostedDate:          postedDate,
		Views:               raw.Views,
		Interested:          raw.Interested,
		Status:              status,
		Warranty:            raw.Warranty,
	}
}
