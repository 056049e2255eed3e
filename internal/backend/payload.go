package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
)

// ImagePart is one image of an outgoing listing: either a pending local file
// to upload or an already-durable remote URL passed through as-is.
type ImagePart struct {
	Name string
	Path string // local file; empty for remote URLs
	URL  string
}

// CreateProductPayload is the assembled submission. Field names on the wire
// are PascalCase, which is what the backend's form binding expects.
type CreateProductPayload struct {
	Title         string
	Category      string
	Brand         string
	Model         string
	Condition     string
	Price         float64
	OriginalPrice float64
	ListingType   string
	Description   string
	SellerID      string
	Storage       string
	Ram           string
	Display       string
	Processor     string
	Camera        string
	Battery       string
	OS            string
	Images        []ImagePart
}

// CreateProduct sends the listing once as a multipart form with bearer auth.
// There is no retry; a failure is returned to the caller with the backend's
// message so the draft can be corrected and resubmitted explicitly.
func (c *Client) CreateProduct(ctx context.Context, token string, payload CreateProductPayload) (json.RawMessage, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	fields := []struct {
		key   string
		value string
	}{
		{"Title", payload.Title},
		{"Category", payload.Category},
		{"Brand", payload.Brand},
		{"Model", payload.Model},
		{"Condition", payload.Condition},
		{"Price", formatNumber(payload.Price)},
		{"OriginalPrice", formatNumber(payload.OriginalPrice)},
		{"ListingType", payload.ListingType},
		{"Description", payload.Description},
		{"SellerId", payload.SellerID},
		{"Storage", payload.Storage},
		{"Ram", payload.Ram},
		{"Display", payload.Display},
		{"Processor", payload.Processor},
		{"Camera", payload.Camera},
		{"Battery", payload.Battery},
		{"OS", payload.OS},
	}
	for _, field := range fields {
		if err := writer.WriteField(field.key, field.value); err != nil {
			return nil, fmt.Errorf("backend: write field %s: %w", field.key, err)
		}
	}

	for _, image := range payload.Images {
		if image.Path == "" {
			if err := writer.WriteField("Images", image.URL); err != nil {
				return nil, fmt.Errorf("backend: write image url: %w", err)
			}
			continue
		}
		if err := appendImageFile(writer, image); err != nil {
			return nil, err
		}
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("backend: close multipart body: %w", err)
	}

	raw, err := c.do(ctx, "POST", "/api/Products", token, body, writer.FormDataContentType())
	if err != nil {
		return nil, err
	}
	return json.RawMessage(raw), nil
}

func appendImageFile(writer *multipart.Writer, image ImagePart) error {
	name := image.Name
	if name == "" {
		name = filepath.Base(image.Path)
	}

	part, err := writer.CreateFormFile("Images", name)
	if err != nil {
		return fmt.Errorf("backend: create image part: %w", err)
	}

	file, err := os.Open(image.Path)
	if err != nil {
		return fmt.Errorf("backend: open image %s: %w", image.Path, err)
	}
	defer file.Close()

	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("backend: copy image %s: %w", image.Path, err)
	}
	return nil
}

func formatNumber(value float64) string {
	if value == float64(int64(value)) {
		return fmt.Sprintf("%d", int64(value))
	}
	return fmt.Sprintf("%g", value)
}
