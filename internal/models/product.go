package models

import "time"

// Condition grades the physical state of a listed device.
type Condition string

const (
	ConditionExcellent Condition = "excellent"
	ConditionGood      Condition = "good"
	ConditionFair      Condition = "fair"
)

// ListingType distinguishes how a product is offered.
type ListingType string

const (
	ListingSell     ListingType = "sell"
	ListingExchange ListingType = "exchange"
	ListingBuy      ListingType = "buy"
)

// Status is display-only on the read path.
type Status string

const (
	StatusAvailable Status = "available"
	StatusSold      Status = "sold"
	StatusReserved  Status = "reserved"
)

// Specifications is a fixed-shape record of optional device fields.
type Specifications struct {
	Storage   string `json:"storage,omitempty"`
	RAM       string `json:"ram,omitempty"`
	Display   string `json:"display,omitempty"`
	Processor string `json:"processor,omitempty"`
	Camera    string `json:"camera,omitempty"`
	Battery   string `json:"battery,omitempty"`
	OS        string `json:"os,omitempty"`
}

// Seller is a denormalized snapshot carried on the product; it is never
// fetched independently.
type Seller struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Rating     float64 `json:"rating"`
	Location   string  `json:"location"`
	JoinedDate string  `json:"joinedDate"`
}

// Product is the normalized catalog record. Images is never empty after
// normalization; OriginalPrice, when set, is at least Price (enforced on the
// submission path, not re-checked on read).
type Product struct {
	ID                  string         `json:"id"`
	Title               string         `json:"title"`
	Category            string         `json:"category"`
	Brand               string         `json:"brand"`
	Model               string         `json:"model,omitempty"`
	Condition           Condition      `json:"condition"`
	ListingType         ListingType    `json:"listingType"`
	Price               float64        `json:"price"`
	OriginalPrice       float64        `json:"originalPrice,omitempty"`
	Description         string         `json:"description,omitempty"`
	Specifications      Specifications `json:"specifications"`
	Images              []string       `json:"images"`
	Accessories         StringList     `json:"accessories,omitempty"`
	ExchangePreferences StringList     `json:"exchangePreferences,omitempty"`
	Seller              Seller         `json:"seller"`
	PostedDate          string         `json:"postedDate"`
	Views               int            `json:"views"`
	Interested          int            `json:"interested"`
	Status              Status         `json:"status"`
	Warranty            bool           `json:"warranty,omitempty"`
}

// PostedAt parses PostedDate for ordering. Records with an unparseable date
// sort as the zero instant instead of failing the whole listing.
func (p Product) PostedAt() time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, p.PostedDate); err == nil {
			return t
		}
	}
	return time.Time{}
}
