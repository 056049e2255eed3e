package listing

import (
	"fmt"

	"storefront/internal/models"
)

// MaxImages caps the photos attached to one draft; additions beyond the cap
// are silently truncated, not errored.
const MaxImages = 5

// NoPrimary means no cover photo has been chosen.
const NoPrimary = -1

// Asset is one attached image. A pending local asset (Path set) only lives
// for the current session and is uploaded on submit; a remote URL (Path
// empty) is already durable and passes through unchanged. The two are never
// conflated in the Product type.
type Asset struct {
	Ref  string `json:"ref"`
	Name string `json:"name,omitempty"`
	Path string `json:"-"`
}

// Pending reports whether the asset is a session-local file awaiting upload.
func (a Asset) Pending() bool {
	return a.Path != ""
}

// Draft accumulates a listing across the workflow stages. Numeric fields stay
// in their string form as entered; parsing happens when the submission
// payload is built.
type Draft struct {
	Title               string                `json:"title"`
	Category            string                `json:"category"`
	Brand               string                `json:"brand"`
	AlternateBrand      string                `json:"alternateBrand,omitempty"`
	Model               string                `json:"model,omitempty"`
	Condition           string                `json:"condition"`
	Price               string                `json:"price"`
	OriginalPrice       string                `json:"originalPrice,omitempty"`
	ListingType         string                `json:"listingType"`
	Description         string                `json:"description,omitempty"`
	Specifications      models.Specifications `json:"specifications"`
	Accessories         []string              `json:"accessories"`
	ExchangePreferences []string              `json:"exchangePreferences"`
	Warranty            bool                  `json:"warranty"`
	WarrantyUntil       string                `json:"warrantyUntil,omitempty"`
	Images              []Asset               `json:"images"`
	PrimaryIndex        int                   `json:"primaryIndex"`
	Location            string                `json:"location"`
}

// NewDraft returns an empty draft with defaults applied.
func NewDraft() Draft {
	return Draft{
		ListingType:  string(models.ListingSell),
		PrimaryIndex: NoPrimary,
	}
}

// AddImages appends assets up to the cap and returns those that were
// actually attached.
func (d *Draft) AddImages(assets ...Asset) []Asset {
	room := MaxImages - len(d.Images)
	if room <= 0 {
		return nil
	}
	if len(assets) > room {
		assets = assets[:room]
	}
	d.Images = append(d.Images, assets...)
	return assets
}

// RemoveImage drops the image at index and reindexes the primary pointer: a
// removed primary falls back to index 0 of the remainder (or none when the
// list empties), and removing an image before the primary shifts the pointer
// down so it keeps naming the same logical image.
func (d *Draft) RemoveImage(index int) (Asset, error) {
	if index < 0 || index >= len(d.Images) {
		return Asset{}, fmt.Errorf("image index %d out of range", index)
	}

	removed := d.Images[index]
	d.Images = append(d.Images[:index], d.Images[index+1:]...)

	switch {
	case d.PrimaryIndex == index:
		if len(d.Images) == 0 {
			d.PrimaryIndex = NoPrimary
		} else {
			d.PrimaryIndex = 0
		}
	case d.PrimaryIndex > index:
		d.PrimaryIndex--
	}

	return removed, nil
}

// SetPrimary marks the cover photo.
func (d *Draft) SetPrimary(index int) error {
	if index < 0 || index >= len(d.Images) {
		return fmt.Errorf("image index %d out of range", index)
	}
	d.PrimaryIndex = index
	return nil
}

// orderedImages returns the attachment list with the primary image moved to
// position 0, the backend's convention for "the" image.
func (d *Draft) orderedImages() []Asset {
	if d.PrimaryIndex <= 0 || d.PrimaryIndex >= len(d.Images) {
		return append([]Asset(nil), d.Images...)
	}
	ordered := make([]Asset, 0, len(d.Images))
	ordered = append(ordered, d.Images[d.PrimaryIndex])
	for i, asset := range d.Images {
		if i != d.PrimaryIndex {
			ordered = append(ordered, asset)
		}
	}
	return ordered
}

// ResolvedBrand substitutes the free-text alternate when the sentinel "Other"
// was chosen.
func (d *Draft) ResolvedBrand() string {
	if d.Brand == models.BrandOther && d.AlternateBrand != "" {
		return d.AlternateBrand
	}
	return d.Brand
}
