package models

// Category describes a browsable product category.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

var Categories = []Category{
	{ID: "mobile", Name: "Mobile Phones"},
	{ID: "tablet", Name: "Tablets"},
	{ID: "laptop", Name: "Laptops"},
	{ID: "other", Name: "Accessories"},
}

// BrandOther is the sentinel offered when the device brand is not listed; a
// free-text alternate brand is then required on submission.
const BrandOther = "Other"

var Brands = []string{
	"Apple",
	"Samsung",
	"OnePlus",
	"Dell",
	"Lenovo",
	"HP",
	"Asus",
	"Sony",
	"Google",
	"Nothing",
	BrandOther,
}

var Conditions = []Condition{ConditionExcellent, ConditionGood, ConditionFair}

var ListingTypes = []ListingType{ListingSell, ListingExchange, ListingBuy}

// KnownBrand reports whether value appears in the brand vocabulary.
func KnownBrand(value string) bool {
	for _, b := range Brands {
		if b == value {
			return true
		}
	}
	return false
}
