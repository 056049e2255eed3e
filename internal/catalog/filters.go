package catalog

// FilterAll is the neutral value for the enum-backed filters.
const FilterAll = "all"

// Price range bounds. The minimum is pinned at zero; the ceiling is the
// default maximum of the adjustable range.
const (
	PriceFloor   = 0
	PriceCeiling = 200000
)

// SortKey selects the ordering applied after filtering.
type SortKey string

const (
	SortNewest    SortKey = "newest"
	SortOldest    SortKey = "oldest"
	SortPriceLow  SortKey = "price-low"
	SortPriceHigh SortKey = "price-high"
	SortPopular   SortKey = "popular"
)

// FilterState is the ephemeral selection owned by the catalog view; it is
// created with defaults on mount and never persisted.
type FilterState struct {
	Category    string
	Brand       string
	Condition   string
	ListingType string
	PriceRange  [2]float64
	SortBy      SortKey
	SearchTerm  string
}

// DefaultFilters returns the neutral selection that matches every product.
func DefaultFilters() FilterState {
	return FilterState{
		Category:    FilterAll,
		Brand:       FilterAll,
		Condition:   FilterAll,
		ListingType: FilterAll,
		PriceRange:  [2]float64{PriceFloor, PriceCeiling},
		SortBy:      SortNewest,
	}
}

// ActiveFilterCount reports how many filters deviate from their defaults.
// Display-only; it never affects filtering results.
func ActiveFilterCount(filters FilterState) int {
	count := 0
	if filters.Category != FilterAll && filters.Category != "" {
		count++
	}
	if filters.Brand != FilterAll && filters.Brand != "" {
		count++
	}
	if filters.Condition != FilterAll && filters.Condition != "" {
		count++
	}
	if filters.ListingType != FilterAll && filters.ListingType != "" {
		count++
	}
	if filters.PriceRange[1] < PriceCeiling {
		count++
	}
	if filters.SearchTerm != "" {
		count++
	}
	return count
}
