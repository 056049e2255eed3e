package catalog

import (
	"sort"
	"strings"

	"storefront/internal/models"
)

// ApplyFilters derives the ordered view of base for the given search term and
// filter selection. It is a pure function: base is never mutated and
// identical inputs always produce identical output.
//
// Stages run in order: text search, enum filters, price range, then a stable
// sort. A product missing a field used by an active filter fails that filter
// instead of panicking, and a range with min > max yields an empty result.
func ApplyFilters(searchTerm string, filters FilterState, base []models.Product) []models.Product {
	result := make([]models.Product, 0, len(base))

	for _, product := range base {
		if !matchesSearch(product, searchTerm) {
			continue
		}
		if !matchesEnum(product.Category, filters.Category) {
			continue
		}
		if !matchesEnum(product.Brand, filters.Brand) {
			continue
		}
		if !matchesEnum(string(product.Condition), filters.Condition) {
			continue
		}
		if !matchesEnum(string(product.ListingType), filters.ListingType) {
			continue
		}
		if product.Price < filters.PriceRange[0] || product.Price > filters.PriceRange[1] {
			continue
		}
		result = append(result, product)
	}

	sortProducts(result, filters.SortBy)
	return result
}

// matchesSearch is a case-insensitive substring match across title, brand,
// category and description; any one field matching passes the product.
func matchesSearch(product models.Product, term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	for _, field := range []string{product.Title, product.Brand, product.Category, product.Description} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

// matchesEnum applies an equality filter, skipped entirely on the neutral
// value. An empty product field never matches an active filter.
func matchesEnum(value, selected string) bool {
	if selected == FilterAll || selected == "" {
		return true
	}
	return value == selected
}

// sortProducts reorders in place, stably, by the selected key. Unknown keys
// preserve the input order.
func sortProducts(products []models.Product, key SortKey) {
	switch key {
	case SortPriceLow:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Price < products[j].Price
		})
	case SortPriceHigh:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Price > products[j].Price
		})
	case SortNewest:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].PostedAt().After(products[j].PostedAt())
		})
	case SortOldest:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].PostedAt().Before(products[j].PostedAt())
		})
	case SortPopular:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Views > products[j].Views
		})
	}
}
