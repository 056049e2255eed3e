package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"storefront/internal/backend"
	"storefront/internal/catalog"
)

/*
GET /catalog
- search/category/brand/condition/listingType/maxPrice/sort query params
- pagination only when page + limit are both present
*/
func GetCatalog(client *backend.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /catalog"
		defer handlePanic(c, route)

		filters := filtersFromQuery(c)
		log.Printf("[%s] hit search=%s category=%s sort=%s", route, filters.SearchTerm, filters.Category, filters.SortBy)

		base, err := client.FetchProducts(c.Request.Context())
		if err != nil {
			respondWithError(c, http.StatusBadGateway, route, err.Error())
			return
		}

		products := catalog.ApplyFilters(filters.SearchTerm, filters, base)

		response := gin.H{
			"products":      products,
			"total":         len(products),
			"activeFilters": catalog.ActiveFilterCount(filters),
		}

		pageStr := c.Query("page")
		limitStr := c.Query("limit")
		if pageStr != "" && limitStr != "" {
			page, limit, err := parsePaginationParams(pageStr, limitStr)
			if err != nil {
				respondWithError(c, http.StatusBadRequest, route, "invalid pagination params")
				return
			}
			response["products"] = pageWindow(products, page, limit)
			response["pagination"] = gin.H{"page": page, "limit": limit, "total": len(products)}
		}

		log.Printf("[%s] returning %d products", route, len(products))
		c.JSON(http.StatusOK, response)
	}
}

/*
GET /catalog/:id
- unknown ids are a navigable not-found state, never a 500
*/
func GetProductDetail(client *backend.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /catalog/:id"
		defer handlePanic(c, route)

		product, err := client.GetProduct(c.Request.Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, backend.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{
					"error":  "product not found",
					"backTo": "/catalog",
				})
				return
			}
			respondWithError(c, http.StatusBadGateway, route, err.Error())
			return
		}

		c.JSON(http.StatusOK, product)
	}
}

// filtersFromQuery maps query params onto a FilterState, leaving defaults in
// place for anything absent.
func filtersFromQuery(c *gin.Context) catalog.FilterState {
	filters := catalog.DefaultFilters()

	filters.SearchTerm = strings.TrimSpace(c.Query("search"))
	if v := strings.TrimSpace(c.Query("category")); v != "" {
		filters.Category = v
	}
	if v := strings.TrimSpace(c.Query("brand")); v != "" {
		filters.Brand = v
	}
	if v := strings.TrimSpace(c.Query("condition")); v != "" {
		filters.Condition = v
	}
	if v := strings.TrimSpace(c.Query("listingType")); v != "" {
		filters.ListingType = v
	}
	if v := c.Query("minPrice"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			filters.PriceRange[0] = parsed
		}
	}
	if v := c.Query("maxPrice"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			filters.PriceRange[1] = parsed
		}
	}
	if v := strings.TrimSpace(c.Query("sort")); v != "" {
		filters.SortBy = catalog.SortKey(v)
	}

	return filters
}
