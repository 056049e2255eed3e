package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/catalog"
	"storefront/internal/models"
)

// GET /vocabulary
func GetVocabulary() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"categories":   models.Categories,
			"brands":       models.Brands,
			"conditions":   models.Conditions,
			"listingTypes": models.ListingTypes,
			"sortKeys": []catalog.SortKey{
				catalog.SortNewest,
				catalog.SortOldest,
				catalog.SortPriceLow,
				catalog.SortPriceHigh,
				catalog.SortPopular,
			},
			"priceCeiling": catalog.PriceCeiling,
		})
	}
}
