package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"storefront/internal/geo"
)

/*
GET /locations/search?q=
- debounced upstream query; a superseded search answers 204 so the caller
  simply drops it
*/
func SearchLocations(searcher *geo.CitySearcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /locations/search"
		defer handlePanic(c, route)

		cities, err := searcher.Search(c.Request.Context(), c.Query("q"))
		if err != nil {
			if errors.Is(err, geo.ErrSuperseded) {
				c.Status(http.StatusNoContent)
				return
			}
			respondWithError(c, http.StatusBadGateway, route, err.Error())
			return
		}

		c.JSON(http.StatusOK, gin.H{"cities": cities})
	}
}

/*
GET /locations/reverse?lat=&lon=
- failure degrades to the default label instead of erroring
*/
func ReverseLocation(client *geo.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /locations/reverse"
		defer handlePanic(c, route)

		latitude, latErr := strconv.ParseFloat(c.Query("lat"), 64)
		longitude, lonErr := strconv.ParseFloat(c.Query("lon"), 64)
		if latErr != nil || lonErr != nil {
			respondWithError(c, http.StatusBadRequest, route, "lat and lon are required")
			return
		}

		location, err := client.ReverseGeocode(c.Request.Context(), latitude, longitude)
		if err != nil {
			location = geo.DefaultLocation
		}
		c.JSON(http.StatusOK, location)
	}
}
