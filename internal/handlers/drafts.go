package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"storefront/internal/backend"
	"storefront/internal/geo"
	"storefront/internal/listing"
	"storefront/internal/models"
	"storefront/internal/session"
)

func draftView(id string, workflow *listing.Workflow) gin.H {
	return gin.H{
		"id":     id,
		"stage":  workflow.Stage(),
		"draft":  workflow.Draft(),
		"errors": workflow.Errors(),
	}
}

func lookupDraft(c *gin.Context, store *DraftStore, route string) (string, *listing.Workflow, bool) {
	id := c.Param("id")
	workflow, ok := store.Get(id)
	if !ok {
		respondWithError(c, http.StatusNotFound, route, "draft not found")
		return "", nil, false
	}
	return id, workflow, true
}

/*
POST /drafts
- optional coordinates pre-fill the location from a reverse geocode; lookup
  failure quietly falls back to the default label
*/
func CreateDraft(store *DraftStore, geoClient *geo.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /drafts"
		defer handlePanic(c, route)

		var req struct {
			Latitude  *float64 `json:"latitude"`
			Longitude *float64 `json:"longitude"`
		}
		_ = c.ShouldBindJSON(&req)

		id, workflow := store.Create()

		if req.Latitude != nil && req.Longitude != nil {
			location, err := geoClient.ReverseGeocode(c.Request.Context(), *req.Latitude, *req.Longitude)
			if err != nil {
				log.Printf("[%s] reverse geocode failed, using default: %v", route, err)
				location = geo.DefaultLocation
			}
			workflow.Update(func(d *listing.Draft) {
				d.Location = formatLocation(location)
			})
		}

		c.JSON(http.StatusCreated, draftView(id, workflow))
	}
}

func formatLocation(location geo.Location) string {
	if location.State == "" {
		return location.City
	}
	return location.City + ", " + location.State
}

// GET /drafts/:id
func GetDraft(store *DraftStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /drafts/:id"
		defer handlePanic(c, route)

		id, workflow, ok := lookupDraft(c, store, route)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, draftView(id, workflow))
	}
}

type draftUpdateRequest struct {
	Title          *string                `json:"title"`
	Category       *string                `json:"category"`
	Brand          *string                `json:"brand"`
	AlternateBrand *string                `json:"alternateBrand"`
	Model          *string                `json:"model"`
	Condition      *string                `json:"condition"`
	Price          *string                `json:"price"`
	OriginalPrice  *string                `json:"originalPrice"`
	ListingType    *string                `json:"listingType"`
	Description    *string                `json:"description"`
	Specifications *models.Specifications `json:"specifications"`
	Warranty       *bool                  `json:"warranty"`
	WarrantyUntil  *string                `json:"warrantyUntil"`
	Location       *string                `json:"location"`
}

/*
PATCH /drafts/:id
- partial field updates; validation only runs on advance/submit
*/
func UpdateDraft(store *DraftStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /drafts/:id"
		defer handlePanic(c, route)

		id, workflow, ok := lookupDraft(c, store, route)
		if !ok {
			return
		}

		var req draftUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		workflow.Update(func(d *listing.Draft) {
			applyString := func(dst *string, src *string) {
				if src != nil {
					*dst = *src
				}
			}
			applyString(&d.Title, req.Title)
			applyString(&d.Category, req.Category)
			applyString(&d.Brand, req.Brand)
			applyString(&d.AlternateBrand, req.AlternateBrand)
			applyString(&d.Model, req.Model)
			applyString(&d.Condition, req.Condition)
			applyString(&d.Price, req.Price)
			applyString(&d.OriginalPrice, req.OriginalPrice)
			applyString(&d.ListingType, req.ListingType)
			applyString(&d.Description, req.Description)
			applyString(&d.WarrantyUntil, req.WarrantyUntil)
			applyString(&d.Location, req.Location)
			if req.Specifications != nil {
				d.Specifications = *req.Specifications
			}
			if req.Warranty != nil {
				d.Warranty = *req.Warranty
			}
		})

		c.JSON(http.StatusOK, draftView(id, workflow))
	}
}

/*
POST /drafts/:id/advance
- 422 with the field error map when the current stage fails validation
*/
func AdvanceDraft(store *DraftStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /drafts/:id/advance"
		defer handlePanic(c, route)

		id, workflow, ok := lookupDraft(c, store, route)
		if !ok {
			return
		}

		if !workflow.Advance() {
			c.JSON(http.StatusUnprocessableEntity, draftView(id, workflow))
			return
		}
		c.JSON(http.StatusOK, draftView(id, workflow))
	}
}

// POST /drafts/:id/retreat
func RetreatDraft(store *DraftStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /drafts/:id/retreat"
		defer handlePanic(c, route)

		id, workflow, ok := lookupDraft(c, store, route)
		if !ok {
			return
		}

		workflow.Retreat()
		c.JSON(http.StatusOK, draftView(id, workflow))
	}
}

/*
POST /drafts/:id/images
- multipart file parts under "images" are staged locally as pending assets;
  form values under "urls" attach already-durable remote images
- additions beyond the cap are silently dropped
*/
func UploadDraftImages(store *DraftStore, pendingDir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /drafts/:id/images"
		defer handlePanic(c, route)

		id, workflow, ok := lookupDraft(c, store, route)
		if !ok {
			return
		}

		if err := c.Request.ParseMultipartForm(32 << 20); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid multipart body")
			return
		}

		assets := make([]listing.Asset, 0)
		for _, url := range c.PostFormArray("urls") {
			if trimmed := strings.TrimSpace(url); trimmed != "" {
				assets = append(assets, listing.Asset{Ref: trimmed})
			}
		}
		if c.Request.MultipartForm != nil {
			for _, file := range c.Request.MultipartForm.File["images"] {
				asset, err := savePendingImage(file, pendingDir)
				if err != nil {
					// Files staged earlier in this request never reach the
					// draft, so they are removed before reporting the error.
					discardPending(assets, pendingDir, route)
					respondWithError(c, http.StatusBadRequest, route, err.Error())
					return
				}
				assets = append(assets, asset)
			}
		}

		var attached []listing.Asset
		workflow.Update(func(d *listing.Draft) {
			attached = d.AddImages(assets...)
		})

		// Staged files that did not fit under the cap are cleaned up.
		discardPending(assets[len(attached):], pendingDir, route)

		c.JSON(http.StatusOK, draftView(id, workflow))
	}
}

// discardPending removes staged local files that will not be referenced by
// any draft.
func discardPending(assets []listing.Asset, pendingDir, route string) {
	for _, asset := range assets {
		if asset.Pending() {
			if err := safeDeletePending(asset.Path, pendingDir); err != nil {
				log.Printf("[%s] cleanup failed for %s: %v", route, asset.Ref, err)
			}
		}
	}
}

// DELETE /drafts/:id/images/:index
func RemoveDraftImage(store *DraftStore, pendingDir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /drafts/:id/images/:index"
		defer handlePanic(c, route)

		id, workflow, ok := lookupDraft(c, store, route)
		if !ok {
			return
		}

		index, err := strconv.Atoi(c.Param("index"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid image index")
			return
		}

		var removed listing.Asset
		var removeErr error
		workflow.Update(func(d *listing.Draft) {
			removed, removeErr = d.RemoveImage(index)
		})
		if removeErr != nil {
			respondWithError(c, http.StatusBadRequest, route, removeErr.Error())
			return
		}

		if removed.Pending() {
			if err := safeDeletePending(removed.Path, pendingDir); err != nil {
				log.Printf("[%s] cleanup failed for %s: %v", route, removed.Ref, err)
			}
		}

		c.JSON(http.StatusOK, draftView(id, workflow))
	}
}

// PUT /drafts/:id/images/primary
func SetPrimaryImage(store *DraftStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /drafts/:id/images/primary"
		defer handlePanic(c, route)

		id, workflow, ok := lookupDraft(c, store, route)
		if !ok {
			return
		}

		var req struct {
			Index int `json:"index"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		var setErr error
		workflow.Update(func(d *listing.Draft) {
			setErr = d.SetPrimary(req.Index)
		})
		if setErr != nil {
			respondWithError(c, http.StatusBadRequest, route, setErr.Error())
			return
		}

		c.JSON(http.StatusOK, draftView(id, workflow))
	}
}

// AddDraftListItem appends one free-text entry to the accessories or
// exchange-preferences list.
func AddDraftListItem(store *DraftStore, field string) gin.HandlerFunc {
	return func(c *gin.Context) {
		route := "POST /drafts/:id/" + field
		defer handlePanic(c, route)

		id, workflow, ok := lookupDraft(c, store, route)
		if !ok {
			return
		}

		var req struct {
			Value string `json:"value" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}
		value := strings.TrimSpace(req.Value)
		if value == "" {
			respondWithError(c, http.StatusBadRequest, route, "value is required")
			return
		}

		workflow.Update(func(d *listing.Draft) {
			list := draftList(d, field)
			*list = append(*list, value)
		})

		c.JSON(http.StatusOK, draftView(id, workflow))
	}
}

// RemoveDraftListItem drops the entry at :index from the chosen list.
func RemoveDraftListItem(store *DraftStore, field string) gin.HandlerFunc {
	return func(c *gin.Context) {
		route := "DELETE /drafts/:id/" + field + "/:index"
		defer handlePanic(c, route)

		id, workflow, ok := lookupDraft(c, store, route)
		if !ok {
			return
		}

		index, err := strconv.Atoi(c.Param("index"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid index")
			return
		}

		var removeErr error
		workflow.Update(func(d *listing.Draft) {
			list := draftList(d, field)
			if index < 0 || index >= len(*list) {
				removeErr = errors.New("index out of range")
				return
			}
			*list = append((*list)[:index], (*list)[index+1:]...)
		})
		if removeErr != nil {
			respondWithError(c, http.StatusBadRequest, route, removeErr.Error())
			return
		}

		c.JSON(http.StatusOK, draftView(id, workflow))
	}
}

func draftList(d *listing.Draft, field string) *[]string {
	if field == "exchange-preferences" {
		return &d.ExchangePreferences
	}
	return &d.Accessories
}

/*
POST /drafts/:id/submit
- one backend call per confirmed attempt; the draft survives failures and is
  discarded (with its staged files) only on success
*/
func SubmitDraft(store *DraftStore, client *backend.Client, sess *session.Session, pendingDir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /drafts/:id/submit"
		defer handlePanic(c, route)

		id, workflow, ok := lookupDraft(c, store, route)
		if !ok {
			return
		}

		confirmation, err := workflow.Submit(c.Request.Context(), client, sess.Token(), sess.UserID())
		if err != nil {
			switch {
			case errors.Is(err, listing.ErrNotAuthenticated):
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "login required", "loginAt": "/auth/login"})
			case errors.Is(err, listing.ErrValidation):
				c.JSON(http.StatusUnprocessableEntity, draftView(id, workflow))
			case errors.Is(err, listing.ErrWrongStage):
				respondWithError(c, http.StatusConflict, route, err.Error())
			case errors.Is(err, listing.ErrSubmitInFlight):
				respondWithError(c, http.StatusConflict, route, err.Error())
			default:
				respondWithError(c, statusForBackendError(err, http.StatusBadGateway), route, err.Error())
			}
			return
		}

		discardPending(workflow.Draft().Images, pendingDir, route)
		store.Discard(id)

		c.JSON(http.StatusCreated, gin.H{"confirmation": confirmation})
	}
}
