package listing

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"sync"

	"storefront/internal/backend"
	"storefront/internal/models"
)

// Stage names one step of the four-stage submission workflow.
type Stage int

const (
	StageBasicInfo Stage = iota + 1
	StagePricing
	StageMediaSpecs
	StageFinalize
)

var (
	// ErrNotAuthenticated blocks submission outright; the caller redirects
	// to login instead of attempting the call.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrValidation means the current stage's field errors were populated.
	ErrValidation = errors.New("validation failed")

	// ErrWrongStage rejects a submit issued before the final stage.
	ErrWrongStage = errors.New("submit is only allowed from the final stage")

	// ErrSubmitInFlight rejects a repeated submit while one is running.
	ErrSubmitInFlight = errors.New("submission already in progress")
)

// Submitter performs the single create-listing call. *backend.Client
// satisfies it.
type Submitter interface {
	CreateProduct(ctx context.Context, token string, payload backend.CreateProductPayload) (json.RawMessage, error)
}

// Workflow is the draft-listing state machine: four ordered stages, no
// skipping forward, free backward navigation, and exactly one submission
// call per confirmed attempt.
type Workflow struct {
	mu         sync.Mutex
	draft      Draft
	stage      Stage
	errors     map[string]string
	submitting bool
}

// NewWorkflow starts an empty workflow at the first stage.
func NewWorkflow() *Workflow {
	return &Workflow{
		draft:  NewDraft(),
		stage:  StageBasicInfo,
		errors: map[string]string{},
	}
}

// Stage returns the current stage index.
func (w *Workflow) Stage() Stage {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stage
}

// Errors returns a copy of the field-keyed error map from the last failed
// validation.
func (w *Workflow) Errors() map[string]string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make(map[string]string, len(w.errors))
	for k, v := range w.errors {
		out[k] = v
	}
	return out
}

// Draft returns a snapshot of the accumulated draft.
func (w *Workflow) Draft() Draft {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.draft
}

// Update applies a mutation to the draft. Field errors for edited values are
// cleared lazily on the next validation.
func (w *Workflow) Update(mutate func(*Draft)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	mutate(&w.draft)
}

// Advance validates the current stage. On success the stage increments,
// capped at the final stage; on failure the stage is unchanged and the error
// map is populated.
func (w *Workflow) Advance() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	errs := validateStage(w.stage, &w.draft)
	if len(errs) > 0 {
		w.errors = errs
		return false
	}

	w.errors = map[string]string{}
	if w.stage < StageFinalize {
		w.stage++
	}
	return true
}

// Retreat steps back one stage without validation, floored at the first.
func (w *Workflow) Retreat() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stage > StageBasicInfo {
		w.stage--
	}
}

// Submit re-validates the final stage and performs the one network call.
// The draft is left intact on failure so the user can correct and resubmit;
// no retry happens here.
func (w *Workflow) Submit(ctx context.Context, submitter Submitter, token, sellerID string) (json.RawMessage, error) {
	w.mu.Lock()
	if w.stage != StageFinalize {
		w.mu.Unlock()
		return nil, ErrWrongStage
	}
	if w.submitting {
		w.mu.Unlock()
		return nil, ErrSubmitInFlight
	}
	if strings.TrimSpace(token) == "" {
		w.mu.Unlock()
		return nil, ErrNotAuthenticated
	}
	if errs := validateStage(StageFinalize, &w.draft); len(errs) > 0 {
		w.errors = errs
		w.mu.Unlock()
		return nil, ErrValidation
	}
	w.errors = map[string]string{}
	w.submitting = true
	payload := buildPayload(&w.draft, sellerID)
	w.mu.Unlock()

	result, err := submitter.CreateProduct(ctx, token, payload)

	w.mu.Lock()
	w.submitting = false
	w.mu.Unlock()

	if err != nil {
		return nil, err
	}
	return result, nil
}

// validateStage returns a field-keyed error map; empty means the stage may
// advance.
func validateStage(stage Stage, draft *Draft) map[string]string {
	errs := map[string]string{}

	switch stage {
	case StageBasicInfo:
		if strings.TrimSpace(draft.Title) == "" {
			errs["title"] = "Product title is required"
		}
		if draft.Category == "" {
			errs["category"] = "Category is required"
		}
		if draft.Brand == "" {
			errs["brand"] = "Brand is required"
		} else if !models.KnownBrand(draft.Brand) {
			errs["brand"] = "Select a brand from the list"
		} else if draft.Brand == models.BrandOther && strings.TrimSpace(draft.AlternateBrand) == "" {
			errs["alternateBrand"] = "Brand name is required"
		}
		if draft.Condition == "" {
			errs["condition"] = "Condition is required"
		}
	case StagePricing:
		price, ok := parsePositiveNumber(draft.Price)
		if !ok {
			errs["price"] = "Valid price is required"
		}
		// An unparseable original price counts as absent and falls back to
		// zero in the payload.
		if original, origOK := parsePositiveNumber(draft.OriginalPrice); origOK && ok && original <= price {
			errs["originalPrice"] = "Original price should be higher than selling price"
		}
	case StageMediaSpecs:
		// Images and specifications are optional; the image cap is
		// enforced at attach time.
	case StageFinalize:
		if strings.TrimSpace(draft.Location) == "" {
			errs["location"] = "Location is required"
		}
	}

	return errs
}

func parsePositiveNumber(value string) (float64, bool) {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || parsed <= 0 {
		return 0, false
	}
	return parsed, true
}

// buildPayload copies the draft into the outgoing shape: brand resolved,
// primary image moved to the front, numeric strings parsed with invalid or
// empty input defaulting to zero.
func buildPayload(draft *Draft, sellerID string) backend.CreateProductPayload {
	images := make([]backend.ImagePart, 0, len(draft.Images))
	for _, asset := range draft.orderedImages() {
		if asset.Pending() {
			images = append(images, backend.ImagePart{Name: asset.Name, Path: asset.Path})
		} else {
			images = append(images, backend.ImagePart{URL: asset.Ref})
		}
	}

	return backend.CreateProductPayload{
		Title:         draft.Title,
		Category:      draft.Category,
		Brand:         draft.ResolvedBrand(),
		Model:         draft.Model,
		Condition:     draft.Condition,
		Price:         parseNumberOrZero(draft.Price),
		OriginalPrice: parseNumberOrZero(draft.OriginalPrice),
		ListingType:   draft.ListingType,
		Description:   draft.Description,
		SellerID:      sellerID,
		Storage:       draft.Specifications.Storage,
		Ram:           draft.Specifications.RAM,
		Display:       draft.Specifications.Display,
		Processor:     draft.Specifications.Processor,
		Camera:        draft.Specifications.Camera,
		Battery:       draft.Specifications.Battery,
		OS:            draft.Specifications.OS,
		Images:        images,
	}
}

func parseNumberOrZero(value string) float64 {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0
	}
	return parsed
}
