package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"storefront/internal/backend"
	"storefront/internal/geo"
	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/session"
)

const productsBody = `[
	{"id":"mob_001","title":"iPhone 13 Pro Max","category":"mobile","brand":"Apple","condition":"excellent","listingType":"sell","price":65000,"postedDate":"2024-12-28","views":245},
	{"id":"mob_002","title":"Galaxy S23 Ultra","category":"mobile","brand":"Samsung","condition":"good","listingType":"exchange","price":85000,"postedDate":"2025-01-02","views":120},
	{"id":"lap_001","title":"ThinkPad X1 Carbon","category":"laptop","brand":"Lenovo","condition":"fair","listingType":"sell","price":42000,"postedDate":"2024-12-30","views":310}
]`

type testEnv struct {
	router     *gin.Engine
	sess       *session.Session
	created    *int
	pendingDir string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	created := 0
	marketplace := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/api/Products" && r.Method == http.MethodGet:
			w.Write([]byte(productsBody))
		case r.URL.Path == "/api/Products" && r.Method == http.MethodPost:
			created++
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"id":"new_1"}`))
		case r.URL.Path == "/api/Products/mob_001":
			w.Write([]byte(`{"id":"mob_001","title":"iPhone 13 Pro Max","price":65000}`))
		case strings.HasPrefix(r.URL.Path, "/api/Products/"):
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"message":"Product not found"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(marketplace.Close)

	client := backend.New(marketplace.URL, 5*time.Second, "https://img.example/placeholder.png")
	sess := session.Load(filepath.Join(t.TempDir(), "session.json"))
	geoClient := geo.NewClient(marketplace.URL, marketplace.URL, 5*time.Second)
	drafts := NewDraftStore()
	pendingDir := t.TempDir()

	r := gin.New()
	r.GET("/catalog", GetCatalog(client))
	r.GET("/catalog/:id", GetProductDetail(client))
	r.POST("/drafts", CreateDraft(drafts, geoClient))
	r.GET("/drafts/:id", GetDraft(drafts))
	r.PATCH("/drafts/:id", UpdateDraft(drafts))
	r.POST("/drafts/:id/advance", AdvanceDraft(drafts))
	r.POST("/drafts/:id/retreat", RetreatDraft(drafts))
	r.POST("/drafts/:id/images", UploadDraftImages(drafts, pendingDir))
	r.POST("/drafts/:id/accessories", AddDraftListItem(drafts, "accessories"))
	r.DELETE("/drafts/:id/accessories/:index", RemoveDraftListItem(drafts, "accessories"))
	r.POST("/drafts/:id/submit", middleware.RequireSession(sess), SubmitDraft(drafts, client, sess, pendingDir))

	return &testEnv{router: r, sess: sess, created: &created, pendingDir: pendingDir}
}

func (e *testEnv) request(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response %s: %v", rec.Body.String(), err)
	}
	return body
}

func TestCatalogFiltersAndSorts(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(t, http.MethodGet, "/catalog?listingType=exchange&sort=newest", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	products := body["products"].([]any)
	if len(products) != 1 {
		t.Fatalf("expected one exchange listing, got %d", len(products))
	}
	if price := products[0].(map[string]any)["price"].(float64); price != 85000 {
		t.Fatalf("expected the 85000 listing, got %v", price)
	}

	rec = env.request(t, http.MethodGet, "/catalog?sort=price-low", nil)
	body = decodeBody(t, rec)
	products = body["products"].([]any)
	wantPrices := []float64{42000, 65000, 85000}
	if len(products) != len(wantPrices) {
		t.Fatalf("expected %d products, got %d", len(wantPrices), len(products))
	}
	for i, want := range wantPrices {
		if got := products[i].(map[string]any)["price"].(float64); got != want {
			t.Fatalf("position %d: expected %v, got %v", i, want, got)
		}
	}
}

func TestCatalogActiveFilterBadge(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(t, http.MethodGet, "/catalog?category=mobile&search=iphone", nil)
	body := decodeBody(t, rec)
	if got := body["activeFilters"].(float64); got != 2 {
		t.Fatalf("expected 2 active filters, got %v", got)
	}
}

func TestProductDetailNotFound(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(t, http.MethodGet, "/catalog/ghost", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["backTo"] != "/catalog" {
		t.Fatalf("expected catalog navigation hint, got %v", body)
	}
}

func createDraft(t *testing.T, env *testEnv) string {
	t.Helper()
	rec := env.request(t, http.MethodPost, "/drafts", nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create draft: %d %s", rec.Code, rec.Body.String())
	}
	return decodeBody(t, rec)["id"].(string)
}

func TestDraftAdvanceGating(t *testing.T) {
	env := newTestEnv(t)
	id := createDraft(t, env)

	rec := env.request(t, http.MethodPost, "/drafts/"+id+"/advance", nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 on empty draft, got %d", rec.Code)
	}
	errs := decodeBody(t, rec)["errors"].(map[string]any)
	if _, ok := errs["title"]; !ok {
		t.Fatalf("expected title error, got %v", errs)
	}
	if stage := decodeBody(t, rec)["stage"].(float64); stage != 1 {
		t.Fatalf("stage moved on failed validation: %v", stage)
	}

	env.request(t, http.MethodPatch, "/drafts/"+id, map[string]any{
		"title": "iPhone 13 Pro Max", "category": "mobile", "brand": "Apple",
		"condition": "excellent",
	})
	rec = env.request(t, http.MethodPost, "/drafts/"+id+"/advance", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected advance to pass: %s", rec.Body.String())
	}
	if stage := decodeBody(t, rec)["stage"].(float64); stage != 2 {
		t.Fatalf("expected stage 2, got %v", stage)
	}
}

func TestDraftSubmitFlow(t *testing.T) {
	env := newTestEnv(t)
	id := createDraft(t, env)

	env.request(t, http.MethodPatch, "/drafts/"+id, map[string]any{
		"title": "iPhone 13 Pro Max", "category": "mobile", "brand": "Apple",
		"condition": "excellent", "price": "65000", "location": "Mumbai, Maharashtra",
	})
	for i := 0; i < 3; i++ {
		if rec := env.request(t, http.MethodPost, "/drafts/"+id+"/advance", nil); rec.Code != http.StatusOK {
			t.Fatalf("advance %d failed: %s", i+1, rec.Body.String())
		}
	}

	// Submission without a session is blocked before any backend call.
	rec := env.request(t, http.MethodPost, "/drafts/"+id+"/submit", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without session, got %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["loginAt"] != "/auth/login" {
		t.Fatalf("expected login redirect hint, got %v", body)
	}
	if *env.created != 0 {
		t.Fatalf("backend was called %d times without auth", *env.created)
	}

	claims := jwt.MapClaims{"userId": "7", "exp": time.Now().Add(time.Hour).Unix()}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatal(err)
	}
	if err := env.sess.Login(token, models.User{ID: "7", FullName: "Rajesh Kumar"}); err != nil {
		t.Fatal(err)
	}

	rec = env.request(t, http.MethodPost, "/drafts/"+id+"/submit", nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("submit failed: %d %s", rec.Code, rec.Body.String())
	}
	if *env.created != 1 {
		t.Fatalf("expected exactly one create call, got %d", *env.created)
	}

	// The draft is discarded after a successful submission.
	if rec := env.request(t, http.MethodGet, "/drafts/"+id, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected draft gone, got %d", rec.Code)
	}
}

func TestDraftAccessoriesListOps(t *testing.T) {
	env := newTestEnv(t)
	id := createDraft(t, env)

	env.request(t, http.MethodPost, "/drafts/"+id+"/accessories", map[string]any{"value": "Original Box"})
	rec := env.request(t, http.MethodPost, "/drafts/"+id+"/accessories", map[string]any{"value": "Charger"})

	draft := decodeBody(t, rec)["draft"].(map[string]any)
	accessories := draft["accessories"].([]any)
	if len(accessories) != 2 || accessories[1] != "Charger" {
		t.Fatalf("unexpected accessories %v", accessories)
	}

	rec = env.request(t, http.MethodDelete, "/drafts/"+id+"/accessories/0", nil)
	draft = decodeBody(t, rec)["draft"].(map[string]any)
	accessories = draft["accessories"].([]any)
	if len(accessories) != 1 || accessories[0] != "Charger" {
		t.Fatalf("unexpected accessories after removal %v", accessories)
	}
}

func TestRejectedUploadCleansStagedFiles(t *testing.T) {
	env := newTestEnv(t)
	id := createDraft(t, env)

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile("images", "front.jpg")
	if err != nil {
		t.Fatal(err)
	}
	part.Write([]byte("jpeg-bytes"))
	if _, err := form.CreateFormFile("images", "animation.gif"); err != nil {
		t.Fatal(err)
	}
	form.Close()

	req := httptest.NewRequest(http.MethodPost, "/drafts/"+id+"/images", &buf)
	req.Header.Set("Content-Type", form.FormDataContentType())
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for the unsupported file type, got %d", rec.Code)
	}

	// The file staged before the rejected one must not linger on disk.
	entries, err := os.ReadDir(env.pendingDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no staged files after rejection, found %d", len(entries))
	}

	rec = env.request(t, http.MethodGet, "/drafts/"+id, nil)
	draft := decodeBody(t, rec)["draft"].(map[string]any)
	if images, ok := draft["images"].([]any); ok && len(images) != 0 {
		t.Fatalf("expected no images attached, got %v", images)
	}
}
