package listing

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"storefront/internal/backend"
)

type fakeSubmitter struct {
	calls   int
	payload backend.CreateProductPayload
	err     error
}

func (f *fakeSubmitter) CreateProduct(_ context.Context, _ string, payload backend.CreateProductPayload) (json.RawMessage, error) {
	f.calls++
	f.payload = payload
	if f.err != nil {
		return nil, f.err
	}
	return json.RawMessage(`{"id":"new_1"}`), nil
}

func validDraft() func(*Draft) {
	return func(d *Draft) {
		d.Title = "iPhone 13 Pro Max"
		d.Category = "mobile"
		d.Brand = "Apple"
		d.Condition = "excellent"
		d.Price = "65000"
		d.Location = "Mumbai, Maharashtra"
	}
}

func advanceToFinalize(t *testing.T, w *Workflow) {
	t.Helper()
	for w.Stage() != StageFinalize {
		if !w.Advance() {
			t.Fatalf("advance failed at stage %d: %v", w.Stage(), w.Errors())
		}
	}
}

func TestAdvanceBlocksOnEmptyTitle(t *testing.T) {
	w := NewWorkflow()
	w.Update(func(d *Draft) {
		d.Category = "mobile"
		d.Brand = "Apple"
		d.Condition = "good"
	})

	if w.Advance() {
		t.Fatal("expected advance to fail with empty title")
	}
	if w.Stage() != StageBasicInfo {
		t.Fatalf("stage moved to %d on failed validation", w.Stage())
	}
	if _, ok := w.Errors()["title"]; !ok {
		t.Fatalf("expected title error, got %v", w.Errors())
	}
}

func TestOtherBrandRequiresAlternate(t *testing.T) {
	w := NewWorkflow()
	w.Update(validDraft())
	w.Update(func(d *Draft) { d.Brand = "Other" })

	if w.Advance() {
		t.Fatal("expected advance to fail without alternate brand")
	}
	if _, ok := w.Errors()["alternateBrand"]; !ok {
		t.Fatalf("expected alternateBrand error, got %v", w.Errors())
	}

	w.Update(func(d *Draft) { d.AlternateBrand = "Fairphone" })
	if !w.Advance() {
		t.Fatalf("expected advance to pass, got %v", w.Errors())
	}
}

func TestOriginalPriceMustExceedPrice(t *testing.T) {
	w := NewWorkflow()
	w.Update(validDraft())
	if !w.Advance() {
		t.Fatalf("stage 1 should pass: %v", w.Errors())
	}

	w.Update(func(d *Draft) { d.OriginalPrice = "65000" })
	if w.Advance() {
		t.Fatal("expected advance to fail when originalPrice == price")
	}
	if _, ok := w.Errors()["originalPrice"]; !ok {
		t.Fatalf("expected originalPrice error, got %v", w.Errors())
	}

	w.Update(func(d *Draft) { d.OriginalPrice = "129900" })
	if !w.Advance() {
		t.Fatalf("expected advance with higher originalPrice, got %v", w.Errors())
	}

	w.Update(func(d *Draft) { d.OriginalPrice = "" })
	w.Retreat()
	if !w.Advance() {
		t.Fatalf("expected advance with absent originalPrice, got %v", w.Errors())
	}

	// A value that does not parse is treated like an absent one.
	w.Update(func(d *Draft) { d.OriginalPrice = "not-a-number" })
	w.Retreat()
	if !w.Advance() {
		t.Fatalf("expected advance with unparseable originalPrice, got %v", w.Errors())
	}
}

func TestRetreatNeverValidatesAndFloorsAtFirstStage(t *testing.T) {
	w := NewWorkflow()
	w.Update(validDraft())
	advanceToFinalize(t, w)

	w.Update(func(d *Draft) { d.Title = "" })
	for i := 0; i < 6; i++ {
		w.Retreat()
	}
	if w.Stage() != StageBasicInfo {
		t.Fatalf("expected stage floored at 1, got %d", w.Stage())
	}
}

func TestImageCapSilentlyTruncates(t *testing.T) {
	d := NewDraft()
	assets := make([]Asset, 0, 7)
	for i := 0; i < 7; i++ {
		assets = append(assets, Asset{Ref: string(rune('a' + i))})
	}

	added := d.AddImages(assets...)
	if len(added) != MaxImages {
		t.Fatalf("expected %d attached, got %d", MaxImages, len(added))
	}
	if len(d.Images) != MaxImages {
		t.Fatalf("expected image list capped at %d, got %d", MaxImages, len(d.Images))
	}
	if more := d.AddImages(Asset{Ref: "z"}); len(more) != 0 {
		t.Fatalf("expected no room past cap, attached %d", len(more))
	}
}

func TestPrimaryReindexingOnRemoval(t *testing.T) {
	d := NewDraft()
	d.AddImages(Asset{Ref: "A"}, Asset{Ref: "B"}, Asset{Ref: "C"})
	if err := d.SetPrimary(1); err != nil {
		t.Fatal(err)
	}

	// Removing an image before the primary shifts the pointer down.
	if _, err := d.RemoveImage(0); err != nil {
		t.Fatal(err)
	}
	if d.PrimaryIndex != 0 || d.Images[d.PrimaryIndex].Ref != "B" {
		t.Fatalf("expected primary B at 0, got index %d", d.PrimaryIndex)
	}

	// Removing an image after the primary leaves it alone.
	d = NewDraft()
	d.AddImages(Asset{Ref: "A"}, Asset{Ref: "B"}, Asset{Ref: "C"})
	_ = d.SetPrimary(1)
	if _, err := d.RemoveImage(2); err != nil {
		t.Fatal(err)
	}
	if d.PrimaryIndex != 1 || d.Images[d.PrimaryIndex].Ref != "B" {
		t.Fatalf("expected primary unchanged at 1, got index %d", d.PrimaryIndex)
	}

	// Removing the primary falls back to the head of the remainder.
	if _, err := d.RemoveImage(1); err != nil {
		t.Fatal(err)
	}
	if d.PrimaryIndex != 0 {
		t.Fatalf("expected primary fallback to 0, got %d", d.PrimaryIndex)
	}

	if _, err := d.RemoveImage(0); err != nil {
		t.Fatal(err)
	}
	if d.PrimaryIndex != NoPrimary {
		t.Fatalf("expected no primary on empty list, got %d", d.PrimaryIndex)
	}
}

func TestSubmitRequiresFinalStage(t *testing.T) {
	w := NewWorkflow()
	sub := &fakeSubmitter{}

	if _, err := w.Submit(context.Background(), sub, "token", "7"); !errors.Is(err, ErrWrongStage) {
		t.Fatalf("expected ErrWrongStage, got %v", err)
	}
	if sub.calls != 0 {
		t.Fatalf("expected no network call, got %d", sub.calls)
	}
}

func TestSubmitWithoutTokenNeverCallsBackend(t *testing.T) {
	w := NewWorkflow()
	w.Update(validDraft())
	advanceToFinalize(t, w)

	sub := &fakeSubmitter{}
	if _, err := w.Submit(context.Background(), sub, "", "7"); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
	if sub.calls != 0 {
		t.Fatalf("expected no network call, got %d", sub.calls)
	}
}

func TestSubmitBuildsPayloadWithResolvedBrandAndPrimaryFirst(t *testing.T) {
	w := NewWorkflow()
	w.Update(validDraft())
	w.Update(func(d *Draft) {
		d.Brand = "Other"
		d.AlternateBrand = "Fairphone"
		d.OriginalPrice = "not-a-number"
		d.AddImages(Asset{Ref: "https://img/a"}, Asset{Ref: "https://img/b"}, Asset{Ref: "https://img/c"})
		_ = d.SetPrimary(2)
	})
	advanceToFinalize(t, w)

	sub := &fakeSubmitter{}
	if _, err := w.Submit(context.Background(), sub, "token", "7"); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	if sub.calls != 1 {
		t.Fatalf("expected exactly one call, got %d", sub.calls)
	}
	if sub.payload.Brand != "Fairphone" {
		t.Fatalf("expected resolved brand Fairphone, got %q", sub.payload.Brand)
	}
	if sub.payload.OriginalPrice != 0 {
		t.Fatalf("expected invalid numeric input to default to 0, got %v", sub.payload.OriginalPrice)
	}
	if sub.payload.SellerID != "7" {
		t.Fatalf("expected seller id 7, got %q", sub.payload.SellerID)
	}
	if len(sub.payload.Images) != 3 || sub.payload.Images[0].URL != "https://img/c" {
		t.Fatalf("expected primary image first, got %+v", sub.payload.Images)
	}
}

func TestSubmitFailureKeepsDraftIntact(t *testing.T) {
	w := NewWorkflow()
	w.Update(validDraft())
	advanceToFinalize(t, w)

	sub := &fakeSubmitter{err: errors.New("backend rejected the listing")}
	if _, err := w.Submit(context.Background(), sub, "token", "7"); err == nil {
		t.Fatal("expected submit error")
	}

	if w.Draft().Title != "iPhone 13 Pro Max" {
		t.Fatal("draft should survive a failed submission")
	}
	if w.Stage() != StageFinalize {
		t.Fatalf("expected to stay on final stage, got %d", w.Stage())
	}

	// No automatic retry happened.
	if sub.calls != 1 {
		t.Fatalf("expected one attempt, got %d", sub.calls)
	}
}

func TestSubmitRevalidatesFinalStage(t *testing.T) {
	w := NewWorkflow()
	w.Update(validDraft())
	advanceToFinalize(t, w)
	w.Update(func(d *Draft) { d.Location = "" })

	sub := &fakeSubmitter{}
	if _, err := w.Submit(context.Background(), sub, "token", "7"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if _, ok := w.Errors()["location"]; !ok {
		t.Fatalf("expected location error, got %v", w.Errors())
	}
	if sub.calls != 0 {
		t.Fatalf("expected no network call, got %d", sub.calls)
	}
}
