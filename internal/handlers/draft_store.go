package handlers

import (
	"sync"

	"github.com/google/uuid"

	"storefront/internal/listing"
)

// DraftStore holds the in-flight listing workflows. Drafts are ephemeral and
// instance-local: they never survive a restart and are discarded on
// successful submission.
type DraftStore struct {
	mu        sync.RWMutex
	workflows map[string]*listing.Workflow
}

func NewDraftStore() *DraftStore {
	return &DraftStore{workflows: map[string]*listing.Workflow{}}
}

// Create registers a fresh workflow and returns its id.
func (s *DraftStore) Create() (string, *listing.Workflow) {
	id := uuid.New().String()
	workflow := listing.NewWorkflow()

	s.mu.Lock()
	s.workflows[id] = workflow
	s.mu.Unlock()

	return id, workflow
}

// Get returns the workflow for id, if any.
func (s *DraftStore) Get(id string) (*listing.Workflow, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	workflow, ok := s.workflows[id]
	return workflow, ok
}

// Discard drops the workflow; called after a successful submission.
func (s *DraftStore) Discard(id string) {
	s.mu.Lock()
	delete(s.workflows, id)
	s.mu.Unlock()
}
