package geo

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

// ErrSuperseded marks a search whose result was overtaken by a newer query.
// Its result must be discarded, never applied out of order.
var ErrSuperseded = errors.New("search superseded by a newer query")

// minQueryLength is the shortest query that triggers a network call.
const minQueryLength = 2

// CitySearcher debounces fast-typing input and carries a generation counter
// per search: every new query bumps the generation and cancels the
// superseded request, so a slow earlier lookup can never clobber a later one.
type CitySearcher struct {
	client   *Client
	debounce time.Duration

	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc
}

func NewCitySearcher(client *Client, debounce time.Duration) *CitySearcher {
	return &CitySearcher{client: client, debounce: debounce}
}

// Search waits out the debounce window, then queries. It returns
// ErrSuperseded when a newer Search call arrived in the meantime. Queries
// shorter than two characters return no results without a call.
func (s *CitySearcher) Search(ctx context.Context, query string) ([]City, error) {
	s.mu.Lock()
	s.generation++
	generation := s.generation
	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()

	// Release this search's context once it resolves; the cancel slot is
	// cleared only while it still belongs to this generation.
	defer func() {
		s.mu.Lock()
		if generation == s.generation {
			s.cancel = nil
		}
		s.mu.Unlock()
		cancel()
	}()

	query = strings.TrimSpace(query)
	if len(query) < minQueryLength {
		return nil, nil
	}

	timer := time.NewTimer(s.debounce)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return nil, ErrSuperseded
	case <-timer.C:
	}

	cities, err := s.client.SearchCities(ctx, query)

	s.mu.Lock()
	stale := generation != s.generation
	s.mu.Unlock()

	if stale {
		return nil, ErrSuperseded
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, ErrSuperseded
		}
		return nil, err
	}
	return cities, nil
}
