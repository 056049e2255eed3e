package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Location is a coarse place label used to pre-fill listing locations.
type Location struct {
	City  string `json:"city"`
	State string `json:"state,omitempty"`
}

// DefaultLocation is the fallback label when no lookup succeeds.
var DefaultLocation = Location{City: "India"}

// City is one place-search hit.
type City struct {
	Name  string `json:"name"`
	State string `json:"state,omitempty"`
}

// Client calls the reverse-geocode and place-search services. Both are
// optional enhancements; callers fall back to DefaultLocation on failure.
type Client struct {
	geocodeBase string
	placesBase  string
	httpClient  *http.Client
}

func NewClient(geocodeBase, placesBase string, timeout time.Duration) *Client {
	return &Client{
		geocodeBase: strings.TrimRight(geocodeBase, "/"),
		placesBase:  strings.TrimRight(placesBase, "/"),
		httpClient:  &http.Client{Timeout: timeout},
	}
}

// ReverseGeocode resolves coordinates to a city/state label.
func (c *Client) ReverseGeocode(ctx context.Context, latitude, longitude float64) (Location, error) {
	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(latitude, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(longitude, 'f', -1, 64))
	params.Set("localityLanguage", "en")

	endpoint := c.geocodeBase + "/data/reverse-geocode-client?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Location{}, fmt.Errorf("geo: build request: %w", err)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return Location{}, fmt.Errorf("geo: reverse geocode: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return Location{}, fmt.Errorf("geo: reverse geocode status %d", res.StatusCode)
	}

	var body struct {
		City                 string `json:"city"`
		Locality             string `json:"locality"`
		PrincipalSubdivision string `json:"principalSubdivision"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return Location{}, fmt.Errorf("geo: decode reverse geocode: %w", err)
	}

	city := body.City
	if city == "" {
		city = body.Locality
	}
	if city == "" {
		city = "Unknown"
	}
	return Location{City: city, State: body.PrincipalSubdivision}, nil
}

// SearchCities queries the place-search service for Indian cities matching
// query. Hits without a usable place name are dropped.
func (c *Client) SearchCities(ctx context.Context, query string) ([]City, error) {
	params := url.Values{}
	params.Set("format", "json")
	params.Set("countrycodes", "in")
	params.Set("q", query)
	params.Set("limit", "20")
	params.Set("addressdetails", "1")

	endpoint := c.placesBase + "/search?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("geo: build request: %w", err)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geo: search cities: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geo: search cities status %d", res.StatusCode)
	}

	var hits []struct {
		DisplayName string `json:"display_name"`
		Address     struct {
			City    string `json:"city"`
			Town    string `json:"town"`
			Village string `json:"village"`
			State   string `json:"state"`
		} `json:"address"`
	}
	if err := json.NewDecoder(res.Body).Decode(&hits); err != nil {
		return nil, fmt.Errorf("geo: decode search: %w", err)
	}

	needle := strings.ToLower(query)
	cities := make([]City, 0, len(hits))
	for _, hit := range hits {
		name := hit.Address.City
		if name == "" {
			name = hit.Address.Town
		}
		if name == "" {
			name = hit.Address.Village
		}
		if name == "" {
			continue
		}
		if !strings.Contains(strings.ToLower(name), needle) &&
			!strings.Contains(strings.ToLower(hit.Address.State), needle) {
			continue
		}
		cities = append(cities, City{Name: name, State: hit.Address.State})
		if len(cities) == 20 {
			break
		}
	}
	return cities, nil
}
