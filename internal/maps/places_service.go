package maps

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"googlemaps.github.io/maps"
)

// MaxSuggestions caps how many destinations a lookup returns.
const MaxSuggestions = 5

// DefaultCacheTTL is used when NewPlacesService gets a non-positive ttl.
const DefaultCacheTTL = 10 * time.Minute

var ErrQueryTooShort = errors.New("query must be at least 2 characters")

// Suggestion is a destination the trip form can offer.
type Suggestion struct {
	Description string `json:"description"`
	PlaceID     string `json:"placeId"`
}

// PlacesService handles destination lookups against the Google Places API.
type PlacesService struct {
	client *maps.Client
	cache  *cache.Cache
}

// NewPlacesService creates a PlacesService with the given API key. Lookups are cached
// for ttl (DefaultCacheTTL when ttl <= 0); extra client options (e.g. maps.WithBaseURL)
// are passed through.
func NewPlacesService(apiKey string, ttl time.Duration, opts ...maps.ClientOption) (*PlacesService, error) {
	client, err := maps.NewClient(append([]maps.ClientOption{maps.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &PlacesService{
		client: client,
		cache:  cache.New(ttl, 2*ttl),
	}, nil
}

// Suggest returns up to MaxSuggestions city-level destinations matching query.
func (s *PlacesService) Suggest(ctx context.Context, query string) ([]Suggestion, error) {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < 2 {
		return nil, ErrQueryTooShort
	}

	key := strings.ToLower(query)
	if cached, ok := s.cache.Get(key); ok {
		return cached.([]Suggestion), nil
	}

	resp, err := s.client.PlaceAutocomplete(ctx, &maps.PlaceAutocompleteRequest{
		Input: query,
		Types: maps.AutocompletePlaceTypeCities,
	})
	if err != nil {
		return nil, fmt.Errorf("places api error: %w", err)
	}

	seen := make(map[string]bool)
	results := make([]Suggestion, 0, MaxSuggestions)
	for _, p := range resp.Predictions {
		if p.Description == "" || seen[p.PlaceID] {
			continue
		}
		seen[p.PlaceID] = true
		results = append(results, Suggestion{Description: p.Description, PlaceID: p.PlaceID})
		if len(results) >= MaxSuggestions {
			break
		}
	}

	s.cache.SetDefault(key, results)
	return results, nil
}
