package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hextras/hextras-api/internal/constants"
	"golang.org/x/time/rate"
)

var (
	// ErrQueryTooShort is returned before any network call when the query
	// has fewer than the minimum number of characters.
	ErrQueryTooShort = errors.New("search query too short")
	ErrSearchFailed  = errors.New("address search failed")
)

// Place is one candidate address returned by the search service.
type Place struct {
	Label     string  `json:"label"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Road      string  `json:"road,omitempty"`
	City      string  `json:"city,omitempty"`
	Postcode  string  `json:"postcode,omitempty"`
	Country   string  `json:"country,omitempty"`
}

// Client searches a Nominatim-compatible endpoint for addresses. Outbound
// requests are rate limited; the public endpoint allows one per second.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a geocoding client. rps bounds outbound requests per
// second; values below 1 fall back to 1.
func NewClient(baseURL string, rps int) *Client {
	if rps < 1 {
		rps = 1
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
}

type nominatimResult struct {
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	Address     struct {
		Road     string `json:"road"`
		City     string `json:"city"`
		Town     string `json:"town"`
		Village  string `json:"village"`
		Postcode string `json:"postcode"`
		Country  string `json:"country"`
	} `json:"address"`
}

// Search returns ranked candidate addresses for a free-text query.
// Queries shorter than the minimum never reach the network.
func (c *Client) Search(ctx context.Context, query string) ([]Place, error) {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < constants.MinSearchQueryLength {
		return nil, ErrQueryTooShort
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("addressdetails", "1")
	params.Set("limit", strconv.Itoa(constants.GeocoderMaxResults))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build search request: %w", err)
	}
	req.Header.Set("User-Agent", "hextras-api")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrSearchFailed, resp.StatusCode)
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}

	places := make([]Place, 0, len(results))
	for _, r := range results {
		lat, latErr := strconv.ParseFloat(r.Lat, 64)
		lon, lonErr := strconv.ParseFloat(r.Lon, 64)
		if latErr != nil || lonErr != nil {
			continue
		}

		city := r.Address.City
		if city == "" {
			city = r.Address.Town
		}
		if city == "" {
			city = r.Address.Village
		}

		places = append(places, Place{
			Label:     r.DisplayName,
			Latitude:  lat,
			Longitude: lon,
			Road:      r.Address.Road,
			City:      city,
			Postcode:  r.Address.Postcode,
			Country:   r.Address.Country,
		})
	}

	return places, nil
}
