package geo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const searchResponse = `[
	{
		"display_name": "Calle Mayor, Madrid, Spain",
		"lat": "40.4168",
		"lon": "-3.7038",
		"address": {
			"road": "Calle Mayor",
			"city": "Madrid",
			"postcode": "28013",
			"country": "Spain"
		}
	},
	{
		"display_name": "Plaza Mayor, Salamanca, Spain",
		"lat": "40.9650",
		"lon": "-5.6640",
		"address": {
			"road": "Plaza Mayor",
			"town": "Salamanca",
			"country": "Spain"
		}
	},
	{
		"display_name": "Broken row",
		"lat": "not-a-number",
		"lon": "0",
		"address": {}
	}
]`

func newSearchServer(t *testing.T, requests *atomic.Int64) *httptest.Server {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)

		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Equal(t, "1", r.URL.Query().Get("addressdetails"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(searchResponse))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestSearch_ParsesResults(t *testing.T) {
	var requests atomic.Int64
	server := newSearchServer(t, &requests)
	client := NewClient(server.URL, 100)

	places, err := client.Search(context.Background(), "calle mayor")

	require.NoError(t, err)
	require.Len(t, places, 2, "unparseable coordinates are skipped")

	assert.Equal(t, "Calle Mayor, Madrid, Spain", places[0].Label)
	assert.InDelta(t, 40.4168, places[0].Latitude, 0.0001)
	assert.InDelta(t, -3.7038, places[0].Longitude, 0.0001)
	assert.Equal(t, "Madrid", places[0].City)
	assert.Equal(t, "28013", places[0].Postcode)

	// town fills in when no city is present
	assert.Equal(t, "Salamanca", places[1].City)

	assert.Equal(t, int64(1), requests.Load())
}

func TestSearch_ShortQueryNeverReachesNetwork(t *testing.T) {
	var requests atomic.Int64
	server := newSearchServer(t, &requests)
	client := NewClient(server.URL, 100)

	for _, query := range []string{"", " ", "ab", "  ab  "} {
		_, err := client.Search(context.Background(), query)
		assert.ErrorIs(t, err, ErrQueryTooShort, "query %q", query)
	}

	assert.Equal(t, int64(0), requests.Load())
}

func TestSearch_ThreeCharacterQueryIsEnough(t *testing.T) {
	var requests atomic.Int64
	server := newSearchServer(t, &requests)
	client := NewClient(server.URL, 100)

	_, err := client.Search(context.Background(), "sol")

	require.NoError(t, err)
	assert.Equal(t, int64(1), requests.Load())
}

func TestSearch_UpstreamErrorSurfaced(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(server.URL, 100)

	_, err := client.Search(context.Background(), "calle mayor")

	assert.ErrorIs(t, err, ErrSearchFailed)
}

func TestSearch_CancelledContext(t *testing.T) {
	var requests atomic.Int64
	server := newSearchServer(t, &requests)
	client := NewClient(server.URL, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Search(ctx, "calle mayor")

	assert.Error(t, err)
	assert.Equal(t, int64(0), requests.Load())
}
