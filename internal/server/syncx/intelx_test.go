package syncx

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/credsec/internal/common"
	"github.com/dmitrijs2005/credsec/internal/logging"
)

func nopLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newTestClient(baseURL string, clk *fakeClock) *IntelxClient {
	limiter := NewIntervalLimiter(time.Second)
	limiter.clock = clk
	c := NewIntelxClient(IntelxConfig{
		BaseURL:     baseURL,
		APIKey:      "test-key",
		MaxResults:  100,
		SettleDelay: 2 * time.Second,
		MaxAttempts: 3,
	}, limiter, nopLogger())
	c.clock = clk
	return c
}

func TestIntelxClient_MissingKeyFailsBeforeNetwork(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, newFakeClock())
	c.cfg.APIKey = ""

	_, err := c.Search(context.Background(), "example.com", ModeDomain)
	assert.ErrorIs(t, err, common.ErrorConfiguration)
	assert.Equal(t, int32(0), requests.Load())
}

func TestIntelxClient_TwoPhaseSearch(t *testing.T) {
	var gotSearch searchRequest
	var gotKey, gotResultID string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-key")
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/intelligent/search":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotSearch))
			json.NewEncoder(w).Encode(searchResponse{Status: 0, ID: "job-1"})
		case r.Method == http.MethodGet && r.URL.Path == "/intelligent/search/result":
			gotResultID = r.URL.Query().Get("id")
			json.NewEncoder(w).Encode(resultResponse{
				Status: 0,
				Total:  2,
				Selectors: []selector{
					{Value: "a@example.com", Type: targetEmail},
					{Value: "b@example.com", Type: targetEmail},
				},
			})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	clk := newFakeClock()
	c := newTestClient(srv.URL, clk)

	lines, err := c.Search(context.Background(), "example.com", ModeDomain)
	require.NoError(t, err)

	assert.Equal(t, []string{"a@example.com", "b@example.com"}, lines)
	assert.Equal(t, "test-key", gotKey)
	assert.Equal(t, "job-1", gotResultID)
	assert.Equal(t, "example.com", gotSearch.Term)
	assert.Equal(t, targetDomain, gotSearch.Target)
	assert.Contains(t, clk.slept(), 2*time.Second, "settle delay before polling results")
}

func TestIntelxClient_EmailModeTarget(t *testing.T) {
	var gotSearch searchRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotSearch)
		json.NewEncoder(w).Encode(searchResponse{Status: 0})
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, newFakeClock())

	_, err := c.Search(context.Background(), "user@example.com", ModeEmail)
	require.NoError(t, err)
	assert.Equal(t, targetEmail, gotSearch.Target)
}

func TestIntelxClient_MissingJobIDIsEmptyResult(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		json.NewEncoder(w).Encode(searchResponse{Status: 0, ID: ""})
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, newFakeClock())

	lines, err := c.Search(context.Background(), "nothing", ModeDomain)
	require.NoError(t, err)
	assert.Empty(t, lines)
	assert.Equal(t, int32(1), requests.Load(), "no results poll without a job id")
}

func TestIntelxClient_RateLimitedRetriesWithoutConsumingBudget(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Two 429s exceed MaxAttempts if they counted against the budget.
		if requests.Add(1) <= 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		json.NewEncoder(w).Encode(searchResponse{Status: 0, ID: ""})
	}))
	defer srv.Close()

	clk := newFakeClock()
	c := newTestClient(srv.URL, clk)

	_, err := c.Search(context.Background(), "example.com", ModeDomain)
	require.NoError(t, err)
	assert.Equal(t, int32(3), requests.Load())
	assert.Contains(t, clk.slept(), 1*time.Second, "exponential backoff after 429")
}

func TestIntelxClient_ServerErrorExhaustsAttempts(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, newFakeClock())

	_, err := c.Search(context.Background(), "example.com", ModeDomain)
	assert.ErrorIs(t, err, common.ErrorExternalService)
	assert.Equal(t, int32(3), requests.Load())
}

func TestIntelxClient_NonZeroStatusIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(searchResponse{Status: 2, ID: "job-1"})
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, newFakeClock())

	_, err := c.Search(context.Background(), "example.com", ModeDomain)
	assert.ErrorIs(t, err, common.ErrorExternalService)
}
