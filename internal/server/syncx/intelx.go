package syncx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/dmitrijs2005/credsec/internal/common"
	"github.com/dmitrijs2005/credsec/internal/logging"
)

// Selector target kinds understood by the search endpoint.
const (
	targetEmail  = 1
	targetDomain = 2
)

// IntelxConfig configures the intelx API client.
type IntelxConfig struct {
	BaseURL    string
	APIKey     string
	MaxResults int
	// SettleDelay is how long a submitted search job is given before the
	// first results poll.
	SettleDelay time.Duration
	MaxAttempts int
}

// IntelxClient talks to the intelx two-phase search API: submit a search,
// wait for the job to settle, then fetch its results. Every outbound request
// goes through the shared interval limiter and the retry loop.
type IntelxClient struct {
	cfg     IntelxConfig
	http    *http.Client
	limiter *IntervalLimiter
	clock   Clock
	logger  logging.Logger
}

func NewIntelxClient(cfg IntelxConfig, limiter *IntervalLimiter, logger logging.Logger) *IntelxClient {
	return &IntelxClient{
		cfg:     cfg,
		http:    &http.Client{Timeout: 30 * time.Second},
		limiter: limiter,
		clock:   systemClock{},
		logger:  logger,
	}
}

type searchRequest struct {
	Term       string `json:"term"`
	MaxResults int    `json:"maxresults"`
	Media      int    `json:"media"`
	Target     int    `json:"target"`
}

type searchResponse struct {
	Status int    `json:"status"`
	ID     string `json:"id"`
}

type selector struct {
	Value string `json:"selectorvalue"`
	Type  int    `json:"selectortype"`
}

type resultResponse struct {
	Status    int        `json:"status"`
	Selectors []selector `json:"selectors"`
	Total     int        `json:"total"`
}

// Search runs the two-phase retrieval for one term and returns the raw
// result lines. A submission that yields no job id means the term matched
// nothing and returns an empty set, not an error.
func (c *IntelxClient) Search(ctx context.Context, term string, mode Mode) ([]string, error) {
	if c.cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: intelx api key is not set", common.ErrorConfiguration)
	}

	target := targetDomain
	if mode == ModeEmail {
		target = targetEmail
	}

	body, err := json.Marshal(searchRequest{
		Term:       term,
		MaxResults: c.cfg.MaxResults,
		Media:      0,
		Target:     target,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding search request: %w", err)
	}

	var submitted searchResponse
	err = c.do(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/intelligent/search", bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	}, &submitted)
	if err != nil {
		return nil, err
	}
	if submitted.Status != 0 {
		return nil, fmt.Errorf("%w: search submission status %d", common.ErrorExternalService, submitted.Status)
	}
	if submitted.ID == "" {
		c.logger.Debug(ctx, "search yielded no job id", "term", term)
		return nil, nil
	}

	c.clock.Sleep(c.cfg.SettleDelay)

	query := url.Values{}
	query.Set("id", submitted.ID)
	query.Set("limit", strconv.Itoa(c.cfg.MaxResults))

	var results resultResponse
	err = c.do(ctx, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/intelligent/search/result?"+query.Encode(), nil)
	}, &results)
	if err != nil {
		return nil, err
	}
	if results.Status != 0 {
		return nil, fmt.Errorf("%w: result fetch status %d", common.ErrorExternalService, results.Status)
	}

	lines := make([]string, 0, len(results.Selectors))
	for _, s := range results.Selectors {
		lines = append(lines, s.Value)
	}
	return lines, nil
}

// do issues one logical request with rate limiting and retries. HTTP 429
// backs off without consuming the attempt budget; any other failure consumes
// an attempt with the same exponential backoff. Exhausting the budget
// surfaces ErrorExternalService.
func (c *IntelxClient) do(ctx context.Context, build func() (*http.Request, error), out any) error {
	attempt := 0
	for {
		c.limiter.Wait()

		req, err := build()
		if err != nil {
			return fmt.Errorf("building request: %w", err)
		}
		req.Header.Set("x-key", c.cfg.APIKey)

		resp, reqErr := c.http.Do(req)
		if reqErr == nil {
			if resp.StatusCode == http.StatusTooManyRequests {
				io.Copy(io.Discard, resp.Body)
				resp.Body.Close()
				c.logger.Warn(ctx, "rate limited by intelx", "backoff", backoff(attempt))
				c.clock.Sleep(backoff(attempt))
				continue
			}
			if resp.StatusCode == http.StatusOK {
				body, err := io.ReadAll(resp.Body)
				resp.Body.Close()
				if err != nil {
					reqErr = err
				} else if err := json.Unmarshal(body, out); err != nil {
					reqErr = fmt.Errorf("decoding response: %w", err)
				} else {
					return nil
				}
			} else {
				io.Copy(io.Discard, resp.Body)
				resp.Body.Close()
				reqErr = fmt.Errorf("unexpected status %d", resp.StatusCode)
			}
		}

		attempt++
		if attempt >= c.cfg.MaxAttempts {
			return fmt.Errorf("%w: %d attempts failed: %v", common.ErrorExternalService, attempt, reqErr)
		}
		c.logger.Warn(ctx, "request failed, retrying", "attempt", attempt, "error", reqErr)
		c.clock.Sleep(backoff(attempt))
	}
}

func backoff(attempt int) time.Duration {
	return time.Duration(1<<attempt) * time.Second
}
