// Package fetch implements the provider clients that pull observations from
// FRED, BLS, and ECOS. Each client normalizes its provider's wire format into
// plain observation records; merging, storage, and analytics never see
// provider-specific shapes.
//
// Clients honor one shared contract: Fetch returns no observation dated
// before the given resume point, and an empty result is not an error. Rate
// limiting and authentication live here, at the boundary, not in the core.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"macrocli/pkg/contracts/domain"
)

// Client fetches one indicator's observations from a data provider.
type Client interface {
	// Source returns the catalog source name the client serves.
	Source() string

	// Fetch returns the indicator's observations dated on or after since,
	// oldest first. A zero since requests the provider's default history.
	// The description is attached to every returned observation. An empty
	// result means the provider had nothing new, not a failure.
	Fetch(ctx context.Context, code, description string, since time.Time) ([]domain.Observation, error)
}

const (
	requestTimeout  = 30 * time.Second
	requestInterval = 500 * time.Millisecond

	// historyEpoch is the default start of history when a series has never
	// been collected.
	historyEpoch = "2000-01-01"

	// maxUnitLen bounds the unit text copied from provider series titles.
	maxUnitLen = 50
)

// restClient is the shared HTTP plumbing: one rate limiter and one timeout
// per provider client.
type restClient struct {
	http    *http.Client
	limiter *rate.Limiter
}

func newRESTClient() restClient {
	return restClient{
		http:    &http.Client{Timeout: requestTimeout},
		limiter: rate.NewLimiter(rate.Every(requestInterval), 1),
	}
}

func (c restClient) getJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	return c.doJSON(req, out)
}

func (c restClient) postJSON(ctx context.Context, url string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(string(body)))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.doJSON(req, out)
}

func (c restClient) doJSON(req *http.Request, out interface{}) error {
	if err := c.limiter.Wait(req.Context()); err != nil {
		return fmt.Errorf("rate limit wait interrupted: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("provider returned status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

// defaultSince substitutes the epoch default when no resume point is given.
func defaultSince(since time.Time) time.Time {
	if !since.IsZero() {
		return since
	}
	epoch, _ := time.Parse(domain.DateLayout, historyEpoch)
	return epoch
}
