// Package catalog consumes the external doctor/procedure catalog. The
// clinic CMS owns this data; the core only reads it for display and to
// validate references on incoming bookings.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hsalameh/dental-clinic-platform/pkg/logging"
)

// OtherProcedureID is the sentinel meaning "other/unspecified"; it is
// always a valid procedure reference and never appears in the catalog.
const OtherProcedureID = "other"

// Doctor is a catalog entry used for display and reference validation.
type Doctor struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Specialty string `json:"specialty,omitempty"`
	ImageURL  string `json:"imageUrl,omitempty"`
}

// Procedure is a catalog entry for a bookable service.
type Procedure struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// ErrNotConfigured is returned when no catalog base URL is set.
var ErrNotConfigured = errors.New("catalog: base URL not configured")

const (
	doctorsCacheKey    = "catalog:doctors"
	proceduresCacheKey = "catalog:procedures"
)

// Client fetches catalog data over HTTP with a Redis cache in front, so
// a slow or briefly unavailable CMS does not stall the booking flow.
type Client struct {
	httpClient *http.Client
	baseURL    string
	cache      *redis.Client
	ttl        time.Duration
	logger     *logging.Logger
}

// NewClient creates a catalog client. cache may be nil to disable
// caching.
func NewClient(baseURL string, cache *redis.Client, ttl time.Duration, logger *logging.Logger) *Client {
	if logger == nil {
		logger = logging.Default()
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    baseURL,
		cache:      cache,
		ttl:        ttl,
		logger:     logger,
	}
}

// Doctors returns the doctor catalog.
func (c *Client) Doctors(ctx context.Context) ([]Doctor, error) {
	var doctors []Doctor
	if err := c.fetch(ctx, "/doctors", doctorsCacheKey, &doctors); err != nil {
		return nil, err
	}
	return doctors, nil
}

// Procedures returns the procedure catalog.
func (c *Client) Procedures(ctx context.Context) ([]Procedure, error) {
	var procedures []Procedure
	if err := c.fetch(ctx, "/procedures", proceduresCacheKey, &procedures); err != nil {
		return nil, err
	}
	return procedures, nil
}

// KnownDoctor reports whether id references a catalog doctor.
func (c *Client) KnownDoctor(ctx context.Context, id string) (bool, error) {
	doctors, err := c.Doctors(ctx)
	if err != nil {
		return false, err
	}
	for _, d := range doctors {
		if d.ID == id {
			return true, nil
		}
	}
	return false, nil
}

// KnownProcedure reports whether id references a catalog procedure or
// the "other" sentinel.
func (c *Client) KnownProcedure(ctx context.Context, id string) (bool, error) {
	if id == OtherProcedureID {
		return true, nil
	}
	procedures, err := c.Procedures(ctx)
	if err != nil {
		return false, err
	}
	for _, p := range procedures {
		if p.ID == id {
			return true, nil
		}
	}
	return false, nil
}

func (c *Client) fetch(ctx context.Context, path, cacheKey string, out any) error {
	if c.cache != nil {
		if data, err := c.cache.Get(ctx, cacheKey).Bytes(); err == nil {
			if err := json.Unmarshal(data, out); err == nil {
				return nil
			}
			// Corrupt cache entry; fall through to the origin.
		}
	}

	if c.baseURL == "" {
		return ErrNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("catalog: build request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("catalog: fetch %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("catalog: fetch %s: unexpected status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("catalog: decode %s: %w", path, err)
	}

	if c.cache != nil {
		if data, err := json.Marshal(out); err == nil {
			if err := c.cache.Set(ctx, cacheKey, data, c.ttl).Err(); err != nil {
				c.logger.Warn("catalog cache write failed", "key", cacheKey, "error", err)
			}
		}
	}
	return nil
}
