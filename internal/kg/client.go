// Package kg provides the knowledge graph API client. It talks to a Kestrel
// instance over REST: bulk curie canonicalization plus the text and hybrid
// search endpoints the annotators use. Every call is rate limited, wrapped in
// a circuit breaker, and (optionally) served through the read-through lookup
// cache.
package kg

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"golang.org/x/time/rate"

	"github.com/kgfoundry/biomapper/internal/httpcache"
	"github.com/kgfoundry/biomapper/pkg/types"
)

// SourceSlug identifies the Kestrel KG API in errors, provenance, and cache
// keys.
const SourceSlug = "kestrel"

// SearchHit is one scored node match from a search endpoint.
type SearchHit struct {
	// ID is the node's curie-form identifier in the KG.
	ID string `json:"id"`

	// Score is the endpoint-specific relevance score.
	Score float64 `json:"score"`
}

// Config holds Kestrel client configuration.
type Config struct {
	// BaseURL is the API root, e.g. https://kestrel.nathanpricelab.com/api.
	BaseURL string

	// APIKey is sent as the X-API-Key header on every request.
	APIKey string

	// Timeout is the per-request timeout (default: 30s).
	Timeout time.Duration

	// RequestsPerSec caps outbound request rate (default: 10).
	RequestsPerSec float64

	// Burst is the rate limiter burst size (default: 5).
	Burst int

	// Breaker tunes the circuit breaker; zero fields take the defaults
	// documented on BreakerConfig.
	Breaker BreakerConfig

	// Cache, when non-nil, serves repeated identical lookups without a
	// remote call.
	Cache *httpcache.Cache
}

// Client is the Kestrel KG API client.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
	breaker *Breaker
	limiter *rate.Limiter
	timeout time.Duration
	cache   *httpcache.Cache
}

// NewClient creates a Kestrel client with the given configuration, applying
// defaults for unset fields.
func NewClient(config Config) *Client {
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.RequestsPerSec == 0 {
		config.RequestsPerSec = 10
	}
	if config.Burst == 0 {
		config.Burst = 5
	}

	return &Client{
		baseURL: config.BaseURL,
		apiKey:  config.APIKey,
		client:  &http.Client{Timeout: config.Timeout},
		breaker: NewBreaker("kestrel", config.Breaker),
		limiter: rate.NewLimiter(rate.Limit(config.RequestsPerSec), config.Burst),
		timeout: config.Timeout,
		cache:   config.Cache,
	}
}

// Canonicalize resolves curies to their canonical KG node ids in one bulk
// request. The result maps each recognized curie to zero or more node ids;
// curies unknown to the KG are simply absent. An empty input returns an empty
// map without a remote call.
func (c *Client) Canonicalize(ctx context.Context, curies []string) (map[string][]string, error) {
	if len(curies) == 0 {
		return map[string][]string{}, nil
	}

	// Sort for a stable payload so identical curie sets share a cache key.
	sorted := make([]string, len(curies))
	copy(sorted, curies)
	sort.Strings(sorted)

	body, err := c.post(ctx, "canonicalize", map[string]any{"curies": sorted})
	if err != nil {
		return nil, err
	}

	// The endpoint returns curie -> node id; newer deployments may return
	// curie -> [node ids] when the KG declares multiple equivalents.
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, types.NewRemoteSourceError(SourceSlug, "canonicalize", fmt.Errorf("malformed response: %w", err))
	}

	results := make(map[string][]string, len(raw))
	for curie, value := range raw {
		switch v := value.(type) {
		case string:
			if v != "" {
				results[curie] = []string{v}
			}
		case []any:
			for _, item := range v {
				if s, ok := item.(string); ok && s != "" {
					results[curie] = append(results[curie], s)
				}
			}
		case nil:
			// Curie known but unmapped; treat as no candidates.
		default:
			return nil, types.NewRemoteSourceError(SourceSlug, "canonicalize",
				fmt.Errorf("unexpected value type %T for curie %q", value, curie))
		}
	}
	return results, nil
}

// TextSearch runs a free-text node search and returns scored hits, best
// first.
func (c *Client) TextSearch(ctx context.Context, term string, limit int) ([]SearchHit, error) {
	body, err := c.post(ctx, "text-search", map[string]any{"search_term": term, "limit": limit})
	if err != nil {
		return nil, err
	}

	var hits []SearchHit
	if err := json.Unmarshal(body, &hits); err != nil {
		return nil, types.NewRemoteSourceError(SourceSlug, "text-search", fmt.Errorf("malformed response: %w", err))
	}
	return hits, nil
}

// HybridSearch runs the combined text/vector search for a batch of terms,
// optionally filtered to a Biolink category and a set of curie prefixes. The
// result maps each input term to its scored hits.
func (c *Client) HybridSearch(ctx context.Context, terms []string, category string, prefixes []string, limit int) (map[string][]SearchHit, error) {
	if len(terms) == 0 {
		return map[string][]SearchHit{}, nil
	}

	// Sort the search text for consistent cache keys across batches.
	sorted := make([]string, len(terms))
	copy(sorted, terms)
	sort.Strings(sorted)

	payload := map[string]any{
		"search_text":     sorted,
		"limit":           limit,
		"category_filter": category,
		"prefix_filter":   prefixes,
	}
	body, err := c.post(ctx, "hybrid-search", payload)
	if err != nil {
		return nil, err
	}

	var results map[string][]SearchHit
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, types.NewRemoteSourceError(SourceSlug, "hybrid-search", fmt.Errorf("malformed response: %w", err))
	}
	return results, nil
}

// post issues one JSON POST through the rate limiter, cache, and circuit
// breaker, returning the raw response body.
func (c *Client) post(ctx context.Context, endpoint string, payload any) ([]byte, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, types.NewRemoteSourceError(SourceSlug, endpoint, fmt.Errorf("failed to marshal request: %w", err))
	}

	fetch := func() ([]byte, error) {
		return c.breaker.Execute(ctx, func() ([]byte, error) {
			return c.doPost(ctx, endpoint, jsonData)
		})
	}

	var body []byte
	if c.cache != nil {
		sum := sha256.Sum256(jsonData)
		key := endpoint + ":" + hex.EncodeToString(sum[:])
		body, err = c.cache.Do(SourceSlug, key, fetch)
	} else {
		body, err = fetch()
	}
	if err != nil {
		return nil, types.NewRemoteSourceError(SourceSlug, endpoint, err)
	}
	return body, nil
}

// doPost is the bare HTTP call without breaker or cache wrapping.
func (c *Client) doPost(ctx context.Context, endpoint string, jsonData []byte) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/"+endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("kestrel returned status %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}
