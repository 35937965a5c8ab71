package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
)

// --- Exa API Configuration ---
const (
	exaAPIURL        = "https://api.exa.ai/search"
	searchTimeout    = 10 * time.Second
	searchCacheSize  = 256
	perQueryResults  = 4  // page size per search call
	resultQuota      = 10 // stop issuing queries once this many raw results accumulate
	maxSearchQueries = 6  // hard cap on calls per aggregation
	maxReturned      = 8  // unique results handed to the synthesizer
)

// Domains the search is pinned to; restaurant listings elsewhere are mostly noise.
var searchSourceAllowlist = []string{"zomato.com", "tripadvisor.com", "opentable.com", "yelp.com"}

// SearchResult is one transient hit from the web-search API. URL is the
// dedup key within a single aggregation; nothing here is persisted.
type SearchResult struct {
	URL   string `json:"url"`
	Title string `json:"title"`
	Text  string `json:"text"`
}

// Searcher is the seam over the web-search API.
type Searcher interface {
	Search(ctx context.Context, query string, numResults int) ([]SearchResult, error)
	Available() bool
}

// SearchOutcome is the aggregator's answer. A zero-result outcome with a nil
// error means "no matches"; "search unavailable" is reported as an error
// instead, so the two are never conflated.
type SearchOutcome struct {
	Results    []SearchResult `json:"results"`
	TotalFound int            `json:"total_found"` // unique count before truncation
	DebugInfo  string         `json:"debug_info"`
}

// --- Exa client ---

type exaPayload struct {
	Query         string           `json:"query"`
	Type          string           `json:"type"`
	UseAutoprompt bool             `json:"useAutoprompt"`
	NumResults    int              `json:"numResults"`
	Contents      exaContentsFlags `json:"contents"`
	IncludeOrigin []string         `json:"includeOrigin,omitempty"`
}

type exaContentsFlags struct {
	Text bool `json:"text"`
}

type exaResponse struct {
	Results []SearchResult `json:"results"`
}

// ExaClient calls the Exa search endpoint, with a small LRU in front so
// repeated queries within one process don't burn API calls.
type ExaClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
	cache   *lru.Cache[string, []SearchResult]
}

func NewExaClient(apiKey string) *ExaClient {
	cache, _ := lru.New[string, []SearchResult](searchCacheSize)
	return &ExaClient{
		apiKey:  apiKey,
		baseURL: exaAPIURL,
		client:  &http.Client{},
		cache:   cache,
	}
}

// NewExaClientWithBaseURL is used by tests to point at a fake server.
func NewExaClientWithBaseURL(apiKey, baseURL string) *ExaClient {
	c := NewExaClient(apiKey)
	c.baseURL = baseURL
	return c
}

func (e *ExaClient) Available() bool {
	return e.apiKey != ""
}

// Search performs one blocking search call. Results are cached per
// (query, numResults); cached entries are returned as fresh copies so
// callers can't mutate the cache.
func (e *ExaClient) Search(ctx context.Context, query string, numResults int) ([]SearchResult, error) {
	if e.apiKey == "" {
		return nil, fmt.Errorf("exa: %w", ErrNoAPIKey)
	}

	cacheKey := fmt.Sprintf("%d|%s", numResults, query)
	if cached, ok := e.cache.Get(cacheKey); ok {
		out := make([]SearchResult, len(cached))
		copy(out, cached)
		return out, nil
	}

	payload := exaPayload{
		Query:         query,
		Type:          "keyword",
		UseAutoprompt: true,
		NumResults:    numResults,
		Contents:      exaContentsFlags{Text: true},
		IncludeOrigin: searchSourceAllowlist,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search payload: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, searchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, e.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create search request: %w", err)
	}
	req.Header.Set("X-API-Key", e.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, fmt.Errorf("exa status %d (%s): %w", resp.StatusCode, string(detail), ErrBadResponse)
	}

	var decoded exaResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", ErrUnparsable)
	}

	e.cache.Add(cacheKey, decoded.Results)
	return decoded.Results, nil
}

// --- Aggregation ---

// aggregateSearch fans the composed queries out to the search API, one
// sequential call per query. It stops early once the raw accumulation hits
// the quota (latency over exhaustiveness), skips individual query failures,
// then dedups by URL keeping first-seen order and truncates to maxReturned.
//
// The returned error is terminal unavailability (missing credentials, or a
// context cancellation); everything else degrades to an outcome.
func aggregateSearch(ctx context.Context, searcher Searcher, queries []string, logger zerolog.Logger) (*SearchOutcome, error) {
	if !searcher.Available() {
		return nil, fmt.Errorf("restaurant search: %w", ErrNoAPIKey)
	}
	if len(queries) > maxSearchQueries {
		queries = queries[:maxSearchQueries]
	}

	var (
		raw        []SearchResult
		successful int
	)
	for i, query := range queries {
		results, err := searcher.Search(ctx, query, perQueryResults)
		if err != nil {
			if errors.Is(err, ErrNoAPIKey) || ctx.Err() != nil {
				return nil, err
			}
			logger.Warn().Err(err).Int("query_index", i+1).Str("query", query).Msg("search query failed, continuing")
			continue
		}
		successful++
		raw = append(raw, results...)
		logger.Info().Int("query_index", i+1).Str("query", query).Int("results", len(results)).Msg("search query succeeded")

		if len(raw) >= resultQuota {
			logger.Info().Int("accumulated", len(raw)).Msg("result quota reached, stopping search")
			break
		}
	}

	// Dedup by URL, first-seen wins.
	seen := make(map[string]bool, len(raw))
	unique := make([]SearchResult, 0, len(raw))
	for _, r := range raw {
		if r.URL == "" || seen[r.URL] {
			continue
		}
		seen[r.URL] = true
		unique = append(unique, r)
	}

	if len(unique) == 0 {
		return &SearchOutcome{
			Results:    []SearchResult{},
			TotalFound: 0,
			DebugInfo:  fmt.Sprintf("Tried %d search queries, %d successful API calls, but got 0 unique results", len(queries), successful),
		}, nil
	}

	totalFound := len(unique)
	if len(unique) > maxReturned {
		unique = unique[:maxReturned]
	}

	return &SearchOutcome{
		Results:    unique,
		TotalFound: totalFound,
		DebugInfo:  fmt.Sprintf("Successfully found %d restaurants using %d successful queries", totalFound, successful),
	}, nil
}
