// Package insightsclient is the typed HTTP client for the trace insights
// API. Responses are cached for a staleness window so dashboards re-rendering
// the same query do not hammer the server; concurrent identical requests
// share one fetch.
package insightsclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

const basePath = "/api/v1/traces/insights"

// ErrDisabled is returned when a query names no experiments. Such requests
// are never issued; callers treat the feature as off rather than failed.
var ErrDisabled = errors.New("insights disabled: no experiment ids")

// HTTPError is a non-2xx response from the insights API.
type HTTPError struct {
	StatusCode int
	Status     string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("insights api returned %s", e.Status)
}

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	cache      *Cache

	mu       sync.Mutex
	inflight map[string]*inflightCall
}

type inflightCall struct {
	done chan struct{}
	data []byte
	err  error
}

type Option func(*Client)

// WithToken sets the access token sent as a bearer credential.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient replaces the underlying transport, mainly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithCache enables response caching with the given staleness window.
func WithCache(cache *Cache) Option {
	return func(c *Client) { c.cache = cache }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		inflight:   make(map[string]*inflightCall),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) TrafficVolume(ctx context.Context, q Query) (*TrafficVolumeResponse, error) {
	out := &TrafficVolumeResponse{}
	if err := c.post(ctx, "/traffic/volume", q, q.body(), out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) TrafficLatency(ctx context.Context, q Query) (*TrafficLatencyResponse, error) {
	out := &TrafficLatencyResponse{}
	if err := c.post(ctx, "/traffic/latency", q, q.body(), out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) TrafficErrors(ctx context.Context, q Query) (*TrafficErrorsResponse, error) {
	out := &TrafficErrorsResponse{}
	if err := c.post(ctx, "/traffic/errors", q, q.body(), out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) TokenUsage(ctx context.Context, q Query) (*TokenUsageResponse, error) {
	out := &TokenUsageResponse{}
	if err := c.post(ctx, "/tokens/usage", q, q.body(), out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) AssessmentsDiscovery(ctx context.Context, q Query) (*AssessmentDiscoveryResponse, error) {
	out := &AssessmentDiscoveryResponse{}
	if err := c.post(ctx, "/assessments/discovery", q, q.body(), out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) AssessmentMetrics(ctx context.Context, q Query, assessmentName string) (*AssessmentMetricsResponse, error) {
	body := assessmentBody{baseBody: q.body(), AssessmentName: assessmentName}
	out := &AssessmentMetricsResponse{}
	if err := c.post(ctx, "/assessments/metrics", q, body, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ToolsDiscovery(ctx context.Context, q Query) (*ToolDiscoveryResponse, error) {
	out := &ToolDiscoveryResponse{}
	if err := c.post(ctx, "/tools/discovery", q, q.body(), out); err != nil {
		return nil, err
	}
	return out, nil
}

// ToolMetrics fetches one tool's detail; an empty toolName asks for the
// aggregate across all tools.
func (c *Client) ToolMetrics(ctx context.Context, q Query, toolName string) (*ToolMetricsResponse, error) {
	body := toolBody{baseBody: q.body(), ToolName: toolName}
	out := &ToolMetricsResponse{}
	if err := c.post(ctx, "/tools/metrics", q, body, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) TagsDiscovery(ctx context.Context, q Query) (*TagDiscoveryResponse, error) {
	out := &TagDiscoveryResponse{}
	if err := c.post(ctx, "/tags/discovery", q, q.body(), out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) TagValues(ctx context.Context, q Query, tagKey string, maxValues int) (*TagValuesResponse, error) {
	body := tagBody{baseBody: q.body(), TagKey: tagKey, MaxValues: maxValues}
	out := &TagValuesResponse{}
	if err := c.post(ctx, "/tags/values", q, body, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) TagMetrics(ctx context.Context, q Query, tagKey string, maxValues int) (*TagMetricsResponse, error) {
	body := tagBody{baseBody: q.body(), TagKey: tagKey, MaxValues: maxValues}
	out := &TagMetricsResponse{}
	if err := c.post(ctx, "/tags/metrics", q, body, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) DimensionsDiscovery(ctx context.Context, q Query) (*DimensionDiscoveryResponse, error) {
	out := &DimensionDiscoveryResponse{}
	if err := c.post(ctx, "/dimensions/discovery", q, q.body(), out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) DimensionNPMI(ctx context.Context, q Query, filter1, filter2 DimensionFilter) (*NPMIResponse, error) {
	body := npmiBody{baseBody: q.body(), Filter1: filter1, Filter2: filter2}
	out := &NPMIResponse{}
	if err := c.post(ctx, "/dimensions/npmi", q, body, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Correlations(ctx context.Context, q Query, filters []string, maxResults int) (*CorrelationsResponse, error) {
	body := correlationsBody{baseBody: q.body(), Filters: filters, MaxResults: maxResults}
	out := &CorrelationsResponse{}
	if err := c.post(ctx, "/correlations", q, body, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) post(ctx context.Context, endpoint string, q Query, body any, out any) error {
	if len(q.ExperimentIDs) == 0 {
		return ErrDisabled
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	key := endpoint + "\n" + string(payload)
	if c.cache != nil {
		if data, ok := c.cache.Get(key); ok {
			return json.Unmarshal(data, out)
		}
	}

	data, err := c.fetchShared(ctx, key, endpoint, payload)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

// fetchShared deduplicates concurrent identical requests: the first caller
// issues the HTTP request, later ones wait for its result.
func (c *Client) fetchShared(ctx context.Context, key, endpoint string, payload []byte) ([]byte, error) {
	c.mu.Lock()
	if call, ok := c.inflight[key]; ok {
		c.mu.Unlock()
		select {
		case <-call.done:
			return call.data, call.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	call := &inflightCall{done: make(chan struct{})}
	c.inflight[key] = call
	c.mu.Unlock()

	call.data, call.err = c.fetch(ctx, endpoint, payload)
	if call.err == nil && c.cache != nil {
		if err := c.cache.Set(key, call.data); err != nil {
			call.err = fmt.Errorf("cache response: %w", err)
		}
	}

	c.mu.Lock()
	delete(c.inflight, key)
	c.mu.Unlock()
	close(call.done)
	return call.data, call.err
}

func (c *Client) fetch(ctx context.Context, endpoint string, payload []byte) ([]byte, error) {
	url := c.baseURL + basePath + endpoint
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return nil, &HTTPError{StatusCode: resp.StatusCode, Status: resp.Status}
	}
	return io.ReadAll(resp.Body)
}
