package insightsclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"tracelens/pkg/timerange"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func newTestClient(rt roundTripFunc) *http.Client {
	return &http.Client{Transport: rt}
}

func jsonResponse(t *testing.T, status int, payload any) *http.Response {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Body:       io.NopCloser(bytes.NewReader(data)),
		Header:     make(http.Header),
	}
}

func testQuery() Query {
	start := time.Date(2025, 8, 19, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 8, 20, 0, 0, 0, 0, time.UTC)
	return Query{
		ExperimentIDs: []string{"exp-1"},
		Range:         timerange.Range{Start: &start, End: end},
	}
}

func TestNoExperimentsReturnsErrDisabled(t *testing.T) {
	client := NewClient("https://example.com", WithHTTPClient(newTestClient(
		func(req *http.Request) (*http.Response, error) {
			t.Fatal("request must not be issued")
			return nil, nil
		})))

	q := testQuery()
	q.ExperimentIDs = nil
	if _, err := client.TrafficVolume(context.Background(), q); !errors.Is(err, ErrDisabled) {
		t.Fatalf("expected ErrDisabled, got %v", err)
	}
}

func TestRangeAndBucketInjection(t *testing.T) {
	var got baseBody
	client := NewClient("https://example.com", WithHTTPClient(newTestClient(
		func(req *http.Request) (*http.Response, error) {
			if req.URL.Path != "/api/v1/traces/insights/traffic/volume" {
				t.Fatalf("unexpected path: %s", req.URL.Path)
			}
			if err := json.NewDecoder(req.Body).Decode(&got); err != nil {
				t.Fatalf("decode request: %v", err)
			}
			return jsonResponse(t, http.StatusOK, TrafficVolumeResponse{}), nil
		})))

	q := testQuery()
	if _, err := client.TrafficVolume(context.Background(), q); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.StartTime == nil || *got.StartTime != q.Range.Start.UnixMilli() {
		t.Fatalf("start_time not injected: %+v", got)
	}
	if got.EndTime == nil || *got.EndTime != q.Range.End.UnixMilli() {
		t.Fatalf("end_time not injected: %+v", got)
	}
	// 24h span picks the hour bucket.
	if got.TimeBucket != "hour" {
		t.Fatalf("time_bucket = %q, want hour", got.TimeBucket)
	}
}

func TestExplicitBucketWins(t *testing.T) {
	var got baseBody
	client := NewClient("https://example.com", WithHTTPClient(newTestClient(
		func(req *http.Request) (*http.Response, error) {
			if err := json.NewDecoder(req.Body).Decode(&got); err != nil {
				t.Fatalf("decode request: %v", err)
			}
			return jsonResponse(t, http.StatusOK, TrafficVolumeResponse{}), nil
		})))

	q := testQuery()
	q.Bucket = timerange.BucketWeek
	if _, err := client.TrafficVolume(context.Background(), q); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.TimeBucket != "week" {
		t.Fatalf("time_bucket = %q, want week", got.TimeBucket)
	}
}

func TestNon2xxReturnsHTTPError(t *testing.T) {
	client := NewClient("https://example.com", WithHTTPClient(newTestClient(
		func(req *http.Request) (*http.Response, error) {
			return &http.Response{
				StatusCode: http.StatusBadGateway,
				Status:     "502 Bad Gateway",
				Body:       io.NopCloser(bytes.NewReader(nil)),
				Header:     make(http.Header),
			}, nil
		})))

	_, err := client.TrafficLatency(context.Background(), testQuery())
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected *HTTPError, got %v", err)
	}
	if httpErr.StatusCode != http.StatusBadGateway {
		t.Fatalf("StatusCode = %d", httpErr.StatusCode)
	}
}

func TestCacheSuppressesRepeatRequests(t *testing.T) {
	cache, err := NewCache(time.Minute)
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	defer cache.Close()

	hits := 0
	client := NewClient("https://example.com", WithCache(cache), WithHTTPClient(newTestClient(
		func(req *http.Request) (*http.Response, error) {
			hits++
			return jsonResponse(t, http.StatusOK, TrafficErrorsResponse{
				Summary: ErrorSummary{TotalCount: 10, ErrorCount: 2, ErrorRate: 0.2},
			}), nil
		})))

	ctx := context.Background()
	first, err := client.TrafficErrors(ctx, testQuery())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hits != 1 {
		t.Fatalf("expected one upstream request, got %d", hits)
	}

	second, err := client.TrafficErrors(ctx, testQuery())
	if err != nil {
		t.Fatalf("unexpected cached error: %v", err)
	}
	if hits != 1 {
		t.Fatalf("cache miss triggered network call; hits=%d", hits)
	}
	if second.Summary != first.Summary {
		t.Fatalf("cached summary differs: %+v vs %+v", second.Summary, first.Summary)
	}
}

func TestCacheKeyedByBody(t *testing.T) {
	cache, err := NewCache(time.Minute)
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	defer cache.Close()

	hits := 0
	client := NewClient("https://example.com", WithCache(cache), WithHTTPClient(newTestClient(
		func(req *http.Request) (*http.Response, error) {
			hits++
			return jsonResponse(t, http.StatusOK, TrafficVolumeResponse{}), nil
		})))

	ctx := context.Background()
	if _, err := client.TrafficVolume(ctx, testQuery()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	other := testQuery()
	other.ExperimentIDs = []string{"exp-2"}
	if _, err := client.TrafficVolume(ctx, other); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hits != 2 {
		t.Fatalf("distinct bodies must not share a cache entry; hits=%d", hits)
	}
}

func TestErrorsAreNotCached(t *testing.T) {
	cache, err := NewCache(time.Minute)
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	defer cache.Close()

	hits := 0
	client := NewClient("https://example.com", WithCache(cache), WithHTTPClient(newTestClient(
		func(req *http.Request) (*http.Response, error) {
			hits++
			if hits == 1 {
				return &http.Response{
					StatusCode: http.StatusInternalServerError,
					Status:     "500 Internal Server Error",
					Body:       io.NopCloser(bytes.NewReader(nil)),
					Header:     make(http.Header),
				}, nil
			}
			return jsonResponse(t, http.StatusOK, TrafficVolumeResponse{}), nil
		})))

	ctx := context.Background()
	if _, err := client.TrafficVolume(ctx, testQuery()); err == nil {
		t.Fatal("expected error on first call")
	}
	if _, err := client.TrafficVolume(ctx, testQuery()); err != nil {
		t.Fatalf("second call should retry and succeed: %v", err)
	}
	if hits != 2 {
		t.Fatalf("expected 2 upstream requests, got %d", hits)
	}
}

func TestBearerTokenHeader(t *testing.T) {
	client := NewClient("https://example.com", WithToken("sk-test"), WithHTTPClient(newTestClient(
		func(req *http.Request) (*http.Response, error) {
			if got := req.Header.Get("Authorization"); got != "Bearer sk-test" {
				t.Fatalf("Authorization = %q", got)
			}
			return jsonResponse(t, http.StatusOK, TrafficVolumeResponse{}), nil
		})))

	if _, err := client.TrafficVolume(context.Background(), testQuery()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
