package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"videoSeek/core"
	"videoSeek/storage"
)

type stubSource struct {
	fetchCalls int
	fetchErr   error
}

func (s *stubSource) FetchSubtitle(ctx context.Context, youtubeURL string) ([]core.SubtitleCue, error) {
	s.fetchCalls++
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	return []core.SubtitleCue{
		{Start: 0, End: 2, Text: "welcome to the"},
		{Start: 2, End: 4, Text: "video about testing."},
		{Start: 4, End: 6, Text: "let's begin!"},
	}, nil
}

func (s *stubSource) FetchMetadata(ctx context.Context, youtubeURL string) (string, string, error) {
	return "Test Video", "A video about testing.", nil
}

func (s *stubSource) CacheSRT(videoID string, segments []core.Segment) error { return nil }

type stubExpander struct{ keywords []string }

func (e *stubExpander) Expand(ctx context.Context, meta core.VideoMeta, query string) ([]string, error) {
	return e.keywords, nil
}

type stubRetriever struct{ candidates []core.Candidate }

func (r *stubRetriever) Retrieve(ctx context.Context, videoID, primary string, expansions []string) ([]core.Candidate, error) {
	return r.candidates, nil
}

type stubRanker struct{ ranked []core.RankedTimestamp }

func (r *stubRanker) Rank(ctx context.Context, meta core.VideoMeta, query string, candidates []core.Candidate) ([]core.RankedTimestamp, error) {
	return r.ranked, nil
}

func newTestService(source SubtitleSource) *Service {
	return NewService(
		storage.NewMemoryVectorStore(),
		source,
		&stubExpander{keywords: []string{"kw"}},
		&stubRetriever{candidates: []core.Candidate{{Timestamp: "00:00:02", Text: "video about testing."}}},
		&stubRanker{ranked: []core.RankedTimestamp{{Timestamp: "00:00:02", Reason: "testing is discussed"}}},
		zerolog.Nop(),
	)
}

const testURL = "https://www.youtube.com/watch?v=testvid"

func TestIngest_TwiceReturnsAlreadyExists(t *testing.T) {
	source := &stubSource{}
	svc := newTestService(source)
	ctx := context.Background()

	outcome, err := svc.Ingest(ctx, testURL)
	if err != nil || outcome != IngestSuccess {
		t.Fatalf("first ingest: outcome=%v err=%v", outcome, err)
	}
	outcome, err = svc.Ingest(ctx, testURL)
	if err != nil || outcome != IngestAlreadyExists {
		t.Fatalf("second ingest: outcome=%v err=%v", outcome, err)
	}
	if source.fetchCalls != 1 {
		t.Errorf("expected exactly one subtitle fetch, got %d", source.fetchCalls)
	}
}

func TestIngest_InvalidURL(t *testing.T) {
	svc := newTestService(&stubSource{})

	outcome, err := svc.Ingest(context.Background(), "https://vimeo.com/123")
	if outcome != IngestError {
		t.Fatalf("expected IngestError, got %v", outcome)
	}
	if !errors.Is(err, core.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestIngest_FetchFailureReleasesInflight(t *testing.T) {
	source := &stubSource{fetchErr: fmt.Errorf("%w: transcript unavailable", core.ErrUpstream)}
	svc := newTestService(source)
	ctx := context.Background()

	outcome, _ := svc.Ingest(ctx, testURL)
	if outcome != IngestFetchFailed {
		t.Fatalf("expected IngestFetchFailed, got %v", outcome)
	}
	// A retry must reach the fetch step again, not bounce off a leaked
	// in-flight claim.
	outcome, _ = svc.Ingest(ctx, testURL)
	if outcome != IngestFetchFailed {
		t.Fatalf("retry after failure: expected IngestFetchFailed, got %v", outcome)
	}
	if source.fetchCalls != 2 {
		t.Errorf("expected 2 fetch attempts, got %d", source.fetchCalls)
	}
}

type flakyStore struct {
	storage.VectorStore
	upsertFailures int
}

func (s *flakyStore) UpsertSegments(ctx context.Context, videoID string, segments []core.Segment) (int, error) {
	if s.upsertFailures > 0 {
		s.upsertFailures--
		return 0, fmt.Errorf("%w: embedding API: connection reset", core.ErrUpstream)
	}
	return s.VectorStore.UpsertSegments(ctx, videoID, segments)
}

func TestIngest_UpsertFailureAllowsRetry(t *testing.T) {
	source := &stubSource{}
	store := &flakyStore{VectorStore: storage.NewMemoryVectorStore(), upsertFailures: 1}
	svc := NewService(store, source, &stubExpander{}, &stubRetriever{}, &stubRanker{}, zerolog.Nop())
	ctx := context.Background()

	outcome, err := svc.Ingest(ctx, testURL)
	if outcome != IngestError {
		t.Fatalf("first ingest: outcome=%v err=%v", outcome, err)
	}
	if !errors.Is(err, core.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
	// The failed run stored nothing, so the retry must run the whole
	// pipeline again instead of bouncing off a half-ingested video.
	outcome, err = svc.Ingest(ctx, testURL)
	if outcome != IngestSuccess || err != nil {
		t.Fatalf("retry: outcome=%v err=%v", outcome, err)
	}
	if source.fetchCalls != 2 {
		t.Errorf("expected 2 fetch attempts, got %d", source.fetchCalls)
	}
}

func TestQuery_UnknownVideo(t *testing.T) {
	svc := newTestService(&stubSource{})

	_, err := svc.Query(context.Background(), testURL, "where is the demo")
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestQuery_AfterIngest(t *testing.T) {
	svc := newTestService(&stubSource{})
	ctx := context.Background()

	if outcome, err := svc.Ingest(ctx, testURL); outcome != IngestSuccess {
		t.Fatalf("ingest failed: outcome=%v err=%v", outcome, err)
	}

	ranked, err := svc.Query(ctx, testURL, "what is this video about")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(ranked) != 1 || ranked[0].Timestamp != "00:00:02" {
		t.Errorf("unexpected result: %+v", ranked)
	}
}

func postJSON(t *testing.T, mux *http.ServeMux, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestStoreVideoDataHandler(t *testing.T) {
	svc := newTestService(&stubSource{})
	mux := svc.Routes()

	rec := postJSON(t, mux, "/store_video_data", core.StoreVideoRequest{YoutubeURL: testURL})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp core.StoreVideoResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Message != "Success" {
		t.Errorf("message = %q, want Success", resp.Message)
	}

	// Second store keeps 200 but reports the duplicate.
	rec = postJSON(t, mux, "/store_video_data", core.StoreVideoRequest{YoutubeURL: testURL})
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Message != "Already exists" {
		t.Errorf("message = %q, want Already exists", resp.Message)
	}
}

func TestStoreVideoDataHandler_BadRequest(t *testing.T) {
	svc := newTestService(&stubSource{})
	mux := svc.Routes()

	rec := postJSON(t, mux, "/store_video_data", core.StoreVideoRequest{})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestQueryTimestampHandler(t *testing.T) {
	svc := newTestService(&stubSource{})
	mux := svc.Routes()

	rec := postJSON(t, mux, "/query_timestamp", core.QueryTimestampRequest{YoutubeURL: testURL, QueryText: "demo"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown video: status = %d, want 404", rec.Code)
	}

	postJSON(t, mux, "/store_video_data", core.StoreVideoRequest{YoutubeURL: testURL})
	rec = postJSON(t, mux, "/query_timestamp", core.QueryTimestampRequest{YoutubeURL: testURL, QueryText: "demo"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var ranked []core.RankedTimestamp
	if err := json.Unmarshal(rec.Body.Bytes(), &ranked); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(ranked) != 1 || ranked[0].Reason != "testing is discussed" {
		t.Errorf("unexpected response: %+v", ranked)
	}
}

func TestHealthHandler(t *testing.T) {
	svc := newTestService(&stubSource{})
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	svc.Routes().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}
