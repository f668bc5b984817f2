// Package server wires the ingestion and query pipelines behind the
// HTTP API.
package server

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"videoSeek/core"
	"videoSeek/storage"
	"videoSeek/subtitle"
	"videoSeek/youtube"
)

// IngestOutcome is the terminal result of one ingestion run.
type IngestOutcome int

const (
	IngestSuccess IngestOutcome = iota
	IngestAlreadyExists
	IngestAlreadyInProcessing
	IngestFetchFailed
	IngestError
)

// SubtitleSource is the video fetch boundary, implemented by
// youtube.Client.
type SubtitleSource interface {
	FetchSubtitle(ctx context.Context, youtubeURL string) ([]core.SubtitleCue, error)
	FetchMetadata(ctx context.Context, youtubeURL string) (title, description string, err error)
	CacheSRT(videoID string, segments []core.Segment) error
}

// Expander produces auxiliary retrieval queries for a user query.
type Expander interface {
	Expand(ctx context.Context, meta core.VideoMeta, query string) ([]string, error)
}

// Retriever merges multi-query vector search results into candidates.
type Retriever interface {
	Retrieve(ctx context.Context, videoID, primary string, expansions []string) ([]core.Candidate, error)
}

// Ranker picks the final timestamps from the candidate set.
type Ranker interface {
	Rank(ctx context.Context, meta core.VideoMeta, query string, candidates []core.Candidate) ([]core.RankedTimestamp, error)
}

// Service orchestrates ingestion and query end to end. Every request is
// handled synchronously; the in-flight set is the only shared state.
type Service struct {
	store    storage.VectorStore
	source   SubtitleSource
	expander Expander
	retrieve Retriever
	ranker   Ranker
	inflight *core.InflightSet
	log      zerolog.Logger
}

func NewService(store storage.VectorStore, source SubtitleSource, expander Expander, retriever Retriever, ranker Ranker, log zerolog.Logger) *Service {
	return &Service{
		store:    store,
		source:   source,
		expander: expander,
		retrieve: retriever,
		ranker:   ranker,
		inflight: core.NewInflightSet(),
		log:      log,
	}
}

// Ingest runs fetch -> normalize -> embed -> store for one video. The
// in-flight claim is released on every exit path so a failed run can be
// retried immediately.
func (s *Service) Ingest(ctx context.Context, youtubeURL string) (IngestOutcome, error) {
	videoID, err := youtube.ExtractVideoID(youtubeURL)
	if err != nil {
		return IngestError, err
	}
	log := s.log.With().Str("video_id", videoID).Logger()

	release, ok := s.inflight.Acquire(videoID)
	if !ok {
		log.Info().Msg("ingestion already in progress")
		return IngestAlreadyInProcessing, nil
	}
	defer release()

	exists, err := s.store.Exists(ctx, videoID)
	if err != nil {
		return IngestError, fmt.Errorf("check video existence: %w", err)
	}
	if exists {
		log.Info().Msg("video already ingested")
		return IngestAlreadyExists, nil
	}

	cues, err := s.source.FetchSubtitle(ctx, youtubeURL)
	if err != nil {
		log.Warn().Err(err).Msg("subtitle fetch failed")
		return IngestFetchFailed, err
	}
	title, description, err := s.source.FetchMetadata(ctx, youtubeURL)
	if err != nil {
		log.Warn().Err(err).Msg("metadata fetch failed")
		return IngestFetchFailed, err
	}

	segments := subtitle.Normalize(cues)
	if err := s.source.CacheSRT(videoID, segments); err != nil {
		log.Warn().Err(err).Msg("failed to cache merged srt")
	}

	meta := core.VideoMeta{VideoID: videoID, Title: title, Description: description}
	if err := s.store.PutMetadata(ctx, meta); err != nil {
		return IngestError, fmt.Errorf("store metadata: %w", err)
	}
	count, err := s.store.UpsertSegments(ctx, videoID, segments)
	if err != nil {
		return IngestError, fmt.Errorf("store segments: %w", err)
	}

	log.Info().Int("segments", count).Str("title", title).Msg("video ingested")
	return IngestSuccess, nil
}

// Query answers a natural-language question with the most relevant
// timestamps of an already-ingested video.
func (s *Service) Query(ctx context.Context, youtubeURL, queryText string) ([]core.RankedTimestamp, error) {
	videoID, err := youtube.ExtractVideoID(youtubeURL)
	if err != nil {
		return nil, err
	}
	log := s.log.With().Str("video_id", videoID).Logger()

	meta, err := s.store.GetMetadata(ctx, videoID)
	if err != nil {
		return nil, err
	}

	keywords, err := s.expander.Expand(ctx, meta, queryText)
	if err != nil {
		return nil, fmt.Errorf("expand keywords: %w", err)
	}

	candidates, err := s.retrieve.Retrieve(ctx, videoID, queryText, keywords)
	if err != nil {
		return nil, fmt.Errorf("retrieve candidates: %w", err)
	}
	log.Debug().Int("candidates", len(candidates)).Int("keywords", len(keywords)).Msg("retrieved candidate segments")

	ranked, err := s.ranker.Rank(ctx, meta, queryText, candidates)
	if err != nil {
		return nil, fmt.Errorf("rank timestamps: %w", err)
	}
	log.Info().Int("results", len(ranked)).Str("query", queryText).Msg("query answered")
	return ranked, nil
}
