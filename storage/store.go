// Package storage persists normalized subtitle segments and video
// metadata behind a pluggable vector store.
package storage

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"videoSeek/config"
	"videoSeek/core"
)

// VectorStore abstracts the storage backend. Segments of one video live
// in a collection named from the video id; title and description live in
// a shared metadata collection keyed {video_id}_title and
// {video_id}_description.
type VectorStore interface {
	// Exists reports whether segments for the video were ever stored.
	Exists(ctx context.Context, videoID string) (bool, error)
	// UpsertSegments embeds and stores segments, returning how many were
	// written.
	UpsertSegments(ctx context.Context, videoID string, segments []core.Segment) (int, error)
	// Search returns up to topK nearest segments, ascending by distance.
	Search(ctx context.Context, videoID, query string, topK int) ([]core.Hit, error)
	PutMetadata(ctx context.Context, meta core.VideoMeta) error
	// GetMetadata fails with core.ErrNotFound when the video is unknown.
	GetMetadata(ctx context.Context, videoID string) (core.VideoMeta, error)
}

// New selects the backend from cfg.Store. Backend init failure falls
// back to the in-memory store so the service stays usable without
// external infrastructure.
func New(cfg *config.Config, log zerolog.Logger) VectorStore {
	switch strings.ToLower(strings.TrimSpace(cfg.Store)) {
	case "pgvector":
		if !cfg.HasValidAPI() {
			log.Warn().Msg("pgvector store requires API configuration, falling back to memory store")
			return NewMemoryVectorStore()
		}
		s, err := NewPgVectorStore(cfg, NewOpenAIEmbedder(cfg), log)
		if err != nil {
			log.Warn().Err(err).Msg("failed to initialize pgvector store, falling back to memory store")
			return NewMemoryVectorStore()
		}
		return s
	case "milvus":
		if !cfg.HasValidAPI() {
			log.Warn().Msg("milvus store requires API configuration, falling back to memory store")
			return NewMemoryVectorStore()
		}
		s, err := NewMilvusVectorStore(cfg, NewOpenAIEmbedder(cfg), log)
		if err != nil {
			log.Warn().Err(err).Msg("failed to initialize milvus store, falling back to memory store")
			return NewMemoryVectorStore()
		}
		return s
	default:
		return NewMemoryVectorStore()
	}
}
