package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"
	"github.com/rs/zerolog"

	"videoSeek/config"
	"videoSeek/core"
)

const embeddingDim = 1536

// PgVectorStore keeps all videos in two tables: videos for metadata,
// subtitle_segments for the per-video segment rows. Video isolation is a
// WHERE clause instead of a collection per video.
type PgVectorStore struct {
	conn     *pgx.Conn
	embedder Embedder
	log      zerolog.Logger
}

func NewPgVectorStore(cfg *config.Config, embedder Embedder, log zerolog.Logger) (*PgVectorStore, error) {
	ctx := context.Background()
	conn, err := pgx.Connect(ctx, cfg.PostgresURL)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := conn.Ping(ctx); err != nil {
		conn.Close(ctx)
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	s := &PgVectorStore{conn: conn, embedder: embedder, log: log}
	if err := s.ensureTables(ctx); err != nil {
		conn.Close(ctx)
		return nil, err
	}
	return s, nil
}

func (s *PgVectorStore) ensureTables(ctx context.Context) error {
	if _, err := s.conn.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector;"); err != nil {
		return fmt.Errorf("create vector extension: %w", err)
	}

	videosQuery := `
		CREATE TABLE IF NOT EXISTS videos (
			video_id VARCHAR(255) PRIMARY KEY,
			title TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`
	if _, err := s.conn.Exec(ctx, videosQuery); err != nil {
		return fmt.Errorf("create videos table: %w", err)
	}

	segmentsQuery := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS subtitle_segments (
			id SERIAL PRIMARY KEY,
			video_id VARCHAR(255) NOT NULL,
			ordinal INT NOT NULL,
			start_time FLOAT NOT NULL,
			end_time FLOAT NOT NULL,
			text TEXT NOT NULL,
			embedding vector(%d),
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(video_id, ordinal)
		);
	`, embeddingDim)
	if _, err := s.conn.Exec(ctx, segmentsQuery); err != nil {
		return fmt.Errorf("create subtitle_segments table: %w", err)
	}

	indexQuery := "CREATE INDEX IF NOT EXISTS idx_subtitle_segments_video_id ON subtitle_segments(video_id);"
	if _, err := s.conn.Exec(ctx, indexQuery); err != nil {
		s.log.Warn().Err(err).Msg("failed to create video_id index")
	}
	return nil
}

func (s *PgVectorStore) Exists(ctx context.Context, videoID string) (bool, error) {
	var count int
	err := s.conn.QueryRow(ctx,
		"SELECT COUNT(*) FROM subtitle_segments WHERE video_id = $1", videoID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("count segments: %w", err)
	}
	return count > 0, nil
}

// UpsertSegments writes all segments in one transaction. A failure
// part-way through must leave zero rows; otherwise Exists would report
// the video as ingested and refuse the retry.
func (s *PgVectorStore) UpsertSegments(ctx context.Context, videoID string, segments []core.Segment) (int, error) {
	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	successCount := 0
	for i, seg := range segments {
		embedding, err := s.embedder.Embed(ctx, strings.ToLower(seg.Text))
		if err != nil {
			return 0, fmt.Errorf("embed segment %d: %w", i, err)
		}
		vec := pgvector.NewVector(embedding)

		_, err = tx.Exec(ctx, `
			INSERT INTO subtitle_segments (video_id, ordinal, start_time, end_time, text, embedding)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (video_id, ordinal)
			DO UPDATE SET
				start_time = EXCLUDED.start_time,
				end_time = EXCLUDED.end_time,
				text = EXCLUDED.text,
				embedding = EXCLUDED.embedding
		`, videoID, i, seg.Start, seg.End, seg.Text, vec)
		if err != nil {
			return 0, fmt.Errorf("insert segment %d: %w", i, err)
		}
		successCount++
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit segments: %w", err)
	}
	return successCount, nil
}

func (s *PgVectorStore) Search(ctx context.Context, videoID, query string, topK int) ([]core.Hit, error) {
	if topK <= 0 {
		topK = 5
	}
	queryEmbedding, err := s.embedder.Embed(ctx, strings.ToLower(query))
	if err != nil {
		return nil, err
	}
	vec := pgvector.NewVector(queryEmbedding)

	rows, err := s.conn.Query(ctx, `
		SELECT start_time, end_time, text, embedding <=> $1 AS distance
		FROM subtitle_segments
		WHERE video_id = $2
		ORDER BY embedding <=> $1
		LIMIT $3
	`, vec, videoID, topK)
	if err != nil {
		return nil, fmt.Errorf("search segments: %w", err)
	}
	defer rows.Close()

	var hits []core.Hit
	for rows.Next() {
		var h core.Hit
		if err := rows.Scan(&h.Start, &h.End, &h.Text, &h.Distance); err != nil {
			return nil, fmt.Errorf("scan hit: %w", err)
		}
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

func (s *PgVectorStore) PutMetadata(ctx context.Context, meta core.VideoMeta) error {
	_, err := s.conn.Exec(ctx, `
		INSERT INTO videos (video_id, title, description)
		VALUES ($1, $2, $3)
		ON CONFLICT (video_id)
		DO UPDATE SET title = EXCLUDED.title, description = EXCLUDED.description
	`, meta.VideoID, meta.Title, meta.Description)
	if err != nil {
		return fmt.Errorf("upsert video metadata: %w", err)
	}
	return nil
}

func (s *PgVectorStore) GetMetadata(ctx context.Context, videoID string) (core.VideoMeta, error) {
	meta := core.VideoMeta{VideoID: videoID}
	err := s.conn.QueryRow(ctx,
		"SELECT title, description FROM videos WHERE video_id = $1", videoID).
		Scan(&meta.Title, &meta.Description)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.VideoMeta{}, fmt.Errorf("%w: metadata for video %s", core.ErrNotFound, videoID)
	}
	if err != nil {
		return core.VideoMeta{}, fmt.Errorf("select video metadata: %w", err)
	}
	return meta, nil
}

// Close releases the underlying connection.
func (s *PgVectorStore) Close(ctx context.Context) error {
	return s.conn.Close(ctx)
}
