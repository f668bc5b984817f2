package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
	"github.com/rs/zerolog"

	"videoSeek/config"
	"videoSeek/core"
)

const metadataCollection = "video_metadata"

// MilvusVectorStore mirrors the per-video layout: one collection of
// segments per video plus a shared metadata collection whose documents
// are keyed {video_id}_title / {video_id}_description.
type MilvusVectorStore struct {
	mc       client.Client
	dim      int
	embedder Embedder
	log      zerolog.Logger
}

func NewMilvusVectorStore(cfg *config.Config, embedder Embedder, log zerolog.Logger) (*MilvusVectorStore, error) {
	mc, err := client.NewClient(context.Background(), client.Config{Address: cfg.MilvusAddr})
	if err != nil {
		return nil, fmt.Errorf("connect milvus: %w", err)
	}
	s := &MilvusVectorStore{mc: mc, dim: embeddingDim, embedder: embedder, log: log}
	if err := s.ensureMetadataCollection(context.Background()); err != nil {
		return nil, err
	}
	return s, nil
}

// segmentCollection derives the collection name from the video id.
// Milvus collection names only allow word characters, so anything else
// in the id is mapped to '_'; the mapping must be deterministic so that
// ingest and query agree.
func segmentCollection(videoID string) string {
	sanitized := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		default:
			return '_'
		}
	}, videoID)
	return "subtitles_" + sanitized
}

// ensureSegmentCollection reports whether it created the collection so
// that a failed insert can drop it again; a lingering empty collection
// would make Exists refuse every retry of the ingest.
func (s *MilvusVectorStore) ensureSegmentCollection(ctx context.Context, coll string) (bool, error) {
	has, err := s.mc.HasCollection(ctx, coll)
	if err != nil {
		return false, fmt.Errorf("has collection: %w", err)
	}
	if !has {
		schema := entity.NewSchema().WithName(coll)
		schema.WithField(entity.NewField().WithName("id").WithIsAutoID(true).WithIsPrimaryKey(true).WithDataType(entity.FieldTypeInt64))
		schema.WithField(entity.NewField().WithName("ordinal").WithDataType(entity.FieldTypeInt64))
		schema.WithField(entity.NewField().WithName("start").WithDataType(entity.FieldTypeDouble))
		schema.WithField(entity.NewField().WithName("end").WithDataType(entity.FieldTypeDouble))
		schema.WithField(entity.NewField().WithName("text").WithDataType(entity.FieldTypeVarChar).WithMaxLength(4096))
		schema.WithField(entity.NewField().WithName("vector").WithDataType(entity.FieldTypeFloatVector).WithDim(int64(s.dim)))

		if err := s.mc.CreateCollection(ctx, schema, int32(2)); err != nil {
			return false, fmt.Errorf("create collection %s: %w", coll, err)
		}
	}
	idx, err := entity.NewIndexHNSW(entity.COSINE, 8, 200)
	if err != nil {
		return !has, fmt.Errorf("new hnsw index: %w", err)
	}
	if err := s.mc.CreateIndex(ctx, coll, "vector", idx, false, client.WithIndexName("idx_vector")); err != nil {
		return !has, fmt.Errorf("create index: %w", err)
	}
	if err := s.mc.LoadCollection(ctx, coll, false); err != nil {
		return !has, fmt.Errorf("load collection %s: %w", coll, err)
	}
	return !has, nil
}

func (s *MilvusVectorStore) ensureMetadataCollection(ctx context.Context) error {
	has, err := s.mc.HasCollection(ctx, metadataCollection)
	if err != nil {
		return fmt.Errorf("has metadata collection: %w", err)
	}
	if !has {
		// Milvus requires a vector field even for pure key/value data; a
		// fixed 2-dim placeholder keeps the schema valid.
		schema := entity.NewSchema().WithName(metadataCollection)
		schema.WithField(entity.NewField().WithName("doc_id").WithIsPrimaryKey(true).WithDataType(entity.FieldTypeVarChar).WithMaxLength(255))
		schema.WithField(entity.NewField().WithName("content").WithDataType(entity.FieldTypeVarChar).WithMaxLength(65535))
		schema.WithField(entity.NewField().WithName("vector").WithDataType(entity.FieldTypeFloatVector).WithDim(2))

		if err := s.mc.CreateCollection(ctx, schema, int32(2)); err != nil {
			return fmt.Errorf("create metadata collection: %w", err)
		}
	}
	if err := s.mc.LoadCollection(ctx, metadataCollection, false); err != nil {
		return fmt.Errorf("load metadata collection: %w", err)
	}
	return nil
}

func (s *MilvusVectorStore) Exists(ctx context.Context, videoID string) (bool, error) {
	has, err := s.mc.HasCollection(ctx, segmentCollection(videoID))
	if err != nil {
		return false, fmt.Errorf("has collection: %w", err)
	}
	return has, nil
}

func (s *MilvusVectorStore) UpsertSegments(ctx context.Context, videoID string, segments []core.Segment) (int, error) {
	if len(segments) == 0 {
		return 0, nil
	}

	// Embed everything before creating the collection: an embedding
	// failure must leave nothing behind, or Exists would report the
	// video as ingested and refuse the retry.
	ordinals := make([]int64, 0, len(segments))
	starts := make([]float64, 0, len(segments))
	ends := make([]float64, 0, len(segments))
	texts := make([]string, 0, len(segments))
	vectors := make([][]float32, 0, len(segments))

	for i, seg := range segments {
		v, err := s.embedder.Embed(ctx, strings.ToLower(seg.Text))
		if err != nil {
			return 0, fmt.Errorf("embed segment %d: %w", i, err)
		}
		ordinals = append(ordinals, int64(i))
		starts = append(starts, seg.Start)
		ends = append(ends, seg.End)
		texts = append(texts, seg.Text)
		vectors = append(vectors, v)
	}

	coll := segmentCollection(videoID)
	created, err := s.ensureSegmentCollection(ctx, coll)
	if err != nil {
		s.dropIfCreated(ctx, coll, created)
		return 0, err
	}

	_, err = s.mc.Insert(ctx, coll, "",
		entity.NewColumnInt64("ordinal", ordinals),
		entity.NewColumnDouble("start", starts),
		entity.NewColumnDouble("end", ends),
		entity.NewColumnVarChar("text", texts),
		entity.NewColumnFloatVector("vector", s.dim, vectors),
	)
	if err != nil {
		s.dropIfCreated(ctx, coll, created)
		return 0, fmt.Errorf("insert segments: %w", err)
	}
	return len(vectors), nil
}

func (s *MilvusVectorStore) dropIfCreated(ctx context.Context, coll string, created bool) {
	if !created {
		return
	}
	if err := s.mc.DropCollection(ctx, coll); err != nil {
		s.log.Warn().Err(err).Str("collection", coll).Msg("failed to drop collection after ingest error")
	}
}

func (s *MilvusVectorStore) Search(ctx context.Context, videoID, query string, topK int) ([]core.Hit, error) {
	if topK <= 0 {
		topK = 5
	}
	v, err := s.embedder.Embed(ctx, strings.ToLower(query))
	if err != nil {
		return nil, err
	}

	sp, _ := entity.NewIndexHNSWSearchParam(74)
	res, err := s.mc.Search(ctx, segmentCollection(videoID), []string{}, "",
		[]string{"start", "end", "text"},
		[]entity.Vector{entity.FloatVector(v)}, "vector", entity.COSINE, topK, sp)
	if err != nil {
		return nil, fmt.Errorf("milvus search: %w", err)
	}

	var hits []core.Hit
	for _, r := range res {
		cols := map[string]entity.Column{}
		for _, c := range r.Fields {
			cols[c.Name()] = c
		}
		for i := 0; i < r.ResultCount; i++ {
			var h core.Hit
			if c, ok := cols["start"].(*entity.ColumnDouble); ok {
				if data := c.Data(); i < len(data) {
					h.Start = data[i]
				}
			}
			if c, ok := cols["end"].(*entity.ColumnDouble); ok {
				if data := c.Data(); i < len(data) {
					h.End = data[i]
				}
			}
			if c, ok := cols["text"].(*entity.ColumnVarChar); ok {
				if data := c.Data(); i < len(data) {
					h.Text = data[i]
				}
			}
			// COSINE scores are similarities, larger is closer.
			h.Distance = 1 - float64(r.Scores[i])
			hits = append(hits, h)
		}
	}
	return hits, nil
}

func (s *MilvusVectorStore) PutMetadata(ctx context.Context, meta core.VideoMeta) error {
	placeholder := [][]float32{{0, 0}, {0, 0}}
	_, err := s.mc.Upsert(ctx, metadataCollection, "",
		entity.NewColumnVarChar("doc_id", []string{meta.VideoID + "_title", meta.VideoID + "_description"}),
		entity.NewColumnVarChar("content", []string{meta.Title, meta.Description}),
		entity.NewColumnFloatVector("vector", 2, placeholder),
	)
	if err != nil {
		return fmt.Errorf("upsert metadata: %w", err)
	}
	return nil
}

func (s *MilvusVectorStore) GetMetadata(ctx context.Context, videoID string) (core.VideoMeta, error) {
	expr := fmt.Sprintf("doc_id in [\"%s_title\", \"%s_description\"]", videoID, videoID)
	res, err := s.mc.Query(ctx, metadataCollection, []string{}, expr, []string{"doc_id", "content"})
	if err != nil {
		return core.VideoMeta{}, fmt.Errorf("query metadata: %w", err)
	}

	var ids, contents []string
	for _, col := range res {
		switch c := col.(type) {
		case *entity.ColumnVarChar:
			if c.Name() == "doc_id" {
				ids = c.Data()
			}
			if c.Name() == "content" {
				contents = c.Data()
			}
		}
	}
	if len(ids) == 0 || len(ids) != len(contents) {
		return core.VideoMeta{}, fmt.Errorf("%w: metadata for video %s", core.ErrNotFound, videoID)
	}

	meta := core.VideoMeta{VideoID: videoID}
	for i, id := range ids {
		switch {
		case strings.HasSuffix(id, "_title"):
			meta.Title = contents[i]
		case strings.HasSuffix(id, "_description"):
			meta.Description = contents[i]
		}
	}
	return meta, nil
}

// Close releases the milvus client.
func (s *MilvusVectorStore) Close() error {
	return s.mc.Close()
}
