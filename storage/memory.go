package storage

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"videoSeek/core"
)

// MemoryVectorStore is the zero-dependency fallback backend. It embeds
// text as L2-normalized term-frequency maps and scores with cosine
// similarity, which is crude but good enough for development and tests.
type MemoryVectorStore struct {
	mu   sync.RWMutex
	docs map[string][]memoryDoc // videoID -> segments
	meta map[string]core.VideoMeta
}

type memoryDoc struct {
	start, end float64
	text       string
	embed      map[string]float64 // term -> weight
}

func NewMemoryVectorStore() *MemoryVectorStore {
	return &MemoryVectorStore{
		docs: map[string][]memoryDoc{},
		meta: map[string]core.VideoMeta{},
	}
}

func (s *MemoryVectorStore) Exists(ctx context.Context, videoID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.docs[videoID]
	return ok, nil
}

func (s *MemoryVectorStore) UpsertSegments(ctx context.Context, videoID string, segments []core.Segment) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	docs := make([]memoryDoc, 0, len(segments))
	for _, seg := range segments {
		docs = append(docs, memoryDoc{
			start: seg.Start,
			end:   seg.End,
			text:  seg.Text,
			embed: embedText(strings.ToLower(seg.Text)),
		})
	}
	s.docs[videoID] = docs
	return len(docs), nil
}

func (s *MemoryVectorStore) Search(ctx context.Context, videoID, query string, topK int) ([]core.Hit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := s.docs[videoID]
	qv := embedText(strings.ToLower(query))

	type scored struct {
		i     int
		score float64
	}
	scores := make([]scored, 0, len(docs))
	for i, d := range docs {
		scores = append(scores, scored{i, cosine(qv, d.embed)})
	}
	sort.Slice(scores, func(i, j int) bool { return scores[i].score > scores[j].score })

	if topK <= 0 {
		topK = 5
	}
	if topK > len(scores) {
		topK = len(scores)
	}
	hits := make([]core.Hit, 0, topK)
	for _, sc := range scores[:topK] {
		d := docs[sc.i]
		hits = append(hits, core.Hit{
			Start:    d.start,
			End:      d.end,
			Text:     d.text,
			Distance: 1 - sc.score,
		})
	}
	return hits, nil
}

func (s *MemoryVectorStore) PutMetadata(ctx context.Context, meta core.VideoMeta) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.meta[meta.VideoID] = meta
	return nil
}

func (s *MemoryVectorStore) GetMetadata(ctx context.Context, videoID string) (core.VideoMeta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	meta, ok := s.meta[videoID]
	if !ok {
		return core.VideoMeta{}, fmt.Errorf("%w: metadata for video %s", core.ErrNotFound, videoID)
	}
	return meta, nil
}

func embedText(text string) map[string]float64 {
	m := map[string]float64{}
	for _, tok := range strings.Fields(text) {
		m[tok] += 1
	}
	var sum float64
	for _, v := range m {
		sum += v * v
	}
	if sum == 0 {
		return m
	}
	norm := math.Sqrt(sum)
	for k, v := range m {
		m[k] = v / norm
	}
	return m
}

func cosine(a, b map[string]float64) float64 {
	var dot float64
	for k, va := range a {
		if vb, ok := b[k]; ok {
			dot += va * vb
		}
	}
	return dot
}
