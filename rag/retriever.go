package rag

import (
	"context"

	"videoSeek/config"
	"videoSeek/core"
)

// SegmentSearcher is the slice of the vector store the retriever needs:
// top-k nearest segments for one video, ascending by distance.
type SegmentSearcher interface {
	Search(ctx context.Context, videoID, query string, topK int) ([]core.Hit, error)
}

// Retriever merges the results of the primary query and every expansion
// keyword into one deduplicated candidate set.
type Retriever struct {
	index         SegmentSearcher
	topK          int
	cutoffEnabled bool
	cutoffRatio   float64
}

func NewRetriever(index SegmentSearcher, cfg *config.Config) *Retriever {
	return &Retriever{
		index:         index,
		topK:          cfg.TopK,
		cutoffEnabled: cfg.RelevanceCutoff,
		cutoffRatio:   cfg.CutoffRatio,
	}
}

// Retrieve runs primary plus every expansion query through the index and
// merges the hits. Candidates are unique by the (timestamp, text) pair;
// the returned order carries no meaning.
func (r *Retriever) Retrieve(ctx context.Context, videoID, primary string, expansions []string) ([]core.Candidate, error) {
	seen := map[core.Candidate]struct{}{}
	var candidates []core.Candidate

	queries := append([]string{primary}, expansions...)
	for _, q := range queries {
		hits, err := r.index.Search(ctx, videoID, q, r.topK)
		if err != nil {
			return nil, err
		}
		for _, hit := range r.applyCutoff(hits) {
			cand := core.Candidate{
				Timestamp: core.FormatTimestamp(hit.Start),
				Text:      hit.Text,
			}
			if _, dup := seen[cand]; dup {
				continue
			}
			seen[cand] = struct{}{}
			candidates = append(candidates, cand)
		}
	}
	return candidates, nil
}

// applyCutoff optionally prunes hits whose distance exceeds the nearest
// hit's distance times cutoffRatio. Disabled by default; the hits are
// already ascending by distance so pruning stops at the first outlier.
func (r *Retriever) applyCutoff(hits []core.Hit) []core.Hit {
	if !r.cutoffEnabled || len(hits) == 0 {
		return hits
	}
	limit := hits[0].Distance * r.cutoffRatio
	kept := make([]core.Hit, 0, len(hits))
	for _, h := range hits {
		if h.Distance > limit {
			break
		}
		kept = append(kept, h)
	}
	return kept
}
