package rag

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"videoSeek/core"
)

// KeywordExpander asks the LLM for short phrases likely to appear
// near-verbatim in the subtitles, used as auxiliary retrieval queries.
type KeywordExpander struct {
	llm Completer
	log zerolog.Logger
}

func NewKeywordExpander(llm Completer, log zerolog.Logger) *KeywordExpander {
	return &KeywordExpander{llm: llm, log: log}
}

// Expand returns the expansion keywords for a query. An empty list is a
// valid outcome; retrieval then runs on the primary query alone.
func (e *KeywordExpander) Expand(ctx context.Context, meta core.VideoMeta, query string) ([]string, error) {
	resp, err := e.llm.Complete(ctx, buildKeywordPrompt(meta, query))
	if err != nil {
		return nil, err
	}

	var keywords []string
	for _, part := range strings.Split(resp, ",") {
		if kw := strings.TrimSpace(part); kw != "" {
			keywords = append(keywords, kw)
		}
	}
	e.log.Debug().Str("query", query).Strs("keywords", keywords).Msg("expanded query keywords")
	return keywords, nil
}
