package rag

import (
	"context"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"videoSeek/config"
	"videoSeek/core"
)

// Ranker modes. ModeReason parses "- Timestamp: / - Reason:" paragraphs;
// ModeBare scrapes bare H:MM:SS patterns out of the whole response.
const (
	ModeReason = "reason"
	ModeBare   = "bare"
)

// noTimestampMarker is the literal the prompt instructs the LLM to emit
// when no candidate matches. Its presence means "empty result", not an
// error.
const noTimestampMarker = "No relevant timestamp found."

// timestampPattern matches H:MM:SS or HH:MM:SS with valid minutes and
// seconds; hours run 0-99.
var timestampPattern = regexp.MustCompile(`\b[0-9]{1,2}:[0-5][0-9]:[0-5][0-9]\b`)

// Ranker asks the LLM to pick the candidate timestamps answering the
// query and turns its free-text reply into a clean, deduplicated,
// time-ordered, interval-grouped result.
type Ranker struct {
	llm         Completer
	mode        string
	intervalSec int
}

func NewRanker(llm Completer, cfg *config.Config) *Ranker {
	return &Ranker{
		llm:         llm,
		mode:        cfg.RankerMode,
		intervalSec: cfg.GroupIntervalSec,
	}
}

// Rank returns the final ordered timestamps for a query. An empty
// candidate set or an LLM reply without usable timestamps both produce
// an empty, non-error result.
func (r *Ranker) Rank(ctx context.Context, meta core.VideoMeta, query string, candidates []core.Candidate) ([]core.RankedTimestamp, error) {
	if len(candidates) == 0 {
		return []core.RankedTimestamp{}, nil
	}
	resp, err := r.llm.Complete(ctx, buildRankPrompt(meta, query, candidates))
	if err != nil {
		return nil, err
	}
	return r.ParseResponse(resp), nil
}

// ParseResponse parses the LLM free text according to the configured
// mode. Unparseable input degrades to an empty result.
func (r *Ranker) ParseResponse(text string) []core.RankedTimestamp {
	if strings.Contains(text, noTimestampMarker) {
		return []core.RankedTimestamp{}
	}
	if r.mode == ModeBare {
		ranked := make([]core.RankedTimestamp, 0)
		for _, ts := range GroupTimestamps(ExtractTimestamps(text), r.intervalSec) {
			ranked = append(ranked, core.RankedTimestamp{Timestamp: ts})
		}
		return ranked
	}

	reasons := ParseTimestampReasons(text)
	timestamps := make([]string, 0, len(reasons))
	for ts := range reasons {
		timestamps = append(timestamps, ts)
	}
	sortTimestamps(timestamps)

	ranked := make([]core.RankedTimestamp, 0, len(timestamps))
	for _, ts := range GroupTimestamps(timestamps, r.intervalSec) {
		ranked = append(ranked, core.RankedTimestamp{Timestamp: ts, Reason: reasons[ts]})
	}
	return ranked
}

// ExtractTimestamps scrapes every timestamp pattern out of free text,
// left-pads single-digit hours, deduplicates, and sorts chronologically.
func ExtractTimestamps(text string) []string {
	seen := map[string]struct{}{}
	var timestamps []string
	for _, ts := range timestampPattern.FindAllString(text, -1) {
		ts = padHour(ts)
		if _, dup := seen[ts]; dup {
			continue
		}
		seen[ts] = struct{}{}
		timestamps = append(timestamps, ts)
	}
	sortTimestamps(timestamps)
	return timestamps
}

// ParseTimestampReasons parses the paragraph-structured ranking reply.
// Paragraphs are blank-line separated; the first line carries the
// timestamp, the second the reason. Malformed paragraphs are skipped;
// a repeated timestamp keeps the last reason seen.
func ParseTimestampReasons(text string) map[string]string {
	reasons := map[string]string{}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	for _, paragraph := range strings.Split(text, "\n\n") {
		lines := strings.Split(strings.TrimSpace(paragraph), "\n")
		if len(lines) < 2 {
			continue
		}
		ts := timestampPattern.FindString(lines[0])
		if ts == "" {
			continue
		}
		reason := strings.TrimSpace(lines[1])
		reason = strings.TrimSpace(strings.TrimPrefix(reason, "- Reason:"))
		reasons[padHour(ts)] = reason
	}
	return reasons
}

// GroupTimestamps collapses bursts of chronologically sorted timestamps
// into one representative per cluster: the first timestamp is always
// kept, every later one only when it lies at least intervalSec after the
// previously kept timestamp.
func GroupTimestamps(sorted []string, intervalSec int) []string {
	grouped := make([]string, 0, len(sorted))
	lastKept := -1
	for _, ts := range sorted {
		sec := timestampSeconds(ts)
		if lastKept < 0 || sec-lastKept >= intervalSec {
			grouped = append(grouped, ts)
			lastKept = sec
		}
	}
	return grouped
}

// padHour canonicalizes H:MM:SS to HH:MM:SS.
func padHour(ts string) string {
	if strings.Index(ts, ":") == 1 {
		return "0" + ts
	}
	return ts
}

func timestampSeconds(ts string) int {
	parts := strings.SplitN(ts, ":", 3)
	if len(parts) != 3 {
		return 0
	}
	h, _ := strconv.Atoi(parts[0])
	m, _ := strconv.Atoi(parts[1])
	s, _ := strconv.Atoi(parts[2])
	return h*3600 + m*60 + s
}

func sortTimestamps(timestamps []string) {
	sort.Slice(timestamps, func(i, j int) bool {
		return timestampSeconds(timestamps[i]) < timestampSeconds(timestamps[j])
	})
}
