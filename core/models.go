package core

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// SubtitleCue is a raw caption fragment as produced by the transcript
// source. Times are seconds from the start of the video.
type SubtitleCue struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Segment is a sentence-level subtitle segment assembled from one or
// more consecutive cues.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Candidate is a retrieval hit handed to the ranking LLM. Timestamp is
// wall-clock "HH:MM:SS"; two candidates are the same only when both
// timestamp and text match.
type Candidate struct {
	Timestamp string `json:"timestamp"`
	Text      string `json:"text"`
}

// RankedTimestamp is one entry of the final answer. Reason is empty when
// the ranker runs in bare-timestamp mode.
type RankedTimestamp struct {
	Timestamp string `json:"timestamp"`
	Reason    string `json:"reason,omitempty"`
}

// Hit is a single vector search result. Ascending Distance ordering is
// the store's responsibility.
type Hit struct {
	Start    float64 `json:"start"`
	End      float64 `json:"end"`
	Text     string  `json:"text"`
	Distance float64 `json:"distance"`
}

// VideoMeta holds the per-video prompt context.
type VideoMeta struct {
	VideoID     string `json:"video_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type StoreVideoRequest struct {
	YoutubeURL string `json:"youtube_url"`
}

type StoreVideoResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

type QueryTimestampRequest struct {
	YoutubeURL string `json:"youtube_url"`
	QueryText  string `json:"query_text"`
}

// FormatTimestamp renders seconds as HH:MM:SS, the canonical candidate
// timestamp form.
func FormatTimestamp(seconds float64) string {
	total := int(seconds)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// WriteJSON writes v as a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}
