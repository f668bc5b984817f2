package subtitle

import (
	"strings"

	"videoSeek/core"
)

// sentence terminators recognized by the normalizer
func endsSentence(text string) bool {
	return strings.HasSuffix(text, ".") ||
		strings.HasSuffix(text, "!") ||
		strings.HasSuffix(text, "?")
}

// Normalize merges fragment-level cues into sentence-level segments.
// Cue texts accumulate, space-joined, until the buffer ends with one of
// ". ! ?"; the emitted segment spans from the first absorbed cue's start
// to the terminating cue's end. A trailing run of cues that never closes
// a sentence is dropped, matching the upstream caption sources where the
// final fragment is usually cut off mid-sentence.
func Normalize(cues []core.SubtitleCue) []core.Segment {
	segments := []core.Segment{}

	var buf string
	var start float64
	var open bool

	for _, cue := range cues {
		if !open {
			start = cue.Start
			open = true
		}
		buf = strings.TrimSpace(buf + " " + strings.TrimSpace(cue.Text))
		if buf != "" && endsSentence(buf) {
			segments = append(segments, core.Segment{
				Start: start,
				End:   cue.End,
				Text:  buf,
			})
			buf = ""
			open = false
		}
	}

	return segments
}
