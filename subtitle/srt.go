// Package subtitle parses SRT caption text and merges fragment-level
// cues into sentence-level segments ready for embedding.
package subtitle

import (
	"fmt"
	"strings"

	"videoSeek/core"
)

// ParseSRT parses SRT text into cues.
//
//	1                                    sequence number
//	00:00:00,000 --> 00:00:01,830        start --> end
//	I'm happy to                         text line(s)
//	have you here today.
//
// Sequence numbers are ignored; consecutive text lines under one
// timestamp line are joined with a space.
func ParseSRT(text string) []core.SubtitleCue {
	if text == "" {
		return []core.SubtitleCue{}
	}

	var cues []core.SubtitleCue
	var start, end float64
	var haveTimes bool
	var buf []string

	flush := func() {
		if haveTimes && len(buf) > 0 {
			cues = append(cues, core.SubtitleCue{
				Start: start,
				End:   end,
				Text:  strings.Join(buf, " "),
			})
		}
		buf = nil
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)

		if line == "" {
			flush()
			continue
		}
		if isDigitOnly(line) && len(buf) == 0 {
			continue
		}
		if strings.Contains(line, "-->") {
			flush()
			parts := strings.Split(line, "-->")
			if len(parts) == 2 {
				s, err1 := parseSRTTime(strings.TrimSpace(parts[0]))
				e, err2 := parseSRTTime(strings.TrimSpace(parts[1]))
				if err1 == nil && err2 == nil {
					start, end, haveTimes = s, e, true
					continue
				}
			}
			haveTimes = false
			continue
		}
		buf = append(buf, line)
	}
	flush()

	return cues
}

// ComposeSRT renders segments back into SRT text, one entry per segment.
func ComposeSRT(segments []core.Segment) string {
	var sb strings.Builder
	for i, seg := range segments {
		fmt.Fprintf(&sb, "%d\n", i+1)
		fmt.Fprintf(&sb, "%s --> %s\n", formatSRTTime(seg.Start), formatSRTTime(seg.End))
		sb.WriteString(seg.Text)
		sb.WriteString("\n\n")
	}
	return sb.String()
}

// parseSRTTime parses "HH:MM:SS,mmm" (or "HH:MM:SS.mmm") into seconds.
func parseSRTTime(s string) (float64, error) {
	s = strings.ReplaceAll(s, ",", ".")
	var h, m int
	var sec float64
	if _, err := fmt.Sscanf(s, "%d:%d:%f", &h, &m, &sec); err != nil {
		return 0, fmt.Errorf("malformed srt time %q: %w", s, err)
	}
	return float64(h*3600+m*60) + sec, nil
}

func formatSRTTime(seconds float64) string {
	millis := int(seconds*1000 + 0.5)
	h := millis / 3600000
	m := (millis % 3600000) / 60000
	s := (millis % 60000) / 1000
	ms := millis % 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}

func isDigitOnly(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
