package subtitle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"videoSeek/core"
)

func TestNormalize_MergesCuesIntoSentences(t *testing.T) {
	cues := []core.SubtitleCue{
		{Start: 0.0, End: 1.5, Text: "I'm happy to"},
		{Start: 1.6, End: 3.2, Text: "have you here today."},
		{Start: 3.3, End: 4.0, Text: "Any questions?"},
	}

	segments := Normalize(cues)

	require.Len(t, segments, 2)
	assert.Equal(t, "I'm happy to have you here today.", segments[0].Text)
	assert.Equal(t, 0.0, segments[0].Start)
	assert.Equal(t, 3.2, segments[0].End)
	assert.Equal(t, "Any questions?", segments[1].Text)
	assert.Equal(t, 3.3, segments[1].Start)
	assert.Equal(t, 4.0, segments[1].End)
}

func TestNormalize_DropsTrailingFragment(t *testing.T) {
	cues := []core.SubtitleCue{
		{Start: 0.0, End: 1.0, Text: "A complete sentence."},
		{Start: 1.0, End: 2.0, Text: "and then it just"},
		{Start: 2.0, End: 3.0, Text: "cuts off mid"},
	}

	segments := Normalize(cues)

	require.Len(t, segments, 1)
	assert.Equal(t, "A complete sentence.", segments[0].Text)
}

func TestNormalize_EmptyInput(t *testing.T) {
	assert.Empty(t, Normalize(nil))
	assert.Empty(t, Normalize([]core.SubtitleCue{}))
}

func TestNormalize_TrimsAndSpaceJoins(t *testing.T) {
	cues := []core.SubtitleCue{
		{Start: 0.0, End: 1.0, Text: "  spaced   "},
		{Start: 1.0, End: 2.0, Text: " out! "},
	}

	segments := Normalize(cues)

	require.Len(t, segments, 1)
	assert.Equal(t, "spaced out!", segments[0].Text)
}

func TestNormalize_SegmentsNonDecreasingAndTerminated(t *testing.T) {
	cues := []core.SubtitleCue{
		{Start: 0.0, End: 2.0, Text: "First."},
		{Start: 2.0, End: 4.0, Text: "Second part"},
		{Start: 4.0, End: 6.0, Text: "still going"},
		{Start: 6.0, End: 8.0, Text: "done!"},
		{Start: 8.0, End: 9.0, Text: "Third?"},
	}

	segments := Normalize(cues)

	require.Len(t, segments, 3)
	prev := -1.0
	for _, seg := range segments {
		assert.GreaterOrEqual(t, seg.Start, prev)
		prev = seg.Start
		last := seg.Text[len(seg.Text)-1]
		assert.Contains(t, ".!?", string(last))
	}
}
