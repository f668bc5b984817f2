package subtitle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"videoSeek/core"
)

const sampleSRT = `1
00:00:00,000 --> 00:00:01,830
I'm happy to
have you here today.

2
00:00:01,910 --> 00:00:03,610
As I'm sure you're all aware.
`

func TestParseSRT(t *testing.T) {
	cues := ParseSRT(sampleSRT)

	require.Len(t, cues, 2)
	assert.Equal(t, "I'm happy to have you here today.", cues[0].Text)
	assert.InDelta(t, 0.0, cues[0].Start, 1e-9)
	assert.InDelta(t, 1.83, cues[0].End, 1e-9)
	assert.Equal(t, "As I'm sure you're all aware.", cues[1].Text)
	assert.InDelta(t, 1.91, cues[1].Start, 1e-9)
	assert.InDelta(t, 3.61, cues[1].End, 1e-9)
}

func TestParseSRT_Empty(t *testing.T) {
	assert.Empty(t, ParseSRT(""))
}

func TestParseSRT_SkipsMalformedTimeLines(t *testing.T) {
	cues := ParseSRT("1\nnot a time line --> garbage\nsome text\n")
	assert.Empty(t, cues)
}

func TestComposeSRT_RoundTrip(t *testing.T) {
	segments := []core.Segment{
		{Start: 0, End: 1.83, Text: "I'm happy to have you here today."},
		{Start: 65.5, End: 70.25, Text: "A second sentence!"},
	}

	cues := ParseSRT(ComposeSRT(segments))

	require.Len(t, cues, 2)
	for i, cue := range cues {
		assert.Equal(t, segments[i].Text, cue.Text)
		assert.InDelta(t, segments[i].Start, cue.Start, 0.001)
		assert.InDelta(t, segments[i].End, cue.End, 0.001)
	}
}
