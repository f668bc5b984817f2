// Package youtube fetches subtitles and metadata for YouTube videos,
// falling back to audio download plus Whisper transcription when the
// video has no caption track.
package youtube

import (
	"fmt"
	"net/url"
	"strings"

	"videoSeek/core"
)

// ExtractVideoID pulls the video id out of a YouTube watch URL. Accepted
// forms are www.youtube.com/watch?v=ID (with or without the www prefix)
// and youtu.be/ID short links.
func ExtractVideoID(youtubeURL string) (string, error) {
	parsed, err := url.Parse(youtubeURL)
	if err != nil {
		return "", fmt.Errorf("%w: malformed URL %q", core.ErrInvalidInput, youtubeURL)
	}

	switch parsed.Hostname() {
	case "www.youtube.com", "youtube.com":
		id := parsed.Query().Get("v")
		if id == "" {
			return "", fmt.Errorf("%w: no video id in URL %q", core.ErrInvalidInput, youtubeURL)
		}
		return id, nil
	case "youtu.be":
		id := strings.Trim(parsed.Path, "/")
		if id == "" {
			return "", fmt.Errorf("%w: no video id in URL %q", core.ErrInvalidInput, youtubeURL)
		}
		return id, nil
	default:
		return "", fmt.Errorf("%w: not a YouTube URL %q", core.ErrInvalidInput, youtubeURL)
	}
}
