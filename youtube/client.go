package youtube

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"

	"videoSeek/config"
	"videoSeek/core"
	"videoSeek/subtitle"
)

const timedTextURL = "https://www.youtube.com/api/timedtext"

// Client fetches subtitles and metadata for one video at a time.
type Client struct {
	httpClient   *http.Client
	oa           *openai.Client
	whisperModel string
	ytDlpPath    string
	subtitleDir  string
	audioDir     string
	log          zerolog.Logger
}

func NewClient(cfg *config.Config, log zerolog.Logger) *Client {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	return &Client{
		httpClient:   &http.Client{},
		oa:           openai.NewClientWithConfig(clientConfig),
		whisperModel: cfg.WhisperModel,
		ytDlpPath:    cfg.YtDlpPath,
		subtitleDir:  cfg.SubtitleDir,
		audioDir:     cfg.AudioDir,
		log:          log,
	}
}

// FetchSubtitle returns the raw cues for a video: the caption track when
// one exists, otherwise a Whisper transcription of the downloaded audio.
// The merged sentence-level SRT is cached under the subtitle directory.
func (c *Client) FetchSubtitle(ctx context.Context, youtubeURL string) ([]core.SubtitleCue, error) {
	videoID, err := ExtractVideoID(youtubeURL)
	if err != nil {
		return nil, err
	}

	cues, err := c.fetchCaptionTrack(ctx, videoID)
	if err == nil && len(cues) > 0 {
		return cues, nil
	}
	if err != nil {
		c.log.Warn().Err(err).Str("video_id", videoID).Msg("caption track unavailable, transcribing audio")
	}

	audioPath, err := c.downloadAudio(ctx, youtubeURL, videoID)
	if err != nil {
		return nil, err
	}
	return c.transcribeAudio(ctx, audioPath)
}

// CacheSRT writes the normalized segments back out as an SRT file, the
// per-video cache the original service kept on disk.
func (c *Client) CacheSRT(videoID string, segments []core.Segment) error {
	if err := os.MkdirAll(c.subtitleDir, 0755); err != nil {
		return fmt.Errorf("create subtitle dir: %w", err)
	}
	path := filepath.Join(c.subtitleDir, videoID+".srt")
	if err := os.WriteFile(path, []byte(subtitle.ComposeSRT(segments)), 0644); err != nil {
		return fmt.Errorf("write srt cache: %w", err)
	}
	return nil
}

// timedTextResponse is the YouTube timedtext XML payload.
type timedTextResponse struct {
	Texts []struct {
		Start float64 `xml:"start,attr"`
		Dur   float64 `xml:"dur,attr"`
		Body  string  `xml:",chardata"`
	} `xml:"text"`
}

func (c *Client) fetchCaptionTrack(ctx context.Context, videoID string) ([]core.SubtitleCue, error) {
	u := fmt.Sprintf("%s?lang=en&v=%s", timedTextURL, videoID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build timedtext request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: timedtext fetch: %v", core.ErrUpstream, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: timedtext fetch: status %d", core.ErrUpstream, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: timedtext read: %v", core.ErrUpstream, err)
	}

	var tt timedTextResponse
	if err := xml.Unmarshal(body, &tt); err != nil {
		return nil, fmt.Errorf("%w: timedtext parse: %v", core.ErrUpstream, err)
	}

	cues := make([]core.SubtitleCue, 0, len(tt.Texts))
	for _, t := range tt.Texts {
		text := strings.TrimSpace(html.UnescapeString(t.Body))
		if text == "" {
			continue
		}
		cues = append(cues, core.SubtitleCue{
			Start: t.Start,
			End:   t.Start + t.Dur,
			Text:  text,
		})
	}
	return cues, nil
}

func (c *Client) downloadAudio(ctx context.Context, youtubeURL, videoID string) (string, error) {
	if err := os.MkdirAll(c.audioDir, 0755); err != nil {
		return "", fmt.Errorf("create audio dir: %w", err)
	}
	outTemplate := filepath.Join(c.audioDir, videoID+".%(ext)s")
	audioPath := filepath.Join(c.audioDir, videoID+".m4a")

	cmd := exec.CommandContext(ctx, c.ytDlpPath,
		"-f", "bestaudio[ext=m4a]/bestaudio",
		"-o", outTemplate,
		"--quiet",
		youtubeURL,
	)
	cmd.Stderr = os.Stderr
	c.log.Info().Str("video_id", videoID).Msg("downloading audio")
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%w: yt-dlp audio download: %v", core.ErrUpstream, err)
	}
	if _, err := os.Stat(audioPath); err != nil {
		return "", fmt.Errorf("%w: downloaded audio not found at %s", core.ErrUpstream, audioPath)
	}
	return audioPath, nil
}

func (c *Client) transcribeAudio(ctx context.Context, audioPath string) ([]core.SubtitleCue, error) {
	c.log.Info().Str("audio", audioPath).Msg("transcribing audio")
	resp, err := c.oa.CreateTranscription(ctx, openai.AudioRequest{
		Model:    c.whisperModel,
		FilePath: audioPath,
		Format:   openai.AudioResponseFormatSRT,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: whisper transcription: %v", core.ErrUpstream, err)
	}
	return subtitle.ParseSRT(resp.Text), nil
}

// FetchMetadata returns the video title and description via yt-dlp.
func (c *Client) FetchMetadata(ctx context.Context, youtubeURL string) (title, description string, err error) {
	cmd := exec.CommandContext(ctx, c.ytDlpPath, "--dump-json", "--quiet", youtubeURL)
	output, err := cmd.Output()
	if err != nil {
		return "", "", fmt.Errorf("%w: yt-dlp metadata: %v", core.ErrUpstream, err)
	}

	var info struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal(output, &info); err != nil {
		return "", "", fmt.Errorf("%w: parse yt-dlp output: %v", core.ErrUpstream, err)
	}
	if info.Title == "" {
		info.Title = "Unknown"
	}
	if info.Description == "" {
		info.Description = "No description"
	}
	return info.Title, info.Description, nil
}
