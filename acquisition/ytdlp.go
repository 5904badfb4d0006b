package acquisition

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/kbukum/tubescript/logger"
	"github.com/kbukum/tubescript/process"
)

const (
	defaultBinary        = "yt-dlp"
	defaultSocketTimeout = 30 * time.Second
	defaultRetries       = 2
	defaultSampleRate    = 16000

	audioBaseName = "audio"
	unknownValue  = "Unknown"
	watchURL      = "https://youtube.com/watch?v="
	uploadsURL    = "https://www.youtube.com/playlist?list=UU"
)

// Config configures the yt-dlp acquirer.
type Config struct {
	Binary         string        `yaml:"binary" mapstructure:"binary"`
	FFmpegLocation string        `yaml:"ffmpeg_location" mapstructure:"ffmpeg_location"`
	WorkDir        string        `yaml:"work_dir" mapstructure:"work_dir"`
	SocketTimeout  time.Duration `yaml:"socket_timeout" mapstructure:"socket_timeout"`
	Retries        int           `yaml:"retries" mapstructure:"retries"`
	SampleRate     int           `yaml:"sample_rate" mapstructure:"sample_rate"`
	Timeout        time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// ApplyDefaults fills in zero values.
func (c *Config) ApplyDefaults() {
	if c.Binary == "" {
		c.Binary = defaultBinary
	}
	if c.WorkDir == "" {
		c.WorkDir = os.TempDir()
	}
	if c.SocketTimeout == 0 {
		c.SocketTimeout = defaultSocketTimeout
	}
	if c.Retries == 0 {
		c.Retries = defaultRetries
	}
	if c.SampleRate == 0 {
		c.SampleRate = defaultSampleRate
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Retries < 0 {
		return fmt.Errorf("acquisition.retries must be >= 0")
	}
	if c.SampleRate < 8000 {
		return fmt.Errorf("acquisition.sample_rate must be >= 8000 (got: %d)", c.SampleRate)
	}
	return nil
}

// YTDLP downloads audio and lists collections by shelling out to yt-dlp,
// which uses ffmpeg to produce mono WAV output.
type YTDLP struct {
	cfg    Config
	runner process.Runner
	log    *logger.Logger
}

// NewYTDLP creates an acquirer. A nil runner uses process.Exec.
func NewYTDLP(cfg Config, runner process.Runner) *YTDLP {
	cfg.ApplyDefaults()
	if runner == nil {
		runner = process.Exec{Timeout: cfg.Timeout}
	}
	return &YTDLP{cfg: cfg, runner: runner, log: logger.Get("acquisition")}
}

// Download fetches the audio track of a single video into a fresh working
// directory and converts it to mono WAV at the configured sample rate.
func (y *YTDLP) Download(ctx context.Context, url string) (*Audio, *Info, error) {
	if err := ValidateVideo(url); err != nil {
		return nil, nil, err
	}
	dir, err := os.MkdirTemp(y.cfg.WorkDir, "tubescript-")
	if err != nil {
		return nil, nil, fmt.Errorf("create work dir: %w", err)
	}
	audio := &Audio{Path: filepath.Join(dir, audioBaseName+".wav"), Dir: dir}

	args := []string{
		"--format", "bestaudio/best",
		"--extract-audio", "--audio-format", "wav",
		"--postprocessor-args", "ffmpeg:-ac 1 -ar " + strconv.Itoa(y.cfg.SampleRate),
		"--output", filepath.Join(dir, audioBaseName+".%(ext)s"),
		"--no-playlist", "--no-progress", "--no-warnings",
		"--dump-json", "--no-simulate",
	}
	args = append(args, y.commonArgs()...)
	args = append(args, url)

	start := time.Now()
	res, err := y.runner.Run(ctx, process.Command{Binary: y.cfg.Binary, Args: args})
	if err != nil {
		_ = audio.Remove()
		return nil, nil, fmt.Errorf("yt-dlp download: %w: %s", err, res.StderrTail(3))
	}
	if _, err := os.Stat(audio.Path); err != nil {
		_ = audio.Remove()
		return nil, nil, fmt.Errorf("yt-dlp produced no audio file: %w", err)
	}

	var meta ytdlpInfo
	if err := json.Unmarshal(lastJSONLine(res.Stdout), &meta); err != nil {
		_ = audio.Remove()
		return nil, nil, fmt.Errorf("decode yt-dlp metadata: %w", err)
	}
	info := &Info{
		Title:    orUnknown(meta.Title),
		URL:      url,
		Duration: meta.Duration,
		Uploader: orUnknown(meta.Uploader),
	}
	y.log.Info("audio downloaded", map[string]interface{}{
		logger.FieldSource:   url,
		logger.FieldDuration: time.Since(start).Milliseconds(),
		"title":              info.Title,
	})
	return audio, info, nil
}

// ListItems returns the entries of a playlist or channel without
// downloading them. Channels that report no entries are retried through
// their uploads playlist.
func (y *YTDLP) ListItems(ctx context.Context, url string) (*Listing, error) {
	kind, err := ValidateCollection(url)
	if err != nil {
		return nil, err
	}
	info, err := y.dump(ctx, url)
	if err != nil {
		return nil, err
	}

	entries := info.Entries
	if kind == KindChannel && len(entries) == 0 {
		channelID := info.ChannelID
		if channelID == "" {
			channelID = info.ID
		}
		if strings.HasPrefix(channelID, "UC") {
			uploads, err := y.dump(ctx, uploadsURL+channelID[2:])
			if err != nil {
				return nil, err
			}
			entries = uploads.Entries
		}
	}

	listing := &Listing{
		Kind:     kind,
		URL:      url,
		Title:    orUnknown(info.Title),
		Uploader: orUnknown(info.Uploader),
		Items:    make([]Item, 0, len(entries)),
	}
	for _, e := range entries {
		if e.ID == "" || e.Type == "playlist" {
			continue
		}
		listing.Items = append(listing.Items, e.item())
	}
	y.log.Info("collection listed", map[string]interface{}{
		logger.FieldSource: url,
		"kind":             string(kind),
		"items":            len(listing.Items),
	})
	return listing, nil
}

func (y *YTDLP) dump(ctx context.Context, url string) (*ytdlpInfo, error) {
	args := append([]string{"--flat-playlist", "--dump-single-json", "--no-warnings"}, y.commonArgs()...)
	args = append(args, url)
	res, err := y.runner.Run(ctx, process.Command{Binary: y.cfg.Binary, Args: args})
	if err != nil {
		return nil, fmt.Errorf("yt-dlp list: %w: %s", err, res.StderrTail(3))
	}
	var info ytdlpInfo
	if err := json.Unmarshal(res.Stdout, &info); err != nil {
		return nil, fmt.Errorf("decode yt-dlp listing: %w", err)
	}
	return &info, nil
}

func (y *YTDLP) commonArgs() []string {
	args := []string{
		"--socket-timeout", strconv.Itoa(int(y.cfg.SocketTimeout.Seconds())),
		"--retries", strconv.Itoa(y.cfg.Retries),
	}
	if y.cfg.FFmpegLocation != "" {
		args = append(args, "--ffmpeg-location", y.cfg.FFmpegLocation)
	}
	return args
}

type ytdlpInfo struct {
	ID        string       `json:"id"`
	Type      string       `json:"_type"`
	Title     string       `json:"title"`
	Uploader  string       `json:"uploader"`
	ChannelID string       `json:"channel_id"`
	Duration  float64      `json:"duration"`
	Entries   []ytdlpEntry `json:"entries"`
}

type ytdlpEntry struct {
	ID         string           `json:"id"`
	Type       string           `json:"_type"`
	Title      string           `json:"title"`
	Duration   float64          `json:"duration"`
	Thumbnail  string           `json:"thumbnail"`
	Thumbnails []ytdlpThumbnail `json:"thumbnails"`
	UploadDate string           `json:"upload_date"`
	ViewCount  int64            `json:"view_count"`
}

type ytdlpThumbnail struct {
	URL string `json:"url"`
}

func (e ytdlpEntry) item() Item {
	thumb := e.Thumbnail
	if thumb == "" && len(e.Thumbnails) > 0 {
		thumb = e.Thumbnails[len(e.Thumbnails)-1].URL
	}
	return Item{
		ID:         e.ID,
		Title:      orUnknown(e.Title),
		Duration:   e.Duration,
		URL:        watchURL + e.ID,
		Thumbnail:  thumb,
		UploadDate: e.UploadDate,
		ViewCount:  e.ViewCount,
	}
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return unknownValue
	}
	return s
}

// lastJSONLine returns the last non-empty stdout line; yt-dlp prints one
// JSON document per downloaded item.
func lastJSONLine(out []byte) []byte {
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	return []byte(lines[len(lines)-1])
}
