package acquisition

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"
	"testing"

	"github.com/kbukum/tubescript/process"
)

type fakeRunner struct {
	calls   []process.Command
	outputs []string
	err     error
	// writeAudio creates the file yt-dlp would have produced.
	writeAudio bool
}

func (f *fakeRunner) Run(_ context.Context, cmd process.Command) (*process.Result, error) {
	f.calls = append(f.calls, cmd)
	if f.err != nil {
		return &process.Result{Stderr: []byte("ERROR: video unavailable"), ExitCode: 1}, f.err
	}
	if f.writeAudio {
		i := slices.Index(cmd.Args, "--output")
		path := strings.Replace(cmd.Args[i+1], "%(ext)s", "wav", 1)
		if err := os.WriteFile(path, []byte("RIFF"), 0o644); err != nil {
			return nil, err
		}
	}
	out := ""
	if len(f.outputs) > 0 {
		out, f.outputs = f.outputs[0], f.outputs[1:]
	}
	return &process.Result{Stdout: []byte(out)}, nil
}

func TestDownload(t *testing.T) {
	runner := &fakeRunner{
		writeAudio: true,
		outputs:    []string{`{"id":"dQw4w9WgXcQ","title":"Talk","duration":212.5,"uploader":"Rick"}` + "\n"},
	}
	y := NewYTDLP(Config{WorkDir: t.TempDir(), FFmpegLocation: "/opt/ffmpeg"}, runner)

	audio, info, err := y.Download(context.Background(), "https://youtu.be/dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	defer audio.Remove()

	if info.Title != "Talk" || info.Duration != 212.5 || info.Uploader != "Rick" {
		t.Errorf("unexpected info %+v", info)
	}
	if _, err := os.Stat(audio.Path); err != nil {
		t.Errorf("audio file missing: %v", err)
	}
	args := runner.calls[0].Args
	if !slices.Contains(args, "ffmpeg:-ac 1 -ar 16000") || !slices.Contains(args, "/opt/ffmpeg") {
		t.Errorf("expected ffmpeg settings in args %v", args)
	}
	if runner.calls[0].Binary != "yt-dlp" {
		t.Errorf("unexpected binary %q", runner.calls[0].Binary)
	}

	if err := audio.Remove(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(audio.Dir); !os.IsNotExist(err) {
		t.Errorf("expected work dir removed, got %v", err)
	}
}

func TestDownload_Failure(t *testing.T) {
	dir := t.TempDir()
	y := NewYTDLP(Config{WorkDir: dir}, &fakeRunner{err: fmt.Errorf("exit status 1")})

	_, _, err := y.Download(context.Background(), "https://youtu.be/dQw4w9WgXcQ")
	if err == nil || !strings.Contains(err.Error(), "video unavailable") {
		t.Fatalf("expected stderr in error, got %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("expected work dir cleaned up, found %d entries", len(entries))
	}
}

func TestDownload_NoAudioProduced(t *testing.T) {
	y := NewYTDLP(Config{WorkDir: t.TempDir()}, &fakeRunner{outputs: []string{`{}`}})
	if _, _, err := y.Download(context.Background(), "https://youtu.be/dQw4w9WgXcQ"); err == nil {
		t.Fatal("expected error when no audio file exists")
	}
}

func TestDownload_RejectsCollections(t *testing.T) {
	runner := &fakeRunner{}
	y := NewYTDLP(Config{}, runner)
	if _, _, err := y.Download(context.Background(), "https://www.youtube.com/@chan"); err == nil {
		t.Fatal("expected error for channel url")
	}
	if len(runner.calls) != 0 {
		t.Error("runner should not be called for an invalid source")
	}
}

func TestListItems(t *testing.T) {
	runner := &fakeRunner{outputs: []string{`{
		"title": "My Playlist", "uploader": "Someone",
		"entries": [
			{"id": "aaaaaaaaaaa", "title": "First", "duration": 60, "view_count": 10,
			 "thumbnails": [{"url": "small.jpg"}, {"url": "large.jpg"}]},
			{"id": "", "title": "no id"},
			{"id": "PLsection", "_type": "playlist"},
			{"id": "bbbbbbbbbbb", "thumbnail": "b.jpg", "upload_date": "20240101"}
		]}`}}
	y := NewYTDLP(Config{}, runner)

	listing, err := y.ListItems(context.Background(), "https://www.youtube.com/playlist?list=PLx")
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if listing.Kind != KindPlaylist || listing.Title != "My Playlist" || len(listing.Items) != 2 {
		t.Fatalf("unexpected listing %+v", listing)
	}
	first, second := listing.Items[0], listing.Items[1]
	if first.URL != "https://youtube.com/watch?v=aaaaaaaaaaa" || first.Thumbnail != "large.jpg" || first.ViewCount != 10 {
		t.Errorf("unexpected first item %+v", first)
	}
	if second.Title != "Unknown" || second.Thumbnail != "b.jpg" || second.UploadDate != "20240101" {
		t.Errorf("unexpected second item %+v", second)
	}
	if !slices.Contains(runner.calls[0].Args, "--flat-playlist") {
		t.Errorf("expected flat listing, got %v", runner.calls[0].Args)
	}
}

func TestListItems_ChannelFallsBackToUploads(t *testing.T) {
	runner := &fakeRunner{outputs: []string{
		`{"title": "Chan", "channel_id": "UCabc123", "entries": []}`,
		`{"title": "Uploads", "entries": [{"id": "ccccccccccc", "title": "Upload"}]}`,
	}}
	y := NewYTDLP(Config{}, runner)

	listing, err := y.ListItems(context.Background(), "https://www.youtube.com/@chan")
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if len(runner.calls) != 2 {
		t.Fatalf("expected uploads lookup, got %d calls", len(runner.calls))
	}
	if last := runner.calls[1].Args[len(runner.calls[1].Args)-1]; last != "https://www.youtube.com/playlist?list=UUabc123" {
		t.Errorf("unexpected uploads url %q", last)
	}
	if listing.Title != "Chan" || len(listing.Items) != 1 {
		t.Errorf("unexpected listing %+v", listing)
	}
}
