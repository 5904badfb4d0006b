package pyannote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kbukum/tubescript/diarization"
)

func writeAudio(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "audio.wav")
	if err := os.WriteFile(path, []byte("RIFF fake"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDiarize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/diarize" {
			http.NotFound(w, r)
			return
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if got := r.FormValue("sensitivity"); got != "0.75" {
			t.Errorf("expected sensitivity 0.75, got %q", got)
		}
		if _, _, err := r.FormFile("audio"); err != nil {
			t.Errorf("missing audio part: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"num_speakers": 2,
			"segments": []map[string]any{
				{"speaker_id": "SPEAKER_01", "start_time": 2.0, "end_time": 3.0},
				{"speaker_id": "SPEAKER_00", "start_time": 0.0, "end_time": 2.0},
			},
		})
	}))
	defer srv.Close()

	p := NewProvider(Config{BaseURL: srv.URL})
	resp, err := p.Diarize(context.Background(), diarization.Request{AudioPath: writeAudio(t), Sensitivity: 0.75})
	if err != nil {
		t.Fatalf("Diarize: %v", err)
	}
	if len(resp.Segments) != 2 || resp.NumSpeakers != 2 {
		t.Fatalf("unexpected response %+v", resp)
	}
	if resp.Segments[0].Speaker != "Speaker 1" || resp.Segments[0].Start != 0 {
		t.Errorf("expected sorted, relabelled segments, got %+v", resp.Segments)
	}
	if resp.Segments[1].Speaker != "Speaker 2" {
		t.Errorf("unexpected second label %q", resp.Segments[1].Speaker)
	}
}

func TestDiarize_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.FormValue("sensitivity") == "0.10" {
			_ = json.NewEncoder(w).Encode(map[string]any{"error": "model not loaded"})
			return
		}
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := NewProvider(Config{BaseURL: srv.URL})
	audio := writeAudio(t)

	if _, err := p.Diarize(context.Background(), diarization.Request{AudioPath: audio, Sensitivity: 0.5}); err == nil || !strings.Contains(err.Error(), "status 500") {
		t.Errorf("expected status error, got %v", err)
	}
	if _, err := p.Diarize(context.Background(), diarization.Request{AudioPath: audio, Sensitivity: 0.1}); err == nil || !strings.Contains(err.Error(), "model not loaded") {
		t.Errorf("expected sidecar error, got %v", err)
	}
	if _, err := p.Diarize(context.Background(), diarization.Request{AudioPath: "/missing.wav"}); err == nil {
		t.Error("expected error for missing audio file")
	}
}

func TestIsAvailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	p := NewProvider(Config{BaseURL: srv.URL})
	if !p.IsAvailable(context.Background()) {
		t.Error("expected provider to be available")
	}
	srv.Close()
	if p.IsAvailable(context.Background()) {
		t.Error("expected provider to be unavailable after shutdown")
	}
}

func TestSpeakerLabel(t *testing.T) {
	tests := map[string]string{
		"SPEAKER_00": "Speaker 1",
		"speaker_09": "Speaker 10",
		"Alice":      "Alice",
		"SPEAKER_":   "SPEAKER_",
	}
	for in, want := range tests {
		if got := speakerLabel(in); got != want {
			t.Errorf("speakerLabel(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFactory(t *testing.T) {
	p, err := Factory()(map[string]any{"base_url": "http://sidecar:9000"})
	if err != nil {
		t.Fatal(err)
	}
	if p.Name() != ProviderName || p.(*Provider).cfg.BaseURL != "http://sidecar:9000" {
		t.Errorf("unexpected provider %+v", p)
	}
}
