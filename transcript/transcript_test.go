package transcript

import (
	"slices"
	"strings"
	"testing"

	"github.com/kbukum/tubescript/errors"
)

func sample() *Transcript {
	return Assemble([]Segment{
		{Start: 0.0, End: 1.5, Speaker: "Speaker 1", Text: "Hello"},
		{Start: 1.5, End: 3.0, Speaker: "Speaker 2", Text: "World"},
	}, SourceInfo{Title: "Demo Talk", SourceURL: "https://youtube.com/watch?v=abcdefghijk", Duration: 3.0})
}

func threeSpeakers() *Transcript {
	return Assemble([]Segment{
		{Start: 0, End: 1, Speaker: "A", Text: "one"},
		{Start: 1, End: 2, Speaker: "B", Text: "two"},
		{Start: 2, End: 3, Speaker: "C", Text: "three"},
		{Start: 3, End: 4, Speaker: "A", Text: "four"},
	}, SourceInfo{Title: "x", Duration: 4})
}

func assertCountInvariant(t *testing.T, tr *Transcript) {
	t.Helper()
	distinct := map[string]bool{}
	for _, s := range tr.Segments {
		distinct[s.Speaker] = true
	}
	if tr.Metadata.SpeakerCount != len(distinct) {
		t.Errorf("speaker_count %d != distinct speakers %d", tr.Metadata.SpeakerCount, len(distinct))
	}
}

func assertSorted(t *testing.T, tr *Transcript) {
	t.Helper()
	if !slices.IsSortedFunc(tr.Segments, func(a, b Segment) int {
		switch {
		case a.Start < b.Start:
			return -1
		case a.Start > b.Start:
			return 1
		}
		return 0
	}) {
		t.Error("segments are not ordered by start")
	}
}

func TestAssemble_Metadata(t *testing.T) {
	tr := sample()
	if tr.Metadata.SpeakerCount != 2 {
		t.Errorf("expected 2 speakers, got %d", tr.Metadata.SpeakerCount)
	}
	if tr.Metadata.FormattedDuration() != "00:00:03.000" {
		t.Errorf("unexpected duration %q", tr.Metadata.FormattedDuration())
	}
	assertCountInvariant(t, tr)
}

func TestAssemble_DefaultsTitleAndSortsSegments(t *testing.T) {
	tr := Assemble([]Segment{
		{Start: 2, End: 3, Speaker: "B", Text: "later"},
		{Start: 0, End: 1, Speaker: "A", Text: "first"},
	}, SourceInfo{})
	if tr.Metadata.Title != DefaultTitle {
		t.Errorf("expected default title, got %q", tr.Metadata.Title)
	}
	if tr.Segments[0].Text != "first" {
		t.Errorf("expected segments sorted by start, got %+v", tr.Segments)
	}
}

func TestAssemble_CopiesInput(t *testing.T) {
	in := []Segment{{Start: 0, End: 1, Speaker: "A", Text: "x"}}
	tr := Assemble(in, SourceInfo{})
	tr.RenameSpeakers(map[string]string{"A": "Z"})
	if in[0].Speaker != "A" {
		t.Error("Assemble must not alias the caller's slice")
	}
}

func TestPlaintext(t *testing.T) {
	text := sample().Plaintext()
	if !strings.HasPrefix(text, "Title: Demo Talk\nURL: https://youtube.com/watch?v=abcdefghijk\nDuration: 00:00:03.000\nSpeakers Detected: 2\n\n") {
		t.Errorf("unexpected header:\n%s", text)
	}
	if !strings.Contains(text, "[00:00:00.000 --> 00:00:01.500] Speaker 1: Hello\n") {
		t.Errorf("missing first segment line:\n%s", text)
	}
	if !strings.Contains(text, "[00:00:01.500 --> 00:00:03.000] Speaker 2: World\n") {
		t.Errorf("missing second segment line:\n%s", text)
	}
}

func TestPlaintext_ReflectsRename(t *testing.T) {
	tr := sample()
	tr.RenameSpeakers(map[string]string{"Speaker 1": "Alice"})
	if !strings.Contains(tr.Plaintext(), "] Alice: Hello") {
		t.Error("plaintext should be regenerated from current labels")
	}
}

func TestRenameSpeakers(t *testing.T) {
	tr := threeSpeakers()
	n := tr.RenameSpeakers(map[string]string{"A": "Alice", "Nobody": "X"})
	if n != 2 {
		t.Errorf("expected 2 segments renamed, got %d", n)
	}
	if tr.Segments[0].Speaker != "Alice" || tr.Segments[3].Speaker != "Alice" {
		t.Errorf("rename not applied: %+v", tr.Segments)
	}
	if tr.Segments[1].Speaker != "B" {
		t.Error("unmapped labels must pass through")
	}
	assertCountInvariant(t, tr)
	assertSorted(t, tr)
}

func TestRenameSpeakers_NonIntersectingMappingIsNoop(t *testing.T) {
	tr := threeSpeakers()
	before := tr.Clone()
	if n := tr.RenameSpeakers(map[string]string{"Z": "Y"}); n != 0 {
		t.Errorf("expected 0, got %d", n)
	}
	if !slices.Equal(before.Segments, tr.Segments) {
		t.Error("segments changed on a non-intersecting rename")
	}
}

func TestRenameSpeakers_CollisionReducesCount(t *testing.T) {
	tr := threeSpeakers()
	tr.RenameSpeakers(map[string]string{"B": "A"})
	if tr.Metadata.SpeakerCount != 2 {
		t.Errorf("expected 2 speakers after collision, got %d", tr.Metadata.SpeakerCount)
	}
}

func TestMergeSpeakers(t *testing.T) {
	tr := threeSpeakers()
	res, err := tr.MergeSpeakers([]string{"A", "B"}, "Host")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.AffectedSegments != 3 {
		t.Errorf("expected 3 affected segments, got %d", res.AffectedSegments)
	}
	if res.UniqueSpeakers != 2 || !slices.Equal(res.Speakers, []string{"C", "Host"}) {
		t.Errorf("unexpected speakers %v (%d)", res.Speakers, res.UniqueSpeakers)
	}
	if !slices.Equal(res.MergedLabels, []string{"A", "B"}) {
		t.Errorf("unexpected merged labels %v", res.MergedLabels)
	}
	assertCountInvariant(t, tr)
	assertSorted(t, tr)
}

func TestMergeSpeakers_IntoExistingLabelRecomputes(t *testing.T) {
	tr := threeSpeakers()
	res, err := tr.MergeSpeakers([]string{"A", "B"}, "C")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.UniqueSpeakers != 1 {
		t.Errorf("expected 1 speaker after merging into an existing label, got %d", res.UniqueSpeakers)
	}
}

func TestMergeSpeakers_InvalidArguments(t *testing.T) {
	tests := []struct {
		name     string
		labels   []string
		newLabel string
	}{
		{"no labels", nil, "X"},
		{"one label", []string{"A"}, "X"},
		{"duplicate label", []string{"A", "A"}, "X"},
		{"blank new label", []string{"A", "B"}, "  "},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tr := threeSpeakers()
			_, err := tr.MergeSpeakers(tc.labels, tc.newLabel)
			if !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Fatalf("expected INVALID_INPUT, got %v", err)
			}
			if tr.Metadata.SpeakerCount != 3 {
				t.Error("failed merge must not modify the transcript")
			}
		})
	}
}

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		in       float64
		dot, srt string
	}{
		{0, "00:00:00.000", "00:00:00,000"},
		{1.5, "00:00:01.500", "00:00:01,500"},
		{3661.25, "01:01:01.250", "01:01:01,250"},
		{-4, "00:00:00.000", "00:00:00,000"},
	}
	for _, tc := range tests {
		if got := FormatTimestamp(tc.in); got != tc.dot {
			t.Errorf("FormatTimestamp(%v) = %q, want %q", tc.in, got, tc.dot)
		}
		if got := FormatSRTTimestamp(tc.in); got != tc.srt {
			t.Errorf("FormatSRTTimestamp(%v) = %q, want %q", tc.in, got, tc.srt)
		}
	}
}
