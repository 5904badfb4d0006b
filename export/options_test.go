package export

import (
	"slices"
	"testing"

	"github.com/kbukum/tubescript/errors"
)

func TestParseOptions_Empty(t *testing.T) {
	opts, err := ParseOptions("  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.QuestionStyles != (TextStyle{Italic: true}) || opts.EmphasisStyles != (TextStyle{Bold: true}) {
		t.Errorf("unexpected style defaults %+v", opts)
	}
	if opts.QuestionColor != DefaultQuestionColor || opts.EmphasisColor != DefaultEmphasisColor {
		t.Errorf("unexpected color defaults %+v", opts)
	}
}

func TestParseOptions_Flat(t *testing.T) {
	opts, err := ParseOptions(`{
		"colorCodeSpeakers": true,
		"speakerColors": {"Speaker 1": "#FF0000"},
		"highlightKeywords": true,
		"keywords": ["budget", "plan"],
		"styleQuestions": true,
		"questionStyles": {"bold": true},
		"questionColor": "#00FF00"
	}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !opts.ColorCodeSpeakers || opts.SpeakerColors["Speaker 1"] != "#FF0000" {
		t.Errorf("speaker colors not parsed: %+v", opts)
	}
	if !opts.HighlightKeywords || !slices.Equal(opts.Keywords, []string{"budget", "plan"}) {
		t.Errorf("keywords not parsed: %+v", opts)
	}
	if opts.QuestionStyles != (TextStyle{Bold: true}) {
		t.Errorf("explicit question styles must replace the default, got %+v", opts.QuestionStyles)
	}
	if opts.QuestionColor != "#00FF00" || opts.EmphasisColor != DefaultEmphasisColor {
		t.Errorf("unexpected colors %+v", opts)
	}
}

func TestParseOptions_NestedStylingAndKeywordList(t *testing.T) {
	opts, err := ParseOptions(`{"format": "ytt", "styling": {"highlightKeywords": ["cat"], "styleQuestions": true}}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !opts.HighlightKeywords || !slices.Equal(opts.Keywords, []string{"cat"}) {
		t.Errorf("keyword list form not parsed: %+v", opts)
	}
	if !opts.StyleQuestions {
		t.Error("nested styling not applied")
	}
}

func TestParseOptions_Invalid(t *testing.T) {
	for _, raw := range []string{`{bad`, `[]`, `{"highlightKeywords": 3}`, `{"colorCodeSpeakers": "yes"}`} {
		if _, err := ParseOptions(raw); !errors.Is(err, errors.ErrCodeInvalidOptions) {
			t.Errorf("ParseOptions(%s): expected INVALID_OPTIONS, got %v", raw, err)
		}
	}
}

func TestParseFormat(t *testing.T) {
	for _, in := range []string{"txt", "SRT", " vtt ", "ttml", "enhanced-vtt", "enhanced-ttml", "ytt"} {
		if _, err := ParseFormat(in); err != nil {
			t.Errorf("ParseFormat(%q): %v", in, err)
		}
	}
	if _, err := ParseFormat("docx"); !errors.Is(err, errors.ErrCodeUnsupportedFormat) {
		t.Errorf("expected UNSUPPORTED_FORMAT, got %v", err)
	}
}
