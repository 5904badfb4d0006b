package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kbukum/tubescript/errors"
)

// Default colors used when question or emphasis coloring is enabled.
const (
	DefaultQuestionColor = "#FFD700"
	DefaultEmphasisColor = "#FF6347"
)

// TextStyle selects the decorations applied to a span of text. They are
// applied in field order: bold, italic, underline, color.
type TextStyle struct {
	Bold      bool `json:"bold"`
	Italic    bool `json:"italic"`
	Underline bool `json:"underline"`
	Color     bool `json:"color"`
}

func (s TextStyle) any() bool {
	return s.Bold || s.Italic || s.Underline || s.Color
}

// Options controls the styling of enhanced formats. Plain formats ignore it.
type Options struct {
	ColorCodeSpeakers bool              `json:"colorCodeSpeakers"`
	SpeakerColors     map[string]string `json:"speakerColors"`
	HighlightKeywords bool              `json:"highlightKeywords"`
	Keywords          []string          `json:"keywords"`
	StyleQuestions    bool              `json:"styleQuestions"`
	QuestionStyles    TextStyle         `json:"questionStyles"`
	QuestionColor     string            `json:"questionColor"`
	EmphasisStyles    TextStyle         `json:"emphasisStyles"`
	EmphasisColor     string            `json:"emphasisColor"`
}

// DefaultOptions returns options with every transform disabled and the
// documented style defaults filled in.
func DefaultOptions() Options {
	return Options{
		SpeakerColors:  map[string]string{},
		QuestionStyles: TextStyle{Italic: true},
		QuestionColor:  DefaultQuestionColor,
		EmphasisStyles: TextStyle{Bold: true},
		EmphasisColor:  DefaultEmphasisColor,
	}
}

// rawOptions mirrors the wire shape. Options may arrive flat or nested under
// "styling", and highlightKeywords may be a flag or the keyword list itself.
type rawOptions struct {
	Styling           *rawOptions       `json:"styling"`
	ColorCodeSpeakers *bool             `json:"colorCodeSpeakers"`
	SpeakerColors     map[string]string `json:"speakerColors"`
	HighlightKeywords json.RawMessage   `json:"highlightKeywords"`
	Keywords          []string          `json:"keywords"`
	StyleQuestions    *bool             `json:"styleQuestions"`
	QuestionStyles    *TextStyle        `json:"questionStyles"`
	QuestionColor     *string           `json:"questionColor"`
	EmphasisStyles    *TextStyle        `json:"emphasisStyles"`
	EmphasisColor     *string           `json:"emphasisColor"`
}

// ParseOptions decodes a serialized options payload. An empty payload yields
// DefaultOptions; malformed JSON yields INVALID_OPTIONS.
func ParseOptions(raw string) (Options, error) {
	opts := DefaultOptions()
	if strings.TrimSpace(raw) == "" {
		return opts, nil
	}

	var r rawOptions
	dec := json.NewDecoder(strings.NewReader(raw))
	if err := dec.Decode(&r); err != nil {
		return Options{}, errors.InvalidOptions(err)
	}
	if err := r.apply(&opts); err != nil {
		return Options{}, errors.InvalidOptions(err)
	}
	if r.Styling != nil {
		if err := r.Styling.apply(&opts); err != nil {
			return Options{}, errors.InvalidOptions(err)
		}
	}
	return opts, nil
}

func (r *rawOptions) apply(o *Options) error {
	if r.ColorCodeSpeakers != nil {
		o.ColorCodeSpeakers = *r.ColorCodeSpeakers
	}
	for speaker, color := range r.SpeakerColors {
		o.SpeakerColors[speaker] = color
	}
	if r.Keywords != nil {
		o.Keywords = append(o.Keywords, r.Keywords...)
	}
	if len(r.HighlightKeywords) > 0 && !bytes.Equal(r.HighlightKeywords, []byte("null")) {
		if err := decodeHighlight(r.HighlightKeywords, o); err != nil {
			return err
		}
	}
	if r.StyleQuestions != nil {
		o.StyleQuestions = *r.StyleQuestions
	}
	if r.QuestionStyles != nil {
		o.QuestionStyles = *r.QuestionStyles
	}
	if r.QuestionColor != nil {
		o.QuestionColor = *r.QuestionColor
	}
	if r.EmphasisStyles != nil {
		o.EmphasisStyles = *r.EmphasisStyles
	}
	if r.EmphasisColor != nil {
		o.EmphasisColor = *r.EmphasisColor
	}
	return nil
}

func decodeHighlight(msg json.RawMessage, o *Options) error {
	var flag bool
	if err := json.Unmarshal(msg, &flag); err == nil {
		o.HighlightKeywords = flag
		return nil
	}
	var list []string
	if err := json.Unmarshal(msg, &list); err != nil {
		return fmt.Errorf("highlightKeywords must be a boolean or a list of strings")
	}
	o.HighlightKeywords = true
	o.Keywords = append(o.Keywords, list...)
	return nil
}
