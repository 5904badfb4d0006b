package export

import (
	"fmt"
	"strings"

	"github.com/kbukum/tubescript/errors"
	"github.com/kbukum/tubescript/transcript"
)

// Document is a rendered export ready to be served as a download.
type Document struct {
	Filename    string
	ContentType string
	Content     string
}

// Build parses a format name and a serialized options payload and renders t.
func Build(t *transcript.Transcript, format, rawOptions string) (*Document, error) {
	f, err := ParseFormat(format)
	if err != nil {
		return nil, err
	}
	opts, err := ParseOptions(rawOptions)
	if err != nil {
		return nil, err
	}
	content, err := Generate(t, f, opts)
	if err != nil {
		return nil, err
	}
	return &Document{
		Filename:    Filename(t.Metadata.Title, f),
		ContentType: ContentType(f),
		Content:     content,
	}, nil
}

// Generate renders t in format f. It never modifies t.
func Generate(t *transcript.Transcript, f Format, opts Options) (string, error) {
	if opts.SpeakerColors == nil {
		opts.SpeakerColors = map[string]string{}
	}
	switch f {
	case FormatTXT:
		return t.Plaintext(), nil
	case FormatSRT:
		return renderSRT(t), nil
	case FormatVTT:
		return renderVTT(t), nil
	case FormatEnhancedVTT:
		return renderEnhancedVTT(t, newStyler(opts, htmlDialect{})), nil
	case FormatTTML, FormatEnhancedTTML:
		return renderTTML(t, newStyler(opts, ttmlDialect{})), nil
	case FormatYTT:
		return renderYTT(t, newStyler(opts, htmlDialect{})), nil
	}
	return "", errors.UnsupportedFormat(string(f))
}

func renderSRT(t *transcript.Transcript) string {
	var b strings.Builder
	for i, s := range t.Segments {
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s: %s\n\n", i+1,
			transcript.FormatSRTTimestamp(s.Start), transcript.FormatSRTTimestamp(s.End), s.Speaker, s.Text)
	}
	return b.String()
}

func writeNote(b *strings.Builder, t *transcript.Transcript) {
	b.WriteString("NOTE\n")
	fmt.Fprintf(b, "Title: %s\n", t.Metadata.Title)
	fmt.Fprintf(b, "Duration: %s\n", t.Metadata.FormattedDuration())
	fmt.Fprintf(b, "Speakers: %d\n\n", t.SpeakerCount())
}

func writeCueTiming(b *strings.Builder, i int, s transcript.Segment, settings string) {
	fmt.Fprintf(b, "%d\n%s --> %s", i+1, transcript.FormatTimestamp(s.Start), transcript.FormatTimestamp(s.End))
	if settings != "" {
		b.WriteString(" " + settings)
	}
	b.WriteByte('\n')
}

func renderVTT(t *transcript.Transcript) string {
	var b strings.Builder
	b.WriteString("WEBVTT\n\n")
	writeNote(&b, t)
	for i, s := range t.Segments {
		writeCueTiming(&b, i, s, "")
		fmt.Fprintf(&b, "%s: %s\n\n", s.Speaker, s.Text)
	}
	return b.String()
}

func renderEnhancedVTT(t *transcript.Transcript, st *styler) string {
	var b strings.Builder
	b.WriteString("WEBVTT\n\n")
	writeNote(&b, t)
	for i, s := range t.Segments {
		writeCueTiming(&b, i, s, "")
		text := st.text(s.Text)
		if color, ok := st.speakerColor(s.Speaker); ok {
			text = st.dialect.decorate(text, colorOnly, color)
		}
		fmt.Fprintf(&b, "<v %s>%s</v>\n\n", htmlEscaper.Replace(s.Speaker), text)
	}
	return b.String()
}

func renderYTT(t *transcript.Transcript, st *styler) string {
	var b strings.Builder
	b.WriteString("WEBVTT\nKind: captions\nLanguage: en\n\n")
	writeNote(&b, t)

	speakers := t.Speakers()
	ids := speakerIDs(speakers)
	var rules []string
	for _, sp := range speakers {
		if color, ok := st.speakerColor(sp); ok {
			rules = append(rules, fmt.Sprintf("::cue(.%s) { color: %s; }", ids[sp], color))
		}
	}
	if len(rules) > 0 {
		b.WriteString("STYLE\n")
		b.WriteString(strings.Join(rules, "\n"))
		b.WriteString("\n\n")
	}

	for i, s := range t.Segments {
		writeCueTiming(&b, i, s, "align:start position:5%")
		text := st.text(s.Text)
		if _, ok := st.speakerColor(s.Speaker); ok {
			text = fmt.Sprintf("<c.%s>%s</c>", ids[s.Speaker], text)
		}
		b.WriteString(text + "\n\n")
	}
	return b.String()
}

func renderTTML(t *transcript.Transcript, st *styler) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<tt xmlns="http://www.w3.org/ns/ttml" xmlns:tts="http://www.w3.org/ns/ttml#styling" xml:lang="en">` + "\n")
	b.WriteString("  <head>\n    <styling>\n")
	speakers := t.Speakers()
	ids := speakerIDs(speakers)
	for _, sp := range speakers {
		if color, ok := st.speakerColor(sp); ok {
			fmt.Fprintf(&b, "      <style xml:id=\"%s\" tts:color=\"%s\"/>\n", ids[sp], color)
		}
	}
	b.WriteString("    </styling>\n  </head>\n  <body>\n    <div>\n")
	for _, s := range t.Segments {
		fmt.Fprintf(&b, `      <p begin="%s" end="%s"`, transcript.FormatTimestamp(s.Start), transcript.FormatTimestamp(s.End))
		if _, ok := st.speakerColor(s.Speaker); ok {
			fmt.Fprintf(&b, ` style="%s"`, ids[s.Speaker])
		}
		fmt.Fprintf(&b, ">\n        %s\n      </p>\n", st.text(s.Text))
	}
	b.WriteString("    </div>\n  </body>\n</tt>\n")
	return b.String()
}
