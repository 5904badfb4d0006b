package export

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	emphasisPattern = regexp.MustCompile(`\b[A-Z][A-Z]+(?:\s+[A-Z][A-Z]+)*\b`)
	hexColorPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)
	// markupPattern matches inserted tags and escaped entities, which no
	// transform may rewrite.
	markupPattern  = regexp.MustCompile(`<[^>]*>|&(?:[a-zA-Z]+|#[0-9]+);`)
	speakerIDStrip = regexp.MustCompile(`[^a-z0-9_-]+`)
	htmlEscaper    = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	whiteHexColors = map[string]bool{"#fff": true, "#ffffff": true}
	boldOnly       = TextStyle{Bold: true}
	colorOnly      = TextStyle{Color: true}
)

// usableColor reports whether c is a hex color that changes the default
// caption rendering.
func usableColor(c string) bool {
	return hexColorPattern.MatchString(c) && !whiteHexColors[strings.ToLower(c)]
}

// speakerID turns a speaker label into a CSS class / XML id.
func speakerID(speaker string) string {
	id := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(speaker)), " ", "_")
	id = speakerIDStrip.ReplaceAllString(id, "_")
	if id == "" || !(id[0] >= 'a' && id[0] <= 'z' || id[0] == '_') {
		id = "speaker_" + id
	}
	return id
}

// speakerIDs assigns every speaker a distinct id, suffixing labels whose
// ids would otherwise collide.
func speakerIDs(speakers []string) map[string]string {
	ids := make(map[string]string, len(speakers))
	used := make(map[string]bool, len(speakers))
	for _, sp := range speakers {
		base := speakerID(sp)
		id := base
		for n := 2; used[id]; n++ {
			id = fmt.Sprintf("%s_%d", base, n)
		}
		used[id] = true
		ids[sp] = id
	}
	return ids
}

// dialect renders decorations in one markup language.
type dialect interface {
	escape(text string) string
	decorate(text string, style TextStyle, color string) string
}

// htmlDialect is the inline-tag markup understood by WebVTT players.
type htmlDialect struct{}

func (htmlDialect) escape(text string) string { return htmlEscaper.Replace(text) }

func (htmlDialect) decorate(text string, style TextStyle, color string) string {
	if style.Bold {
		text = "<b>" + text + "</b>"
	}
	if style.Italic {
		text = "<i>" + text + "</i>"
	}
	if style.Underline {
		text = "<u>" + text + "</u>"
	}
	if style.Color && usableColor(color) {
		text = fmt.Sprintf(`<span style="color: %s">%s</span>`, color, text)
	}
	return text
}

// ttmlDialect expresses decorations as tts: attributes on nested spans.
type ttmlDialect struct{}

func (ttmlDialect) escape(text string) string { return htmlEscaper.Replace(text) }

func (ttmlDialect) decorate(text string, style TextStyle, color string) string {
	if style.Bold {
		text = `<span tts:fontWeight="bold">` + text + "</span>"
	}
	if style.Italic {
		text = `<span tts:fontStyle="italic">` + text + "</span>"
	}
	if style.Underline {
		text = `<span tts:textDecoration="underline">` + text + "</span>"
	}
	if style.Color && usableColor(color) {
		text = fmt.Sprintf(`<span tts:color="%s">%s</span>`, color, text)
	}
	return text
}

// styler applies the configured text transforms for one export.
type styler struct {
	opts     Options
	dialect  dialect
	keywords []*regexp.Regexp
}

func newStyler(opts Options, d dialect) *styler {
	s := &styler{opts: opts, dialect: d}
	if opts.HighlightKeywords {
		seen := map[string]bool{}
		for _, kw := range opts.Keywords {
			kw = strings.TrimSpace(kw)
			if kw == "" || seen[strings.ToLower(kw)] {
				continue
			}
			seen[strings.ToLower(kw)] = true
			s.keywords = append(s.keywords, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(kw)+`\b`))
		}
	}
	return s
}

// text runs keyword highlighting on raw segment text, escapes it and then
// applies question and emphasis styling. Speaker coloring is left to the
// renderer because its markup differs per format.
func (s *styler) text(raw string) string {
	out := s.highlight(raw)

	if s.opts.StyleQuestions {
		if strings.Contains(out, "?") && s.opts.QuestionStyles.any() {
			out = s.dialect.decorate(out, s.opts.QuestionStyles, s.opts.QuestionColor)
		}
		if s.opts.EmphasisStyles.any() {
			out = replaceOutsideMarkup(out, emphasisPattern, func(m string) string {
				return s.dialect.decorate(m, s.opts.EmphasisStyles, s.opts.EmphasisColor)
			})
		}
	}
	return out
}

// piece is a run of segment text; done pieces are already escaped markup.
type piece struct {
	text string
	done bool
}

// highlight wraps keyword matches found in the raw text and escapes
// everything else, so keywords containing markup characters still match.
func (s *styler) highlight(raw string) string {
	pieces := []piece{{text: raw}}
	for _, re := range s.keywords {
		next := make([]piece, 0, len(pieces))
		for _, p := range pieces {
			if p.done {
				next = append(next, p)
				continue
			}
			prev := 0
			for _, loc := range re.FindAllStringIndex(p.text, -1) {
				if loc[0] > prev {
					next = append(next, piece{text: p.text[prev:loc[0]]})
				}
				m := s.dialect.escape(p.text[loc[0]:loc[1]])
				next = append(next, piece{text: s.dialect.decorate(m, boldOnly, ""), done: true})
				prev = loc[1]
			}
			if prev < len(p.text) {
				next = append(next, piece{text: p.text[prev:]})
			}
		}
		pieces = next
	}

	var b strings.Builder
	for _, p := range pieces {
		if p.done {
			b.WriteString(p.text)
		} else {
			b.WriteString(s.dialect.escape(p.text))
		}
	}
	return b.String()
}

// speakerColor returns the usable color configured for speaker, if any.
func (s *styler) speakerColor(speaker string) (string, bool) {
	if !s.opts.ColorCodeSpeakers {
		return "", false
	}
	c, ok := s.opts.SpeakerColors[speaker]
	if !ok || !usableColor(c) {
		return "", false
	}
	return c, true
}

// replaceOutsideMarkup applies re to the text between tags and entities only.
func replaceOutsideMarkup(text string, re *regexp.Regexp, repl func(string) string) string {
	locs := markupPattern.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return re.ReplaceAllStringFunc(text, repl)
	}
	var b strings.Builder
	b.Grow(len(text))
	prev := 0
	for _, loc := range locs {
		b.WriteString(re.ReplaceAllStringFunc(text[prev:loc[0]], repl))
		b.WriteString(text[loc[0]:loc[1]])
		prev = loc[1]
	}
	b.WriteString(re.ReplaceAllStringFunc(text[prev:], repl))
	return b.String()
}
