// Package export renders transcripts as plain text, SubRip, WebVTT, TTML and
// a YouTube-flavoured WebVTT dialect.
//
// Enhanced formats accept Options that drive three text transforms, applied
// in order: keyword highlighting, question and ALL-CAPS emphasis styling, and
// per-speaker coloring. Each transform only rewrites text outside markup
// inserted by an earlier one, so the decisions stay the same across formats
// and only the markup syntax differs.
package export
