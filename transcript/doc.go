// Package transcript holds the speaker-attributed transcript model and its
// identity edits. The speaker count in the metadata is always recomputed from
// the segments; edits only ever touch segment speaker labels.
package transcript
