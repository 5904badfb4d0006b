// Package validation checks request payloads and ids before they reach the
// pipeline. Failures are INVALID_INPUT AppErrors listing every bad field.
//
// # Struct Tag Validation
//
//	type MergeRequest struct {
//	    Labels   []string `json:"labels" validate:"min=2,dive,notblank"`
//	    NewLabel string   `json:"new_label" validate:"notblank"`
//	}
//	err := validation.Validate(req)
//
// # Programmatic Validation
//
//	v := validation.New()
//	v.Fraction("diarization_sensitivity", s).Min("limit", limit, 0)
//	err := v.Validate()
package validation
