package transcription

// Request describes one transcription call. When End is greater than Start
// only that window of the audio, in seconds, is transcribed.
type Request struct {
	AudioPath string  `json:"audio_path"`
	Start     float64 `json:"start,omitempty"`
	End       float64 `json:"end,omitempty"`
	Language  string  `json:"language,omitempty"`
	Model     string  `json:"model,omitempty"`
}

// Clipped reports whether the request covers only part of the audio.
func (r Request) Clipped() bool { return r.End > r.Start }

// Response holds the result of a transcription call.
type Response struct {
	Text     string    `json:"text"`
	Segments []Segment `json:"segments,omitempty"`
	Language string    `json:"language,omitempty"`
}

// Segment is a time-aligned piece of recognized text. Times are relative to
// the start of the submitted audio.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}
