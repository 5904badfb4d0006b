package diarization

// Request holds parameters for a diarization call.
type Request struct {
	AudioPath string `json:"audio_path"`
	// Sensitivity in [0,1]; higher values split speakers more eagerly.
	Sensitivity float64 `json:"sensitivity"`
	// MinSpeakers and MaxSpeakers bound the detected speaker count (0 = auto).
	MinSpeakers int `json:"min_speakers,omitempty"`
	MaxSpeakers int `json:"max_speakers,omitempty"`
}

// Response holds the result of a diarization call.
type Response struct {
	Segments    []Segment `json:"segments"`
	NumSpeakers int       `json:"num_speakers"`
}

// Segment is a speaker-attributed time range in seconds.
type Segment struct {
	Speaker string  `json:"speaker"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
}
