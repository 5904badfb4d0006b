package acquisition

import (
	"testing"

	"github.com/kbukum/tubescript/errors"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		url  string
		want Kind
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", KindVideo},
		{"youtube.com/watch?v=dQw4w9WgXcQ&t=10", KindVideo},
		{"https://youtu.be/dQw4w9WgXcQ", KindVideo},
		{"https://www.youtube.com/playlist?list=PL590L5WQmH8fJ54F369BLDSqIwcs-TCfs", KindPlaylist},
		{"https://m.youtube.com/playlist?list=PLabc", KindPlaylist},
		{"https://www.youtube.com/@veritasium", KindChannel},
		{"https://www.youtube.com/channel/UCHnyfMqiRRG1u-2MsSQLbXA", KindChannel},
		{"https://www.youtube.com/c/SomeChannel/videos", KindChannel},
		{"https://www.youtube.com/user/legacy", KindChannel},
		{"https://www.youtube.com/watch?v=short", KindUnknown},
		{"https://vimeo.com/123", KindUnknown},
		{"", KindUnknown},
	}
	for _, tt := range tests {
		if got := Classify(tt.url); got != tt.want {
			t.Errorf("Classify(%q) = %s, want %s", tt.url, got, tt.want)
		}
	}
}

func TestValidate(t *testing.T) {
	if err := ValidateVideo("https://youtu.be/dQw4w9WgXcQ"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateVideo("https://www.youtube.com/@chan"); !errors.Is(err, errors.ErrCodeInvalidSource) {
		t.Errorf("expected INVALID_SOURCE, got %v", err)
	}
	if k, err := ValidateCollection("https://www.youtube.com/@chan"); err != nil || k != KindChannel {
		t.Errorf("expected channel, got %s %v", k, err)
	}
	if _, err := ValidateCollection("https://youtu.be/dQw4w9WgXcQ"); !errors.Is(err, errors.ErrCodeInvalidSource) {
		t.Errorf("expected INVALID_SOURCE for a video, got %v", err)
	}
}

func TestListingFilter(t *testing.T) {
	l := &Listing{Items: []Item{{ID: "a"}, {ID: "b"}, {ID: "c"}}}
	if got := l.Filter(nil); len(got) != 3 {
		t.Errorf("expected all items, got %d", len(got))
	}
	got := l.Filter([]string{"c", "a", "missing"})
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "c" {
		t.Errorf("expected [a c] in listing order, got %+v", got)
	}
}
