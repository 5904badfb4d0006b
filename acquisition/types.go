package acquisition

import "os"

// Audio is a downloaded, locally readable audio file. Dir is the private
// working directory created for it.
type Audio struct {
	Path string
	Dir  string
}

// Remove deletes the audio file and its working directory.
func (a *Audio) Remove() error {
	if a == nil || a.Dir == "" {
		return nil
	}
	return os.RemoveAll(a.Dir)
}

// Info is the metadata reported for a downloaded item.
type Info struct {
	Title    string
	URL      string
	Duration float64
	Uploader string
}

// Item describes one entry of a playlist or channel.
type Item struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Duration   float64 `json:"duration"`
	URL        string  `json:"url"`
	Thumbnail  string  `json:"thumbnail,omitempty"`
	UploadDate string  `json:"upload_date,omitempty"`
	ViewCount  int64   `json:"view_count"`
}

// Listing is the ordered content of a playlist or channel.
type Listing struct {
	Kind     Kind   `json:"type"`
	URL      string `json:"url"`
	Title    string `json:"title"`
	Uploader string `json:"uploader"`
	Items    []Item `json:"items"`
}

// Filter keeps the items whose ids are in ids, preserving listing order.
// An empty ids keeps everything.
func (l *Listing) Filter(ids []string) []Item {
	if len(ids) == 0 {
		return append([]Item(nil), l.Items...)
	}
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	var out []Item
	for _, it := range l.Items {
		if _, ok := want[it.ID]; ok {
			out = append(out, it)
		}
	}
	return out
}
