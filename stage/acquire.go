package stage

import (
	"context"

	"github.com/kbukum/tubescript/acquisition"
	"github.com/kbukum/tubescript/errors"
	"github.com/kbukum/tubescript/transcript"
)

// AudioSource is the download half of an acquisition backend.
type AudioSource interface {
	Download(ctx context.Context, url string) (*acquisition.Audio, *acquisition.Info, error)
}

// ItemSource is the listing half of an acquisition backend.
type ItemSource interface {
	ListItems(ctx context.Context, url string) (*acquisition.Listing, error)
}

type acquirer struct {
	src AudioSource
}

// NewAcquirer adapts an AudioSource to Acquirer.
func NewAcquirer(src AudioSource) Acquirer {
	return &acquirer{src: src}
}

func (a *acquirer) AcquireAudio(ctx context.Context, source string) (*acquisition.Audio, transcript.SourceInfo, error) {
	audio, info, err := a.src.Download(ctx, source)
	if err != nil {
		return nil, transcript.SourceInfo{}, acquisitionErr(source, err)
	}
	return audio, transcript.SourceInfo{
		Title:     info.Title,
		SourceURL: source,
		Duration:  info.Duration,
		Uploader:  info.Uploader,
	}, nil
}

type lister struct {
	src ItemSource
}

// NewLister adapts an ItemSource to Lister.
func NewLister(src ItemSource) Lister {
	return &lister{src: src}
}

func (l *lister) ListItems(ctx context.Context, source string, limit int) (*acquisition.Listing, error) {
	listing, err := l.src.ListItems(ctx, source)
	if err != nil {
		return nil, acquisitionErr(source, err)
	}
	if limit > 0 && len(listing.Items) > limit {
		listing.Items = listing.Items[:limit]
	}
	return listing, nil
}

// acquisitionErr keeps InvalidSource and other typed errors as they are.
func acquisitionErr(source string, err error) error {
	if appErr, ok := errors.AsAppError(err); ok {
		return appErr
	}
	return errors.AcquisitionError(source, err)
}
