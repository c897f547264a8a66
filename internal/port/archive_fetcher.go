package port

import "context"

// FetchedArchive is a downloaded archive on local disk.
type FetchedArchive struct {
	Path string
	Size int64
}

// ArchiveFetcher downloads remote archives. Callers check the host allow-list
// before calling Fetch; implementations refuse redirects off the list.
type ArchiveFetcher interface {
	Fetch(ctx context.Context, rawURL string) (*FetchedArchive, func(), error)
}
