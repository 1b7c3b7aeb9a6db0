package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidStationID         = errors.New("invalid station id")
	ErrMetadataUnavailable      = errors.New("cut metadata unavailable")
	ErrManifestFetch            = errors.New("manifest fetch failed")
	ErrManifestCoverageExceeded = errors.New("manifest coverage exceeded")
	ErrNoMatchingChunks         = errors.New("no matching chunks")
	ErrChunkDownload            = errors.New("chunk download failed")
)

// ChunkDownloadError reports a chunk that could not be retrieved.
// It matches ErrChunkDownload with errors.Is.
type ChunkDownloadError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *ChunkDownloadError) Error() string {
	switch {
	case e.Err != nil && e.StatusCode != 0:
		return fmt.Sprintf("download chunk %s: status %d: %v", e.URL, e.StatusCode, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("download chunk %s: %v", e.URL, e.Err)
	default:
		return fmt.Sprintf("download chunk %s: unexpected status code: %d", e.URL, e.StatusCode)
	}
}

func (e *ChunkDownloadError) Unwrap() error {
	return e.Err
}

func (e *ChunkDownloadError) Is(target error) bool {
	return target == ErrChunkDownload
}
