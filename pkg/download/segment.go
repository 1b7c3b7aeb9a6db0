package download

import (
	"errors"
	"io"
	"os"
	"time"

	"radiocut/pkg/audio"
)

// Segment is a chunk payload staged on disk.
type Segment struct {
	Index    int
	URL      string
	Path     string
	Size     int64
	Duration time.Duration
}

// Open implements audio.Source
func (s Segment) Open() (io.ReadCloser, error) {
	return os.Open(s.Path)
}

// Length implements audio.Source
func (s Segment) Length() time.Duration {
	return s.Duration
}

// Release removes the staged file. Releasing twice is not an error.
func (s Segment) Release() error {
	if s.Path == "" {
		return nil
	}
	if err := os.Remove(s.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Sources adapts segments for audio.Assemble
func Sources(segments []Segment) []audio.Source {
	sources := make([]audio.Source, len(segments))
	for i, s := range segments {
		sources[i] = s
	}
	return sources
}

// ReleaseAll removes every staged file and reports all failures.
func ReleaseAll(segments []Segment) error {
	var errs []error
	for _, s := range segments {
		if err := s.Release(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
