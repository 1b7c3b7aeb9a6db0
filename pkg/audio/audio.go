// Package audio joins downloaded MP3 chunks into one continuous stream.
package audio

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/tcolgate/mp3"
)

// Source is one staged piece of audio, in playback order.
type Source interface {
	Open() (io.ReadCloser, error)
	Length() time.Duration
}

// Clip summarizes an assembled stream.
type Clip struct {
	Duration time.Duration
	Size     int64
	Segments int
}

// Assemble copies every source to w in order. The sources are left in place;
// calling it twice with the same input produces the same bytes.
func Assemble(sources []Source, w io.Writer) (Clip, error) {
	var clip Clip
	for i, src := range sources {
		n, err := copySource(src, w)
		clip.Size += n
		if err != nil {
			return clip, fmt.Errorf("segment %d: %w", i, err)
		}
		clip.Duration += src.Length()
		clip.Segments++
	}
	return clip, nil
}

func copySource(src Source, w io.Writer) (int64, error) {
	rc, err := src.Open()
	if err != nil {
		return 0, err
	}
	defer rc.Close()
	return io.Copy(w, rc)
}

// Duration walks the MP3 frames in r and returns their total play time.
// Bytes between frames (tags, garbage) are skipped; a truncated last frame ends the walk.
func Duration(r io.Reader) (time.Duration, error) {
	var (
		total   time.Duration
		frame   mp3.Frame
		skipped int
	)
	dec := mp3.NewDecoder(r)
	for {
		err := dec.Decode(&frame, &skipped)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return total, nil
			}
			return total, fmt.Errorf("decode mp3 frame: %w", err)
		}
		total += frame.Duration()
	}
}

// TrimHead drops whole frames from the start of r until at least offset of
// audio has been dropped, then writes the remaining frames to w. It returns the
// duration actually dropped, which can exceed offset by less than one frame.
func TrimHead(r io.Reader, w io.Writer, offset time.Duration) (time.Duration, error) {
	var (
		dropped time.Duration
		frame   mp3.Frame
		skipped int
	)
	dec := mp3.NewDecoder(r)
	for {
		err := dec.Decode(&frame, &skipped)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return dropped, nil
			}
			return dropped, fmt.Errorf("decode mp3 frame: %w", err)
		}
		if dropped < offset {
			dropped += frame.Duration()
			continue
		}
		if _, err := io.Copy(w, frame.Reader()); err != nil {
			return dropped, err
		}
	}
}
