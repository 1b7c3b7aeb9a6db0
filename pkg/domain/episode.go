package domain

import "time"

// Episode is one recorded airing of a show, published in the show's feed.
type Episode struct {
	// ShowID is the alphanumeric show key from the shows file.
	ShowID string

	// AiredAt is the scheduled start, in the show's timezone.
	AiredAt time.Time

	// Path is the local MP3 file.
	Path string

	// Size is the MP3 size in bytes.
	Size int64
}
