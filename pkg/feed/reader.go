package feed

import (
	"fmt"
	"os"
	"time"

	"github.com/mmcdole/gofeed"
)

// Entry is one episode as listed in a published feed.
type Entry struct {
	GUID         string
	Title        string
	EnclosureURL string
	Length       string
	Published    time.Time
}

// Reader parses published feeds back
type Reader struct {
	feedParser *gofeed.Parser
}

// NewReader creates a feed reader
func NewReader() *Reader {
	return &Reader{feedParser: gofeed.NewParser()}
}

// ReadFile parses the feed at path
func (r *Reader) ReadFile(path string) ([]Entry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	parsed, err := r.feedParser.Parse(file)
	if err != nil {
		return nil, fmt.Errorf("failed to parse RSS feed: %w", err)
	}

	entries := make([]Entry, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		e := Entry{GUID: item.GUID, Title: item.Title}
		if item.PublishedParsed != nil {
			e.Published = *item.PublishedParsed
		}
		if len(item.Enclosures) > 0 {
			e.EnclosureURL = item.Enclosures[0].URL
			e.Length = item.Enclosures[0].Length
		}
		entries = append(entries, e)
	}
	return entries, nil
}
