// Package feed publishes recorded episodes as an RSS podcast feed.
package feed

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/feeds"

	"radiocut/pkg/domain"
	"radiocut/pkg/output"
	"radiocut/pkg/show"
)

const dateLayout = "2006-01-02"

// FileName is the episode file recorded for show s at start.
func FileName(showID string, start time.Time) string {
	return fmt.Sprintf("%s_%s.mp3", showID, start.Format(dateLayout))
}

// FeedFileName is the RSS file of a show inside the podcast directory.
func FeedFileName(showID string) string {
	return showID + ".xml"
}

// Episodes lists the recorded files of showID in dir, newest first. The air
// date is taken from the file name and placed in loc.
func Episodes(dir, showID string, loc *time.Location) ([]domain.Episode, error) {
	paths, err := filepath.Glob(filepath.Join(dir, showID+"_*.mp3"))
	if err != nil {
		return nil, err
	}

	episodes := make([]domain.Episode, 0, len(paths))
	for _, path := range paths {
		name := strings.TrimSuffix(filepath.Base(path), ".mp3")
		dateStr := name[strings.LastIndex(name, "_")+1:]
		aired, err := time.ParseInLocation(dateLayout, dateStr, loc)
		if err != nil {
			// not one of ours
			continue
		}

		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("stat episode: %w", err)
		}
		episodes = append(episodes, domain.Episode{ShowID: showID, AiredAt: aired, Path: path, Size: info.Size()})
	}

	sort.Slice(episodes, func(i, j int) bool {
		return episodes[i].AiredAt.After(episodes[j].AiredAt)
	})
	return episodes, nil
}

// Build assembles the feed of s. baseURL is the public location of the
// podcast directory and must end with a slash.
func Build(s show.Show, episodes []domain.Episode, baseURL string) *feeds.Feed {
	url := baseURL + FeedFileName(s.ID)

	f := &feeds.Feed{
		Id:          strings.TrimSuffix(url, ".xml"),
		Title:       s.Name,
		Description: s.Description,
		Link:        &feeds.Link{Href: url, Rel: "self"},
		Image:       &feeds.Image{Url: s.ImageURL, Title: s.Name, Link: url},
	}
	if len(episodes) > 0 {
		f.Updated = episodes[0].AiredAt
	}

	for _, ep := range episodes {
		filename := filepath.Base(ep.Path)
		f.Add(&feeds.Item{
			Id:      strings.TrimSuffix(filename, ".mp3"),
			Title:   "Programa del " + ep.AiredAt.Format("02/01/2006"),
			Link:    &feeds.Link{Href: baseURL + filename},
			Created: ep.AiredAt,
			Enclosure: &feeds.Enclosure{
				Url:    baseURL + filename,
				Length: strconv.FormatInt(ep.Size, 10),
				Type:   "audio/mpeg",
			},
		})
	}
	return f
}

// Write regenerates the feed file of s from the episodes found in dir.
func Write(s show.Show, dir, baseURL string) (string, error) {
	episodes, err := Episodes(dir, s.ID, s.Location)
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, FeedFileName(s.ID))
	f := Build(s, episodes, baseURL)
	err = output.WriteFile(path, func(w io.Writer) error {
		return f.WriteRss(w)
	})
	if err != nil {
		return "", fmt.Errorf("write feed: %w", err)
	}
	return path, nil
}
