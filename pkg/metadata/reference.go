package metadata

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// ErrInvalidReference is returned for URLs that are not an audiocut, a podcast or a station timestamp.
var ErrInvalidReference = errors.New("not a valid audiocut, podcast or radiostation URL")

// Kind classifies a radiocut URL
type Kind int

const (
	KindAudiocut Kind = iota + 1
	KindPodcast
	KindRadiostation
)

func (k Kind) String() string {
	switch k {
	case KindAudiocut:
		return "audiocut"
	case KindPodcast:
		return "podcast"
	case KindRadiostation:
		return "radiostation"
	default:
		return "unknown"
	}
}

var (
	audiocutPattern     = regexp.MustCompile(`^https?://radiocut\.fm/audiocut/[-\w]+/?`)
	podcastPattern      = regexp.MustCompile(`^https?://radiocut\.fm/pdc/[-\w]+/[-\w]+/?`)
	radiostationPattern = regexp.MustCompile(`^https?://radiocut\.fm/radiostation/.*`)
)

// Reference points at a cut page. Duration, when set, overrides the page's duration.
type Reference struct {
	URL      string
	Kind     Kind
	Duration *float64
}

// WithDuration returns a copy of r with the duration override set.
func (r Reference) WithDuration(seconds float64) Reference {
	r.Duration = &seconds
	return r
}

// ParseReference classifies raw and normalizes it. The fragment is dropped and
// audiocut URLs always end with a slash.
func ParseReference(raw string) (Reference, error) {
	url, _, _ := strings.Cut(strings.TrimSpace(raw), "#")

	var kind Kind
	switch {
	case audiocutPattern.MatchString(url):
		kind = KindAudiocut
		if !strings.HasSuffix(url, "/") {
			url += "/"
		}
	case podcastPattern.MatchString(url):
		kind = KindPodcast
	case radiostationPattern.MatchString(url):
		kind = KindRadiostation
	default:
		return Reference{}, fmt.Errorf("%w: %q", ErrInvalidReference, raw)
	}

	return Reference{URL: url, Kind: kind}, nil
}

// StationListenURL is the page of station at instant t, which carries the same
// metadata fields as an audiocut page.
func StationListenURL(site, station string, t time.Time) string {
	return fmt.Sprintf("%s/radiostation/%s/listen/%s/",
		strings.TrimSuffix(site, "/"), station, t.Format("2006/01/02/15/04/05"))
}
