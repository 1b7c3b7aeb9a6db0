// Package show loads the recurring show definitions recorded as podcasts.
package show

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"
	_ "time/tzdata" // show timezones must resolve on hosts without zoneinfo
	"unicode"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// RequiredKeys lists the fields every show must define.
var RequiredKeys = []string{"name", "description", "station", "cron", "timezone", "duration", "image_url"}

// Show is one validated show definition.
type Show struct {
	ID          string
	Name        string
	Description string
	Station     string
	Cron        string
	Timezone    string
	Duration    time.Duration
	ImageURL    string

	Location *time.Location
	Schedule cron.Schedule
}

// raw mirrors the YAML record before validation
type raw struct {
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Station     string  `yaml:"station"`
	Cron        string  `yaml:"cron"`
	Timezone    string  `yaml:"timezone"`
	Duration    float64 `yaml:"duration"` // seconds
	ImageURL    string  `yaml:"image_url"`
}

// ConfigValidationError collects every problem found in a shows file.
type ConfigValidationError struct {
	Problems []string
}

func (e *ConfigValidationError) Error() string {
	return "invalid shows config: " + strings.Join(e.Problems, "; ")
}

func (e *ConfigValidationError) add(format string, args ...any) {
	e.Problems = append(e.Problems, fmt.Sprintf(format, args...))
}

// ErrUnknownShow is returned by Select when the requested id is not configured.
var ErrUnknownShow = errors.New("unknown show")

// Load reads and validates the shows file at path.
func Load(path string) ([]Show, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read shows config: %w", err)
	}
	return Parse(data)
}

// Parse validates a shows document: a mapping of alphanumeric show id to
// show fields. Shows are returned in document order.
func Parse(data []byte) ([]Show, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse shows config: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) != 1 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, &ConfigValidationError{Problems: []string{"bad general config format, must be a map"}}
	}

	root := doc.Content[0]
	verr := &ConfigValidationError{}
	shows := make([]Show, 0, len(root.Content)/2)

	for i := 0; i+1 < len(root.Content); i += 2 {
		id := root.Content[i].Value
		if s, ok := parseShow(id, root.Content[i+1], verr); ok {
			shows = append(shows, s)
		}
	}

	if len(verr.Problems) > 0 {
		return nil, verr
	}
	return shows, nil
}

func parseShow(id string, node *yaml.Node, verr *ConfigValidationError) (Show, bool) {
	ok := true
	if !isAlnum(id) {
		verr.add("bad format for show id %q (must be alphanumerical)", id)
		ok = false
	}
	if node.Kind != yaml.MappingNode {
		verr.add("show %q must be a map", id)
		return Show{}, false
	}

	present := map[string]bool{}
	for i := 0; i+1 < len(node.Content); i += 2 {
		present[node.Content[i].Value] = true
	}
	var missing []string
	for _, key := range RequiredKeys {
		if !present[key] {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		verr.add("missing keys %v for show id %s", missing, id)
		return Show{}, false
	}

	var r raw
	if err := node.Decode(&r); err != nil {
		verr.add("show %s: %v", id, err)
		return Show{}, false
	}

	s := Show{
		ID:          id,
		Name:        r.Name,
		Description: r.Description,
		Station:     r.Station,
		Cron:        r.Cron,
		Timezone:    r.Timezone,
		Duration:    time.Duration(r.Duration * float64(time.Second)),
		ImageURL:    r.ImageURL,
	}

	if r.Duration <= 0 {
		verr.add("show %s: duration must be positive", id)
		ok = false
	}
	loc, err := time.LoadLocation(r.Timezone)
	if err != nil {
		verr.add("show %s: timezone %q: %v", id, r.Timezone, err)
		ok = false
	}
	s.Location = loc

	sched, err := cron.ParseStandard(r.Cron)
	if err != nil {
		verr.add("show %s: cron %q: %v", id, r.Cron, err)
		ok = false
	}
	s.Schedule = sched

	return s, ok
}

func isAlnum(id string) bool {
	if id == "" {
		return false
	}
	for _, r := range id {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// Select narrows shows to the one with the given id; an empty id keeps them all.
func Select(shows []Show, id string) ([]Show, error) {
	if id == "" {
		return shows, nil
	}
	for _, s := range shows {
		if s.ID == id {
			return []Show{s}, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownShow, id)
}
