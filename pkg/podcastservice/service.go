// Package podcastservice records scheduled shows from the radiocut archive
// and republishes them as podcast feeds.
package podcastservice

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"radiocut/pkg/cutservice"
	"radiocut/pkg/feed"
	"radiocut/pkg/history"
	"radiocut/pkg/logger"
	"radiocut/pkg/metadata"
	"radiocut/pkg/schedule"
	"radiocut/pkg/show"
)

// ErrNoStartPoint is returned for a show with no history and no --since.
var ErrNoStartPoint = errors.New("must indicate a start point in time (through history or --since)")

// Recorder reconstructs one cut into a file.
type Recorder interface {
	Cut(ctx context.Context, ref metadata.Reference, dst string) (cutservice.Result, error)
}

// Config holds the recorder settings.
type Config struct {
	PodcastDir string        // where episodes and feeds are written
	BaseURL    string        // public URL of PodcastDir
	SiteURL    string        // radiocut site used to build station listen URLs
	Border     time.Duration // extra recording after the scheduled end
	Since      string        // overrides history; YYYY-MM-DD or RFC3339
}

// Report summarizes the run for one show.
type Report struct {
	ShowID   string
	Recorded []string
	OnAir    bool
	Feed     string
	Episodes int // entries in the published feed
	LastRun  time.Time
}

// Service records every finished airing since the last run of each show.
type Service struct {
	recorder Recorder
	history  history.Store
	planner  schedule.Planner
	feeds    *feed.Reader
	config   Config
	log      logger.Logger
	now      func() time.Time
}

// New creates a podcast recorder.
func New(recorder Recorder, store history.Store, cfg Config, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		recorder: recorder,
		history:  store,
		planner:  schedule.Planner{Border: cfg.Border},
		feeds:    feed.NewReader(),
		config:   cfg,
		log:      log,
		now:      time.Now,
	}
}

// Run processes shows in order and stops at the first failing one.
func (s *Service) Run(ctx context.Context, shows []show.Show) ([]Report, error) {
	reports := make([]Report, 0, len(shows))
	for _, sh := range shows {
		report, err := s.ProcessShow(ctx, sh)
		if err != nil {
			return reports, fmt.Errorf("show %s: %w", sh.ID, err)
		}
		reports = append(reports, report)
	}
	return reports, nil
}

// ProcessShow records the pending airings of sh, rewrites its feed and
// advances its history entry. Airings recorded before a failure are kept.
func (s *Service) ProcessShow(ctx context.Context, sh show.Show) (Report, error) {
	log := logger.With(s.log, "show", sh.ID)
	log.Infof("Processing show %s", sh.ID)

	last, err := s.startPoint(ctx, sh, log)
	if err != nil {
		return Report{}, err
	}

	plan := s.planner.Plan(sh.Schedule, sh.Duration, sh.Location, last, s.now())
	report := Report{ShowID: sh.ID, OnAir: plan.OnAir, LastRun: last}

	var recordErr error
	for _, airing := range plan.Airings {
		dst, err := s.record(ctx, sh, airing, log)
		if err != nil {
			recordErr = fmt.Errorf("record airing %s: %w", airing.Start.Format(time.RFC3339), err)
			break
		}
		report.Recorded = append(report.Recorded, dst)
		report.LastRun = airing.Start
	}
	if plan.OnAir && recordErr == nil {
		log.Infof("Show currently in the air, quit")
	}

	feedPath, err := feed.Write(sh, s.config.PodcastDir, s.config.BaseURL)
	if err != nil {
		return report, errors.Join(recordErr, err)
	}
	report.Feed = feedPath

	entries, err := s.feeds.ReadFile(feedPath)
	if err != nil {
		return report, errors.Join(recordErr, fmt.Errorf("read back feed: %w", err))
	}
	report.Episodes = len(entries)

	if err := s.history.Set(ctx, sh.ID, report.LastRun); err != nil {
		return report, errors.Join(recordErr, fmt.Errorf("update history: %w", err))
	}
	return report, recordErr
}

func (s *Service) startPoint(ctx context.Context, sh show.Show, log logger.Logger) (time.Time, error) {
	last, ok, err := s.history.Last(ctx, sh.ID)
	if err != nil {
		return time.Time{}, fmt.Errorf("read history: %w", err)
	}
	if ok {
		log.Infof("  last process: %s", last.Format(time.RFC3339))
	}

	if s.config.Since != "" {
		since, err := ParseSince(s.config.Since, sh.Location)
		if err != nil {
			return time.Time{}, err
		}
		log.Infof("  overridden by: %s", since.Format(time.RFC3339))
		return since, nil
	}
	if !ok {
		return time.Time{}, ErrNoStartPoint
	}
	return last, nil
}

func (s *Service) record(ctx context.Context, sh show.Show, airing schedule.Airing, log logger.Logger) (string, error) {
	ref := metadata.Reference{
		URL:  metadata.StationListenURL(s.config.SiteURL, sh.Station, airing.Start),
		Kind: metadata.KindRadiostation,
	}.WithDuration(airing.Duration.Seconds())
	dst := filepath.Join(s.config.PodcastDir, feed.FileName(sh.ID, airing.Start))

	log.Infof("Downloading %s into %s", ref.URL, dst)
	if _, err := s.recorder.Cut(ctx, ref, dst); err != nil {
		return "", err
	}
	return dst, nil
}

// ParseSince reads a --since value. Values without a zone are taken in loc.
func ParseSince(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.In(loc), nil
	}
	for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02 15:04", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid --since value %q", value)
}
