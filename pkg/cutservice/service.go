// Package cutservice reconstructs radiocut cuts into MP3 files.
package cutservice

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"radiocut/pkg/audio"
	"radiocut/pkg/config"
	"radiocut/pkg/domain"
	"radiocut/pkg/download"
	"radiocut/pkg/httpclient"
	"radiocut/pkg/logger"
	"radiocut/pkg/manifest"
	"radiocut/pkg/metadata"
	"radiocut/pkg/output"
	"radiocut/pkg/window"
)

// ChunkLocator accumulates manifest chunks covering a cut.
type ChunkLocator interface {
	Locate(ctx context.Context, meta domain.CutMetadata) ([]domain.Chunk, error)
}

// SegmentFetcher downloads a chunk window.
type SegmentFetcher interface {
	FetchAll(ctx context.Context, w domain.ChunkWindow) ([]download.Segment, error)
}

// PodcastLister expands a podcast page into its cut URLs.
type PodcastLister interface {
	PodcastCutURLs(ctx context.Context, pageURL string) ([]string, error)
}

// Config holds per-request behavior.
type Config struct {
	// RequestTimeout bounds a whole Cut/Join call. Zero means no deadline.
	RequestTimeout time.Duration

	// TrimHead drops the audio preceding the requested start.
	TrimHead bool
}

// Service runs cut requests: resolve, locate, select, fetch, assemble.
type Service struct {
	resolver metadata.Resolver
	locator  ChunkLocator
	fetcher  SegmentFetcher
	podcasts PodcastLister
	config   Config
	log      logger.Logger
}

// New creates a cut service from its collaborators. podcasts may be nil when
// podcast pages are never expanded.
func New(resolver metadata.Resolver, locator ChunkLocator, fetcher SegmentFetcher, podcasts PodcastLister, cfg Config, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		resolver: resolver,
		locator:  locator,
		fetcher:  fetcher,
		podcasts: podcasts,
		config:   cfg,
		log:      log,
	}
}

// NewFromConfig wires the HTTP-backed resolver, locator and download pool.
func NewFromConfig(cfg *config.Config, log logger.Logger) *Service {
	pages := metadata.NewPageResolver(
		httpclient.NewClient(httpclient.PageClient, cfg.HTTP.UserAgent, cfg.PageTimeout()), log)

	locator := manifest.NewLocator(
		manifest.NewClient(httpclient.NewClient(httpclient.ManifestClient, cfg.HTTP.UserAgent, cfg.ManifestTimeout())),
		cfg.Engine.MaxManifestPages, log)

	fetcher := download.NewFetcher(
		httpclient.NewClient(httpclient.AudioClient, cfg.HTTP.UserAgent, cfg.ChunkTimeout()),
		download.FetcherConfig{StagingDir: cfg.Engine.StagingDir, Attempts: cfg.Engine.DownloadAttempts},
		log)

	return New(pages, locator, download.NewPool(fetcher, cfg.Engine.DownloadWorkers, log), pages,
		Config{RequestTimeout: cfg.RequestTimeout(), TrimHead: cfg.Engine.TrimHead}, log)
}

// WithResolver returns a copy of s resolving references with r.
func (s *Service) WithResolver(r metadata.Resolver) *Service {
	c := *s
	c.resolver = r
	return &c
}

// Result describes one reconstructed cut.
type Result struct {
	RequestID string
	Reference metadata.Reference
	Metadata  domain.CutMetadata
	Window    domain.ChunkWindow
	Clip      audio.Clip
	Output    string
}

// Expand returns the cut references behind ref: the podcast's cuts for a
// podcast page, ref itself otherwise.
func (s *Service) Expand(ctx context.Context, ref metadata.Reference) ([]metadata.Reference, error) {
	if ref.Kind != metadata.KindPodcast {
		return []metadata.Reference{ref}, nil
	}
	if s.podcasts == nil {
		return nil, errors.New("podcast expansion is not configured")
	}

	urls, err := s.podcasts.PodcastCutURLs(ctx, ref.URL)
	if err != nil {
		return nil, err
	}

	refs := make([]metadata.Reference, 0, len(urls))
	for _, u := range urls {
		refs = append(refs, metadata.Reference{URL: u, Kind: metadata.KindAudiocut, Duration: ref.Duration})
	}
	s.log.Infof("Podcast %s has %d cuts", ref.URL, len(refs))
	return refs, nil
}

// Cut reconstructs ref into dst. dst is only created once the whole cut
// has been assembled.
func (s *Service) Cut(ctx context.Context, ref metadata.Reference, dst string) (Result, error) {
	results, err := s.Join(ctx, []metadata.Reference{ref}, dst)
	if err != nil {
		return Result{}, err
	}
	return results[0], nil
}

// CutAll reconstructs refs[i] into dsts[i], stopping at the first failure.
func (s *Service) CutAll(ctx context.Context, refs []metadata.Reference, dsts []string) ([]Result, error) {
	if len(refs) != len(dsts) {
		return nil, fmt.Errorf("got %d references but %d outputs", len(refs), len(dsts))
	}

	results := make([]Result, 0, len(refs))
	for i := range refs {
		res, err := s.Cut(ctx, refs[i], dsts[i])
		if err != nil {
			return results, fmt.Errorf("cut %s: %w", refs[i].URL, err)
		}
		results = append(results, res)
	}
	return results, nil
}

// Join reconstructs every ref and writes them back to back into dst.
func (s *Service) Join(ctx context.Context, refs []metadata.Reference, dst string) ([]Result, error) {
	if len(refs) == 0 {
		return nil, errors.New("nothing to cut")
	}
	if s.config.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.RequestTimeout)
		defer cancel()
	}

	requestID := uuid.NewString()
	log := logger.With(s.log, "request_id", requestID)

	parts := make([]part, 0, len(refs))
	defer func() {
		for _, p := range parts {
			if err := download.ReleaseAll(p.segments); err != nil {
				log.Warnf("Failed to remove staged chunks: %v", err)
			}
		}
	}()

	for _, ref := range refs {
		p, err := s.prepare(ctx, log, ref)
		if err != nil {
			return nil, err
		}
		parts = append(parts, p)
	}

	clips := make([]audio.Clip, len(parts))
	err := output.WriteFile(dst, func(w io.Writer) error {
		for i, p := range parts {
			clip, err := s.write(w, p)
			if err != nil {
				return fmt.Errorf("assemble %s: %w", p.ref.URL, err)
			}
			clips[i] = clip
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	results := make([]Result, len(parts))
	for i, p := range parts {
		results[i] = Result{
			RequestID: requestID,
			Reference: p.ref,
			Metadata:  p.meta,
			Window:    p.window,
			Clip:      clips[i],
			Output:    dst,
		}
		log.Infof("Stored %s [%d:%d] into %s (%s, %d bytes, head offset %.3fs)",
			p.ref.URL, p.window.First, p.window.Last, dst, clips[i].Duration, clips[i].Size, p.window.TrimOffset)
	}
	return results, nil
}

type part struct {
	ref      metadata.Reference
	meta     domain.CutMetadata
	window   domain.ChunkWindow
	segments []download.Segment
}

func (s *Service) prepare(ctx context.Context, log logger.Logger, ref metadata.Reference) (part, error) {
	log.Infof("Retrieving %s", ref.URL)

	meta, err := s.resolver.Resolve(ctx, ref)
	if err != nil {
		return part{}, err
	}
	log.Debugf("Resolved %s: station=%s start=%.3f duration=%.3f", ref.URL, meta.Station, meta.StartSeconds, meta.DurationSeconds)

	chunks, err := s.locator.Locate(ctx, meta)
	if err != nil {
		return part{}, err
	}

	w, err := window.Select(chunks, meta)
	if err != nil {
		return part{}, err
	}
	log.Debugf("Selected chunks [%d:%d] of %d", w.First, w.Last, len(chunks))

	segments, err := s.fetcher.FetchAll(ctx, w)
	if err != nil {
		return part{}, err
	}

	return part{ref: ref, meta: meta, window: w, segments: segments}, nil
}

func (s *Service) write(w io.Writer, p part) (audio.Clip, error) {
	sources := download.Sources(p.segments)
	offset := time.Duration(p.window.TrimOffset * float64(time.Second))
	if !s.config.TrimHead || offset <= 0 || len(sources) == 0 {
		return audio.Assemble(sources, w)
	}

	cw := &countingWriter{w: w}
	dropped, err := trimFirst(sources[0], cw, offset)
	if err != nil {
		return audio.Clip{}, err
	}
	head := audio.Clip{Duration: max(sources[0].Length()-dropped, 0), Size: cw.n, Segments: 1}

	rest, err := audio.Assemble(sources[1:], w)
	if err != nil {
		return audio.Clip{}, err
	}
	return audio.Clip{
		Duration: head.Duration + rest.Duration,
		Size:     head.Size + rest.Size,
		Segments: head.Segments + rest.Segments,
	}, nil
}

func trimFirst(src audio.Source, w io.Writer, offset time.Duration) (time.Duration, error) {
	rc, err := src.Open()
	if err != nil {
		return 0, err
	}
	defer rc.Close()
	return audio.TrimHead(rc, w, offset)
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
