// Package download retrieves chunk payloads into a staging directory.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"radiocut/pkg/audio"
	"radiocut/pkg/domain"
	"radiocut/pkg/httpclient"
	"radiocut/pkg/logger"
)

const (
	DefaultAttempts   = 3
	defaultRetryDelay = 500 * time.Millisecond
)

// ChunkFetcher downloads one chunk
type ChunkFetcher interface {
	Fetch(ctx context.Context, index int, chunk domain.Chunk) (Segment, error)
}

// FetcherConfig holds the download knobs
type FetcherConfig struct {
	StagingDir string        // temp files are created here; empty means os.TempDir()
	Attempts   int           // tries for transport errors and 5xx responses
	RetryDelay time.Duration // pause between tries
}

// Fetcher streams chunk payloads to temp files, retrying transient failures
type Fetcher struct {
	client *httpclient.HTTPClient
	config FetcherConfig
	log    logger.Logger
}

// NewFetcher creates a fetcher. The client should use the audio profile.
func NewFetcher(client *httpclient.HTTPClient, config FetcherConfig, log logger.Logger) *Fetcher {
	if config.Attempts <= 0 {
		config.Attempts = DefaultAttempts
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = defaultRetryDelay
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Fetcher{client: client, config: config, log: log}
}

// Fetch downloads chunk and measures its MP3 duration. Client errors (4xx)
// fail at once; transport errors and 5xx are retried.
func (f *Fetcher) Fetch(ctx context.Context, index int, chunk domain.Chunk) (Segment, error) {
	url := chunk.URL()
	var lastErr error

	for attempt := 1; attempt <= f.config.Attempts; attempt++ {
		f.log.Debugf("Downloading chunk %d %s (attempt %d/%d)", index, url, attempt, f.config.Attempts)

		seg, retry, err := f.fetchOnce(ctx, index, url)
		if err == nil {
			return seg, nil
		}
		lastErr = err
		if !retry || ctx.Err() != nil {
			break
		}
		f.log.Warnf("Download attempt %d for chunk %d failed: %v", attempt, index, err)

		select {
		case <-ctx.Done():
			return Segment{}, ctx.Err()
		case <-time.After(f.config.RetryDelay):
		}
	}

	if ctx.Err() != nil {
		return Segment{}, ctx.Err()
	}
	return Segment{}, lastErr
}

func (f *Fetcher) fetchOnce(ctx context.Context, index int, url string) (Segment, bool, error) {
	resp, err := f.client.Get(ctx, url)
	if err != nil {
		return Segment{}, true, &domain.ChunkDownloadError{URL: url, Err: err}
	}
	defer httpclient.DrainAndClose(resp.Body)

	if resp.StatusCode != http.StatusOK {
		retry := resp.StatusCode >= http.StatusInternalServerError
		return Segment{}, retry, &domain.ChunkDownloadError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := httpclient.DecodedBody(resp)
	if err != nil {
		return Segment{}, false, &domain.ChunkDownloadError{URL: url, StatusCode: resp.StatusCode, Err: err}
	}
	defer body.Close()

	seg, err := f.stage(index, url, body)
	if err != nil {
		// a broken stream mid-body is worth another try
		return Segment{}, true, &domain.ChunkDownloadError{URL: url, StatusCode: resp.StatusCode, Err: err}
	}
	return seg, false, nil
}

func (f *Fetcher) stage(index int, url string, body io.Reader) (Segment, error) {
	file, err := os.CreateTemp(f.config.StagingDir, fmt.Sprintf("chunk-%06d-*.mp3", index))
	if err != nil {
		return Segment{}, fmt.Errorf("create staging file: %w", err)
	}
	seg := Segment{Index: index, URL: url, Path: file.Name()}

	size, err := io.Copy(file, body)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return Segment{}, errors.Join(err, seg.Release())
	}
	seg.Size = size

	duration, err := measure(seg.Path)
	if err != nil {
		return Segment{}, errors.Join(err, seg.Release())
	}
	seg.Duration = duration

	f.log.Debugf("Staged chunk %d to %s (%d bytes, %s)", index, seg.Path, size, duration)
	return seg, nil
}

func measure(path string) (time.Duration, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()
	return audio.Duration(file)
}
