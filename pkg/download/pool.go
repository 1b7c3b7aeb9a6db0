package download

import (
	"context"

	"golang.org/x/sync/errgroup"

	"radiocut/pkg/domain"
	"radiocut/pkg/logger"
)

// DefaultWorkers is the number of parallel chunk downloads.
const DefaultWorkers = 4

// Pool downloads a chunk window with bounded parallelism, keeping window order
type Pool struct {
	fetcher ChunkFetcher
	workers int
	log     logger.Logger
}

func NewPool(fetcher ChunkFetcher, workers int, log logger.Logger) *Pool {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Pool{fetcher: fetcher, workers: workers, log: log}
}

// FetchAll returns one segment per window chunk, in window order. The first
// failure cancels the remaining downloads and removes everything staged so far.
func (p *Pool) FetchAll(ctx context.Context, window domain.ChunkWindow) ([]Segment, error) {
	segments := make([]Segment, len(window.Chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for i, chunk := range window.Chunks {
		i, chunk := i, chunk
		g.Go(func() error {
			seg, err := p.fetcher.Fetch(gctx, window.First+i, chunk)
			if err != nil {
				return err
			}
			segments[i] = seg
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if relErr := ReleaseAll(segments); relErr != nil {
			p.log.Warnf("Failed to remove staged chunks: %v", relErr)
		}
		return nil, err
	}

	p.log.Infof("Downloaded %d chunks", len(segments))
	return segments, nil
}
