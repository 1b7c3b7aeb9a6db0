package manifest

import (
	"context"
	"fmt"

	"radiocut/pkg/domain"
	"radiocut/pkg/logger"
	"radiocut/pkg/token"
)

// DefaultMaxPages bounds pagination when no limit is configured.
const DefaultMaxPages = 12

// Locator pages through consecutive time folders until the cut is covered
type Locator struct {
	pages    PageFetcher
	maxPages int
	log      logger.Logger
}

// NewLocator creates a locator. maxPages <= 0 selects DefaultMaxPages.
func NewLocator(pages PageFetcher, maxPages int, log logger.Logger) *Locator {
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Locator{pages: pages, maxPages: maxPages, log: log}
}

// Locate returns every chunk of the visited pages, in page order, stopping at
// the first page whose last accumulated chunk ends after meta.End().
func (l *Locator) Locate(ctx context.Context, meta domain.CutMetadata) ([]domain.Chunk, error) {
	if err := token.ValidateStation(meta.Station); err != nil {
		return nil, err
	}

	folder := token.TimeFolder(meta.StartSeconds)
	end := meta.End()
	var chunks []domain.Chunk

	for page := 0; page < l.maxPages; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		url, err := token.ManifestURL(meta.BaseURL, meta.Station, folder)
		if err != nil {
			return nil, err
		}
		l.log.Debugf("Getting chunks index %s (folder %d)", url, folder)

		p, err := l.pages.FetchPage(ctx, url, folder)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, p.Chunks...)

		if len(chunks) > 0 && chunks[len(chunks)-1].End() > end {
			l.log.Debugf("Retrieved %d chunks from %d pages", len(chunks), page+1)
			return chunks, nil
		}
		folder++
	}

	return nil, fmt.Errorf("%w: %d pages from folder %d do not reach %.3f",
		domain.ErrManifestCoverageExceeded, l.maxPages, token.TimeFolder(meta.StartSeconds), end)
}
