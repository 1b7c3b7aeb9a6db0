// Package window picks the contiguous run of chunks that covers a cut.
package window

import (
	"fmt"

	"radiocut/pkg/domain"
)

// Select returns the chunks overlapping [meta.StartSeconds, meta.End()).
//
// The first chunk is the first one ending strictly after the start. From
// there, chunks are kept while they start before the end, so a cut ending
// exactly on a chunk boundary does not pull in the chunk starting there.
func Select(chunks []domain.Chunk, meta domain.CutMetadata) (domain.ChunkWindow, error) {
	start, end := meta.StartSeconds, meta.End()

	first := -1
	for i, c := range chunks {
		if c.End() > start {
			first = i
			break
		}
	}
	if first < 0 {
		return domain.ChunkWindow{}, fmt.Errorf("%w: no chunk ends after %.3f", domain.ErrNoMatchingChunks, start)
	}

	last := first
	for last < len(chunks) && chunks[last].Start < end {
		last++
	}
	if last == first {
		return domain.ChunkWindow{}, fmt.Errorf("%w: empty window [%.3f, %.3f)", domain.ErrNoMatchingChunks, start, end)
	}

	return domain.ChunkWindow{
		First:      first,
		Last:       last,
		TrimOffset: start - chunks[first].Start,
		Chunks:     chunks[first:last],
	}, nil
}
