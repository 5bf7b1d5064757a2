package partitioner

import (
	"fmt"

	"github.com/altsource-combiner/protocol/catalog"
)

// DefaultNumChunks is the number of chunk files produced per run
const DefaultNumChunks = 12

// Shard is one non-empty chunk of the combined catalog
type Shard struct {
	Number   int // 1-based
	FileName string
	Catalog  *catalog.Catalog
}

// Partitioner splits a catalog into contiguous, near-equal chunks
type Partitioner struct {
	NumChunks int
}

// NewPartitioner creates a Partitioner producing at most numChunks shards
func NewPartitioner(numChunks int) (*Partitioner, error) {
	if numChunks < 1 {
		return nil, fmt.Errorf("number of chunks must be positive, got %d", numChunks)
	}
	return &Partitioner{NumChunks: numChunks}, nil
}

// ChunkSize returns ceil(total / NumChunks)
func (p *Partitioner) ChunkSize(total int) int {
	return (total + p.NumChunks - 1) / p.NumChunks
}

// Split returns the non-empty slices [i*size, (i+1)*size) of entries, in order.
// The returned slices share the backing array of entries.
func (p *Partitioner) Split(entries []catalog.Entry) [][]catalog.Entry {
	if len(entries) == 0 {
		return nil
	}

	size := p.ChunkSize(len(entries))
	parts := make([][]catalog.Entry, 0, p.NumChunks)
	for i := 0; i < p.NumChunks; i++ {
		start := i * size
		if start >= len(entries) {
			break
		}
		end := start + size
		if end > len(entries) {
			end = len(entries)
		}
		parts = append(parts, entries[start:end:end])
	}
	return parts
}

// Shards builds one catalog document per non-empty chunk of combined
func (p *Partitioner) Shards(combined *catalog.Catalog) []Shard {
	parts := p.Split(combined.Apps)
	shards := make([]Shard, 0, len(parts))
	for i, apps := range parts {
		n := i + 1
		fileName := catalog.ChunkFileName(n)
		shards = append(shards, Shard{
			Number:   n,
			FileName: fileName,
			Catalog: catalog.New(
				fmt.Sprintf("%s - Part %d", combined.Name, n),
				fmt.Sprintf("%s.chunk%d", combined.Identifier, n),
				catalog.ReplaceLastSegment(combined.SourceURL, fileName),
				apps,
			),
		})
	}
	return shards
}
