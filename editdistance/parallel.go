package editdistance

import (
	"context"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// scanBlock is replaced in tests to simulate a failing worker.
var scanBlock = WithinDistance

// DefaultBlockSize is the number of candidates handed to one worker.
const DefaultBlockSize = 20000

var (
	// ErrInvalidThreads is returned for a thread count below one.
	ErrInvalidThreads = errors.New("number of threads must be at least 1")
	// ErrInvalidBlockSize is returned for a block size below one.
	ErrInvalidBlockSize = errors.New("block size must be at least 1")
	// ErrWorkerFailed wraps a panic recovered from a worker.
	ErrWorkerFailed = errors.New("distance worker failed")
)

// Parallel is a Finder that splits the candidate list into contiguous
// blocks and scans them on a bounded pool of goroutines.
//
// The result does not depend on the number of threads or on the order in
// which blocks finish: each block produces its own set and the sets are
// merged by union once every block is done. If any block fails the whole
// search fails and no partial result is returned.
type Parallel struct {
	threads   int
	blockSize int
}

// NewParallel returns a Parallel finder using up to threads goroutines and
// blocks of blockSize candidates. A blockSize of 0 selects DefaultBlockSize.
func NewParallel(threads, blockSize int) (*Parallel, error) {
	if threads < 1 {
		return nil, errors.Wrapf(ErrInvalidThreads, "got %d", threads)
	}
	if blockSize == 0 {
		blockSize = DefaultBlockSize
	}
	if blockSize < 1 {
		return nil, errors.Wrapf(ErrInvalidBlockSize, "got %d", blockSize)
	}
	return &Parallel{threads: threads, blockSize: blockSize}, nil
}

// Threads returns the size of the worker pool.
func (p *Parallel) Threads() int { return p.threads }

// BlockSize returns the number of candidates per unit of work.
func (p *Parallel) BlockSize() int { return p.blockSize }

// Neighbors implements Finder.
func (p *Parallel) Neighbors(ctx context.Context, query string, candidates []string, maxDist int, m Metric) (mapset.Set[string], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p.threads == 1 || len(candidates) <= p.blockSize {
		return WithinDistance(query, candidates, maxDist, m), nil
	}

	numBlocks := (len(candidates) + p.blockSize - 1) / p.blockSize
	partial := make([]mapset.Set[string], numBlocks)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.threads)
	for i := 0; i < numBlocks; i++ {
		start := i * p.blockSize
		end := min(start+p.blockSize, len(candidates))
		block := candidates[start:end]
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = errors.Wrapf(ErrWorkerFailed, "block %d: %v", i, r)
				}
			}()
			if err := gctx.Err(); err != nil {
				return err
			}
			partial[i] = scanBlock(query, block, maxDist, m)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := mapset.NewThreadUnsafeSet[string]()
	for _, s := range partial {
		s.Each(func(v string) bool {
			result.Add(v)
			return false
		})
	}
	return result, nil
}
