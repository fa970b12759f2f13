// Package collapse merges barcodes that are near-duplicates of a more
// frequently observed barcode into that barcode's group.
//
// Collapse visits barcodes from the most to the least frequent; CollapseCore
// visits a caller supplied core list in its own order. Each visited core
// barcode absorbs every barcode still unassigned that lies within the edit
// distance, and absorbed barcodes are never visited again. With count order,
// larger barcodes therefore always absorb smaller ones: a barcode one edit
// away from both B and C is assigned to whichever of B and C was seen more
// often.
package collapse

import (
	"context"
	"slices"
	"sort"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/smarini/Drop-seq/counter"
	"github.com/smarini/Drop-seq/editdistance"
)

const (
	DefaultEditDistance           = 1
	DefaultReportProgressInterval = 100000

	// progress lines are only worth printing for large barcode pools
	progressMinPool = 10000
)

var (
	// ErrInvalidOptions is returned by New for an unusable configuration.
	ErrInvalidOptions = errors.New("invalid collapse options")
	// ErrUnknownCore is returned when a core barcode has no entry in the
	// barcode counts.
	ErrUnknownCore = errors.New("core barcode missing from barcode counts")
	// ErrDuplicateCore signals that a core barcode was visited twice.
	ErrDuplicateCore = errors.New("result already holds core barcode")
)

// Options configures a Collapser.
type Options struct {
	// EditDistance is the largest distance at which a barcode is absorbed.
	EditDistance int
	// FindIndels selects Levenshtein distance instead of Hamming distance.
	FindIndels bool
	// NumThreads bounds the goroutines used for each neighbor search.
	NumThreads int
	// BlockSize is the number of candidates per unit of parallel work.
	BlockSize int
	// ReportProgressInterval logs progress every that many core barcodes;
	// 0 disables progress lines.
	ReportProgressInterval int
	// Verbose logs a summary once the collapse is done.
	Verbose bool

	// Logger receives progress and summary lines. Nil means the global
	// zerolog logger.
	Logger *zerolog.Logger
	// Progress, if set, is called after every core barcode with the number
	// of core barcodes visited so far and the number still pending.
	Progress func(processed, remaining int)
}

// DefaultOptions returns Hamming distance 1 on a single thread.
func DefaultOptions() Options {
	return Options{
		EditDistance:           DefaultEditDistance,
		FindIndels:             false,
		NumThreads:             1,
		BlockSize:              editdistance.DefaultBlockSize,
		ReportProgressInterval: DefaultReportProgressInterval,
	}
}

// Validate checks opts without building anything.
func (o Options) Validate() error {
	switch {
	case o.EditDistance < 0:
		return errors.Wrapf(ErrInvalidOptions, "edit distance must not be negative, got %d", o.EditDistance)
	case o.NumThreads < 1:
		return errors.Wrapf(ErrInvalidOptions, "number of threads must be at least 1, got %d", o.NumThreads)
	case o.BlockSize < 1:
		return errors.Wrapf(ErrInvalidOptions, "block size must be at least 1, got %d", o.BlockSize)
	case o.ReportProgressInterval < 0:
		return errors.Wrapf(ErrInvalidOptions, "progress interval must not be negative, got %d", o.ReportProgressInterval)
	}
	return nil
}

// Metric returns the distance metric selected by FindIndels.
func (o Options) Metric() editdistance.Metric {
	return editdistance.MetricFor(o.FindIndels)
}

// Collapser runs the greedy barcode collapse.
type Collapser struct {
	opts   Options
	finder editdistance.Finder
	log    zerolog.Logger
}

// New validates opts and returns a Collapser.
func New(opts Options) (*Collapser, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	c := &Collapser{opts: opts, log: log.Logger}
	if opts.Logger != nil {
		c.log = *opts.Logger
	}
	if opts.NumThreads > 1 {
		p, err := editdistance.NewParallel(opts.NumThreads, opts.BlockSize)
		if err != nil {
			return nil, errors.Wrap(ErrInvalidOptions, err.Error())
		}
		c.finder = p
	} else {
		c.finder = editdistance.Sequential{}
	}
	return c, nil
}

// Options returns the configuration c was built with.
func (c *Collapser) Options() Options {
	return c.opts
}

// Collapse treats every barcode as a core barcode, visited in descending
// order of count.
func (c *Collapser) Collapse(ctx context.Context, barcodes *counter.Counter[string]) (Result, error) {
	return c.CollapseCore(ctx, barcodes.KeysOrderedByCount(true), barcodes)
}

// CollapseCore restricts the barcodes that may absorb others to core. Every
// barcode in barcodes may be absorbed, but only core barcodes may absorb.
// Barcodes that are neither core nor absorbed do not appear in the result.
//
// core is visited in the order given, so a caller that wants larger barcodes
// to absorb smaller ones passes core sorted by descending count, as Collapse
// and SelectCore do. A barcode listed twice fails with ErrDuplicateCore.
// Neither core nor barcodes is modified.
func (c *Collapser) CollapseCore(ctx context.Context, core []string, barcodes *counter.Counter[string]) (Result, error) {
	for _, b := range core {
		if !barcodes.Has(b) {
			return nil, errors.Wrapf(ErrUnknownCore, "%q", b)
		}
	}

	pending := slices.Clone(core)
	pool := barcodes.KeysOrderedByCount(true)
	absorbed := mapset.NewThreadUnsafeSetWithSize[string](len(pool))
	coreLeft := mapset.NewThreadUnsafeSet(pending...)
	result := make(Result, len(pending))
	metric := c.opts.Metric()

	start := time.Now()
	processed, collapsedSinceReport := 0, 0
	for _, b := range pending {
		if absorbed.ContainsOne(b) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrapf(err, "collapse stopped after %d core barcodes", processed)
		}
		if _, ok := result[b]; ok {
			return nil, errors.Wrapf(ErrDuplicateCore, "%q", b)
		}
		processed++
		coreLeft.Remove(b)

		pool = removeOne(pool, b)
		near, err := c.finder.Neighbors(ctx, b, pool, c.opts.EditDistance, metric)
		if err != nil {
			return nil, errors.Wrapf(err, "searching neighbors of %q", b)
		}

		members := make([]string, 0, near.Cardinality())
		members = append(members, near.ToSlice()...)
		sort.Strings(members)
		result[b] = members
		collapsedSinceReport += len(members)

		if len(members) > 0 {
			absorbed.Append(members...)
			coreLeft.RemoveAll(members...)
			pool = removeAll(pool, near)
		}

		if c.opts.Progress != nil {
			c.opts.Progress(processed, coreLeft.Cardinality())
		}
		if c.opts.ReportProgressInterval != 0 && processed%c.opts.ReportProgressInterval == 0 {
			if barcodes.Len() > progressMinPool {
				c.log.Info().
					Int("processed", processed).
					Int("pool_left", len(pool)).
					Int("collapsed", collapsedSinceReport).
					Msg("collapsing barcodes")
			}
			collapsedSinceReport = 0
		}
	}

	if c.opts.Verbose {
		c.log.Info().
			Int("threads", c.opts.NumThreads).
			Dur("elapsed", time.Since(start)).
			Msg("collapse finished")
		c.log.Info().
			Int("core_start", len(core)).
			Int("core_end", processed).
			Int("collapsed", len(core)-processed).
			Msg("core barcodes")
	}
	return result, nil
}

// SelectCore returns the n most frequent barcodes, or all of them if there
// are fewer than n.
func SelectCore(barcodes *counter.Counter[string], n int) []string {
	keys := barcodes.KeysOrderedByCount(true)
	if n >= 0 && n < len(keys) {
		keys = keys[:n]
	}
	return keys
}

func removeOne(pool []string, b string) []string {
	for i, s := range pool {
		if s == b {
			return append(pool[:i], pool[i+1:]...)
		}
	}
	return pool
}

func removeAll(pool []string, drop mapset.Set[string]) []string {
	kept := pool[:0]
	for _, s := range pool {
		if !drop.ContainsOne(s) {
			kept = append(kept, s)
		}
	}
	return kept
}
