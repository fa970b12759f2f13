package demux

import (
	"context"
	"os"
	"sort"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/smarini/Drop-seq/collapse"
	"github.com/smarini/Drop-seq/counter"
	"github.com/smarini/Drop-seq/editdistance"
)

// Config is a specification of barcode -> output files
type Config struct {
	Inputs       []string          `yaml:"inputs"`       // A list of file strings
	Destinations map[string]string `yaml:"destinations"` // Map of barcode sequences to output filenames
	Mismatches   int               `yaml:"mismatches"`
	Indels       bool              `yaml:"indels"` // mismatches also count insertions and deletions
	Threads      int               `yaml:"threads"`

	// Collapse, when set, corrects observed barcodes onto destination
	// barcodes instead of expanding mismatches.
	Collapse *CollapseConfig `yaml:"collapse"`
}

// CollapseConfig selects how observed barcodes are merged into destinations.
type CollapseConfig struct {
	EditDistance int  `yaml:"edit_distance"`
	Indels       bool `yaml:"indels"`
	MinCount     int  `yaml:"min_count"`
}

// ReadConfig loads a JSON or YAML config file.
func ReadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	c, err := ParseConfig(data)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", filename)
	}
	return c, nil
}

// ParseConfig decodes a config. JSON input is accepted as YAML.
func ParseConfig(data []byte) (*Config, error) {
	c := Config{Threads: 1}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	if c.Threads < 1 {
		c.Threads = 1
	}
	if c.Mismatches < 0 {
		return nil, errors.Errorf("mismatches must not be negative, got %d", c.Mismatches)
	}
	if c.Collapse != nil && c.Collapse.EditDistance < 0 {
		return nil, errors.Errorf("collapse edit_distance must not be negative, got %d", c.Collapse.EditDistance)
	}
	return &c, nil
}

// ApplyMismatches adds every barcode within Mismatches edits of a
// destination barcode to that destination. Edits are substitutions, plus
// insertions and deletions when Indels is set. A barcode within reach of more
// than one destination is dropped and returned as a conflict, sorted.
func (c *Config) ApplyMismatches() (conflicts []string) {
	if c.Mismatches == 0 {
		return nil
	}
	metric := editdistance.MetricFor(c.Indels)

	// expanded barcode -> destination barcodes reaching it
	claims := make(map[string][]string)
	for bc := range c.Destinations {
		editdistance.Expand(bc, c.Mismatches, metric, editdistance.DNA).Each(func(near string) bool {
			claims[near] = append(claims[near], bc)
			return false
		})
	}

	newDests := make(map[string]string, len(claims))
	for near, owners := range claims {
		if len(owners) > 1 {
			conflicts = append(conflicts, near)
			continue
		}
		newDests[near] = c.Destinations[owners[0]]
	}
	sort.Strings(conflicts)

	log.Debug().
		Str("metric", metric.String()).
		Int("destinations", len(c.Destinations)).
		Int("expanded", len(newDests)).
		Msg("expanded destination barcodes")

	c.Destinations = newDests
	c.Mismatches = 0
	return conflicts
}

// ApplyCollapse collapses the observed barcode counts using the destination
// barcodes as the only core barcodes, and routes every absorbed barcode to
// the destination of the barcode that absorbed it. A destination barcode
// absorbed by another destination keeps its own output and is returned as a
// conflict.
func (c *Config) ApplyCollapse(ctx context.Context, counts *counter.Counter[string]) (conflicts []string, err error) {
	if c.Collapse == nil {
		return nil, nil
	}
	counts = counts.Clone()
	counts.FilterByMinCount(c.Collapse.MinCount)

	// destinations absorb in order of how often they were observed
	ranked := counter.New[string]()
	for bc := range c.Destinations {
		counts.IncrementBy(bc, 0)
		ranked.SetCount(bc, counts.Count(bc))
	}
	core := ranked.KeysOrderedByCount(true)

	opts := collapse.DefaultOptions()
	opts.EditDistance = c.Collapse.EditDistance
	opts.FindIndels = c.Collapse.Indels
	if c.Threads > 1 {
		opts.NumThreads = c.Threads
	}
	collapser, err := collapse.New(opts)
	if err != nil {
		return nil, err
	}
	result, err := collapser.CollapseCore(ctx, core, counts)
	if err != nil {
		return nil, errors.Wrap(err, "collapsing observed barcodes")
	}

	newDests := make(map[string]string, len(c.Destinations)+result.NumCollapsed())
	for bc, dest := range c.Destinations {
		newDests[bc] = dest
	}
	for _, kept := range result.Retained() {
		for _, bc := range result[kept] {
			if _, isDest := c.Destinations[bc]; isDest {
				conflicts = append(conflicts, bc)
				continue
			}
			newDests[bc] = c.Destinations[kept]
		}
	}
	log.Debug().
		Int("destinations", len(c.Destinations)).
		Int("corrected", len(newDests)-len(c.Destinations)).
		Msg("collapsed barcodes onto destinations")

	c.Destinations = newDests
	c.Collapse = nil
	return conflicts, nil
}
