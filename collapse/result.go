package collapse

import (
	"sort"

	"github.com/smarini/Drop-seq/counter"
)

// Result maps each retained core barcode to the sorted barcodes merged into
// it. A retained barcode that absorbed nothing maps to an empty slice.
type Result map[string][]string

// Retained returns the retained barcodes in ascending order.
func (r Result) Retained() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// NumCollapsed returns how many barcodes were merged into another one.
func (r Result) NumCollapsed() int {
	n := 0
	for _, merged := range r {
		n += len(merged)
	}
	return n
}

// Lookup maps every barcode in r to the retained barcode it belongs to.
// Retained barcodes map to themselves.
func (r Result) Lookup() map[string]string {
	m := make(map[string]string, len(r)+r.NumCollapsed())
	for core, merged := range r {
		m[core] = core
		for _, b := range merged {
			m[b] = core
		}
	}
	return m
}

// MergeCounts returns the counts of the retained barcodes, each increased
// by the counts of the barcodes merged into it. Barcodes missing from r are
// left out.
func (r Result) MergeCounts(counts *counter.Counter[string]) *counter.Counter[string] {
	merged := counter.New[string]()
	for core, members := range r {
		merged.IncrementBy(core, counts.Count(core))
		for _, b := range members {
			merged.IncrementBy(core, counts.Count(b))
		}
	}
	return merged
}
