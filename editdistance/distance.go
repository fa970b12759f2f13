// Package editdistance finds the strings of a candidate list that lie within
// a maximum edit distance of a query string.
//
// Two metrics are supported. Hamming counts substituted positions and is
// only defined for strings of equal length. Levenshtein additionally allows
// insertions and deletions, each at unit cost.
package editdistance

import (
	"context"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/pkg/errors"
)

// Infinite is the distance reported between strings that cannot be
// compared under a metric, e.g. unequal lengths under Hamming.
const Infinite = math.MaxInt

// Metric selects how distance between two barcodes is measured.
type Metric int

const (
	// Hamming allows substitutions only.
	Hamming Metric = iota
	// Levenshtein allows substitutions, insertions and deletions.
	Levenshtein
)

// ErrUnknownMetric is returned by ParseMetric for unrecognised names.
var ErrUnknownMetric = errors.New("unknown distance metric")

// MetricFor maps the findIndels switch used throughout the tools to a Metric.
func MetricFor(findIndels bool) Metric {
	if findIndels {
		return Levenshtein
	}
	return Hamming
}

// ParseMetric accepts "hamming", "levenshtein" or "indel" in any case.
func ParseMetric(name string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "hamming":
		return Hamming, nil
	case "levenshtein", "indel", "indels":
		return Levenshtein, nil
	}
	return 0, errors.Wrapf(ErrUnknownMetric, "%q", name)
}

func (m Metric) String() string {
	switch m {
	case Hamming:
		return "hamming"
	case Levenshtein:
		return "levenshtein"
	}
	return "unknown"
}

// HammingDistance returns the number of byte positions at which a and b
// differ, or Infinite if their lengths differ.
func HammingDistance(a, b string) int {
	if len(a) != len(b) {
		return Infinite
	}
	d := 0
	for i := 0; i < len(a); i++ {
		if a[i] != b[i] {
			d++
		}
	}
	return d
}

// Distance returns the distance between a and b under m.
func Distance(a, b string, m Metric) int {
	if m == Levenshtein {
		return levenshtein.ComputeDistance(a, b)
	}
	return HammingDistance(a, b)
}

// Within reports whether a and b are at most maxDist apart under m. It stops
// early once the answer is known. Levenshtein counts runes, Hamming bytes,
// matching Distance.
func Within(a, b string, maxDist int, m Metric) bool {
	if maxDist < 0 {
		return false
	}
	if m == Levenshtein {
		diff := utf8.RuneCountInString(a) - utf8.RuneCountInString(b)
		if diff < 0 {
			diff = -diff
		}
		if diff > maxDist {
			return false
		}
		return levenshtein.ComputeDistance(a, b) <= maxDist
	}

	if len(a) != len(b) {
		return false
	}
	d := 0
	for i := 0; i < len(a); i++ {
		if a[i] != b[i] {
			d++
			if d > maxDist {
				return false
			}
		}
	}
	return true
}

// WithinDistance returns the subset of candidates at most maxDist away from
// query. candidates must not contain query itself.
func WithinDistance(query string, candidates []string, maxDist int, m Metric) mapset.Set[string] {
	result := mapset.NewThreadUnsafeSet[string]()
	for _, c := range candidates {
		if Within(query, c, maxDist, m) {
			result.Add(c)
		}
	}
	return result
}

// Finder searches a candidate list for the neighbors of a query.
type Finder interface {
	Neighbors(ctx context.Context, query string, candidates []string, maxDist int, m Metric) (mapset.Set[string], error)
}

// Sequential is a Finder that scans candidates on the calling goroutine.
type Sequential struct{}

// Neighbors implements Finder.
func (Sequential) Neighbors(ctx context.Context, query string, candidates []string, maxDist int, m Metric) (mapset.Set[string], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return WithinDistance(query, candidates, maxDist, m), nil
}
