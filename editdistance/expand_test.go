package editdistance

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandHamming(t *testing.T) {
	tests := []struct {
		input    string
		distance int
		want     []string
	}{
		{"A", -1, []string{}},
		{"A", 0, []string{"A"}},
		{"A", 1, []string{"A", "C", "G", "T", "N"}},
		{"A", 2, []string{"A", "C", "G", "T", "N"}},
		{"AT", 0, []string{"AT"}},
		{"AT", 1, []string{"AT", "CT", "GT", "TT", "NT", "AA", "AC", "AG", "AN"}},
		{"AT", 2, []string{"AT",
			"CT", "GT", "TT", "NT",
			"AA", "AC", "AG", "AN",
			"CA", "CC", "CG", "CN",
			"GA", "GC", "GG", "GN",
			"TA", "TC", "TG", "TN",
			"NA", "NC", "NG", "NN",
		}},
		{"A+T", 1, []string{"A+T", "C+T", "G+T", "T+T", "N+T", "A+A", "A+C", "A+G", "A+N"}},
	}

	for _, tt := range tests {
		got := Expand(tt.input, tt.distance, Hamming, DNA)
		assert.ElementsMatch(t, tt.want, got.ToSlice(), "%s at %d", tt.input, tt.distance)
	}
}

func TestExpandLevenshtein(t *testing.T) {
	got := Expand("AC", 1, Levenshtein, "AC")
	assert.ElementsMatch(t, []string{
		"AC",
		"CC", "AA", // substitutions
		"C", "A", // deletions
		"AAC", "CAC", "ACC", "ACA", // insertions
	}, got.ToSlice())

	// the separator is kept, edits happen around it
	got = Expand("A+C", 1, Levenshtein, "AC")
	assert.True(t, got.ContainsOne("+C"))
	assert.True(t, got.ContainsOne("A+AC"))
	assert.False(t, got.ContainsOne("AC"))
}

// allStrings lists every string over alphabet of length up to n.
func allStrings(alphabet string, n int) []string {
	out := []string{""}
	level := []string{""}
	for l := 1; l <= n; l++ {
		var next []string
		for _, s := range level {
			for j := 0; j < len(alphabet); j++ {
				next = append(next, s+alphabet[j:j+1])
			}
		}
		out = append(out, next...)
		level = next
	}
	return out
}

func TestExpandMatchesWithin(t *testing.T) {
	universe := allStrings(DNA, 5)
	for _, m := range []Metric{Hamming, Levenshtein} {
		for _, barcode := range []string{"ACG", "NNA"} {
			for d := 0; d <= 2; d++ {
				got := Expand(barcode, d, m, DNA)
				var want []string
				for _, s := range universe {
					if Within(barcode, s, d, m) {
						want = append(want, s)
					}
				}
				require.ElementsMatch(t, want, got.ToSlice(), "%s d=%d %s", barcode, d, m)
			}
		}
	}
}

func BenchmarkExpand(b *testing.B) {
	b.ReportAllocs()
	for _, m := range []Metric{Hamming, Levenshtein} {
		for mm := 0; mm <= 3; mm++ {
			b.Run(fmt.Sprintf("%s%d", m, mm),
				func(b *testing.B) {
					for n := 0; n < b.N; n++ {
						Expand("ACGTACGT+GATCGATC", mm, m, DNA)
					}
				})
		}
	}
}
