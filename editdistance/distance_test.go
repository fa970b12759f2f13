package editdistance

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		a, b   string
		metric Metric
		want   int
	}{
		{"AAAA", "AAAA", Hamming, 0},
		{"AAAA", "AAAT", Hamming, 1},
		{"AAAA", "TTTT", Hamming, 4},
		{"AC", "A", Hamming, Infinite},
		{"AC", "A", Levenshtein, 1},
		{"ACGT", "CGTA", Hamming, 4},
		{"ACGT", "CGTA", Levenshtein, 2},
		{"", "ACG", Levenshtein, 3},
		{"", "", Hamming, 0},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s_%s_%s", tt.a, tt.b, tt.metric), func(t *testing.T) {
			assert.Equal(t, tt.want, Distance(tt.a, tt.b, tt.metric))
			assert.Equal(t, tt.want, Distance(tt.b, tt.a, tt.metric))
		})
	}
}

func TestWithinAgreesWithDistance(t *testing.T) {
	words := []string{"", "A", "AC", "CA", "ACGT", "ACGA", "AGGA", "TTTT", "ACGTA", "CGT", "e", "é", "ééé", "éAC"}
	for _, m := range []Metric{Hamming, Levenshtein} {
		for _, a := range words {
			for _, b := range words {
				for d := -1; d <= 5; d++ {
					want := d >= 0 && Distance(a, b, m) <= d
					require.Equal(t, want, Within(a, b, d, m), "%q %q d=%d %s", a, b, d, m)
				}
			}
		}
	}
}

func TestWithinCountsRunesForLevenshtein(t *testing.T) {
	// three runes but six bytes
	assert.Equal(t, 3, Distance("ééé", "e", Levenshtein))
	assert.True(t, Within("ééé", "e", 3, Levenshtein))
	assert.False(t, Within("ééé", "e", 2, Levenshtein))
	assert.True(t, WithinDistance("ééé", []string{"e"}, 3, Levenshtein).ContainsOne("e"))
}

func TestWithinDistance(t *testing.T) {
	candidates := []string{"AAAT", "TTTT", "AAA", "AATT", "CAAA"}

	hamming := WithinDistance("AAAA", candidates, 1, Hamming)
	assert.ElementsMatch(t, []string{"AAAT", "CAAA"}, hamming.ToSlice())

	indel := WithinDistance("AAAA", candidates, 1, Levenshtein)
	assert.ElementsMatch(t, []string{"AAAT", "AAA", "CAAA"}, indel.ToSlice())

	assert.Equal(t, 0, WithinDistance("AAAA", nil, 3, Hamming).Cardinality())
}

func TestMetricNames(t *testing.T) {
	assert.Equal(t, Hamming, MetricFor(false))
	assert.Equal(t, Levenshtein, MetricFor(true))

	for _, name := range []string{"hamming", "Levenshtein", " indel "} {
		m, err := ParseMetric(name)
		require.NoError(t, err)
		assert.Equal(t, m, MetricFor(m == Levenshtein))
	}
	_, err := ParseMetric("jaccard")
	assert.ErrorIs(t, err, ErrUnknownMetric)
	assert.Equal(t, "hamming", Hamming.String())
	assert.Equal(t, "levenshtein", Levenshtein.String())
}

func TestSequentialHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Sequential{}.Neighbors(ctx, "A", []string{"C"}, 1, Hamming)
	assert.ErrorIs(t, err, context.Canceled)
}

func BenchmarkWithin(b *testing.B) {
	b.ReportAllocs()
	query := "ACGTACGTACGT"
	other := "ACGTACCTACGA"
	for _, m := range []Metric{Hamming, Levenshtein} {
		b.Run(m.String(), func(b *testing.B) {
			for n := 0; n < b.N; n++ {
				Within(query, other, 1, m)
			}
		})
	}
}
