package demux

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smarini/Drop-seq/counter"
	"github.com/smarini/Drop-seq/internal/barcodeio"
)

func TestParseConfig(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		c, err := ParseConfig([]byte(`{"inputs": ["in.fq.gz"], "destinations": {"AAAA": "a.fq.gz"}, "mismatches": 1}`))
		require.NoError(t, err)
		assert.Equal(t, []string{"in.fq.gz"}, c.Inputs)
		assert.Equal(t, map[string]string{"AAAA": "a.fq.gz"}, c.Destinations)
		assert.Equal(t, 1, c.Mismatches)
		assert.Equal(t, 1, c.Threads)
		assert.Nil(t, c.Collapse)
	})

	t.Run("yaml", func(t *testing.T) {
		c, err := ParseConfig([]byte(strings.Join([]string{
			"inputs: [a.fq, b.fq]",
			"destinations:",
			"  AAAA: a.out.fq",
			"threads: 4",
			"collapse:",
			"  edit_distance: 2",
			"  indels: true",
			"  min_count: 3",
		}, "\n")))
		require.NoError(t, err)
		assert.Equal(t, 4, c.Threads)
		require.NotNil(t, c.Collapse)
		assert.Equal(t, CollapseConfig{EditDistance: 2, Indels: true, MinCount: 3}, *c.Collapse)
	})

	for _, bad := range []string{
		`{"mismatches": -1}`,
		"collapse:\n  edit_distance: -2\n",
		"inputs: {",
	} {
		_, err := ParseConfig([]byte(bad))
		assert.Error(t, err, bad)
	}
}

func TestApplyMismatches(t *testing.T) {
	c := &Config{
		Destinations: map[string]string{"AA": "a", "TT": "t"},
		Mismatches:   1,
	}
	conflicts := c.ApplyMismatches()

	// AT and TA are one substitution from both destinations
	assert.Equal(t, []string{"AT", "TA"}, conflicts)
	assert.Equal(t, "a", c.Destinations["AC"])
	assert.Equal(t, "t", c.Destinations["TN"])
	assert.NotContains(t, c.Destinations, "AT")
	assert.NotContains(t, c.Destinations, "A", "deletions need indels")
	assert.Equal(t, 0, c.Mismatches)
	assert.Empty(t, (&Config{Destinations: map[string]string{"AA": "a"}}).ApplyMismatches())
}

func TestApplyMismatchesWithIndels(t *testing.T) {
	c := &Config{
		Destinations: map[string]string{"ACGT": "a", "TTTT": "t"},
		Mismatches:   1,
		Indels:       true,
	}
	assert.Empty(t, c.ApplyMismatches())
	for _, bc := range []string{"ACGT", "CGT", "ACGTA", "ACCGT", "ACGA"} {
		assert.Equal(t, "a", c.Destinations[bc], bc)
	}
	assert.Equal(t, "t", c.Destinations["TTT"])
	assert.NotContains(t, c.Destinations, "ACG+T")
}

func TestParseConfigIndels(t *testing.T) {
	c, err := ParseConfig([]byte("mismatches: 1\nindels: true\n"))
	require.NoError(t, err)
	assert.True(t, c.Indels)
}

func TestApplyCollapse(t *testing.T) {
	counts := counter.FromMap(map[string]int{
		"AAAA": 5, "AAAT": 3, "GGGG": 4, "TTTA": 2, "TTTT": 1, "TTTG": 1,
	})
	c := &Config{
		Destinations: map[string]string{"AAAA": "a", "TTTT": "t"},
		Threads:      2,
		Collapse:     &CollapseConfig{EditDistance: 1, MinCount: 2},
	}
	conflicts, err := c.ApplyCollapse(context.Background(), counts)
	require.NoError(t, err)
	assert.Empty(t, conflicts)
	assert.Equal(t, map[string]string{
		"AAAA": "a", "AAAT": "a",
		"TTTT": "t", "TTTA": "t",
	}, c.Destinations)
	assert.Nil(t, c.Collapse)
	assert.Equal(t, 1, counts.Count("TTTG"), "input counts must not be filtered in place")
}

func TestApplyCollapseDestinationConflict(t *testing.T) {
	counts := counter.FromMap(map[string]int{"AAAA": 5, "AAAT": 3, "AATT": 1})
	c := &Config{
		Destinations: map[string]string{"AAAA": "a", "AAAT": "b"},
		Collapse:     &CollapseConfig{EditDistance: 1},
	}
	conflicts, err := c.ApplyCollapse(context.Background(), counts)
	require.NoError(t, err)
	assert.Equal(t, []string{"AAAT"}, conflicts)
	assert.Equal(t, "b", c.Destinations["AAAT"])
	// AATT was only reachable through AAAT, which never got a round
	assert.NotContains(t, c.Destinations, "AATT")
}

func TestApplyCollapseRanksDestinationsByCount(t *testing.T) {
	counts := counter.FromMap(map[string]int{"AAAA": 2, "AAAT": 9, "AATT": 1})
	for i := 0; i < 20; i++ {
		c := &Config{
			Destinations: map[string]string{"AAAA": "a", "AAAT": "b"},
			Collapse:     &CollapseConfig{EditDistance: 1},
		}
		conflicts, err := c.ApplyCollapse(context.Background(), counts)
		require.NoError(t, err)
		assert.Equal(t, []string{"AAAA"}, conflicts)
		assert.Equal(t, "b", c.Destinations["AATT"])
	}
}

func writeFastq(t *testing.T, path string, barcodes ...string) {
	t.Helper()
	var b strings.Builder
	for i, bc := range barcodes {
		fmt.Fprintf(&b, "@read%d 1:N:0:%s\nACGT\n+\nIIII\n", i, bc)
	}
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0600))
}

func TestDemux(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.fq")
	writeFastq(t, in, "AAAA", "AAAA", "AAAT", "TTTT", "TTTA", "GGGG", "AAAA")

	out := func(name string) string { return filepath.Join(dir, name) }

	t.Run("mismatches", func(t *testing.T) {
		c := &Config{
			Inputs:       []string{in},
			Destinations: map[string]string{"AAAA": out("a.fq"), "TTTT": out("t.fq.gz")},
			Mismatches:   1,
		}
		stats, err := Demux(context.Background(), c)
		require.NoError(t, err)
		assert.Equal(t, 7, stats.Reads)
		assert.Equal(t, 6, stats.Matched)

		a, err := barcodeio.CountFastq([]string{out("a.fq")})
		require.NoError(t, err)
		assert.Equal(t, 3, a.Count("AAAA"))
		assert.Equal(t, 1, a.Count("AAAT"))

		tt, err := barcodeio.CountFastq([]string{out("t.fq.gz")})
		require.NoError(t, err)
		assert.Equal(t, 2, tt.TotalCount())
	})

	t.Run("collapse with shared output", func(t *testing.T) {
		c := &Config{
			Inputs:       []string{in},
			Destinations: map[string]string{"AAAA": out("shared.fq"), "TTTT": out("shared.fq")},
			Collapse:     &CollapseConfig{EditDistance: 1},
		}
		stats, err := Demux(context.Background(), c)
		require.NoError(t, err)
		assert.Equal(t, 6, stats.Matched)

		shared, err := barcodeio.CountFastq([]string{out("shared.fq")})
		require.NoError(t, err)
		assert.Equal(t, 6, shared.TotalCount())
		assert.False(t, shared.Has("GGGG"))
	})

	t.Run("missing input", func(t *testing.T) {
		c := &Config{
			Inputs:       []string{out("missing.fq")},
			Destinations: map[string]string{"AAAA": out("x.fq")},
		}
		_, err := Demux(context.Background(), c)
		assert.Error(t, err)
	})
}

func TestReadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"inputs": ["x.fq"], "mismatches": 2, "threads": 3}`), 0600))
	c, err := ReadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Mismatches)
	assert.Equal(t, 3, c.Threads)

	_, err = ReadConfig(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}
