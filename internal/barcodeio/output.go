package barcodeio

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/shenwei356/xopen"

	"github.com/smarini/Drop-seq/collapse"
	"github.com/smarini/Drop-seq/counter"
)

// ResultHeader is the first line written by FormatResult.
const ResultHeader = "barcode\tcount\tnum_merged\tmerged"

// WriteResult writes result to path. See FormatResult.
func WriteResult(path string, result collapse.Result, counts *counter.Counter[string]) error {
	w, err := xopen.Wopen(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}
	if err := FormatResult(w, result, counts); err != nil {
		w.Close()
		return errors.Wrapf(err, "writing %s", path)
	}
	return errors.Wrapf(w.Close(), "closing %s", path)
}

// FormatResult writes one line per retained barcode: the barcode, its count
// after merging, the number of barcodes merged into it and those barcodes
// separated by commas. Lines are ordered by merged count, largest first.
func FormatResult(w io.Writer, result collapse.Result, counts *counter.Counter[string]) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, ResultHeader)

	merged := result.MergeCounts(counts)
	for _, bc := range merged.KeysOrderedByCount(true) {
		members := result[bc]
		fmt.Fprintf(bw, "%s\t%d\t%d\t%s\n", bc, merged.Count(bc), len(members), strings.Join(members, ","))
	}
	return bw.Flush()
}
