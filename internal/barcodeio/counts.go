// Package barcodeio reads barcode counts and barcode lists, counts barcodes
// found in FASTQ headers, and writes collapse results. Files may be plain or
// gzipped; "-" means stdin or stdout.
package barcodeio

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/shenwei356/xopen"

	"github.com/smarini/Drop-seq/counter"
)

// ReadCounts loads a barcode count table from path. See ParseCounts.
func ReadCounts(path string) (*counter.Counter[string], error) {
	r, err := xopen.Ropen(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer r.Close()

	counts, err := ParseCounts(r)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	return counts, nil
}

// ParseCounts reads lines of "barcode<TAB>count". A line holding only a
// barcode counts as one observation. Blank lines and lines starting with '#'
// are skipped, and a barcode listed twice has its counts added.
func ParseCounts(r io.Reader) (*counter.Counter[string], error) {
	counts := counter.New[string]()
	err := eachLine(r, func(lineNo int, fields []string) error {
		switch len(fields) {
		case 1:
			counts.Increment(fields[0])
		case 2:
			n, err := strconv.Atoi(fields[1])
			if err != nil {
				return errors.Errorf("line %d: bad count %q", lineNo, fields[1])
			}
			if n < 0 {
				return errors.Errorf("line %d: negative count %d", lineNo, n)
			}
			counts.IncrementBy(fields[0], n)
		default:
			return errors.Errorf("line %d: expected 1 or 2 columns, got %d", lineNo, len(fields))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return counts, nil
}

// ReadBarcodes loads a list of barcodes, one per line, from path.
func ReadBarcodes(path string) ([]string, error) {
	r, err := xopen.Ropen(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer r.Close()

	barcodes, err := ParseBarcodes(r)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	return barcodes, nil
}

// ParseBarcodes reads the first column of every line, in file order.
func ParseBarcodes(r io.Reader) ([]string, error) {
	var barcodes []string
	err := eachLine(r, func(_ int, fields []string) error {
		barcodes = append(barcodes, fields[0])
		return nil
	})
	return barcodes, err
}

func eachLine(r io.Reader, fn func(lineNo int, fields []string) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := fn(lineNo, strings.Fields(line)); err != nil {
			return err
		}
	}
	return scanner.Err()
}
