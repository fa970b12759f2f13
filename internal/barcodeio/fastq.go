package barcodeio

import (
	"bytes"

	"github.com/pkg/errors"
	"github.com/shenwei356/bio/seqio/fastx"

	"github.com/smarini/Drop-seq/counter"
)

const (
	chunkBufSize = 10
	chunkSize    = 1000
)

// BarcodeFromDesc returns the part of a FASTQ description after its last
// colon, e.g. "ACGTACGT+GATCGATC" for "1:N:0:ACGTACGT+GATCGATC". A
// description without a colon is returned whole.
func BarcodeFromDesc(desc []byte) []byte {
	return desc[bytes.LastIndexByte(desc, ':')+1:]
}

// CountFastq counts the barcode of every read in the given FASTQ files.
func CountFastq(paths []string) (*counter.Counter[string], error) {
	counts := counter.New[string]()
	for _, path := range paths {
		if err := countFastqFile(path, counts); err != nil {
			return nil, err
		}
	}
	return counts, nil
}

func countFastqFile(path string, counts *counter.Counter[string]) error {
	fq, err := fastx.NewDefaultReader(path)
	if err != nil {
		return errors.Wrapf(err, "opening %s", path)
	}
	defer fq.Close()

	for chunk := range fq.ChunkChan(chunkBufSize, chunkSize) {
		if chunk.Err != nil {
			return errors.Wrapf(chunk.Err, "reading %s", path)
		}
		for _, record := range chunk.Data {
			counts.Increment(string(BarcodeFromDesc(record.Desc)))
		}
	}
	return nil
}
