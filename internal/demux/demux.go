// Package demux splits FASTQ files into per-barcode outputs.
package demux

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/shenwei356/bio/seqio/fastx"

	"github.com/smarini/Drop-seq/internal/barcodeio"
)

const (
	writerCacheSize = 128
	chunkBufSize    = 10
	chunkSize       = 1000
)

// Stats summarizes a demux run.
type Stats struct {
	Reads     int
	Matched   int
	Conflicts []string
}

// Demux writes every read of config.Inputs whose barcode has a destination
// to that destination. Destinations are first widened by collapse correction
// when config.Collapse is set, and by mismatch expansion otherwise.
func Demux(ctx context.Context, config *Config) (*Stats, error) {
	stats := &Stats{}

	if config.Collapse != nil {
		log.Info().Strs("inputs", config.Inputs).Msg("counting observed barcodes")
		counts, err := barcodeio.CountFastq(config.Inputs)
		if err != nil {
			return nil, err
		}
		stats.Conflicts, err = config.ApplyCollapse(ctx, counts)
		if err != nil {
			return nil, err
		}
	} else {
		stats.Conflicts = config.ApplyMismatches()
	}
	if len(stats.Conflicts) > 0 {
		log.Warn().Int("conflicts", len(stats.Conflicts)).Msg("barcodes matching more than one destination were dropped")
	}

	destinations, writers, err := openDestinations(config.Destinations)
	if err != nil {
		return nil, err
	}
	err = route(ctx, config.Inputs, destinations, stats)
	for _, w := range writers {
		if cerr := w.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// openDestinations opens each output file once, however many barcodes map
// to it.
func openDestinations(dests map[string]string) (map[string]*RecordWriter, []*RecordWriter, error) {
	destinations := make(map[string]*RecordWriter, len(dests))
	fileLookup := make(map[string]*RecordWriter)
	var writers []*RecordWriter

	for barcode, filename := range dests {
		if w, opened := fileLookup[filename]; opened {
			destinations[barcode] = w
			continue
		}
		w, err := NewRecordWriter(filename, writerCacheSize)
		if err != nil {
			for _, open := range writers {
				open.Close()
			}
			return nil, nil, errors.Wrapf(err, "opening %s", filename)
		}
		destinations[barcode] = w
		fileLookup[filename] = w
		writers = append(writers, w)
	}
	return destinations, writers, nil
}

func route(ctx context.Context, inputs []string, destinations map[string]*RecordWriter, stats *Stats) error {
	for _, inputFilename := range inputs {
		if err := ctx.Err(); err != nil {
			return err
		}
		fq, err := fastx.NewDefaultReader(inputFilename)
		if err != nil {
			return errors.Wrapf(err, "opening %s", inputFilename)
		}

		for chunk := range fq.ChunkChan(chunkBufSize, chunkSize) {
			if chunk.Err != nil {
				fq.Close()
				return errors.Wrapf(chunk.Err, "reading %s", inputFilename)
			}
			for _, record := range chunk.Data {
				stats.Reads++
				barcode := barcodeio.BarcodeFromDesc(record.Desc)
				if dest, ok := destinations[string(barcode)]; ok {
					dest.Write(record)
					stats.Matched++
				}
			}
		}
		fq.Close()
	}
	return nil
}
