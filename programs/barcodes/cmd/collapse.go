package cmd

import (
	"context"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"github.com/smarini/Drop-seq/collapse"
	"github.com/smarini/Drop-seq/counter"
	"github.com/smarini/Drop-seq/internal/barcodeio"
)

var collapseCmd = &cobra.Command{
	Use:   "collapse",
	Short: "Merge barcodes within an edit distance of a more frequent barcode",
	Long: `Merge barcodes within an edit distance of a more frequent barcode

Barcodes are visited from the most to the least frequent. Each visited
barcode absorbs every barcode not yet absorbed that lies within the edit
distance (-d). Absorbed barcodes are never visited themselves.

Input (one of):
  1. --counts: tab or space delimited "barcode[<tab>count]" lines,
     a barcode without a count counts once.
  2. --fastq: FASTQ files, the barcode is the text after the last ':'
     of each read header.

Core barcodes:
  By default every barcode may absorb others, most frequent first.
  --core restricts this to the barcodes listed in a file, visited in
  file order; --num-core to the N most frequent ones (or the first N of
  the --core file). Core barcodes are never dropped by --min-count.

Output:
  barcode, merged count, number of merged barcodes and the merged
  barcodes, largest first. Files ending in .gz are gzipped.

`,
	Run: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)

		timeStart := time.Now()
		defer func() {
			if opt.Verbose {
				log.Info().Str("elapsed", time.Since(timeStart).String()).Msg("done")
			}
		}()

		settings := defaultCollapseSettings()
		if file := getFlagString(cmd, "config"); file != "" {
			var err error
			settings, err = readCollapseSettings(file)
			checkError(err)
		}
		checkError(settings.override(cmd.Flags()))

		countsFile := getFlagString(cmd, "counts")
		fastqFiles := getFlagStringSlice(cmd, "fastq")
		coreFile := getFlagString(cmd, "core")
		outFile := getFlagString(cmd, "out")

		counts, err := loadCounts(countsFile, fastqFiles)
		checkError(err)

		var core []string
		if coreFile != "" {
			core, err = barcodeio.ReadBarcodes(coreFile)
			checkError(err)
			if settings.NumCore >= 0 && settings.NumCore < len(core) {
				core = core[:settings.NumCore]
			}
		}

		dropped := filterMinCount(counts, settings.MinCount, core)
		log.Info().
			Int("barcodes", counts.Len()).
			Int("reads", counts.TotalCount()).
			Int("below_min_count", dropped).
			Msg("barcodes loaded")

		if coreFile == "" {
			core = collapse.SelectCore(counts, settings.NumCore)
		}

		opts := settings.options(opt.NumCPUs, opt.Verbose)

		var pbs *mpb.Progress
		var bar *mpb.Bar
		if opt.Verbose {
			pbs = mpb.New(mpb.WithWidth(40), mpb.WithOutput(os.Stderr))
			bar = pbs.AddBar(int64(len(core)),
				mpb.PrependDecorators(
					decor.Name("core barcodes: ", decor.WC{W: len("core barcodes: "), C: decor.DindentRight}),
					decor.Name("", decor.WCSyncSpaceR),
					decor.CountersNoUnit("%d / %d", decor.WCSyncWidth),
				),
				mpb.AppendDecorators(
					decor.Name("elapsed: ", decor.WC{W: len("elapsed: ")}),
					decor.Elapsed(decor.ET_STYLE_GO),
					decor.OnComplete(decor.Name(""), ". done"),
				),
			)
			opts.Progress = func(processed, remaining int) {
				bar.SetTotal(int64(processed+remaining), false)
				bar.SetCurrent(int64(processed))
			}
		}

		collapser, err := collapse.New(opts)
		checkError(err)
		result, err := collapser.CollapseCore(context.Background(), core, counts)
		if pbs != nil {
			if err != nil {
				bar.Abort(false)
			} else {
				bar.SetTotal(-1, true)
			}
			pbs.Wait()
		}
		checkError(err)

		log.Info().
			Int("retained", len(result)).
			Int("collapsed", result.NumCollapsed()).
			Msg("collapse finished")

		checkError(barcodeio.WriteResult(outFile, result, counts))
	},
}

var (
	errCountsAndFastq = errors.New("flags --counts and --fastq are mutually exclusive")
	errNoInput        = errors.New("one of flags --counts and --fastq is needed")
)

func loadCounts(countsFile string, fastqFiles []string) (*counter.Counter[string], error) {
	switch {
	case countsFile != "" && len(fastqFiles) > 0:
		return nil, errCountsAndFastq
	case countsFile != "":
		return barcodeio.ReadCounts(countsFile)
	case len(fastqFiles) > 0:
		return barcodeio.CountFastq(fastqFiles)
	}
	return nil, errNoInput
}

// filterMinCount drops barcodes seen fewer than minCount times, except those
// listed in keep, and returns how many were dropped.
func filterMinCount(counts *counter.Counter[string], minCount int, keep []string) int {
	if minCount <= 0 {
		return 0
	}
	kept := make(map[string]int, len(keep))
	for _, bc := range keep {
		if counts.Has(bc) {
			kept[bc] = counts.Count(bc)
		}
	}
	before := counts.Len()
	counts.FilterByMinCount(minCount)
	for bc, n := range kept {
		counts.SetCount(bc, n)
	}
	return before - counts.Len()
}

func init() {
	RootCmd.AddCommand(collapseCmd)

	defaults := defaultCollapseSettings()

	collapseCmd.Flags().StringP("counts", "", "", `barcode counts file`)
	collapseCmd.Flags().StringSliceP("fastq", "", nil, `FASTQ files to count barcodes from`)
	collapseCmd.Flags().StringP("core", "", "", `file of core barcodes, one per line`)
	collapseCmd.Flags().IntP("num-core", "", defaults.NumCore, `only the N most frequent barcodes may absorb others, -1 for all`)
	collapseCmd.Flags().IntP("min-count", "", defaults.MinCount, `drop barcodes seen fewer times than this before collapsing, core barcodes from --core are kept`)

	collapseCmd.Flags().IntP("edit-distance", "d", defaults.EditDistance, `largest edit distance at which a barcode is absorbed`)
	collapseCmd.Flags().BoolP("indels", "", defaults.Indels, `use Levenshtein distance instead of Hamming distance`)
	collapseCmd.Flags().IntP("block-size", "", defaults.BlockSize, `candidates per unit of parallel work`)
	collapseCmd.Flags().IntP("report-interval", "", defaults.ReportInterval, `log progress every N core barcodes, 0 to disable`)

	collapseCmd.Flags().StringP("out", "o", "-", `output file, "-" for stdout`)
	collapseCmd.Flags().StringP("config", "", "", `YAML file with collapse settings, overridden by flags`)
}
