package cmd

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/smarini/Drop-seq/internal/demux"
)

var demuxCmd = &cobra.Command{
	Use:   "demux",
	Short: "Split FASTQ files by barcode",
	Long: `Split FASTQ files by barcode

The configuration file (JSON or YAML) lists the input files and maps
barcodes to output files:

  inputs: [reads.fq.gz]
  destinations:
    ACGTACGT: sample1.fq.gz
  mismatches: 1

Reads whose barcode lies within "mismatches" substitutions of a
destination barcode go to that destination; "indels: true" also allows
insertions and deletions. With a "collapse" section (edit_distance,
indels, min_count), observed barcodes are instead merged onto the
destination barcodes, most observed destination first. Barcodes
reachable from more than one destination are dropped.

`,
	Run: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)

		configFile := getFlagString(cmd, "configfile")
		if configFile == "" {
			checkError(errors.New("flag --configfile is needed"))
		}

		log.Info().Str("file", configFile).Msg("reading configuration")
		config, err := demux.ReadConfig(configFile)
		checkError(err)
		if cmd.Flags().Changed("threads") {
			config.Threads = opt.NumCPUs
		}

		log.Info().Msg("starting demux")
		stats, err := demux.Demux(context.Background(), config)
		checkError(err)
		log.Info().
			Int("reads", stats.Reads).
			Int("matched", stats.Matched).
			Int("conflicts", len(stats.Conflicts)).
			Msg("done")
	},
}

func init() {
	RootCmd.AddCommand(demuxCmd)

	demuxCmd.Flags().StringP("configfile", "c", "", "read configuration from `file`")
}
