// Package cmd implements the barcodes command line tool.
package cmd

import (
	"os"
	"runtime"
	"runtime/pprof"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var cpuProfile *os.File

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "barcodes",
	Short: "Collapse cell barcodes by edit distance and demultiplex reads",
	Long: `barcodes merges cell barcodes that are near-duplicates of a more
frequently observed barcode, and splits FASTQ files by barcode.
`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)
		setupLogging(opt.Verbose)

		if opt.CPUProfile != "" {
			f, err := os.Create(opt.CPUProfile)
			if err != nil {
				log.Fatal().Err(err).Msg("could not create CPU profile")
			}
			if err := pprof.StartCPUProfile(f); err != nil {
				log.Fatal().Err(err).Msg("could not start CPU profile")
			}
			cpuProfile = f
		}
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)
		if cpuProfile != nil {
			pprof.StopCPUProfile()
			cpuProfile.Close()
		}
		if opt.MemProfile != "" {
			f, err := os.Create(opt.MemProfile)
			if err != nil {
				log.Fatal().Err(err).Msg("could not create memory profile")
			}
			defer f.Close()
			runtime.GC() // get up-to-date statistics
			if err := pprof.WriteHeapProfile(f); err != nil {
				log.Fatal().Err(err).Msg("could not write memory profile")
			}
		}
	},
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupLogging(verbose bool) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: true})
}

func init() {
	RootCmd.PersistentFlags().IntP("threads", "j", 1, "number of threads for neighbor searches, 0 for all CPUs")
	RootCmd.PersistentFlags().BoolP("verbose", "", false, "print verbose information")
	RootCmd.PersistentFlags().StringP("cpuprofile", "", "", "write cpu profile to `file`")
	RootCmd.PersistentFlags().StringP("memprofile", "", "", "write memory profile to `file`")
}
