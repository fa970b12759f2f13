package cmd

import (
	"runtime"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// Options holds the persistent flags shared by every subcommand.
type Options struct {
	NumCPUs    int
	Verbose    bool
	CPUProfile string
	MemProfile string
}

func getOptions(cmd *cobra.Command) *Options {
	threads := getFlagInt(cmd, "threads")
	if threads < 1 {
		threads = runtime.NumCPU()
	}
	return &Options{
		NumCPUs:    threads,
		Verbose:    getFlagBool(cmd, "verbose"),
		CPUProfile: getFlagString(cmd, "cpuprofile"),
		MemProfile: getFlagString(cmd, "memprofile"),
	}
}

func checkError(err error) {
	if err != nil {
		log.Fatal().Err(err).Send()
	}
}

func getFlagInt(cmd *cobra.Command, flag string) int {
	value, err := cmd.Flags().GetInt(flag)
	checkError(err)
	return value
}

func getFlagBool(cmd *cobra.Command, flag string) bool {
	value, err := cmd.Flags().GetBool(flag)
	checkError(err)
	return value
}

func getFlagString(cmd *cobra.Command, flag string) string {
	value, err := cmd.Flags().GetString(flag)
	checkError(err)
	return value
}

func getFlagStringSlice(cmd *cobra.Command, flag string) []string {
	value, err := cmd.Flags().GetStringSlice(flag)
	checkError(err)
	return value
}
