package cmd

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/smarini/Drop-seq/collapse"
)

// collapseSettings is the file form of the collapse flags. Flags given on
// the command line win over the file.
type collapseSettings struct {
	EditDistance   int  `yaml:"edit_distance"`
	Indels         bool `yaml:"indels"`
	BlockSize      int  `yaml:"block_size"`
	ReportInterval int  `yaml:"report_interval"`
	MinCount       int  `yaml:"min_count"`
	NumCore        int  `yaml:"num_core"`
}

func defaultCollapseSettings() collapseSettings {
	opts := collapse.DefaultOptions()
	return collapseSettings{
		EditDistance:   opts.EditDistance,
		Indels:         opts.FindIndels,
		BlockSize:      opts.BlockSize,
		ReportInterval: opts.ReportProgressInterval,
		NumCore:        -1,
	}
}

func readCollapseSettings(filename string) (collapseSettings, error) {
	s := defaultCollapseSettings()
	data, err := os.ReadFile(filename)
	if err != nil {
		return s, err
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, errors.Wrapf(err, "parsing %s", filename)
	}
	return s, nil
}

// override copies every flag the user set explicitly into s.
func (s *collapseSettings) override(flags *pflag.FlagSet) error {
	var err error
	set := func(name string, get func() error) {
		if err == nil && flags.Changed(name) {
			err = get()
		}
	}
	set("edit-distance", func() (e error) { s.EditDistance, e = flags.GetInt("edit-distance"); return })
	set("indels", func() (e error) { s.Indels, e = flags.GetBool("indels"); return })
	set("block-size", func() (e error) { s.BlockSize, e = flags.GetInt("block-size"); return })
	set("report-interval", func() (e error) { s.ReportInterval, e = flags.GetInt("report-interval"); return })
	set("min-count", func() (e error) { s.MinCount, e = flags.GetInt("min-count"); return })
	set("num-core", func() (e error) { s.NumCore, e = flags.GetInt("num-core"); return })
	return err
}

func (s collapseSettings) options(threads int, verbose bool) collapse.Options {
	opts := collapse.DefaultOptions()
	opts.EditDistance = s.EditDistance
	opts.FindIndels = s.Indels
	opts.NumThreads = threads
	opts.BlockSize = s.BlockSize
	opts.ReportProgressInterval = s.ReportInterval
	opts.Verbose = verbose
	return opts
}
