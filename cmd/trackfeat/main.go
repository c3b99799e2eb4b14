// Command trackfeat fits the track preprocessor on a training file and writes
// the numeric feature table for it and for any further files.
//
// Usage:
//
//	trackfeat --train train.csv [--config trackfeat.yaml] [--out train.features.csv]
//	          [--save state.gob | --load state.gob] [--plots dir] [--describe] [files...]
//
// Each extra file is written next to itself as <name>.features.csv.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/trackfeat/config"
	"github.com/YuminosukeSato/trackfeat/dataset"
	"github.com/YuminosukeSato/trackfeat/frame"
	"github.com/YuminosukeSato/trackfeat/pipeline"
	"github.com/YuminosukeSato/trackfeat/pkg/errors"
	"github.com/YuminosukeSato/trackfeat/pkg/log"
	"github.com/YuminosukeSato/trackfeat/report"
)

var version = "0.1.0"

type options struct {
	train    string
	config   string
	out      string
	save     string
	load     string
	plots    string
	bins     int
	describe bool
	files    []string
}

func (o *options) validate() error {
	if o.train == "" && o.load == "" {
		return errors.NewValidationError("train", "either --train or --load is required", "")
	}
	if o.save != "" && o.load != "" {
		return errors.NewValidationError("save", "--save and --load are mutually exclusive", o.save)
	}
	return nil
}

func newRootCmd() *cobra.Command {
	o := &options{}
	cmd := &cobra.Command{
		Use:   "trackfeat [files...]",
		Short: "Turn music-track tables into numeric feature tables",
		Long: `trackfeat fits the track preprocessor on a training table, or loads a
previously saved fitted state, and writes the transformed features of the
training table and of every further file as <name>.features.csv.

Input files may be .csv or .xlsx.`,
		Version:       version,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			o.files = args
			if err := o.validate(); err != nil {
				return err
			}
			return execute(o, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	cmd.CompletionOptions.DisableDefaultCmd = true

	flags := cmd.Flags()
	flags.StringVar(&o.train, "train", "", "training table (.csv or .xlsx)")
	flags.StringVar(&o.config, "config", "", "YAML config file (defaults to $TRACKFEAT_CONFIG or ./trackfeat.yaml)")
	flags.StringVar(&o.out, "out", "", "output for the transformed training table (defaults to <train>.features.csv)")
	flags.StringVar(&o.save, "save", "", "write the fitted state to this file")
	flags.StringVar(&o.load, "load", "", "read a fitted state instead of fitting")
	flags.StringVar(&o.plots, "plots", "", "directory for feature histograms of the training output")
	flags.IntVar(&o.bins, "bins", 0, "histogram bins (0 = automatic)")
	flags.BoolVar(&o.describe, "describe", false, "print a summary of the training output")
	return cmd
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		log.GetLoggerWithName("trackfeat").Error("trackfeat failed", err)
		os.Exit(1)
	}
}

// run executes the root command with args instead of os.Args.
func run(args []string, stdout, stderr io.Writer) error {
	if args == nil {
		args = []string{}
	}
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	return cmd.Execute()
}

func execute(o *options, stdout, stderr io.Writer) error {
	cfg, err := config.Load(o.config)
	if err != nil {
		return err
	}
	if err := log.Init(log.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: stderr}); err != nil {
		return err
	}
	logger := log.GetLoggerWithName("trackfeat")

	p, err := config.Build(cfg)
	if err != nil {
		return err
	}

	var train *frame.Table
	if o.train != "" {
		if train, err = dataset.Read(o.train); err != nil {
			return err
		}
		logger.Info("Loaded training table",
			log.SourceKey, o.train,
			log.SamplesKey, train.NumRows(),
			log.FeaturesKey, train.NumCols())
	}

	if o.load != "" {
		if err := loadState(p, o.load); err != nil {
			return err
		}
	} else if err := p.Fit(train); err != nil {
		return err
	}
	if o.save != "" {
		if err := saveState(p, o.save); err != nil {
			return err
		}
	}

	if train != nil {
		out := o.out
		if out == "" {
			out = featuresPath(o.train)
		}
		features, err := transformTo(p, train, out)
		if err != nil {
			return err
		}
		logger.Info("Wrote features", log.SourceKey, o.train, "output", out)
		if o.describe {
			fmt.Fprint(stdout, report.String(report.Describe(features)))
		}
		if o.plots != "" {
			paths, err := report.Histograms(features, o.plots, o.bins)
			if err != nil {
				return err
			}
			logger.Info("Wrote histograms", "dir", o.plots, "count", len(paths))
		}
	}

	for _, path := range o.files {
		t, err := dataset.Read(path)
		if err != nil {
			return err
		}
		out := featuresPath(path)
		if _, err := transformTo(p, t, out); err != nil {
			return errors.Wrapf(err, "transform %s", path)
		}
		logger.Info("Wrote features", log.SourceKey, path, "output", out)
	}
	return nil
}

func transformTo(p *pipeline.Preprocessor, t *frame.Table, out string) (*frame.Table, error) {
	features, err := p.Transform(t)
	if err != nil {
		return nil, err
	}
	return features, dataset.WriteCSVFile(out, features)
}

func loadState(p *pipeline.Preprocessor, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "failed to open %s", path)
	}
	defer f.Close()
	return p.Load(f)
}

func saveState(p *pipeline.Preprocessor, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", path)
	}
	if err := p.Save(f); err != nil {
		f.Close()
		return err
	}
	return errors.Wrapf(f.Close(), "failed to close %s", path)
}

// featuresPath maps data/valid.csv to data/valid.features.csv.
func featuresPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + ".features.csv"
}
