package main

import (
	"fmt"

	"business-finder/internal/common/config"
	"business-finder/internal/common/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app holds what every subcommand needs once flags are parsed.
type app struct {
	cfgFile string
	verbose bool

	cfg    *config.Config
	logger logger.Logger
	zap    *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "business-finder",
		Short: "Find businesses near a location",
		Long: `business-finder searches the Google Places API for businesses matching a
keyword around a postal code, address, city, state or country.

Example usage:
  business-finder search --keyword bakery --location 28001 --type postal_code
  business-finder search --keyword cafe --location Madrid --type city --rating 4+ --csv cafes.csv
  business-finder serve --addr :8080
  business-finder registry`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd.Name())
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.zap != nil {
				_ = a.zap.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is configs/config.yaml)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "verbose logging")

	root.AddCommand(newSearchCmd(a), newServeCmd(a), newRegistryCmd(a))
	return root
}

func (a *app) init(command string) error {
	var err error
	if a.cfgFile != "" {
		a.cfg, err = config.LoadFromFile(a.cfgFile)
	} else {
		a.cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	opts := logger.Options{
		Level:  a.cfg.Logging.Level,
		Format: a.cfg.Logging.Format,
		Output: a.cfg.Logging.Output,
	}
	if a.verbose {
		opts.Level = "debug"
	}
	// only serve keeps stdout for logs; the other commands print results there
	if command != "serve" && (opts.Output == "" || opts.Output == "stdout") {
		opts.Output = "stderr"
		if !a.verbose {
			opts.Level = "warn"
		}
	}
	a.zap = logger.Build(opts)
	a.logger = logger.NewZapAdapter(a.zap)
	return nil
}
