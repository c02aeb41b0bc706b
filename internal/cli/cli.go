// Package cli implements aoictl, the offline front end to the identification
// pipeline. Every command reads JSON from a file and writes JSON to stdout.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	app "github.com/okian/heataoi/internal/app"
	"github.com/okian/heataoi/internal/config"
	"github.com/okian/heataoi/internal/domain/aoi"
	"github.com/okian/heataoi/pkg/logger"
)

// NewRootCmd builds the aoictl command tree.
func NewRootCmd() *cobra.Command {
	var verbose bool
	root := &cobra.Command{
		Use:   "aoictl",
		Short: "Locate urban heat areas of interest in raster layers.",
		Long: `aoictl scores temperature, vegetation and canopy height grids for urban
heat severity and reports the worst non-overlapping square areas.

Defaults come from the same configuration as the server: an optional YAML
file named by HEATAOI_CONFIG, then HEATAOI_* environment variables.`,
		SilenceUsage:      true,
		DisableAutoGenTag: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := logger.Init(logger.WithWriter(cmd.ErrOrStderr())); err != nil {
				return err
			}
			level := "warn"
			if verbose {
				level = "debug"
			}
			return logger.SetLevelString(level)
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log progress to stderr")

	root.AddCommand(
		newIdentifyCmd(),
		newValidateCmd(),
		newPlanCmd(),
		newSynthCmd(),
	)
	return root
}

// newService builds an unstarted service carrying the configured defaults;
// the offline commands only use its synchronous operations.
func newService(cmd *cobra.Command) (*app.Service, error) {
	cfg, err := config.Load(cmd.Context())
	if err != nil {
		return nil, err
	}
	return app.New(
		app.WithLogger(logger.Get().Named("aoictl")),
		app.WithDefaults(aoi.Params{TopN: cfg.TopN, TargetKM: cfg.TargetKM}),
		app.WithAlignResolution(cfg.AlignResolution),
		app.WithValidationHalfSize(cfg.ValidationHalfSize),
	), nil
}

func readJSON(path string, v any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
