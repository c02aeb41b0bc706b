package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/okian/heataoi/internal/domain/aoi"
	"github.com/okian/heataoi/internal/domain/types"
)

func newIdentifyCmd() *cobra.Command {
	var (
		input    string
		topN     int
		targetKM float64
	)
	cmd := &cobra.Command{
		Use:   "identify",
		Short: "Find the hottest non-overlapping windows in a layer bundle.",
		Long: `identify reads a bundle holding the temperature, vegetation and height
grids with their shared transform and prints the selected AOIs. When fewer
windows than requested exist the partial result is printed and the command
exits non-zero.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var req types.IdentifyRequest
			if err := readJSON(input, &req); err != nil {
				return err
			}
			if cmd.Flags().Changed("top-n") {
				req.TopN = topN
			}
			if cmd.Flags().Changed("target-km") {
				req.TargetKM = targetKM
			}
			if req.TopN < 0 || req.TargetKM < 0 {
				return fmt.Errorf("%w: top-n and target-km must not be negative", aoi.ErrInvalidInput)
			}
			svc, err := newService(cmd)
			if err != nil {
				return err
			}

			rep, err := svc.Identify(cmd.Context(), req)
			resp := types.IdentifyResponse{Report: rep}
			var exhausted *aoi.ExhaustedError
			switch {
			case err == nil:
			case errors.As(err, &exhausted):
				resp.Exhausted = &types.Exhausted{Requested: exhausted.Requested, Found: exhausted.Found}
			default:
				return err
			}
			if werr := writeJSON(cmd.OutOrStdout(), resp); werr != nil {
				return werr
			}
			return err
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "identify bundle (JSON)")
	cmd.Flags().IntVar(&topN, "top-n", aoi.DefaultTopN, "number of AOIs to return")
	cmd.Flags().Float64Var(&targetKM, "target-km", aoi.DefaultTargetKM, "window side length in kilometres")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func newValidateCmd() *cobra.Command {
	var input string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Compare a height grid with surveyed building heights.",
		Long: `validate samples the height grid at every cell centre strictly inside each
building footprint near the study centre and prints per-building statistics
together with the mean and standard deviation of the differences.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var req types.ValidateRequest
			if err := readJSON(input, &req); err != nil {
				return err
			}
			svc, err := newService(cmd)
			if err != nil {
				return err
			}
			sum, err := svc.Validate(cmd.Context(), req)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), sum)
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "validation request (JSON)")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func newPlanCmd() *cobra.Command {
	var input string
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Compute the common grid of several layers.",
		Long: `plan intersects the extents of the given layers and prints the target grid
they should be resampled onto before identification.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var req types.PlanRequest
			if err := readJSON(input, &req); err != nil {
				return err
			}
			svc, err := newService(cmd)
			if err != nil {
				return err
			}
			plan, err := svc.Plan(cmd.Context(), req)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), plan)
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "plan request (JSON)")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}
