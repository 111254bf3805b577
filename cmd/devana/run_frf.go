package main

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/devana-go/dva"
	"github.com/devana-go/dva/dvaerr"
	"github.com/devana-go/dva/frf"
)

var frfVector string

var runFRFCmd = &cobra.Command{
	Use:   "run-frf",
	Short: "Evaluate the frequency response function at one DVA parameter vector",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadCampaign()
		if err != nil {
			return err
		}
		x, err := parseVector(frfVector, c.bounds, c.fixed)
		if err != nil {
			return err
		}
		sys, err := frf.Assemble(c.doc.MainParams, x)
		if err != nil {
			return dvaerr.Wrap(dvaerr.NumericFailure, err, "failed to assemble DVA system")
		}
		sweep := frf.Sweep{Grid: c.doc.Frequency.ToGrid(), MassTargets: c.doc.MassTargets()}
		result, err := frf.Evaluate(cmd.Context(), sys, sweep, workerCount())
		if err != nil {
			return dvaerr.Wrap(dvaerr.NumericFailure, err, "FRF evaluation failed")
		}
		return printJSON(result)
	},
}

// parseVector parses a comma-separated 48-length vector, or falls back to
// the midpoint of bounds (clipped against fixed coordinates) when empty.
func parseVector(s string, bounds dva.Bounds, fixed dva.FixedMask) ([]float64, error) {
	if strings.TrimSpace(s) == "" {
		x := make([]float64, dva.NumDVAParams)
		for i := range x {
			x[i] = (bounds.Low[i] + bounds.High[i]) / 2
		}
		bounds.Clip(x, fixed)
		return x, nil
	}
	parts := strings.Split(s, ",")
	if len(parts) != dva.NumDVAParams {
		return nil, dvaerr.New(dvaerr.InvalidInput, "--vector must have %d comma-separated values, got %d", dva.NumDVAParams, len(parts))
	}
	x := make([]float64, dva.NumDVAParams)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, dvaerr.New(dvaerr.InvalidInput, "--vector element %d: %v", i, err)
		}
		x[i] = v
	}
	bounds.Clip(x, fixed)
	return x, nil
}

func init() {
	runFRFCmd.Flags().StringVar(&frfVector, "vector", "", "comma-separated 48-length DVA parameter vector (default: bounds midpoint)")
	rootCmd.AddCommand(runFRFCmd)
}
