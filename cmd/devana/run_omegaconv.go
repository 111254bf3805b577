package main

import (
	"github.com/spf13/cobra"

	"github.com/devana-go/dva/dvaerr"
	"github.com/devana-go/dva/frf"
	"github.com/devana-go/dva/omegaconv"
)

var runOmegaConvCmd = &cobra.Command{
	Use:   "run-omega-conv",
	Short: "Run adaptive omega-points convergence search",
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

		cfg := omegaconv.Config{
			System:         sys,
			MassTargets:    c.doc.MassTargets(),
			MassOfInterest: int(engineFloat(c.doc.Engine, "mass_of_interest", 0)),
			OmegaStart:     c.doc.Frequency.Start,
			OmegaEnd:       c.doc.Frequency.End,
			InitialPoints:  int(engineFloat(c.doc.Engine, "initial_points", 64)),
			MaxPoints:      int(engineFloat(c.doc.Engine, "max_points", 2048)),
			Step:           int(engineFloat(c.doc.Engine, "step", 64)),
			Threshold:      engineFloat(c.doc.Engine, "threshold", 0.01),
			MaxIter:        int(engineFloat(c.doc.Engine, "max_iter", 30)),
			WorkerCount:    workerCount(),
		}
		result, err := omegaconv.Run(cmd.Context(), cfg)
		if err != nil {
			return dvaerr.Wrap(dvaerr.NumericFailure, err, "omega-points convergence search failed")
		}
		return printJSON(result)
	},
}

func init() {
	runOmegaConvCmd.Flags().StringVar(&frfVector, "vector", "", "comma-separated 48-length DVA parameter vector (default: bounds midpoint)")
	rootCmd.AddCommand(runOmegaConvCmd)
}
