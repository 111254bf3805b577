package main

import (
	"github.com/spf13/cobra"

	"github.com/devana-go/dva/engine/sa"
)

var runSACmd = &cobra.Command{
	Use:   "run-sa",
	Short: "Run a Simulated Annealing optimization campaign",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadCampaign()
		if err != nil {
			return err
		}
		eng := sa.New(sa.Config{
			RunConfig:          c.runConfig("sa"),
			InitialTemperature: engineFloat(c.doc.Engine, "initial_temperature", 100),
			CoolingRate:        engineFloat(c.doc.Engine, "cooling_rate", 0.95),
			StepSize:           engineFloat(c.doc.Engine, "step_size", 1),
			Tolerance:          engineFloat(c.doc.Engine, "tolerance", 0),
		})
		return runEngineAndPrint(cmd.Context(), eng)
	},
}

func init() {
	rootCmd.AddCommand(runSACmd)
}
