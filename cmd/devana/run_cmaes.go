package main

import (
	"github.com/spf13/cobra"

	"github.com/devana-go/dva/engine/cmaes"
)

var runCMAESCmd = &cobra.Command{
	Use:   "run-cmaes",
	Short: "Run a CMA-ES optimization campaign",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadCampaign()
		if err != nil {
			return err
		}
		eng := cmaes.New(cmaes.Config{
			RunConfig:       c.runConfig("cmaes"),
			InitialStepSize: engineFloat(c.doc.Engine, "initial_step_size", 0.3),
		})
		return runEngineAndPrint(cmd.Context(), eng)
	},
}

func init() {
	rootCmd.AddCommand(runCMAESCmd)
}
