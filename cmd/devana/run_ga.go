package main

import (
	"github.com/spf13/cobra"

	"github.com/devana-go/dva/engine/ga"
)

var runGACmd = &cobra.Command{
	Use:   "run-ga",
	Short: "Run a Genetic Algorithm optimization campaign",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadCampaign()
		if err != nil {
			return err
		}
		eng := ga.New(ga.Config{
			RunConfig:       c.runConfig("ga"),
			Cxpb:            engineFloat(c.doc.Engine, "cxpb", 0.9),
			MutationRate:    engineFloat(c.doc.Engine, "mutation_rate", 0.1),
			Tolerance:       engineFloat(c.doc.Engine, "tolerance", 0),
			AdaptiveRates:   engineBool(c.doc.Engine, "adaptive_rates", false),
			StagnationLimit: int(engineFloat(c.doc.Engine, "stagnation_limit", 10)),
			CxpbMin:         engineFloat(c.doc.Engine, "cxpb_min", 0),
			CxpbMax:         engineFloat(c.doc.Engine, "cxpb_max", 0),
			MutpbMin:        engineFloat(c.doc.Engine, "mutpb_min", 0),
			MutpbMax:        engineFloat(c.doc.Engine, "mutpb_max", 0),
		})
		return runEngineAndPrint(cmd.Context(), eng)
	},
}

func init() {
	rootCmd.AddCommand(runGACmd)
}
