package main

import (
	"github.com/spf13/cobra"

	"github.com/devana-go/dva/engine/de"
)

var runDECmd = &cobra.Command{
	Use:   "run-de",
	Short: "Run a Differential Evolution optimization campaign",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadCampaign()
		if err != nil {
			return err
		}
		eng := de.New(de.Config{
			RunConfig: c.runConfig("de"),
			Strategy:  strategyFromString(engineString(c.doc.Engine, "strategy", "rand1")),
			F:         engineFloat(c.doc.Engine, "f", 0.8),
			CR:        engineFloat(c.doc.Engine, "cr", 0.9),
			Tol:       engineFloat(c.doc.Engine, "tol", 0),
		})
		return runEngineAndPrint(cmd.Context(), eng)
	},
}

func strategyFromString(s string) de.Strategy {
	switch s {
	case "best1":
		return de.Best1
	default:
		return de.Rand1
	}
}

func init() {
	rootCmd.AddCommand(runDECmd)
}
