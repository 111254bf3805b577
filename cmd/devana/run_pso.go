package main

import (
	"github.com/spf13/cobra"

	"github.com/devana-go/dva/engine/pso"
)

var runPSOCmd = &cobra.Command{
	Use:   "run-pso",
	Short: "Run a Particle Swarm Optimization campaign",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadCampaign()
		if err != nil {
			return err
		}
		eng := pso.New(pso.Config{
			RunConfig:          c.runConfig("pso"),
			Topology:           topologyFromString(engineString(c.doc.Engine, "topology", "global")),
			Boundary:           boundaryFromString(engineString(c.doc.Engine, "boundary", "absorbing")),
			VMaxFactor:         engineFloat(c.doc.Engine, "v_max_factor", 0.2),
			WDamping:           engineBool(c.doc.Engine, "w_damping", false),
			WDampingRatio:      engineFloat(c.doc.Engine, "w_damping_ratio", 0.99),
			MutationRate:       engineFloat(c.doc.Engine, "mutation_rate", 0),
			Tolerance:          engineFloat(c.doc.Engine, "tolerance", 0),
			EarlyStoppingTol:   engineFloat(c.doc.Engine, "early_stopping_tol", 0),
			EarlyStoppingIters: int(engineFloat(c.doc.Engine, "early_stopping_iters", 30)),
			SobolInit:          engineBool(c.doc.Engine, "sobol_init", false),
		})
		return runEngineAndPrint(cmd.Context(), eng)
	},
}

func topologyFromString(s string) pso.Topology {
	switch s {
	case "ring":
		return pso.Ring
	case "von_neumann":
		return pso.VonNeumann
	case "random":
		return pso.Random
	default:
		return pso.Global
	}
}

func boundaryFromString(s string) pso.BoundaryPolicy {
	switch s {
	case "reflecting":
		return pso.Reflecting
	case "invisible":
		return pso.Invisible
	default:
		return pso.Absorbing
	}
}

func init() {
	rootCmd.AddCommand(runPSOCmd)
}
