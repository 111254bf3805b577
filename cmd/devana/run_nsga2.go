package main

import (
	"github.com/spf13/cobra"

	"github.com/devana-go/dva"
	"github.com/devana-go/dva/engine/nsga2"
	"github.com/devana-go/dva/frf"
)

var runNSGA2Cmd = &cobra.Command{
	Use:   "run-nsga2",
	Short: "Run an NSGA-II multi-objective optimization campaign",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadCampaign()
		if err != nil {
			return err
		}

		var costWeights [dva.NumDVAParams]float64
		for i := range costWeights {
			costWeights[i] = 1
		}
		multi := frf.MultiFitness(frf.MultiObjectiveConfig{
			Main:        c.doc.MainParams,
			Sweep:       frf.Sweep{Grid: c.doc.Frequency.ToGrid(), MassTargets: c.doc.MassTargets()},
			SparsityTau: engineFloat(c.doc.Engine, "sparsity_tau", 0.01),
			SparsityA:   engineFloat(c.doc.Engine, "sparsity_a", 1),
			SparsityB:   engineFloat(c.doc.Engine, "sparsity_b", 0.01),
			CostWeights: costWeights,
			CostThresh:  engineFloat(c.doc.Engine, "cost_threshold", 0.01),
			WorkerCount: workerCount(),
		})

		runConfig := c.runConfig("nsga2")
		eng := nsga2.New(nsga2.Config{
			RunConfig:      runConfig,
			MultiObjective: multi,
			CrossoverEta:   engineFloat(c.doc.Engine, "crossover_eta", 20),
			MutationEta:    engineFloat(c.doc.Engine, "mutation_eta", 20),
			MutationRate:   engineFloat(c.doc.Engine, "mutation_rate", 1.0/float64(dva.NumDVAParams)),
		})
		return runEngineAndPrint(cmd.Context(), eng)
	},
}

func init() {
	rootCmd.AddCommand(runNSGA2Cmd)
}
