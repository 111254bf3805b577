package main

import (
	"github.com/spf13/cobra"

	"github.com/devana-go/dva/sobol"
)

var sobolSampleSizes []int

var runSobolCmd = &cobra.Command{
	Use:   "run-sobol",
	Short: "Run a Sobol global sensitivity analysis",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadCampaign()
		if err != nil {
			return err
		}
		sizes := sobolSampleSizes
		if len(sizes) == 0 {
			sizes = []int{128, 256, 512}
		}
		result, err := sobol.Analyze(cmd.Context(), c.bounds, c.fixed, c.objective, sizes, workerCount())
		if err != nil {
			return err
		}
		return printJSON(result)
	},
}

func init() {
	runSobolCmd.Flags().IntSliceVar(&sobolSampleSizes, "sample-sizes", nil, "sample sizes to analyze at (default 128,256,512)")
	rootCmd.AddCommand(runSobolCmd)
}
