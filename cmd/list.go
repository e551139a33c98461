package cmd

import (
	"fmt"

	"github.com/KaramelBytes/genexpr-cli/internal/dataset"
	"github.com/spf13/cobra"
)

var (
	listGenes   bool
	listSamples bool
)

var listCmd = &cobra.Command{
	Use:   "list <input>",
	Short: "List the gene names or sample IDs of a dataset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if listGenes == listSamples { // either both true or both false
			return inputErrorf("specify exactly one of --genes or --samples")
		}
		opt, err := datasetOptions(cmd)
		if err != nil {
			return err
		}
		ds, err := dataset.Load(args[0], opt)
		if err != nil {
			return &stageError{stage: "load dataset", code: exitLoad, err: err}
		}
		out := cmd.OutOrStdout()
		if listGenes {
			genes := ds.Genes()
			if len(genes) == 0 {
				fmt.Fprintln(out, "(no genes)")
			}
			for _, g := range genes {
				fmt.Fprintf(out, "- %s\n", g)
			}
			return nil
		}
		samples := ds.Samples()
		if len(samples) == 0 {
			fmt.Fprintln(out, "(no samples)")
		}
		for _, s := range samples {
			fmt.Fprintf(out, "- %s (%s)\n", s.ID, s.Label)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listGenes, "genes", false, "list gene names in header order")
	listCmd.Flags().BoolVar(&listSamples, "samples", false, "list sample IDs with their type")
	addDatasetFlags(listCmd)
}
