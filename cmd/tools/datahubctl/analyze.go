package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/soltixdb/datahub/internal/analysis"
)

var (
	analyzeYear     int
	analyzeAgeGroup string
	analyzeJSON     bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <dataset-id>",
	Short: "Run the methodology analysis of a dataset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		if _, err := st.Catalog().Get(args[0]); err != nil {
			return err
		}

		result, err := analysis.Run(st.Bundle(), analysis.Request{
			DatasetID: args[0],
			Year:      analyzeYear,
			AgeGroup:  analyzeAgeGroup,
		})
		if err != nil {
			return err
		}

		if analyzeJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}
		return printComposite(result)
	},
}

func printComposite(result *analysis.Result) error {
	fmt.Printf("%s, %d (%s clustering)\n\n", result.DatasetName, result.Year, result.Strategy)

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tGROUP\tSCORE\tCLUSTER")
	for _, r := range result.Composite {
		fmt.Fprintf(tw, "%d\t%s\t%.3f\t%s\n", r.Rank, r.Group, r.Score, r.Cluster)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Println()
	for cluster, n := range result.Distribution {
		fmt.Printf("%s: %d\n", cluster, n)
	}
	return nil
}

func init() {
	analyzeCmd.Flags().IntVar(&analyzeYear, "year", 0, "year to analyse (default latest)")
	analyzeCmd.Flags().StringVar(&analyzeAgeGroup, "age-group", "", "school participation age group (default "+analysis.DefaultAgeGroup+")")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "print the full result as JSON")
	rootCmd.AddCommand(analyzeCmd)
}
