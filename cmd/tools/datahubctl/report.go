package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/soltixdb/datahub/internal/analysis"
	"github.com/soltixdb/datahub/internal/export"
	"github.com/soltixdb/datahub/internal/logging"
	"github.com/soltixdb/datahub/internal/records"
)

var (
	reportOut      string
	reportFormat   string
	reportYearFrom int
	reportYearTo   int
	reportProvince string
)

var reportCmd = &cobra.Command{
	Use:   "report <dataset-id>",
	Short: "Write a dataset export, with analysis sheets for xlsx",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := export.ParseFormat(reportFormat)
		if err != nil {
			return err
		}

		st, err := openStore()
		if err != nil {
			return err
		}
		dataset, err := st.Catalog().Get(args[0])
		if err != nil {
			return err
		}
		table, err := st.Table(args[0])
		if err != nil {
			return err
		}

		doc := export.Document{
			Dataset: dataset,
			Table: records.Table{
				DatasetID: table.DatasetID,
				Columns:   table.Columns,
				Rows: table.Select(records.Filter{
					YearFrom: reportYearFrom,
					YearTo:   reportYearTo,
					Region:   reportProvince,
				}),
			},
		}
		if format == export.FormatXLSX {
			result, err := analysis.Run(st.Bundle(), analysis.Request{DatasetID: args[0], Year: reportYearTo})
			switch {
			case errors.Is(err, analysis.ErrNoMethodology):
				logging.Warn("Report has no analysis sheets", "dataset_id", args[0])
			case err != nil:
				return err
			default:
				doc.Analysis = result
			}
		}

		out := reportOut
		if out == "" {
			out = args[0] + format.Extension()
		}
		rows, err := writeReport(out, format, doc)
		if err != nil {
			return err
		}
		fmt.Printf("Wrote %s (%d rows)\n", out, rows)
		return nil
	},
}

func writeReport(path string, format export.Format, doc export.Document) (int, error) {
	file, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}
	defer func() { _ = file.Close() }()

	w := bufio.NewWriter(file)
	rows, err := export.Write(w, format, doc)
	if err != nil {
		return 0, err
	}
	if err := w.Flush(); err != nil {
		return 0, err
	}
	return rows, file.Sync()
}

func init() {
	reportCmd.Flags().StringVarP(&reportOut, "out", "o", "", "output file (default <dataset-id>.<ext>)")
	reportCmd.Flags().StringVarP(&reportFormat, "format", "f", "xlsx", "csv, json or xlsx")
	reportCmd.Flags().IntVar(&reportYearFrom, "year-from", 0, "first year to include")
	reportCmd.Flags().IntVar(&reportYearTo, "year-to", 0, "last year to include, also the analysis year")
	reportCmd.Flags().StringVar(&reportProvince, "province", "", "province code or name")
	rootCmd.AddCommand(reportCmd)
}
