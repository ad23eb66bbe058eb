package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/soltixdb/datahub/internal/logging"
	"github.com/soltixdb/datahub/internal/services"
)

var (
	chartKind      string
	chartOut       string
	chartMetric    string
	chartGroup     string
	chartPeriods   int
	chartAlgorithm string
	chartYear      int
	chartX         string
	chartY         string
)

var chartCmd = &cobra.Command{
	Use:   "chart <dataset-id>",
	Short: "Render a forecast, ranking or correlation chart as PNG",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		logger := logging.Global()
		data := services.NewDataService(logger, st, cfg.Analytics)
		ctx := logging.WithLogger(context.Background(), logger)

		var png []byte
		switch chartKind {
		case "series":
			png, err = services.NewForecastService(logger, data, cfg.Analytics).Chart(ctx, &services.ForecastRequest{
				DatasetID: args[0],
				Metric:    chartMetric,
				Group:     chartGroup,
				Periods:   chartPeriods,
				Algorithm: chartAlgorithm,
			})
		case "ranking":
			png, err = services.NewRankingService(logger, data).Chart(ctx, services.RankingRequest{
				DatasetID: args[0],
				Primary:   chartMetric,
				Year:      chartYear,
			})
		case "correlation":
			png, err = services.NewInsightService(logger, data).CorrelationChart(ctx, services.CorrelationRequest{
				DatasetID: args[0],
				X:         chartX,
				Y:         chartY,
				Year:      chartYear,
			})
		default:
			return fmt.Errorf("--kind must be one of: series, ranking, correlation")
		}
		if err != nil {
			return err
		}

		out := chartOut
		if out == "" {
			out = args[0] + "-" + chartKind + ".png"
		}
		if err := os.WriteFile(out, png, 0644); err != nil {
			return err
		}
		fmt.Printf("Wrote %s (%d bytes)\n", out, len(png))
		return nil
	},
}

func init() {
	chartCmd.Flags().StringVar(&chartKind, "kind", "series", "series, ranking or correlation")
	chartCmd.Flags().StringVarP(&chartOut, "out", "o", "", "output file (default <dataset-id>-<kind>.png)")
	chartCmd.Flags().StringVar(&chartMetric, "metric", "", "metric (default the dataset's primary metric)")
	chartCmd.Flags().StringVar(&chartGroup, "group", "", "province for series charts (default the mean)")
	chartCmd.Flags().IntVar(&chartPeriods, "periods", 0, "years to forecast")
	chartCmd.Flags().StringVar(&chartAlgorithm, "algorithm", "", "linear or holt")
	chartCmd.Flags().IntVar(&chartYear, "year", 0, "ranking or correlation year (default latest)")
	chartCmd.Flags().StringVar(&chartX, "x", "", "correlation x metric")
	chartCmd.Flags().StringVar(&chartY, "y", "", "correlation y metric")
	rootCmd.AddCommand(chartCmd)
}
