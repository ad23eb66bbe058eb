package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/soltixdb/datahub/internal/catalog"
	"github.com/soltixdb/datahub/internal/logging"
	"github.com/soltixdb/datahub/internal/store"
)

var (
	snapshotOut         string
	snapshotCompression string
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Generate the records and write them as a snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := snapshotOut
		if out == "" {
			out = cfg.Data.SnapshotPath
		}
		if out == "" {
			return fmt.Errorf("--out is required when data.snapshot_path is not configured")
		}

		compression := snapshotCompression
		if !cmd.Flags().Changed("compression") {
			compression = cfg.Data.Compression
		}
		algo, err := store.ParseAlgorithm(compression)
		if err != nil {
			return err
		}

		cat, err := catalog.Default()
		if err != nil {
			return err
		}
		st, err := store.Open(cat, store.Options{Generator: generatorConfig()}, logging.Global())
		if err != nil {
			return err
		}
		if err := st.Save(out, algo); err != nil {
			return err
		}

		info := st.Info()
		total := 0
		for _, n := range info.Rows {
			total += n
		}
		fmt.Printf("Wrote %s (%s, seed %d, %d-%d, %d rows)\n",
			out, algo, info.Seed, info.FromYear, info.ToYear, total)
		return nil
	},
}

func init() {
	snapshotCmd.Flags().StringVarP(&snapshotOut, "out", "o", "", "snapshot file (default data.snapshot_path)")
	snapshotCmd.Flags().StringVar(&snapshotCompression, "compression", "snappy", "none or snappy")
	rootCmd.AddCommand(snapshotCmd)
}
