package main

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mtheuszin1/adscale-deploy/importer"
)

var reprocessCmd = &cobra.Command{
	Use:   "reprocess",
	Short: "Recompute region, niche and status of every stored ad",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(configPath)
		if err != nil {
			return err
		}
		defer a.Close()

		report, err := importer.Reprocess(cmd.Context(), a.store, a.snapshots, a.log, a.metrics)
		if err != nil {
			return err
		}
		color.New(color.FgCyan).Fprintf(cmd.OutOrStdout(), "%d of %d ads updated\n", report.Changed, report.Total)
		return nil
	},
}
