package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mtheuszin1/adscale-deploy/models"
)

var intelJSON bool

func init() {
	intelCmd.Flags().BoolVar(&intelJSON, "json", false, "print the raw snapshot as JSON")
}

var intelCmd = &cobra.Command{
	Use:   "intel",
	Short: "Print the intelligence snapshot of the stored corpus",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(configPath)
		if err != nil {
			return err
		}
		defer a.Close()

		intel, err := a.snapshots.Current(cmd.Context())
		if err != nil {
			return err
		}
		if intelJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(intel)
		}
		writeIntelReport(cmd.OutOrStdout(), intel)
		return nil
	},
}

var (
	headerColor = color.New(color.FgCyan, color.Bold)
	labelColor  = color.New(color.Faint)
	goodColor   = color.New(color.FgGreen)
	warnColor   = color.New(color.FgYellow)
)

func writeIntelReport(w io.Writer, intel *models.LibraryIntelligence) {
	g := intel.GlobalStats
	headerColor.Fprintf(w, "Library (%d ads, analyzed %s)\n", g.TotalAds, intel.LastAnalysis.Format("2006-01-02 15:04"))
	labelColor.Fprint(w, "  scaling   ")
	goodColor.Fprintf(w, "%.1f%%\n", g.ScalingPercentage)
	labelColor.Fprint(w, "  survival  ")
	fmt.Fprintf(w, "infant %.1f%% / validated %.1f%% / legacy %.1f%%\n",
		g.SurvivalDistribution.InfantMortality, g.SurvivalDistribution.Validated, g.SurvivalDistribution.Legacy)

	for _, p := range models.Platforms {
		insight := intel.PlatformInsights[p]
		baseline := intel.Baselines[p]
		headerColor.Fprintf(w, "%s (%d ads)\n", p, insight.TotalAds)
		fmt.Fprintf(w, "  ctr all %.2f / scaling %.2f, scaling rate %.1f%%\n",
			insight.AvgCtrAll, insight.AvgCtrScaling, insight.ScalingRate)
		fmt.Fprintf(w, "  baseline ctr > %.2f, days > %d, ads > %d, suspicious ctr > %.2f\n",
			baseline.MinCtrForScale, baseline.MinDaysForScale, baseline.MinAdCountForScale, baseline.SuspiciousCtrLimit)
	}

	t := intel.TicketInsights
	headerColor.Fprintln(w, "Tickets")
	fmt.Fprintf(w, "  avg scaling %.2f, range %.2f - %.2f\n",
		t.AvgTicketScaling, t.MostSuccessfulRange.Min, t.MostSuccessfulRange.Max)

	if n := intel.FalsePositivePatterns.HypeAdsDetected; n > 0 {
		warnColor.Fprintf(w, "%d hype ads detected\n", n)
	} else {
		goodColor.Fprintln(w, "No hype ads detected")
	}
}
