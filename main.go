package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/mtheuszin1/adscale-deploy/config"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:          "adscale",
	Short:        "AdScale ad library intelligence",
	Long:         `AdScale imports scraped ads, computes corpus baselines and scores ads against them`,
	SilenceUsage: true,
}

func main() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(reprocessCmd)
	rootCmd.AddCommand(intelCmd)

	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.GetConfigPath(), "path to the YAML config file")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
