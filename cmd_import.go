package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mtheuszin1/adscale-deploy/importer"
	"github.com/mtheuszin1/adscale-deploy/logger"
	"github.com/mtheuszin1/adscale-deploy/media"
)

var (
	importMediaDir string
	importReplace  bool
)

func init() {
	importCmd.Flags().StringVar(&importMediaDir, "media-dir", "", "directory of creative files to match (default: import.media_dir)")
	importCmd.Flags().BoolVar(&importReplace, "replace", false, "clear the library before importing")
}

var importCmd = &cobra.Command{
	Use:   "import <csv>",
	Short: "Import an ad library CSV export",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(configPath)
		if err != nil {
			return err
		}
		defer a.Close()
		ctx := cmd.Context()

		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open csv: %w", err)
		}
		defer f.Close()

		records, err := importer.ReadCSV(f)
		if err != nil {
			return err
		}

		dir := importMediaDir
		if dir == "" {
			dir = a.cfg.Import.MediaDir
		}
		assets, err := importer.LoadMediaDir(dir, a.cfg.Import.MediaBaseURL)
		switch {
		case errors.Is(err, os.ErrNotExist):
			a.log.Warn("Media dir not found, importing without creatives", logger.String("dir", dir))
			assets = media.NewLibrary()
		case err != nil:
			return err
		}

		if importReplace {
			if err := a.store.ClearAds(ctx); err != nil {
				return err
			}
		}

		report, err := a.importer.Run(ctx, records, assets)
		if err != nil {
			return err
		}
		writeImportReport(cmd.OutOrStdout(), report)
		return nil
	},
}

func writeImportReport(w io.Writer, r *importer.Report) {
	bold := color.New(color.Bold)
	bold.Fprintf(w, "Imported %d ads\n", r.Total)
	color.New(color.FgGreen).Fprintf(w, "  linked    %d\n", r.Linked)
	color.New(color.FgYellow).Fprintf(w, "  unlinked  %d\n", r.Unlinked)
	fmt.Fprintf(w, "  no media  %d\n", r.NoMedia)
}
