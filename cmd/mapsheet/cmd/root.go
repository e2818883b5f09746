package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "mapsheet",
	Short: "Lay vector data out on print-ready raster sheets",
	Long: `mapsheet fits GeoJSON, WKT, CSV and KML content onto raster pages.

A single drawing can be fitted to one page, paginated into a grid of
overlapping sheets for large-format printing, or cropped to a viewport.
Sheets are written as PNG files named after their grid position (A0,
A1, B0, ...).`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
