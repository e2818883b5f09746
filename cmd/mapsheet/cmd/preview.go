package cmd

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"mapsheet/internal/tui"
)

var previewCmd = &cobra.Command{
	Use:   "preview [file]",
	Short: "Browse vector files and sheet layouts in the terminal",
	Long: `Preview opens a terminal viewer with braille map rendering. Files in
the working directory can be browsed and loaded, GeoJSON or WKT can be
pasted directly, and the sheet grid the render command would produce
can be overlaid on the drawing. Page geometry comes from MAPSHEET_*
variables or a .env file.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var m tea.Model
		if len(args) == 1 {
			m = tui.NewWithPath(args[0])
		} else {
			m = tui.New()
		}
		_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion()).Run()
		return err
	},
}

func init() {
	rootCmd.AddCommand(previewCmd)
}
