// Package main implements the gridterm demo client: an image and text
// viewer that drives the terminal engine end to end, with sixel graphics,
// mouse tracking, and differential screen updates.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/adrg/xdg"
	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/Gaurav-Gosain/gridterm/internal/config"
)

// Version information (set by goreleaser)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Global flags
var (
	debugMode   bool
	noSixel     bool
	noTrueColor bool
	paletteSize int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "gridterm [image]",
		Short: "Terminal cell-grid engine demo",
		Long: `gridterm renders a cell grid to the terminal with minimal escape
sequence output, sixel graphics, and full mouse reporting.

Given an image file, it displays the image scaled to the window. Without
arguments it shows a text attribute test pattern. Either way, click and
drag to highlight cells, and press q or Escape to quit.`,
		Example: `  # Show the test pattern
  gridterm

  # Display an image with sixel graphics
  gridterm photo.png

  # Display without sixel (image degrades to blank cells)
  gridterm --no-sixel photo.jpg

  # Use a smaller sixel palette
  gridterm --palette 256 photo.png`,
		Args:    cobra.MaximumNArgs(1),
		Version: version,
		RunE: func(_ *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if noSixel {
				off := false
				cfg.Display.Sixel = &off
			}
			if noTrueColor {
				off := false
				cfg.Display.TrueColor = &off
			}
			if paletteSize != 0 {
				cfg.Display.PaletteSize = paletteSize
			}
			if debugMode {
				cfg.Debug.Trace = true
			}

			imagePath := ""
			if len(args) == 1 {
				imagePath = args[0]
			}
			return runDemo(cfg, imagePath)
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	rootCmd.Flags().BoolVar(&noSixel, "no-sixel", false, "Disable sixel graphics")
	rootCmd.Flags().BoolVar(&noTrueColor, "no-truecolor", false, "Disable 24-bit color output")
	rootCmd.Flags().IntVar(&paletteSize, "palette", 0, "Sixel palette size: 2, 256, 512, 1024, 2048 (default: from config or 1024)")

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage gridterm configuration",
	}
	configPathCmd := &cobra.Command{
		Use:   "path",
		Short: "Print configuration file path",
		RunE: func(_ *cobra.Command, _ []string) error {
			path, err := xdg.SearchConfigFile("gridterm/config.toml")
			if err != nil {
				path, err = xdg.ConfigFile("gridterm/config.toml")
				if err != nil {
					return fmt.Errorf("failed to get config path: %w", err)
				}
			}
			fmt.Println(path)
			return nil
		},
	}
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)

	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(fmt.Sprintf("%s\nCommit: %s\nBuilt: %s", version, commit, date)),
	); err != nil {
		os.Exit(1)
	}
}
