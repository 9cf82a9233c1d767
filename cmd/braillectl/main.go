package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "braillectl",
	Short: "braillectl - offline tools for the braille dial display",
	Long: `braillectl runs the braille encoder and the motion planner without any
hardware attached.

Examples:
  braillectl transcode 안녕          # glyphs and dial positions for text
  braillectl plan 88 88 -- 48 29    # moves between two positions
  braillectl plan --text hello      # moves from idle to show text
  braillectl decode 48 29 88        # text shown by dial positions
  braillectl order                  # the position ring`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().String("policy", "last", "Duplicate glyph policy (last or first)")

	rootCmd.AddCommand(transcodeCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(decodeCmd)
	rootCmd.AddCommand(orderCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
