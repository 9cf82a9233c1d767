package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/CodedInternet/gobraille/onboard/braille"
	. "github.com/CodedInternet/gobraille/onboard/errors"
	"github.com/CodedInternet/gobraille/onboard/hardware"
)

func codec(cmd *cobra.Command) (*braille.Codec, error) {
	name, _ := cmd.Flags().GetString("policy")
	policy, err := braille.ParsePolicy(name)
	if err != nil {
		return nil, err
	}
	return braille.NewCodec(braille.CodeTable, policy), nil
}

// parseCodes reads dial positions and pads them with idle slots.
func parseCodes(args []string) (braille.StateVector, error) {
	if len(args) > braille.Slots {
		return braille.StateVector{}, Newf("at most %d positions, got %d", braille.Slots, len(args))
	}
	codes := make([]braille.Code, len(args))
	for i, arg := range args {
		c := braille.Code(arg)
		if !c.WellFormed() {
			return braille.StateVector{}, Newf("position %q is not two digits", arg)
		}
		codes[i] = c
	}
	return braille.Pad(codes), nil
}

var transcodeCmd = &cobra.Command{
	Use:   "transcode <text>",
	Short: "Show the glyphs and dial positions for text",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := codec(cmd)
		if err != nil {
			return err
		}

		text := strings.Join(args, " ")
		tr := braille.Transcode(text)
		codes, dropped := c.Codes(tr.Glyphs)

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "glyphs    %s\n", string(tr.Glyphs))
		fmt.Fprintf(out, "positions %s\n", braille.Pad(codes))
		if len(codes) > braille.Slots {
			fmt.Fprintf(out, "truncated %d cells to %d\n", len(codes), braille.Slots)
		}
		if tr.Dropped > 0 || dropped > 0 {
			fmt.Fprintf(out, "dropped   %d characters, %d glyphs\n", tr.Dropped, dropped)
		}
		return nil
	},
}

var planCmd = &cobra.Command{
	Use:   "plan [current...] -- <target...>",
	Short: "Show the moves between two sets of dial positions",
	Long: `Plan the rotation of every dial. Positions before -- are the current state,
positions after it the target; missing slots are idle. With --text the
target is computed from the text instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		currentArgs, targetArgs := args, []string(nil)
		if dash := cmd.ArgsLenAtDash(); dash >= 0 {
			currentArgs, targetArgs = args[:dash], args[dash:]
		}

		current, err := parseCodes(currentArgs)
		if err != nil {
			return err
		}

		var target braille.StateVector
		if text, _ := cmd.Flags().GetString("text"); len(text) > 0 {
			c, err := codec(cmd)
			if err != nil {
				return err
			}
			codes, _ := c.Codes(braille.Transcode(text).Glyphs)
			target = braille.Pad(codes)
		} else if target, err = parseCodes(targetArgs); err != nil {
			return err
		}

		t := hardware.Plan(current, target)
		cmds, _ := hardware.Commands(t)

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "current     %s\n", current)
		fmt.Fprintf(out, "target      %s\n", target)
		fmt.Fprintf(out, "transitions %s\n", t)
		if len(cmds) > 0 {
			fmt.Fprintf(out, "line        %s", hardware.FormatLine(cmds))
		} else {
			fmt.Fprintln(out, "line        (nothing moves)")
		}
		for _, uerr := range hardware.Unresolvable(current, target) {
			fmt.Fprintf(out, "skipped     %v\n", uerr)
		}
		return nil
	},
}

var decodeCmd = &cobra.Command{
	Use:   "decode <position...>",
	Short: "Show the text a set of dial positions displays",
	Args:  cobra.RangeArgs(1, braille.Slots),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := codec(cmd)
		if err != nil {
			return err
		}
		v, err := parseCodes(args)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), c.Decode(v))
		return nil
	},
}

var orderCmd = &cobra.Command{
	Use:   "order",
	Short: "Print the ring of dial positions",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		for i, code := range braille.Order {
			fmt.Fprintf(out, "%2d:%s", i, code)
			if i%9 == 8 {
				fmt.Fprintln(out)
			} else {
				fmt.Fprint(out, " ")
			}
		}
	},
}

func init() {
	planCmd.Flags().String("text", "", "Compute the target from text")
}
