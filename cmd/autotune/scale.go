package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-autotune/dsp/tuning"
)

func newScaleCmd() *cobra.Command {
	var list bool

	cmd := &cobra.Command{
		Use:   "scale [name ...]",
		Short: "Show the notes of a scale",
		Long: `Show the pitch classes of one or more scales.

Names take the form "tonic:mode" or "tonic mode", e.g. "C:maj",
"F#:min", "Bb dorian". A bare tonic means major.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if list {
				printModes(cmd.OutOrStdout())
				return nil
			}
			if len(args) == 0 {
				return fmt.Errorf("requires at least one scale name")
			}

			for i, name := range args {
				s, err := tuning.ParseScale(name)
				if err != nil {
					return err
				}
				if i > 0 {
					fmt.Fprintln(cmd.OutOrStdout())
				}
				if err := printScale(cmd.OutOrStdout(), s); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&list, "list", false, "list available modes")

	return cmd
}

func printScale(w io.Writer, s *tuning.Scale) error {
	fmt.Fprintf(w, "Scale: %s\n", s.Name())

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Degree\tPitch class\tNote\tHz (octave 4)")
	for i, pc := range s.PitchClasses() {
		hz := tuning.MIDIToHz(float64(60 + pc))
		fmt.Fprintf(tw, "%d\t%d\t%s\t%.2f\n", i+1, pc, tuning.PitchClassName(pc), hz)
	}
	return tw.Flush()
}

func printModes(w io.Writer) {
	names := make([]string, 0, len(tuning.Modes()))
	for _, m := range tuning.Modes() {
		names = append(names, m.String())
	}
	fmt.Fprintln(w, strings.Join(names, "\n"))
}
