package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cwbudde/algo-autotune/internal/logging"
)

type globalOptions struct {
	logLevel  string
	logFormat string
}

func (o *globalOptions) logger() (*zap.Logger, error) {
	return logging.New(o.logLevel, o.logFormat)
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "autotune",
		Short: "Pitch-correct vocals in audio and video",
		Long: `autotune detects the pitch of a vocal track, snaps it to the nearest
semitone or to a musical scale and resynthesizes the corrected voice.

Commands:
  run    process a video end to end from a configuration file
  tune   pitch-correct a single WAV file
  scale  show the notes of a scale`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&opts.logFormat, "log-format", logging.FormatConsole, "log format (console, json)")

	root.AddCommand(
		newRunCmd(opts),
		newTuneCmd(opts),
		newScaleCmd(),
	)

	return root
}
