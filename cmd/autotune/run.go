package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cwbudde/algo-autotune/internal/config"
	"github.com/cwbudde/algo-autotune/internal/media"
	"github.com/cwbudde/algo-autotune/internal/pipeline"
	"github.com/cwbudde/algo-autotune/internal/separation"
)

func newRunCmd(opts *globalOptions) *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Process a video as described by a configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			logger, err := opts.logger()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			runner := media.ExecRunner{}
			p, err := pipeline.New(cfg, media.New(runner), separation.New(runner), logger)
			if err != nil {
				return err
			}

			final, err := p.Run(cmd.Context())
			if err != nil {
				return err
			}

			logger.Info("final video created", zap.String("path", final))
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultFile, "configuration file (JSON or YAML)")

	return cmd
}
