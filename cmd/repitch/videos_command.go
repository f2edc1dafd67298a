package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"repitch/internal/artifact"
	"repitch/internal/library"
	"repitch/internal/logging"
	"repitch/internal/pipeline"
	"repitch/internal/tools"
)

func newVideosCommand(ctx *commandContext) *cobra.Command {
	var showIDs bool

	cmd := &cobra.Command{
		Use:   "videos",
		Short: "List videos under the registered search roots",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			registry, err := ctx.registry()
			if err != nil {
				return err
			}
			logger := logging.NewNop()
			svc, err := pipeline.NewService(pipeline.Dependencies{
				Store: artifact.NewStore(artifact.Layout{
					CacheDir:     cfg.Paths.CacheDir,
					DownloadsDir: cfg.Paths.DownloadsDir,
				}, logger),
				Tools: tools.NewCLI(tools.Binaries{
					FFmpeg:  cfg.Tools.FFmpeg,
					FFprobe: cfg.Tools.FFprobe,
					Sox:     cfg.Tools.Sox,
				}),
				Roots:  registry,
				Walker: library.NewWalker(cfg.Library.VideoExtensions, logger),
				Logger: logger,
			})
			if err != nil {
				return err
			}
			videos, err := svc.DiscoverVideos(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(videos) == 0 {
				fmt.Fprintln(out, "No videos found")
				return nil
			}
			fmt.Fprintln(out, videoTable(videos, showIDs))
			return nil
		},
	}

	cmd.Flags().BoolVar(&showIDs, "ids", false, "Include video ids")
	return cmd
}
