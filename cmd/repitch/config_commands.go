package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"repitch/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}
	cmd.AddCommand(newConfigInitCommand(), newConfigValidateCommand(ctx))
	return cmd
}

// configTarget expands an explicit --path or falls back to the default
// config location.
func configTarget(flag string) (string, error) {
	if flag = strings.TrimSpace(flag); flag != "" {
		return config.ExpandPath(flag)
	}
	return config.DefaultConfigPath()
}

func newConfigInitCommand() *cobra.Command {
	var pathFlag string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a sample configuration file",
		Annotations: map[string]string{skipConfigLoad: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := configTarget(pathFlag)
			if err != nil {
				return fmt.Errorf("resolve config path: %w", err)
			}
			if _, err := os.Lstat(target); err == nil && !overwrite {
				return fmt.Errorf("%s already exists; pass --overwrite to replace it", target)
			} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("inspect %s: %w", target, err)
			}
			if err := config.CreateSample(target); err != nil {
				return err
			}
			// The sample must load cleanly; a broken embed is a build defect.
			if _, _, _, err := config.Load(target); err != nil {
				return fmt.Errorf("sample config does not load: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote sample configuration to %s\n", target)
			return nil
		},
	}

	cmd.Flags().StringVarP(&pathFlag, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing file")
	return cmd
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Load the configuration and show the effective settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			rep := newReport(cmd.OutOrStdout())
			rep.section("Configuration")
			if ctx.configSeen {
				rep.line("File", levelOK, ctx.configPath)
			} else {
				rep.line("File", levelWarn, ctx.configPath+" (missing; defaults used)")
			}
			rep.line("Listen", levelInfo, cfg.Paths.APIBind)
			rep.line("Cache", levelInfo, cfg.Paths.CacheDir)
			rep.line("Downloads", levelInfo, cfg.Paths.DownloadsDir)
			rep.line("Roots file", levelInfo, cfg.Paths.RootsFile)
			rep.line("Logs", levelInfo, cfg.Paths.LogDir+" ("+cfg.Logging.Format+", "+cfg.Logging.Level+")")

			rep.section("Tools")
			rep.line("ffmpeg", levelInfo, cfg.Tools.FFmpeg)
			rep.line("ffprobe", levelInfo, cfg.Tools.FFprobe)
			rep.line("sox", levelInfo, cfg.Tools.Sox)
			timeout := "unbounded"
			if d := cfg.ToolTimeout(); d > 0 {
				timeout = d.String()
			}
			rep.line("Timeout", levelInfo, timeout)

			rep.section("Library")
			rep.line("Extensions", levelInfo, strings.Join(cfg.Library.VideoExtensions, " "))
			rep.line("Thumbnail workers", levelInfo, strconv.Itoa(cfg.Library.ThumbnailWorkers))

			fmt.Fprint(cmd.OutOrStdout(), rep)
			fmt.Fprintln(cmd.OutOrStdout(), "\nConfiguration valid")
			return nil
		},
	}
}
