package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"repitch/internal/api"
	"repitch/internal/config"
	"repitch/internal/deps"
	"repitch/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show server, dependency and path status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			status, fetchErr := ctx.fetchStatus(cmd.Context())
			if fetchErr != nil {
				status = localStatus(cfg, ctx)
			}

			rep := newReport(cmd.OutOrStdout())
			rep.section("Server")
			rep.server(status, fetchErr == nil, cfg.Paths.APIBind)
			rep.line("Cache", levelInfo, status.CacheDir)
			rep.line("Downloads", levelInfo, status.DownloadsDir)

			rep.section("Dependencies")
			for _, dep := range status.Dependencies {
				rep.dependency(dep)
			}

			rep.section("Paths")
			for _, result := range preflight.RunAll(cmd.Context(), cfg) {
				rep.check(result)
			}

			rep.section("Search roots")
			if len(status.Roots) == 0 {
				rep.line("Roots", levelWarn, "none registered")
			}
			for _, root := range status.Roots {
				rep.item(root)
			}

			fmt.Fprint(cmd.OutOrStdout(), rep)
			return nil
		},
	}
}

// localStatus builds the status a server would report from local checks.
func localStatus(cfg *config.Config, ctx *commandContext) api.ServerStatus {
	status := api.ServerStatus{
		Bind:         cfg.Paths.APIBind,
		CacheDir:     cfg.Paths.CacheDir,
		DownloadsDir: cfg.Paths.DownloadsDir,
		RootsFile:    cfg.Paths.RootsFile,
	}
	if registry, err := ctx.registry(); err == nil {
		status.Roots = registry.List()
	}
	for _, dep := range deps.CheckConfigured(cfg) {
		status.Dependencies = append(status.Dependencies, api.DependencyStatus{
			Name:        dep.Name,
			Command:     dep.Command,
			Description: dep.Description,
			Optional:    dep.Optional,
			Available:   dep.Available,
			Detail:      dep.Detail,
		})
	}
	return status
}
