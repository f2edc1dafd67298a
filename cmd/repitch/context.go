package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"repitch/internal/api"
	"repitch/internal/config"
	"repitch/internal/logging"
	"repitch/internal/roots"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configSeen bool
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
		c.configSeen = exists
	})
	return c.config, c.configErr
}

// registry opens the roots registry with a silent logger; CLI output goes
// through the command writer instead.
func (c *commandContext) registry() (*roots.Registry, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return roots.Open(cfg.Paths.RootsFile, logging.NewNop()), nil
}

// fetchStatus asks the configured server for its status.
func (c *commandContext) fetchStatus(ctx context.Context) (api.ServerStatus, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return api.ServerStatus{}, err
	}
	reqCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	url := "http://" + cfg.Paths.APIBind + "/api/status"
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return api.ServerStatus{}, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return api.ServerStatus{}, fmt.Errorf("connect to server at %s: %w", cfg.Paths.APIBind, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return api.ServerStatus{}, fmt.Errorf("server status: unexpected status %d", resp.StatusCode)
	}
	var status api.ServerStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return api.ServerStatus{}, fmt.Errorf("decode server status: %w", err)
	}
	return status, nil
}

// skipConfigLoad annotates commands that run without a loaded config.
const skipConfigLoad = "skipConfigLoad"

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations[skipConfigLoad] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
