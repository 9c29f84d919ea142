package cmd

import (
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/covquery/cvq/internal/cache"
	"github.com/covquery/cvq/internal/config"
	"github.com/covquery/cvq/internal/ingest"
	"github.com/covquery/cvq/internal/output"
)

// loadConfig resolves the effective configuration, honoring --config.
func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromPath(configPath)
	}
	return config.Load(".")
}

// resolveFormat picks the output format from --format or the config default.
func resolveFormat(cfg *config.Config) (output.Format, error) {
	s := outputFormat
	if s == "" {
		s = cfg.Output.DefaultFormat
	}
	return output.ParseFormat(s)
}

// newEngine ingests the report directory and returns the engine plus a
// cleanup func. The cache lives in the .cvq config directory; without one
// (or with --no-cache) ingestion simply scans the file.
func newEngine(dir string, cfg *config.Config, logger hclog.Logger) (*ingest.Engine, func(), error) {
	var opts ingest.Options
	var c *cache.Cache

	if cfg.Cache.Enabled && !noCache {
		if cvqDir, err := config.FindConfigDir("."); err == nil {
			c, err = cache.Open(cvqDir)
			if err != nil {
				logger.Warn("index cache unavailable", "error", err)
				c = nil
			}
			opts.Cache = c
		}
	}

	engine, err := ingest.Initialize(dir, cfg, opts, logger)
	if err != nil {
		if c != nil {
			c.Close()
		}
		return nil, nil, fmt.Errorf("initializing report directory: %w", err)
	}

	cleanup := func() {
		engine.Close()
		if c != nil {
			c.Close()
		}
	}
	return engine, cleanup, nil
}

// runDir extracts the report directory argument, defaulting to the current
// directory.
func runDir(args []string, positional int) string {
	if len(args) > positional {
		return args[positional]
	}
	return "."
}
