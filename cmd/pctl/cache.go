package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/panbanda/pctl/internal/cache"
	"github.com/panbanda/pctl/internal/output"
	"github.com/panbanda/pctl/pkg/config"
)

func cacheCmd() *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Inspect or clear the result cache",
		Description: `Results of "pctl compute" are cached under cache.dir, keyed by the input
document and the request. These commands manage that directory even when
caching is turned off.`,
		Subcommands: []*cli.Command{
			{
				Name:   "stats",
				Usage:  "Show the number, size and age of cached results",
				Action: runCacheStats,
			},
			{
				Name:   "clear",
				Usage:  "Remove every cached result",
				Action: runCacheClear,
			},
		},
	}
}

// openCache opens the configured cache directory regardless of
// cache.enabled and --no-cache.
func openCache(c *cli.Context) (*config.Config, *cache.Cache, *output.Formatter, error) {
	res, err := loadConfig(c)
	if err != nil {
		return nil, nil, nil, err
	}
	cfg := res.Config
	if c.Bool("no-color") {
		cfg.Output.Color = false
	}

	rc, err := cache.New(cfg.Cache.Dir, cfg.Cache.TTL, true)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to open cache %s: %w", cfg.Cache.Dir, err)
	}

	name := c.String("format")
	if name == "" {
		name = cfg.Output.Format
	}
	f, err := output.NewFormatter(output.ParseFormat(name), c.String("output"), cfg.Output.Color)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, rc, f, nil
}

func runCacheStats(c *cli.Context) error {
	cfg, rc, formatter, err := openCache(c)
	if err != nil {
		return err
	}
	defer formatter.Close()

	stats, err := rc.GetStats()
	if err != nil {
		return err
	}

	if formatter.Format() == output.FormatText {
		if !cfg.Cache.Enabled {
			formatter.Warning("Result caching is disabled (cache.enabled = false)")
		}
		if stats.Entries == 0 {
			formatter.Info("Cache at %s is empty", rc.Dir())
			return nil
		}
	}

	rows := [][]string{
		{"dir", rc.Dir()},
		{"entries", strconv.Itoa(stats.Entries)},
		{"total size", fmt.Sprintf("%d bytes", stats.TotalSize)},
		{"oldest", stats.OldestAge.Round(time.Second).String()},
		{"newest", stats.NewestAge.Round(time.Second).String()},
	}
	return formatter.Output(output.NewTable("Result cache", []string{"stat", "value"}, rows, nil, stats))
}

func runCacheClear(c *cli.Context) error {
	_, rc, formatter, err := openCache(c)
	if err != nil {
		return err
	}
	defer formatter.Close()

	stats, err := rc.GetStats()
	if err != nil {
		return err
	}
	if err := rc.Clear(); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	formatter.Success("Cleared %d cached results from %s", stats.Entries, rc.Dir())
	return nil
}
