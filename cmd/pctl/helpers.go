package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/panbanda/pctl/internal/arrayio"
	"github.com/panbanda/pctl/internal/cache"
	"github.com/panbanda/pctl/internal/logging"
	"github.com/panbanda/pctl/internal/output"
	"github.com/panbanda/pctl/internal/service/compute"
	"github.com/panbanda/pctl/pkg/config"
	"github.com/panbanda/pctl/pkg/tensor"
)

// env bundles what every command needs, built from the global flags.
type env struct {
	cfg     *config.Config
	logger  *zap.Logger
	service *compute.Service
}

func loadConfig(c *cli.Context) (*config.LoadResult, error) {
	var opts []config.LoadOption
	if path := c.String("config"); path != "" {
		opts = append(opts, config.WithPath(path))
	}
	return config.LoadConfig(opts...)
}

func newEnv(c *cli.Context) (*env, error) {
	res, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	cfg := res.Config

	if c.Bool("verbose") {
		cfg.Log.Level = "debug"
	}
	if c.Bool("no-color") {
		cfg.Output.Color = false
	}
	if c.Bool("no-cache") {
		cfg.Cache.Enabled = false
	}

	logger, err := logging.New(cfg.Log, cfg.Output.Color)
	if err != nil {
		return nil, err
	}

	rc, err := cache.New(cfg.Cache.Dir, cfg.Cache.TTL, cfg.Cache.Enabled)
	if err != nil {
		logger.Warn("result cache disabled", zap.Error(err))
		rc, _ = cache.New("", 0, false)
	}

	if res.Source != "" {
		logger.Debug("loaded config", zap.String("path", res.Source))
	}

	return &env{
		cfg:    cfg,
		logger: logger,
		service: compute.New(
			compute.WithConfig(cfg),
			compute.WithCache(rc),
			compute.WithLogger(logger),
		),
	}, nil
}

// formatter opens the output destination named by the global flags.
func (e *env) formatter(c *cli.Context) (*output.Formatter, error) {
	name := c.String("format")
	if name == "" {
		name = e.cfg.Output.Format
	}
	return output.NewFormatter(output.ParseFormat(name), c.String("output"), e.cfg.Output.Color)
}

// readInput decodes the array named by the first argument. "-" or no
// argument reads stdin, whose format defaults to JSON.
func readInput(c *cli.Context, stdin io.Reader) (*tensor.Array, []byte, string, error) {
	path := c.Args().First()
	inputFormat, err := parseInputFormat(c.String("input-format"))
	if err != nil {
		return nil, nil, "", err
	}

	if path == "" || path == "-" {
		raw, err := io.ReadAll(stdin)
		if err != nil {
			return nil, nil, "", fmt.Errorf("failed to read stdin: %w", err)
		}
		if inputFormat == "" {
			inputFormat = arrayio.FormatJSON
		}
		a, err := arrayio.Decode(raw, inputFormat)
		return a, raw, "stdin", err
	}

	if inputFormat == "" {
		a, raw, err := arrayio.ReadFile(path)
		return a, raw, path, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, path, err
	}
	a, err := arrayio.Decode(raw, inputFormat)
	if err != nil {
		return nil, nil, path, fmt.Errorf("%s: %w", path, err)
	}
	return a, raw, path, nil
}

func parseInputFormat(s string) (arrayio.Format, error) {
	switch strings.ToLower(s) {
	case "":
		return "", nil
	case "json":
		return arrayio.FormatJSON, nil
	case "yaml", "yml":
		return arrayio.FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown input format %q (want json or yaml)", s)
	}
}

func inputFormatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "input-format",
		Usage: "Input document format: json or yaml (default from file extension, json for stdin)",
	}
}
