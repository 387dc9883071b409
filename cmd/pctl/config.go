package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/pelletier/go-toml"
	"github.com/urfave/cli/v2"
)

func configCmd() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Configuration management commands",
		Subcommands: []*cli.Command{
			{
				Name:  "validate",
				Usage: "Validate a configuration file",
				Description: `Validates a pctl configuration file for syntax errors and invalid values.

Examples:
  pctl config validate                  # Validates default config locations
  pctl -c pctl.toml config validate     # Validates specific file
  pctl -c .pctl/pctl.yaml config validate`,
				Action: runConfigValidate,
			},
			{
				Name:  "show",
				Usage: "Show the effective configuration",
				Description: `Shows the merged configuration from defaults and config file.

Examples:
  pctl config show              # Show effective config
  pctl -c pctl.toml config show # Show config from specific file`,
				Action: runConfigShow,
			},
		},
	}
}

func runConfigValidate(c *cli.Context) error {
	result, err := loadConfig(c)
	if err != nil {
		color.Red("Configuration validation failed:")
		fmt.Fprintf(c.App.Writer, "  - %s\n", err)
		return err
	}

	if result.Source != "" {
		color.Green("Configuration valid: %s", result.Source)
	} else {
		color.Yellow("No config file found. Default configuration is valid.")
	}
	return nil
}

func runConfigShow(c *cli.Context) error {
	result, err := loadConfig(c)
	if err != nil {
		return err
	}

	w := c.App.Writer
	if result.Source != "" {
		fmt.Fprintf(w, "# Configuration from: %s\n\n", result.Source)
	} else {
		fmt.Fprintln(w, "# Default configuration (no config file found)")
	}

	content, err := toml.Marshal(result.Config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	fmt.Fprint(w, string(content))

	return nil
}
