package main

import (
	"github.com/urfave/cli/v2"
)

func describeCmd() *cli.Command {
	return &cli.Command{
		Name:      "describe",
		Usage:     "Summarize the distribution of an array",
		ArgsUsage: "[file|-]",
		Description: `Prints the minimum, quartiles, median and maximum of every element
together with the count, mean and sample standard deviation.`,
		Flags: []cli.Flag{
			inputFormatFlag(),
		},
		Action: runDescribe,
	}
}

func runDescribe(c *cli.Context) error {
	e, err := newEnv(c)
	if err != nil {
		return err
	}
	defer func() { _ = e.logger.Sync() }()

	x, _, name, err := readInput(c, c.App.Reader)
	if err != nil {
		return err
	}

	sum, err := e.service.Describe(c.Context, x)
	if err != nil {
		return err
	}

	formatter, err := e.formatter(c)
	if err != nil {
		return err
	}
	defer formatter.Close()

	return formatter.Output(sum.Report(name))
}
