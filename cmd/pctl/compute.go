package main

import (
	"fmt"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/panbanda/pctl/internal/output"
	"github.com/panbanda/pctl/internal/progress"
)

func computeCmd() *cli.Command {
	return &cli.Command{
		Name:      "compute",
		Aliases:   []string{"pct"},
		Usage:     "Compute percentiles of an array along chosen axes",
		ArgsUsage: "[file|-]",
		Description: `Reads a JSON or YAML array document from a file, or from stdin when the
argument is "-" or missing, and prints the requested percentiles.

The result's first axis indexes --q unless --scalar is set, followed by
the input axes that were not reduced.

Examples:
  pctl compute --q 50 --q 99 latency.json
  pctl compute --q 50 --axis -1 -i midpoint latency.yaml
  echo '[1, 2, 3, 4]' | pctl compute --q 50 --scalar -`,
		Flags: []cli.Flag{
			&cli.Float64SliceFlag{
				Name:     "q",
				Usage:    "Percentile level in [0, 100] (repeatable)",
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "scalar",
				Usage: "Treat a single --q as a scalar, dropping the levels axis",
			},
			&cli.IntSliceFlag{
				Name:    "axis",
				Aliases: []string{"a"},
				Usage:   "Axis to reduce, negative counts from the end (repeatable, default all)",
			},
			&cli.StringFlag{
				Name:    "interpolation",
				Aliases: []string{"i"},
				Usage:   "lower, higher, nearest or midpoint (default from config)",
			},
			&cli.BoolFlag{
				Name:  "keep-dims",
				Usage: "Keep reduced axes as size-1 dimensions",
			},
			&cli.BoolFlag{
				Name:  "validate",
				Usage: "Reject levels outside [0, 100] up front",
			},
			&cli.BoolFlag{
				Name:  "dynamic",
				Usage: "Defer size checks until the computation runs",
			},
			inputFormatFlag(),
		},
		Action: runCompute,
	}
}

func runCompute(c *cli.Context) error {
	e, err := newEnv(c)
	if err != nil {
		return err
	}
	defer func() { _ = e.logger.Sync() }()

	x, raw, name, err := readInput(c, c.App.Reader)
	if err != nil {
		return err
	}

	req := e.service.NewRequest(c.Float64Slice("q")...)
	req.ScalarQ = c.Bool("scalar")
	req.Axes = c.IntSlice("axis")
	if c.IsSet("interpolation") {
		req.Interpolation = c.String("interpolation")
	}
	req.KeepDims = req.KeepDims || c.Bool("keep-dims")
	req.ValidateArgs = req.ValidateArgs || c.Bool("validate")
	req.Dynamic = c.Bool("dynamic")

	tracker := progress.NewSpinner("Computing percentiles...")
	req.OnProgress = tracker.Add

	res, err := e.service.Compute(c.Context, x, raw, req)
	if err != nil {
		tracker.FinishError(err)
		return err
	}
	tracker.FinishSuccess()

	e.logger.Debug("computed percentiles",
		zap.String("input", name),
		zap.Ints("shape", res.Output.Dims()),
		zap.Bool("cached", res.Cached),
	)

	formatter, err := e.formatter(c)
	if err != nil {
		return err
	}
	defer formatter.Close()

	title := fmt.Sprintf("Percentiles of %s", name)
	return formatter.Output(output.ArrayTable(title, res.Output, res.Labels...))
}
