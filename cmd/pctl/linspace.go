package main

import (
	"os"

	"github.com/urfave/cli/v2"

	"github.com/panbanda/pctl/internal/arrayio"
	"github.com/panbanda/pctl/pkg/tensor"
)

func linspaceCmd() *cli.Command {
	return &cli.Command{
		Name:  "linspace",
		Usage: "Write an array of evenly spaced values",
		Description: `Generates num values over [start, stop] and writes them as an array
document, optionally reshaped. Useful for building test inputs:

  pctl linspace --stop 99 --num 100 --shape 10 --shape 10 > grid.json`,
		Flags: []cli.Flag{
			&cli.Float64Flag{Name: "start", Usage: "First value"},
			&cli.Float64Flag{Name: "stop", Value: 1, Usage: "Last value"},
			&cli.IntFlag{Name: "num", Value: 50, Usage: "Number of values"},
			&cli.StringFlag{Name: "dtype", Value: "float64", Usage: "float32, float64, int32 or int64"},
			&cli.IntSliceFlag{Name: "shape", Usage: "Reshape to these dimensions (repeatable)"},
		},
		Action: runLinspace,
	}
}

func runLinspace(c *cli.Context) error {
	dtype, err := tensor.ParseDType(c.String("dtype"))
	if err != nil {
		return err
	}
	a, err := tensor.Linspace(c.Float64("start"), c.Float64("stop"), c.Int("num"), dtype)
	if err != nil {
		return err
	}
	if shape := c.IntSlice("shape"); len(shape) > 0 {
		if a, err = tensor.Reshape(a, shape...); err != nil {
			return err
		}
	}

	format := arrayio.FormatJSON
	out := c.App.Writer
	if path := c.String("output"); path != "" {
		format = arrayio.FormatFromPath(path)
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	return arrayio.Encode(out, a, format)
}
