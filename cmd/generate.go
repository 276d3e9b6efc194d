// cmd/generate.go

package main

import (
	"ArraySum/pkg/dataset"
	"ArraySum/pkg/utils"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

func generateFlags() *cli.Command {
	return &cli.Command{
		Name:      "generate",
		Usage:     "write a dataset of random integers",
		ArgsUsage: "FILE",
		Action:    generate,
		Flags: []cli.Flag{
			&cli.Int64Flag{
				Name:  "count",
				Value: 100_000_000,
				Usage: "number of integers to write",
			},
			&cli.Int64Flag{
				Name:  "min",
				Value: 1,
				Usage: "smallest value (inclusive)",
			},
			&cli.Int64Flag{
				Name:  "max",
				Value: 1000,
				Usage: "largest value (inclusive)",
			},
			&cli.Uint64Flag{
				Name:  "seed",
				Usage: "seed for a reproducible dataset",
			},
			&cli.StringFlag{
				Name:  "values",
				Usage: "comma separated integers to write instead of random ones",
			},
		},
	}
}

func parseValues(s string) ([]int32, error) {
	var values []int32
	for _, f := range strings.Split(s, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		v, err := strconv.ParseInt(f, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid value %q: %s", f, err)
		}
		values = append(values, int32(v))
	}
	return values, nil
}

func int32Flag(c *cli.Context, name string) (int32, error) {
	v := c.Int64(name)
	if v < math.MinInt32 || v > math.MaxInt32 {
		return 0, errors.Wrapf(dataset.ErrInvalidArgument, "--%s %d is out of the int32 range", name, v)
	}
	return int32(v), nil
}

func generate(c *cli.Context) error {
	if c.Args().Len() < 1 {
		return fmt.Errorf("FILE is needed")
	}
	path := c.Args().Get(0)

	if c.IsSet("values") {
		values, err := parseValues(c.String("values"))
		if err != nil {
			return err
		}
		if err := dataset.WriteFile(path, values); err != nil {
			return err
		}
		logger.Infof("Wrote %d integers into %s", len(values), path)
		return nil
	}

	lo, err := int32Flag(c, "min")
	if err != nil {
		return err
	}
	hi, err := int32Flag(c, "max")
	if err != nil {
		return err
	}
	count := c.Int64("count")
	progress, bar := utils.NewByteProgressBar("Writing:", count*dataset.ElementSize, c.Bool("quiet"))
	opts := dataset.GenerateOptions{
		Min:      lo,
		Max:      hi,
		Ranged:   true,
		Seed:     c.Uint64("seed"),
		Seeded:   c.IsSet("seed"),
		Progress: func(n int64) { bar.IncrInt64(n * dataset.ElementSize) },
	}
	err = dataset.Generate(c.Context, path, count, opts)
	if err != nil {
		bar.Abort(false)
	} else {
		bar.SetTotal(-1, true)
	}
	progress.Wait()
	return err
}
