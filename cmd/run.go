// cmd/run.go

package main

import (
	"ArraySum/pkg/dataset"
	"ArraySum/pkg/sum"
	"ArraySum/pkg/utils"
	"ArraySum/pkg/version"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

func runFlags() *cli.Command {
	def := sum.DefaultConfig()
	return &cli.Command{
		Name:      "run",
		Usage:     "sum a dataset with one or more strategies and time them",
		ArgsUsage: "FILE",
		Action:    run,
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "strategy",
				Aliases: []string{"s"},
				Usage:   "strategy to run, repeatable (default: all but naive)",
			},
			&cli.IntFlag{
				Name:  "chunk-size",
				Value: def.ChunkSize,
				Usage: "integers per chunk",
			},
			&cli.IntFlag{
				Name:  "workers",
				Value: def.Workers,
				Usage: "number of concurrent workers",
			},
			&cli.IntFlag{
				Name:  "pool-page",
				Value: def.PoolPageSize,
				Usage: "size of pooled buffers in bytes",
			},
			&cli.IntFlag{
				Name:  "stack-budget",
				Value: def.StackBudget,
				Usage: "bytes shared by the per-worker buffers of the stack strategy",
			},
			&cli.IntFlag{
				Name:  "channel-page",
				Value: def.ChannelPageSize,
				Usage: "bytes per message of the channel strategy",
			},
			&cli.IntFlag{
				Name:  "queue-depth",
				Usage: "capacity of the channel (default 2 x workers)",
			},
			&cli.Int64Flag{
				Name:  "read-limit",
				Usage: "read bandwidth limit in MiB/s (0 for no limit)",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "cancel each run after this long",
			},
		},
	}
}

type report struct {
	stats     sum.RunStats
	user, sys time.Duration
}

func run(c *cli.Context) error {
	if c.Args().Len() < 1 {
		return fmt.Errorf("FILE is needed")
	}
	path := c.Args().Get(0)
	conf := &sum.Config{
		ChunkSize:       c.Int("chunk-size"),
		Workers:         c.Int("workers"),
		PoolPageSize:    c.Int("pool-page"),
		StackBudget:     c.Int("stack-budget"),
		ChannelPageSize: c.Int("channel-page"),
		QueueDepth:      c.Int("queue-depth"),
		ReadLimit:       c.Int64("read-limit") << 20,
	}
	names := c.StringSlice("strategy")
	if len(names) == 0 {
		for _, name := range sum.Names() {
			if name != "naive" {
				names = append(names, name)
			}
		}
	}

	var strategies []sum.Strategy
	for _, name := range names {
		s, err := sum.New(name, path, conf)
		if err != nil {
			return errors.Wrapf(err, "strategy %s", name)
		}
		strategies = append(strategies, s)
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintln(c.App.Writer, version.Banner())
	progress, bar := utils.NewDynProgressBar("Strategies:", c.Bool("quiet"))
	bar.SetTotal(int64(len(strategies)), false)
	var reports []report
	var failed error
	for _, s := range strategies {
		rep, err := timeRun(ctx, s, c.Duration("timeout"))
		bar.Increment()
		reports = append(reports, rep)
		if err != nil && !errors.Is(err, dataset.ErrCancelled) {
			failed = err
			break
		}
		if ctx.Err() != nil {
			break
		}
	}
	bar.SetTotal(-1, true)
	progress.Wait()

	for _, rep := range reports {
		printReport(c, rep)
	}
	return failed
}

func timeRun(ctx context.Context, s sum.Strategy, timeout time.Duration) (report, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	before := utils.GetRusage()
	_, err := s.Run(ctx)
	rep := report{stats: s.LastRun()}
	rep.user, rep.sys = utils.GetRusage().CPUSince(before)
	return rep, err
}

func printReport(c *cli.Context, rep report) {
	st := rep.stats
	w := c.App.Writer
	fmt.Fprintf(w, "[%s] sum: %d (%.3f ms)\n", st.Strategy, st.Sum, float64(st.Elapsed.Microseconds())/1000)
	fmt.Fprintf(w, "    state %s, %d chunks, %d bytes, cpu user %s sys %s\n",
		st.State, st.Chunks, st.Bytes, rep.user.Round(time.Millisecond), rep.sys.Round(time.Millisecond))
	if st.Err != nil {
		fmt.Fprintf(w, "    error: %s\n", st.Err)
	}
	if st.State == sum.Cancelled {
		fmt.Fprintln(w, "    cancelled: the sum above is not the total of the file")
	}
	fmt.Fprintln(w)
}
