package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/zeusync/proximity/internal/core/observability/metrics"
	"github.com/zeusync/proximity/internal/core/proximity"
	"github.com/zeusync/proximity/internal/core/systems/physics"
	"github.com/zeusync/proximity/internal/core/world"
	"github.com/zeusync/proximity/internal/sim"
)

type benchOptions struct {
	objects  int
	ticks    int
	radius   float64
	speed    float64
	seed     uint64
	cellSize float64
	dt       time.Duration
	plot     string
}

type benchResult struct {
	strategy  proximity.Strategy
	summary   metrics.Summary
	durations []float64
	closest   proximity.Handle
}

func newBenchCmd() *cobra.Command {
	opts := benchOptions{
		objects:  1000,
		ticks:    2000,
		radius:   50,
		speed:    5,
		seed:     1,
		cellSize: 4,
		dt:       20 * time.Millisecond,
	}
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Compare the tracking strategies on the same scene",
		RunE: func(cmd *cobra.Command, _ []string) error {
			results, err := runBench(cmd.Context(), opts)
			if err != nil {
				return err
			}
			if err := printBench(cmd.OutOrStdout(), results); err != nil {
				return err
			}
			if opts.plot != "" {
				return plotBench(opts.plot, results)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.IntVar(&opts.objects, "objects", opts.objects, "number of items in the scene")
	f.IntVar(&opts.ticks, "ticks", opts.ticks, "ticks to run per strategy")
	f.Float64Var(&opts.radius, "radius", opts.radius, "radius of the spawn sphere and observer bounds")
	f.Float64Var(&opts.speed, "speed", opts.speed, "observer speed in units per second")
	f.Uint64Var(&opts.seed, "seed", opts.seed, "random seed shared by every strategy")
	f.Float64Var(&opts.cellSize, "cell-size", opts.cellSize, "spatial grid cell size")
	f.DurationVar(&opts.dt, "dt", opts.dt, "simulated time per tick")
	f.StringVar(&opts.plot, "plot", "", "write a box plot of tick durations to this file (.png, .svg or .pdf)")
	return cmd
}

// runBench runs every strategy on an identical scene and observer path.
func runBench(ctx context.Context, opts benchOptions) ([]benchResult, error) {
	if opts.objects < 0 || opts.ticks <= 0 || opts.dt <= 0 {
		return nil, fmt.Errorf("bench needs objects >= 0, ticks > 0 and dt > 0")
	}

	strategies := proximity.Strategies()
	results := make([]benchResult, len(strategies))
	g, gctx := errgroup.WithContext(ctx)
	for i, strategy := range strategies {
		g.Go(func() error {
			r, err := benchStrategy(gctx, strategy, opts)
			results[i] = r
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func benchStrategy(ctx context.Context, strategy proximity.Strategy, opts benchOptions) (benchResult, error) {
	w := world.New(world.WithCellSize(opts.cellSize))
	spawner := world.NewSpawner(w, physics.Vec3{}, opts.radius, opts.seed)
	samples := metrics.NewSamples(opts.ticks)
	tracker := proximity.New(w, nil,
		proximity.WithStrategy(strategy),
		proximity.WithTickObserver(samples),
	)
	s := sim.New(sim.Params{
		World:   w,
		Tracker: tracker,
		Spawner: spawner,
		Mover:   sim.NewRandomWalk(opts.speed, opts.radius, opts.seed+1),
	})
	s.Populate(opts.objects, 0)

	dt := opts.dt.Seconds()
	for i := range opts.ticks {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				return benchResult{}, err
			}
		}
		if _, err := s.Step(dt); err != nil {
			return benchResult{}, fmt.Errorf("%s: %w", strategy, err)
		}
	}

	return benchResult{
		strategy:  strategy,
		summary:   samples.Summary(),
		durations: samples.Durations(),
		closest:   tracker.State().Closest,
	}, nil
}

func printBench(out io.Writer, results []benchResult) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "strategy\tticks\tscan%\tmean\tstd\tp50\tp99\tmax\tcand/tick\t")
	for _, r := range results {
		s := r.summary
		fmt.Fprintf(tw, "%s\t%d\t%.1f\t%v\t%v\t%v\t%v\t%v\t%.1f\t\n",
			r.strategy, s.Ticks, 100*s.ScanRatio(),
			s.Mean, s.StdDev, s.P50, s.P99, s.Max, s.MeanCandidates)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	agree := true
	for _, r := range results[1:] {
		if r.closest != results[0].closest {
			agree = false
		}
	}
	if agree {
		_, err := fmt.Fprintf(out, "all strategies agree on closest %d\n", results[0].closest)
		return err
	}
	for _, r := range results {
		if _, err := fmt.Fprintf(out, "%s closest %d\n", r.strategy, r.closest); err != nil {
			return err
		}
	}
	return nil
}
