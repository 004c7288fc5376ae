package main

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// plotBench saves a box plot of tick durations in microseconds, one box per
// strategy. The format follows the file extension.
func plotBench(path string, results []benchResult) error {
	p := plot.New()
	p.Title.Text = "Tick duration by strategy"
	p.Y.Label.Text = "tick (µs)"

	names := make([]string, len(results))
	for i, r := range results {
		values := make(plotter.Values, len(r.durations))
		for j, d := range r.durations {
			values[j] = d * 1e6
		}
		box, err := plotter.NewBoxPlot(vg.Points(20), float64(i), values)
		if err != nil {
			return fmt.Errorf("box for %s: %w", r.strategy, err)
		}
		p.Add(box)
		names[i] = r.strategy.String()
	}
	p.NominalX(names...)

	if err := p.Save(8*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("save plot: %w", err)
	}
	return nil
}
