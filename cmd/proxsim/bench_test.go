package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/proximity/internal/core/proximity"
)

func smallBench() benchOptions {
	return benchOptions{
		objects:  200,
		ticks:    50,
		radius:   20,
		speed:    5,
		seed:     7,
		cellSize: 4,
		dt:       20 * time.Millisecond,
	}
}

func TestBenchReportsEveryStrategy(t *testing.T) {
	results, err := runBench(context.Background(), smallBench())
	require.NoError(t, err)
	require.Len(t, results, len(proximity.Strategies()))

	for i, r := range results {
		assert.Equal(t, proximity.Strategies()[i], r.strategy)
		assert.Equal(t, 50, r.summary.Ticks)
		assert.Len(t, r.durations, 50)
	}
	// Without a safe zone every tick scans.
	assert.Equal(t, 1.0, results[0].summary.ScanRatio())

	var out bytes.Buffer
	require.NoError(t, printBench(&out, results))
	for _, s := range proximity.Strategies() {
		assert.Contains(t, out.String(), s.String())
	}
}

func TestBenchRejectsBadOptions(t *testing.T) {
	opts := smallBench()
	opts.ticks = 0
	_, err := runBench(context.Background(), opts)
	assert.Error(t, err)
}

func TestBenchStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := runBench(ctx, smallBench())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPlotBench(t *testing.T) {
	opts := smallBench()
	opts.ticks = 10
	results, err := runBench(context.Background(), opts)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "bench.svg")
	require.NoError(t, plotBench(path, results))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestLoadConfigStrategyOverride(t *testing.T) {
	cfg, err := loadConfig(runOptions{strategy: "full"})
	require.NoError(t, err)
	assert.Equal(t, proximity.StrategyFullScan, cfg.Strategy)

	_, err = loadConfig(runOptions{strategy: "nearest-ish"})
	assert.Error(t, err)
}
