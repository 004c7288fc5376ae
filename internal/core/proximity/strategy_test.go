package proximity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStrategy(t *testing.T) {
	for _, s := range Strategies() {
		parsed, err := ParseStrategy(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, parsed)
	}

	parsed, err := ParseStrategy(" Radius-SafeZone ")
	require.NoError(t, err)
	assert.Equal(t, StrategyRadiusSafeZone, parsed)

	_, err = ParseStrategy("octree")
	assert.ErrorIs(t, err, ErrUnknownStrategy)
}

func TestStrategyText(t *testing.T) {
	text, err := StrategyFullScanSafeZone.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "full-safezone", string(text))

	var s Strategy
	require.NoError(t, s.UnmarshalText([]byte("radius")))
	assert.Equal(t, StrategyRadius, s)
	assert.ErrorIs(t, s.UnmarshalText([]byte("nope")), ErrUnknownStrategy)

	_, err = Strategy(9).MarshalText()
	assert.ErrorIs(t, err, ErrUnknownStrategy)
	assert.Equal(t, "strategy(9)", Strategy(9).String())
}

func TestStrategyTraits(t *testing.T) {
	reg := newTestRegistry()

	assert.False(t, StrategyFullScan.TwoRank())
	assert.True(t, StrategyFullScanSafeZone.TwoRank())
	assert.False(t, StrategyRadius.TwoRank())
	assert.True(t, StrategyRadiusSafeZone.TwoRank())

	assert.Equal(t, "full", StrategyFullScanSafeZone.Source(reg).Name())
	assert.Equal(t, "radius", StrategyRadiusSafeZone.Source(reg).Name())
}
