package proximity

import (
	"errors"
	"fmt"
	"strings"
)

// Strategy selects how candidates are produced and how many ranks are kept.
type Strategy uint8

const (
	// StrategyFullScan scans every object on every tick.
	StrategyFullScan Strategy = iota
	// StrategyFullScanSafeZone keeps two ranks and skips scans inside the safe zone.
	StrategyFullScanSafeZone
	// StrategyRadius scans only objects within the closest distance.
	StrategyRadius
	// StrategyRadiusSafeZone combines radius queries with the safe zone.
	StrategyRadiusSafeZone
)

// DefaultStrategy is the strategy used when none is configured.
const DefaultStrategy = StrategyRadiusSafeZone

var ErrUnknownStrategy = errors.New("unknown strategy")

var strategyNames = [...]string{
	StrategyFullScan:         "full",
	StrategyFullScanSafeZone: "full-safezone",
	StrategyRadius:           "radius",
	StrategyRadiusSafeZone:   "radius-safezone",
}

// Strategies lists every strategy in declaration order.
func Strategies() []Strategy {
	return []Strategy{StrategyFullScan, StrategyFullScanSafeZone, StrategyRadius, StrategyRadiusSafeZone}
}

func (s Strategy) String() string {
	if int(s) < len(strategyNames) {
		return strategyNames[s]
	}
	return fmt.Sprintf("strategy(%d)", uint8(s))
}

// TwoRank reports whether the strategy keeps a second rank and a safe zone.
func (s Strategy) TwoRank() bool {
	return s == StrategyFullScanSafeZone || s == StrategyRadiusSafeZone
}

// Source returns the candidate source the strategy scans with.
func (s Strategy) Source(registry Registry) CandidateSource {
	if s == StrategyRadius || s == StrategyRadiusSafeZone {
		return RadiusQuery{Registry: registry}
	}
	return FullScan{Registry: registry}
}

func (s Strategy) valid() bool { return int(s) < len(strategyNames) }

// ParseStrategy accepts the names produced by String, case-insensitively.
func ParseStrategy(name string) (Strategy, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range strategyNames {
		if n == name {
			return Strategy(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
}

func (s Strategy) MarshalText() ([]byte, error) {
	if !s.valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownStrategy, uint8(s))
	}
	return []byte(s.String()), nil
}

func (s *Strategy) UnmarshalText(text []byte) error {
	parsed, err := ParseStrategy(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
