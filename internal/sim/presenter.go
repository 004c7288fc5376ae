package sim

import (
	"fmt"

	"github.com/zeusync/proximity/internal/core/events/bus"
	"github.com/zeusync/proximity/internal/core/observability/log"
	"github.com/zeusync/proximity/internal/core/proximity"
)

// EventHighlightChanged carries a HighlightChange.
const EventHighlightChanged = "highlight.changed"

const eventSource = "proximity"

// Rank says which highlight channel a change belongs to.
type Rank uint8

const (
	RankClosest Rank = iota + 1
	RankSecond
)

func (r Rank) String() string {
	switch r {
	case RankClosest:
		return "closest"
	case RankSecond:
		return "second"
	}
	return fmt.Sprintf("rank(%d)", uint8(r))
}

func (r Rank) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

func (r *Rank) UnmarshalText(text []byte) error {
	switch string(text) {
	case "closest":
		*r = RankClosest
	case "second":
		*r = RankSecond
	default:
		return fmt.Errorf("unknown rank %q", text)
	}
	return nil
}

type HighlightChange struct {
	Handle proximity.Handle `json:"handle"`
	Rank   Rank             `json:"rank"`
	On     bool             `json:"on"`
}

// BusPresenter publishes highlight notifications on an event bus.
type BusPresenter struct {
	bus    bus.EventBus
	logger log.Log
}

func NewBusPresenter(b bus.EventBus, logger log.Log) *BusPresenter {
	if logger == nil {
		logger = log.NewNop()
	}
	return &BusPresenter{bus: b, logger: logger.With(log.String("component", "presenter"))}
}

func (p *BusPresenter) SetHighlighted(h proximity.Handle, on bool) {
	p.publish(HighlightChange{Handle: h, Rank: RankClosest, On: on})
}

func (p *BusPresenter) SetSecondHighlighted(h proximity.Handle, on bool) {
	p.publish(HighlightChange{Handle: h, Rank: RankSecond, On: on})
}

func (p *BusPresenter) publish(change HighlightChange) {
	if err := p.bus.Publish(bus.NewEvent(EventHighlightChanged, eventSource, change)); err != nil {
		p.logger.Warn("highlight subscribers failed",
			log.Uint64("handle", uint64(change.Handle)),
			log.String("rank", change.Rank.String()),
			log.Error(err))
	}
}
