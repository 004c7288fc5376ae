package bus

import (
	"time"

	"github.com/zeusync/proximity/internal/core/observability/log"
)

// LogObserver writes delivery failures at warn level and everything else at
// debug level.
type LogObserver struct {
	Logger log.Log
}

func (o LogObserver) OnPublish(string, Event) {}

func (o LogObserver) OnDelivered(eventType string, handlers int, err error, took time.Duration) {
	if err != nil {
		o.Logger.Warn("event handlers failed",
			log.String("type", eventType),
			log.Int("handlers", handlers),
			log.Error(err))
		return
	}
	o.Logger.Debug("event delivered",
		log.String("type", eventType),
		log.Int("handlers", handlers),
		log.Duration("took", took))
}
