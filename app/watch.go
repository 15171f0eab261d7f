package app

import (
	"context"

	"github.com/kilianp07/nsreg/core/logger"
	coremetrics "github.com/kilianp07/nsreg/core/metrics"
	"github.com/kilianp07/nsreg/internal/eventbus"
)

// watchRegistrations logs registrations made after startup until ctx is
// canceled or the bus is closed, then reports events the bus had to drop.
// It returns once the subscription is live.
func watchRegistrations(ctx context.Context, bus *eventbus.Bus[coremetrics.RegistrationEvent], log logger.Logger) <-chan struct{} {
	done := make(chan struct{})
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer func() {
			if n := bus.Dropped(); n > 0 {
				log.Warnf("%d registration events dropped by slow subscribers", n)
			}
		}()
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				if ev.Replaced {
					log.Warnf("late registration %s.%s replaced an existing entry", ev.Partition, ev.Path)
					continue
				}
				log.Infof("late registration %s.%s (%s)", ev.Partition, ev.Path, ev.Type)
			}
		}
	}()
	return done
}
