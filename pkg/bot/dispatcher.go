// Package bot glues an inbound message source to the turn dispatch core:
// one Dispatch call is one turn.
package bot

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"turnkit/pkg/schema"
	"turnkit/pkg/turn"
)

// Handler processes one turn. It receives the turn context built for the
// inbound message and typically responds through it.
type Handler func(ctx context.Context, tc *turn.Context) error

// Setup installs per-turn wiring (usually interceptors) on a fresh context
// before the handler runs.
type Setup func(tc *turn.Context)

// Dispatcher builds a turn context per inbound message and runs the
// application handler over it.
type Dispatcher struct {
	adapter turn.Adapter
	log     *slog.Logger
	setups  []Setup
}

// New builds a dispatcher bound to one transport adapter.
func New(adapter turn.Adapter, log *slog.Logger) (*Dispatcher, error) {
	if adapter == nil {
		return nil, errors.New("adapter is required")
	}
	if log == nil {
		log = slog.Default()
	}

	return &Dispatcher{
		adapter: adapter,
		log:     log.With("component", "bot.dispatcher"),
	}, nil
}

// Use appends a setup applied to every future turn, in order. Returns the
// dispatcher for chained registration.
func (d *Dispatcher) Use(setup Setup) *Dispatcher {
	if setup == nil {
		panic(errors.New("nil dispatcher setup"))
	}

	d.setups = append(d.setups, setup)

	return d
}

// Dispatch runs one turn: build the context, apply setups, invoke the
// handler. Handler and chain errors are returned as-is after being logged.
func (d *Dispatcher) Dispatch(ctx context.Context, inbound *schema.Message, handler Handler) error {
	if handler == nil {
		return errors.New("handler is required")
	}

	tc, err := turn.New(d.adapter, inbound)
	if err != nil {
		return err
	}

	for _, setup := range d.setups {
		setup(tc)
	}

	start := time.Now()
	err = handler(ctx, tc)
	elapsed := time.Since(start)

	if err != nil {
		d.log.Error("Turn failed", "message_id", inbound.ID, "duration", elapsed, "error", err)
		return err
	}

	d.log.Info("Turn completed", "message_id", inbound.ID, "responded", tc.Responded(), "duration", elapsed)

	return nil
}
