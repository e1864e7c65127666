// Copyright (C) 2024 Storj Labs, Inc.
// See LICENSE for copying information.

// Package eventsource adapts an externally-fed, ordered stream of
// synchronizer events into sequential calls against a Synchronizer,
// preserving the emission order guarantee the scheduler relies on: a
// single reader goroutine, no reordering buffer.
package eventsource

import (
	"context"

	"storj.io/shardsync/synchronizer"
)

// Handler receives ingested events. *synchronizer.Synchronizer satisfies
// it via HandleEvent.
type Handler interface {
	HandleEvent(e synchronizer.Event)
}

// Run reads events from upstream in order and forwards each to handler,
// until upstream closes or ctx is canceled.
func Run(ctx context.Context, upstream <-chan synchronizer.Event, handler Handler) {
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-upstream:
			if !ok {
				return
			}
			handler.HandleEvent(e)
		}
	}
}

// Replay forwards a fixed, already-ordered slice of events to handler.
// It gives deterministic scenario setup without standing up a channel.
func Replay(events []synchronizer.Event, handler Handler) {
	for _, e := range events {
		handler.HandleEvent(e)
	}
}
