// Copyright (C) 2024 Storj Labs, Inc.
// See LICENSE for copying information.

package synchronizer

import "github.com/zeebo/errs"

// Error classes for the failure kinds task executors can surface. All
// three are logged and swallowed by Run: the upstream event stream (or
// the next full sync) will retry the underlying work.
var (
	// TimerError wraps a failure arming or observing a scheduled wait.
	TimerError = errs.Class("timer")
	// DeviceError wraps a failure talking to the local device.
	DeviceError = errs.Class("device")
	// PeerFetchError wraps a failure fetching a fragment from peers.
	PeerFetchError = errs.Class("peer fetch")
)

// invariantViolated panics to signal a caller bug that must never be
// reachable through this package's exported API. Its one caller is
// ingest, for an Event whose concrete type is none of PutEvent,
// DeleteEvent or FullSyncEvent. It is not a runtime condition: Event's
// unexported method keeps other packages from adding Event types.
func invariantViolated(msg string) {
	panic("shardsync: internal invariant violated: " + msg)
}
