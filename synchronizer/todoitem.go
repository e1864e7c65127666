// Copyright (C) 2024 Storj Labs, Inc.
// See LICENSE for copying information.

package synchronizer

import "time"

// maxTimeoutSeconds bounds how long the scheduler will sleep waiting for
// a repair item's start time. Run stops a pending wait whenever an event
// or a threshold change arrives and re-examines the queues, so the wait
// is cut short rather than kept until it fires.
const maxTimeoutSeconds = 60 * time.Second

// deleteConcurrency bounds how many versions a single DeleteContent
// batch coalesces before a new batch is started.
const deleteConcurrency = 16

// todoItem is a unit of scheduled work: either a pending repair or a
// batch of pending deletes. The two concrete types, repairItem and
// deleteItem, each live in their own heap (repairHeap, deleteHeap);
// nothing outside this package constructs or inspects them directly.
type todoItem interface {
	// waitTime returns the remaining delay, as of now, before this item
	// is eligible to run. Zero means ready now.
	waitTime(now time.Time) time.Duration
}

// repairItem is a pending repair, ordered by startTime ascending and
// then by version ascending.
type repairItem struct {
	startTime time.Time
	version   ObjectVersion
}

func (r *repairItem) waitTime(now time.Time) time.Duration {
	if d := r.startTime.Sub(now); d > 0 {
		return d
	}
	return 0
}

// deleteItem is a coalesced batch of versions to delete, FIFO-ordered by
// seq (the order in which the batch was first created).
type deleteItem struct {
	versions []ObjectVersion
	seq      uint64
}

func (d *deleteItem) waitTime(time.Time) time.Duration {
	return 0
}

func newRepairItem(e PutEvent, now time.Time) *repairItem {
	return &repairItem{
		startTime: now.Add(e.PutContentTimeout),
		version:   e.Version,
	}
}

func newDeleteItem(e DeleteEvent, seq uint64) *deleteItem {
	return &deleteItem{
		versions: []ObjectVersion{e.Version},
		seq:      seq,
	}
}
