// Copyright (C) 2024 Storj Labs, Inc.
// See LICENSE for copying information.

package synchronizer

import (
	"sync/atomic"

	monkit "github.com/spacemonkeygo/monkit/v3"
)

var mon = monkit.Package()

// Metrics reports the counters and gauge named in the external interface,
// labeled by node, plus the per-operation success/failure counters every
// storj background sweep reports alongside them.
type Metrics struct {
	enqueuedRepair *monkit.Counter
	enqueuedDelete *monkit.Counter
	dequeuedRepair *monkit.Counter
	dequeuedDelete *monkit.Counter

	fullSyncCount          *monkit.Counter
	fullSyncDeletedObjects *monkit.Counter
	fullSyncRemaining      int64 // atomic; backs the registered gauge

	repairSucceeded *monkit.Counter
	repairFailed    *monkit.Counter
	deleteSucceeded *monkit.Counter
	deleteFailed    *monkit.Counter
}

// NewMetrics registers a Metrics instance on scope (or the package
// default scope, if nil) labeled with node's identity.
func NewMetrics(scope *monkit.Scope, node string) *Metrics {
	if scope == nil {
		scope = mon
	}
	nodeTag := monkit.NewSeriesTag("node", node)
	repairTag := monkit.NewSeriesTag("type", "repair")
	deleteTag := monkit.NewSeriesTag("type", "delete")

	m := &Metrics{
		enqueuedRepair:         scope.Counter("enqueued_items", nodeTag, repairTag),
		enqueuedDelete:         scope.Counter("enqueued_items", nodeTag, deleteTag),
		dequeuedRepair:         scope.Counter("dequeued_items", nodeTag, repairTag),
		dequeuedDelete:         scope.Counter("dequeued_items", nodeTag, deleteTag),
		fullSyncCount:          scope.Counter("full_sync_count", nodeTag),
		fullSyncDeletedObjects: scope.Counter("full_sync_deleted_objects", nodeTag),
		repairSucceeded:        scope.Counter("repair_attempted", nodeTag, monkit.NewSeriesTag("result", "ok")),
		repairFailed:           scope.Counter("repair_attempted", nodeTag, monkit.NewSeriesTag("result", "error")),
		deleteSucceeded:        scope.Counter("delete_attempted", nodeTag, monkit.NewSeriesTag("result", "ok")),
		deleteFailed:           scope.Counter("delete_attempted", nodeTag, monkit.NewSeriesTag("result", "error")),
	}
	scope.Gauge("full_sync_remaining", func() float64 {
		return float64(atomic.LoadInt64(&m.fullSyncRemaining))
	}, nodeTag)
	return m
}

func (m *Metrics) setFullSyncRemaining(v int64) {
	atomic.StoreInt64(&m.fullSyncRemaining, v)
}
