// Copyright (C) 2024 Storj Labs, Inc.
// See LICENSE for copying information.

package synchronizer

import (
	"container/heap"
	"context"
	"time"

	"go.uber.org/zap"
)

// defaultEventBuffer bounds how many events HandleEvent can hand off
// before it starts applying backpressure to the caller. It is sized
// generously; a caller blocking on a full channel here means Run has
// fallen far enough behind that blocking the producer is preferable to
// buffering unboundedly.
const defaultEventBuffer = 4096

// defaultFullSyncPace is how often Run re-checks an in-progress full
// sync when nothing else has woken it. The original, future-based
// scheduler relies on its reactor re-polling the full-sync future as its
// own I/O completes; this goroutine-based port has no such ambient
// re-polling, so it paces itself instead.
const defaultFullSyncPace = 50 * time.Millisecond

// Synchronizer reconciles a node's local device against the logical
// event stream described in package doc. Construct with New and drive it
// with Run; HandleEvent and SetRepairIdlenessThreshold are safe to call
// from any goroutine once Run has started (and before, though events
// will simply queue).
type Synchronizer struct {
	logger           *zap.Logger
	nodeID           string
	device           Device
	client           StorageClient
	metrics          *Metrics
	fullSyncStep     uint64
	fullSyncPace     time.Duration
	peerFetchTimeout time.Duration

	events     chan Event
	thresholds chan RepairIdleness
	closed     chan struct{}

	// Owned exclusively by Run; never touched from any other goroutine.
	todoDelete              deleteHeap
	todoRepair              repairHeap
	candidates              repairCandidates
	deleteSeq               uint64
	repairIdlenessThreshold RepairIdleness
	lastNotIdle             time.Time
	fullSync                *fullSync
}

// New constructs a Synchronizer. fullSyncStep bounds how many versions a
// single full-sync step lists at a time. Repair starts disabled; call
// SetRepairIdlenessThreshold to enable it.
func New(logger *zap.Logger, nodeID string, device Device, client StorageClient, fullSyncStep uint64, metrics *Metrics, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		logger:                  logger,
		nodeID:                  nodeID,
		device:                  device,
		client:                  client,
		metrics:                 metrics,
		fullSyncStep:            fullSyncStep,
		fullSyncPace:            defaultFullSyncPace,
		events:                  make(chan Event, defaultEventBuffer),
		thresholds:              make(chan RepairIdleness, 1),
		closed:                  make(chan struct{}),
		repairIdlenessThreshold: DisabledRepair(),
		lastNotIdle:             time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// HandleEvent synchronously hands e to the scheduler. Metadata nodes
// never sync: the event is dropped immediately.
func (s *Synchronizer) HandleEvent(e Event) {
	if s.client.IsMetadata() {
		return
	}
	select {
	case s.events <- e:
	case <-s.closed:
	}
}

// SetRepairIdlenessThreshold reconfigures the admission policy for
// repair dispatch. It takes effect on Run's next tick: when the new
// threshold arrives, Run stops any pending wait and re-examines the
// queues under it, so that wait is not kept until it would have fired.
func (s *Synchronizer) SetRepairIdlenessThreshold(t RepairIdleness) {
	for {
		select {
		case s.thresholds <- t:
			return
		case <-s.closed:
			return
		default:
		}
		select {
		case <-s.thresholds:
		default:
		}
	}
}

// Run drives the scheduler until ctx is canceled. It is the sole
// goroutine that ever reads or writes the heaps, the candidate set, the
// counters, or the in-progress full sync: all external mutation arrives
// over the events and thresholds channels.
func (s *Synchronizer) Run(ctx context.Context) error {
	defer close(s.closed)

	for {
		if s.fullSync != nil {
			done, err := s.fullSync.advance(ctx)
			if err != nil {
				s.logger.Warn("full sync step failed", zap.Error(err))
				s.metrics.setFullSyncRemaining(0)
				s.fullSync = nil
			} else if done {
				s.fullSync = nil
			}
		}

		armedWait := s.drainReady(ctx)

		var timer *time.Timer
		switch {
		case armedWait > 0:
			timer = time.NewTimer(armedWait)
		case s.fullSync != nil:
			timer = time.NewTimer(s.fullSyncPace)
		}
		var timerC <-chan time.Time
		if timer != nil {
			timerC = timer.C
		}

		select {
		case <-ctx.Done():
			stopTimer(timer)
			return ctx.Err()
		case e := <-s.events:
			stopTimer(timer)
			s.ingest(e, time.Now())
		case t := <-s.thresholds:
			stopTimer(timer)
			s.logger.Info("repair_idleness_threshold set", zap.Stringer("threshold", t))
			s.repairIdlenessThreshold = t
		case <-timerC:
		}
	}
}

func stopTimer(t *time.Timer) {
	if t != nil {
		t.Stop()
	}
}

// drainReady dispatches every currently-ready item, in priority order,
// until none remain. It returns the duration Run should wait before
// re-checking, or zero if Run should simply wait on external input (a
// new event, a reconfigured threshold, or the full-sync pace tick).
func (s *Synchronizer) drainReady(ctx context.Context) time.Duration {
	for {
		item, wait, ready := s.nextTodoItem(time.Now())
		if !ready {
			return wait
		}

		switch it := item.(type) {
		case *deleteItem:
			s.metrics.dequeuedDelete.Inc(1)
			s.lastNotIdle = time.Now()
			s.doDelete(ctx, it)
			s.lastNotIdle = time.Now()

		case *repairItem:
			threshold, enabled := s.repairIdlenessThreshold.Duration()
			if !enabled {
				// Disabled between the pop above and here: the item is
				// dropped rather than re-queued, matching the source's
				// behavior at this same race window.
				continue
			}
			if elapsed := time.Since(s.lastNotIdle); elapsed < threshold {
				s.candidates.insert(it.version)
				heap.Push(&s.todoRepair, it)
				return threshold - elapsed
			}
			s.metrics.dequeuedRepair.Inc(1)
			s.lastNotIdle = time.Now()
			s.doRepair(ctx, it.version)
			s.lastNotIdle = time.Now()
		}
	}
}

// nextTodoItem pops the next eligible item. If repair is enabled it is
// tried first, falling back to delete when the repair queue is empty; a
// stale repair (superseded by a later Delete) is discarded and the next
// item tried. If the popped item isn't due yet, it is clamped, re-queued
// and reported via wait so Run can arm a timer.
func (s *Synchronizer) nextTodoItem(now time.Time) (item todoItem, wait time.Duration, ready bool) {
	for {
		var popped todoItem
		if _, enabled := s.repairIdlenessThreshold.Duration(); enabled && len(s.todoRepair) > 0 {
			popped = heap.Pop(&s.todoRepair).(*repairItem)
		} else if len(s.todoDelete) > 0 {
			popped = heap.Pop(&s.todoDelete).(*deleteItem)
		}
		if popped == nil {
			return nil, 0, false
		}

		if ri, ok := popped.(*repairItem); ok {
			if !s.candidates.contains(ri.version) {
				s.metrics.dequeuedRepair.Inc(1)
				continue
			}
		}

		if d := popped.waitTime(now); d > 0 {
			if d > maxTimeoutSeconds {
				d = maxTimeoutSeconds
			}
			switch it := popped.(type) {
			case *repairItem:
				heap.Push(&s.todoRepair, it)
			case *deleteItem:
				heap.Push(&s.todoDelete, it)
			}
			s.todoDelete.compact()
			s.todoRepair.compact()
			return nil, d, false
		}

		if ri, ok := popped.(*repairItem); ok {
			s.candidates.remove(ri.version)
		}
		s.todoDelete.compact()
		s.todoRepair.compact()
		return popped, 0, true
	}
}

// ingest applies a single event: classifying it, updating the repair
// candidate set, coalescing deletes, and routing full syncs. Called only
// from Run.
func (s *Synchronizer) ingest(e Event, now time.Time) {
	s.logger.Debug("new event",
		zap.Int("todo_delete_len", len(s.todoDelete)),
		zap.Int("todo_repair_len", len(s.todoRepair)))

	switch ev := e.(type) {
	case PutEvent:
		s.metrics.enqueuedRepair.Inc(1)
		s.candidates.insert(ev.Version)
		heap.Push(&s.todoRepair, newRepairItem(ev, now))

	case DeleteEvent:
		s.candidates.remove(ev.Version)
		// Coalesce into the most recently created batch while it is still
		// queued and has room; appending never changes its heap position.
		for _, item := range s.todoDelete {
			if item.seq == s.deleteSeq && len(item.versions) < deleteConcurrency {
				item.versions = append(item.versions, ev.Version)
				return
			}
		}
		s.metrics.enqueuedDelete.Inc(1)
		s.deleteSeq++
		heap.Push(&s.todoDelete, newDeleteItem(ev, s.deleteSeq))

	case FullSyncEvent:
		if s.fullSync == nil {
			s.fullSync = newFullSync(s.logger, s.device, ev.Machine, ev.NextCommit, s.fullSyncStep, s.metrics)
		}
		// A full sync already in progress absorbs no new bound: the
		// next periodic event from upstream will pick it up instead.

	default:
		invariantViolated("ingest received an unrecognized Event type")
	}
}
