// Copyright (C) 2024 Storj Labs, Inc.
// See LICENSE for copying information.

package synchronizer

import "container/heap"

// compactThreshold implements the capacity hygiene
// policy: once a heap's backing array has grown past compactThreshold
// and its live population has fallen under half that capacity, it is
// reallocated down to its current size. This bounds steady-state memory
// after a load spike without touching the heap on every pop.
const compactThreshold = 32

// repairHeap is a min-heap of *repairItem ordered by start time, then by
// version. It holds only RepairContent items.
type repairHeap []*repairItem

func (h repairHeap) Len() int { return len(h) }

func (h repairHeap) Less(i, j int) bool {
	if !h[i].startTime.Equal(h[j].startTime) {
		return h[i].startTime.Before(h[j].startTime)
	}
	return h[i].version < h[j].version
}

func (h repairHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *repairHeap) Push(x any) {
	*h = append(*h, x.(*repairItem))
}

func (h *repairHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

func (h *repairHeap) compact() {
	if cap(*h) > compactThreshold && len(*h) < cap(*h)/2 {
		shrunk := make(repairHeap, len(*h))
		copy(shrunk, *h)
		*h = shrunk
	}
}

// deleteHeap is a min-heap of *deleteItem ordered by insertion sequence
// (FIFO): the batch created first is executed first. It holds only
// DeleteContent items.
type deleteHeap []*deleteItem

func (h deleteHeap) Len() int { return len(h) }

func (h deleteHeap) Less(i, j int) bool { return h[i].seq < h[j].seq }

func (h deleteHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *deleteHeap) Push(x any) {
	*h = append(*h, x.(*deleteItem))
}

func (h *deleteHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

func (h *deleteHeap) compact() {
	if cap(*h) > compactThreshold && len(*h) < cap(*h)/2 {
		shrunk := make(deleteHeap, len(*h))
		copy(shrunk, *h)
		*h = shrunk
	}
}

var (
	_ heap.Interface = (*repairHeap)(nil)
	_ heap.Interface = (*deleteHeap)(nil)
)
