// Copyright (C) 2024 Storj Labs, Inc.
// See LICENSE for copying information.

package synchronizer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestSynchronizer(t *testing.T) *Synchronizer {
	t.Helper()
	metrics := NewMetrics(nil, t.Name())
	return New(zaptest.NewLogger(t), t.Name(), noopDevice{}, nil, 1000, metrics)
}

// Coalesced deletion: ingesting Deleted(1..20) in order yields exactly
// two delete items: [1..16] and [17..20].
func TestIngest_CoalescesDeletesUpToConcurrencyLimit(t *testing.T) {
	s := newTestSynchronizer(t)
	now := time.Now()

	for v := ObjectVersion(1); v <= 20; v++ {
		s.ingest(DeleteEvent{Version: v}, now)
	}

	require.Len(t, s.todoDelete, 2)

	var first, second []ObjectVersion
	for _, item := range s.todoDelete {
		if item.seq == 1 {
			first = item.versions
		} else {
			second = item.versions
		}
	}
	require.Len(t, first, 16)
	require.Len(t, second, 4)
	for i, v := range first {
		require.Equal(t, ObjectVersion(i+1), v)
	}
	for i, v := range second {
		require.Equal(t, ObjectVersion(17+i), v)
	}
}

// Deleting the same version twice still coalesces into a single queued
// item.
func TestIngest_RepeatedDeleteStaysOneQueuedItem(t *testing.T) {
	s := newTestSynchronizer(t)
	now := time.Now()

	s.ingest(DeleteEvent{Version: 5}, now)
	firstLen := len(s.todoDelete[0].versions)

	s.ingest(DeleteEvent{Version: 5}, now)
	require.Len(t, s.todoDelete, 1)
	require.Greater(t, len(s.todoDelete[0].versions), firstLen)
}

// A Putted event followed by a Deleted for the same version removes it
// from the repair candidate set immediately, so a later pop will find it
// stale.
func TestIngest_DeletedRemovesFromRepairCandidates(t *testing.T) {
	s := newTestSynchronizer(t)
	now := time.Now()

	s.ingest(PutEvent{Version: 5, PutContentTimeout: 10 * time.Second}, now)
	require.True(t, s.candidates.contains(5))

	s.ingest(DeleteEvent{Version: 5}, now)
	require.False(t, s.candidates.contains(5))

	// the RepairContent item is still physically queued; stale-filtering
	// on pop discards it without a device op (exercised end to end in
	// synchronizer_test.go).
	require.Equal(t, 1, len(s.todoRepair))
}

func TestIngest_FullSyncDroppedWhileOneActive(t *testing.T) {
	s := newTestSynchronizer(t)
	now := time.Now()

	s.ingest(FullSyncEvent{Machine: staticSnapshot{}, NextCommit: 100}, now)
	first := s.fullSync
	require.NotNil(t, first)

	s.ingest(FullSyncEvent{Machine: staticSnapshot{}, NextCommit: 200}, now)
	require.Same(t, first, s.fullSync)
}

type staticSnapshot struct{}

func (staticSnapshot) Contains(ObjectVersion) bool { return true }

type noopDevice struct{}

func (noopDevice) Delete(context.Context, ObjectVersion) error { return nil }
func (noopDevice) List(context.Context, ObjectVersion, int) ([]ObjectVersion, error) {
	return nil, nil
}
func (noopDevice) Get(context.Context, ObjectVersion) ([]byte, error) { return nil, nil }
func (noopDevice) Put(context.Context, ObjectVersion, []byte) error   { return nil }
