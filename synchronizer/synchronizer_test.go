// Copyright (C) 2024 Storj Labs, Inc.
// See LICENSE for copying information.

package synchronizer_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"storj.io/shardsync/memdevice"
	"storj.io/shardsync/synchronizer"
)

func startSynchronizer(t *testing.T, device *memdevice.Device, client *memdevice.StorageClient) (*synchronizer.Synchronizer, context.Context) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	metrics := synchronizer.NewMetrics(nil, t.Name())
	s := synchronizer.New(zaptest.NewLogger(t), t.Name(), device, client, 100, metrics)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = s.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	return s, ctx
}

// A repair canceled by a Deleted event is discarded on pop, producing no
// device read or write.
func TestScenario_RepairCanceledByDelete(t *testing.T) {
	device := memdevice.New()
	client := &memdevice.StorageClient{Local: device}
	s, _ := startSynchronizer(t, device, client)

	s.SetRepairIdlenessThreshold(synchronizer.RepairAfterIdle(0))
	s.HandleEvent(synchronizer.PutEvent{Version: 5, PutContentTimeout: 10 * time.Second})
	s.HandleEvent(synchronizer.DeleteEvent{Version: 5})

	time.Sleep(200 * time.Millisecond)
	require.False(t, device.Has(5), "a canceled repair must never write the device")
}

// Repair honors its start time, not dispatching before the put's content
// timeout has elapsed.
func TestScenario_DelayedRepairHonorsStartTime(t *testing.T) {
	device := memdevice.New()
	peer := memdevice.New()
	peer.Seed(7, []byte("payload"))
	client := &memdevice.StorageClient{Local: device, Peers: []*memdevice.Device{peer}}
	s, _ := startSynchronizer(t, device, client)

	s.SetRepairIdlenessThreshold(synchronizer.RepairAfterIdle(0))
	s.HandleEvent(synchronizer.PutEvent{Version: 7, PutContentTimeout: 300 * time.Millisecond})

	time.Sleep(100 * time.Millisecond)
	require.False(t, device.Has(7), "repair must not dispatch before put_content_timeout")

	require.Eventually(t, func() bool {
		return device.Has(7)
	}, 2*time.Second, 20*time.Millisecond)
}

// Idleness gating: a delete resets lastNotIdle, so a concurrently-queued
// repair is deferred until the idleness threshold has elapsed with no
// further delete activity.
func TestScenario_IdlenessGating(t *testing.T) {
	device := memdevice.New()
	peer := memdevice.New()
	peer.Seed(2, []byte("payload"))
	client := &memdevice.StorageClient{Local: device, Peers: []*memdevice.Device{peer}}
	s, _ := startSynchronizer(t, device, client)

	const threshold = 300 * time.Millisecond
	s.SetRepairIdlenessThreshold(synchronizer.RepairAfterIdle(threshold))

	device.Seed(1, []byte("to be deleted"))
	s.HandleEvent(synchronizer.DeleteEvent{Version: 1})
	s.HandleEvent(synchronizer.PutEvent{Version: 2, PutContentTimeout: 0})

	require.Eventually(t, func() bool { return !device.Has(1) }, time.Second, 10*time.Millisecond)

	// Repair must not have run yet: idleness hasn't elapsed.
	time.Sleep(threshold / 2)
	require.False(t, device.Has(2))

	require.Eventually(t, func() bool {
		return device.Has(2)
	}, 2*time.Second, 20*time.Millisecond)
}

// With repair disabled, deletes still drain in FIFO-coalesced order.
func TestScenario_DisabledRepairStillDrainsDeletes(t *testing.T) {
	device := memdevice.New()
	client := &memdevice.StorageClient{Local: device}
	for v := synchronizer.ObjectVersion(1); v <= 5; v++ {
		device.Seed(v, []byte("x"))
	}
	s, _ := startSynchronizer(t, device, client)

	for v := synchronizer.ObjectVersion(1); v <= 5; v++ {
		s.HandleEvent(synchronizer.DeleteEvent{Version: v})
	}
	s.HandleEvent(synchronizer.PutEvent{Version: 100, PutContentTimeout: 0})

	require.Eventually(t, func() bool {
		for v := synchronizer.ObjectVersion(1); v <= 5; v++ {
			if device.Has(v) {
				return false
			}
		}
		return true
	}, time.Second, 10*time.Millisecond)

	// Repair is disabled by default (zero-value threshold): version 100
	// must never be fetched/written, even though nothing prevents it
	// from sitting in the repair queue.
	time.Sleep(200 * time.Millisecond)
	require.False(t, device.Has(100))
}

// Full-sync progresses concurrently with the short-task pipeline, and a
// second FullSync while one is active is dropped.
func TestScenario_FullSyncConcurrency(t *testing.T) {
	device := memdevice.New()
	for v := synchronizer.ObjectVersion(0); v < 10; v++ {
		device.Seed(v, []byte("x"))
	}
	client := &memdevice.StorageClient{Local: device}
	s, _ := startSynchronizer(t, device, client)

	live := memdevice.NewSnapshot(0, 2, 4, 6, 8)
	s.HandleEvent(synchronizer.FullSyncEvent{Machine: live, NextCommit: 10})
	// Dropped: must not restart or otherwise disturb the sweep already
	// in progress.
	s.HandleEvent(synchronizer.FullSyncEvent{Machine: memdevice.NewSnapshot(), NextCommit: 10})

	// Ordinary delete work proceeds alongside the sweep.
	device.Seed(50, []byte("extra"))
	s.HandleEvent(synchronizer.DeleteEvent{Version: 50})

	require.Eventually(t, func() bool {
		for _, v := range []synchronizer.ObjectVersion{1, 3, 5, 7, 9} {
			if device.Has(v) {
				return false
			}
		}
		for _, v := range []synchronizer.ObjectVersion{0, 2, 4, 6, 8} {
			if !device.Has(v) {
				return false
			}
		}
		return !device.Has(50)
	}, 2*time.Second, 20*time.Millisecond)
}
