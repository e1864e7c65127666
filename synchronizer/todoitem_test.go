// Copyright (C) 2024 Storj Labs, Inc.
// See LICENSE for copying information.

package synchronizer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRepairItem_WaitTime(t *testing.T) {
	now := time.Now()

	future := &repairItem{startTime: now.Add(3 * time.Second)}
	require.InDelta(t, 3*time.Second, future.waitTime(now), float64(10*time.Millisecond))

	past := &repairItem{startTime: now.Add(-3 * time.Second)}
	require.Equal(t, time.Duration(0), past.waitTime(now))

	exact := &repairItem{startTime: now}
	require.Equal(t, time.Duration(0), exact.waitTime(now))
}

func TestDeleteItem_WaitTimeIsAlwaysZero(t *testing.T) {
	item := &deleteItem{versions: []ObjectVersion{1, 2, 3}}
	require.Equal(t, time.Duration(0), item.waitTime(time.Now()))
}

func TestNewRepairItem_StartTimeIsNowPlusTimeout(t *testing.T) {
	now := time.Now()
	e := PutEvent{Version: 7, PutContentTimeout: 10 * time.Second}
	item := newRepairItem(e, now)
	require.Equal(t, ObjectVersion(7), item.version)
	require.Equal(t, now.Add(10*time.Second), item.startTime)
}

func TestNewDeleteItem_SingleVersion(t *testing.T) {
	item := newDeleteItem(DeleteEvent{Version: 9}, 42)
	require.Equal(t, []ObjectVersion{9}, item.versions)
	require.Equal(t, uint64(42), item.seq)
}
