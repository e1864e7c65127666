// Copyright (C) 2024 Storj Labs, Inc.
// See LICENSE for copying information.

package synchronizer

import (
	"context"

	"go.uber.org/zap"
)

// fullSync is a single in-progress sweep: it walks device-local versions
// below nextCommit in step-sized ranges, deleting any that machine no
// longer considers live. At most one exists at a time; a new FullSync
// event arriving while one is active is dropped by the caller (the next
// periodic event from upstream will pick up the work).
type fullSync struct {
	logger     *zap.Logger
	device     Device
	machine    LiveVersions
	nextCommit ObjectVersion
	step       uint64
	metrics    *Metrics

	cursor ObjectVersion
	done   bool
}

func newFullSync(logger *zap.Logger, device Device, machine LiveVersions, nextCommit ObjectVersion, step uint64, metrics *Metrics) *fullSync {
	metrics.fullSyncCount.Inc(1)
	metrics.setFullSyncRemaining(int64(nextCommit))
	return &fullSync{
		logger:     logger,
		device:     device,
		machine:    machine,
		nextCommit: nextCommit,
		step:       step,
		metrics:    metrics,
	}
}

// advance advances the sweep by at most fs.step device-local versions,
// deleting any local version below nextCommit absent from the snapshot.
// It reports whether the sweep has completed.
func (fs *fullSync) advance(ctx context.Context) (bool, error) {
	if fs.done {
		return true, nil
	}

	versions, err := fs.device.List(ctx, fs.cursor, int(fs.step))
	if err != nil {
		return false, DeviceError.Wrap(err)
	}
	if len(versions) == 0 {
		fs.finish()
		return true, nil
	}

	for _, v := range versions {
		if v >= fs.nextCommit {
			break
		}
		if fs.machine.Contains(v) {
			continue
		}
		if err := fs.device.Delete(ctx, v); err != nil {
			fs.logger.Warn("full sync delete failed", zap.Uint64("version", uint64(v)), zap.Error(err))
			continue
		}
		fs.metrics.fullSyncDeletedObjects.Inc(1)
	}

	fs.cursor = versions[len(versions)-1] + 1
	if fs.cursor >= fs.nextCommit {
		fs.finish()
		return true, nil
	}

	remaining := int64(fs.nextCommit) - int64(fs.cursor)
	fs.metrics.setFullSyncRemaining(remaining)
	return false, nil
}

func (fs *fullSync) finish() {
	fs.done = true
	fs.metrics.setFullSyncRemaining(0)
}
