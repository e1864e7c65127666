// Copyright (C) 2024 Storj Labs, Inc.
// See LICENSE for copying information.

package synchronizer

import "time"

// ObjectVersion identifies an object replica. Versions are monotonic and
// globally unique within a bucket.
type ObjectVersion uint64

// LiveVersions is the authoritative snapshot a FullSyncEvent sweeps
// against: it answers whether a version is still logically live.
type LiveVersions interface {
	Contains(version ObjectVersion) bool
}

// Event is emitted by the consensus/MDS layer describing a logical
// object lifecycle transition. The concrete types are PutEvent,
// DeleteEvent and FullSyncEvent.
type Event interface {
	isEvent()
}

// PutEvent signals the logical creation of version. If the device still
// lacks the version PutContentTimeout after ingestion, a repair is
// attempted.
type PutEvent struct {
	Version           ObjectVersion
	PutContentTimeout time.Duration
}

func (PutEvent) isEvent() {}

// DeleteEvent signals the logical deletion of version. Any local replica
// must be removed.
type DeleteEvent struct {
	Version ObjectVersion
}

func (DeleteEvent) isEvent() {}

// FullSyncEvent requests a sweep of local replicas up to NextCommit,
// deleting anything absent from Machine.
type FullSyncEvent struct {
	Machine    LiveVersions
	NextCommit ObjectVersion
}

func (FullSyncEvent) isEvent() {}
