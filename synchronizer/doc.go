// Copyright (C) 2024 Storj Labs, Inc.
// See LICENSE for copying information.

// Package synchronizer reconciles a storage node's local device state
// against a stream of object lifecycle events emitted by the node's
// consensus layer.
//
// A Synchronizer owns three kinds of background work: repairing objects
// the device is missing, deleting objects that have been logically
// deleted, and periodically sweeping a version range to delete replicas
// absent from an authoritative snapshot. All three are driven by a
// single goroutine (Run); every other method is safe to call from any
// goroutine and hands work to Run over channels rather than locking
// Run's internal state directly.
package synchronizer
