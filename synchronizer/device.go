// Copyright (C) 2024 Storj Labs, Inc.
// See LICENSE for copying information.

package synchronizer

import "context"

// Device is the local per-node storage handle. Implementations serialize
// their own concurrent access; the synchronizer never runs more than one
// executor against a Device at a time, except that the full-sync sweep
// may interleave its own calls with the short-task pipeline's.
type Device interface {
	// Delete removes version, if present.
	Delete(ctx context.Context, version ObjectVersion) error
	// List returns up to limit locally-stored versions starting at or
	// after from, in ascending order.
	List(ctx context.Context, from ObjectVersion, limit int) ([]ObjectVersion, error)
	// Get reads version's bytes.
	Get(ctx context.Context, version ObjectVersion) ([]byte, error)
	// Put writes data under version.
	Put(ctx context.Context, version ObjectVersion, data []byte) error
}

// StorageClient is the peer-fetching collaborator used to repair missing
// replicas. It is expected to fall back to peer RPC only when the local
// device lacks the fragment.
type StorageClient interface {
	// GetFragment fetches version's bytes, from the device if present or
	// from peers otherwise.
	GetFragment(ctx context.Context, version ObjectVersion) ([]byte, error)
	// IsMetadata reports whether this node only holds metadata, in which
	// case the synchronizer does not participate in syncing at all.
	IsMetadata() bool
}
