// Copyright (C) 2024 Storj Labs, Inc.
// See LICENSE for copying information.

package synchronizer

import (
	"context"

	"go.uber.org/zap"
)

// fetchContext bounds a repair's peer fetch by peerFetchTimeout, if one was
// configured via WithPeerFetchTimeout. A zero timeout leaves ctx untouched.
func (s *Synchronizer) fetchContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.peerFetchTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.peerFetchTimeout)
}

// doDelete executes one batch delete over item's versions. Each version
// is removed independently; a failure on one version is logged and does
// not prevent the rest of the batch from being attempted. Delete is
// idempotent and the event stream will reissue a Deleted event (or the
// next full sync will catch the discrepancy), so failures here are never
// retried inline.
func (s *Synchronizer) doDelete(ctx context.Context, item *deleteItem) {
	defer mon.Task()(&ctx)(nil)

	for _, v := range item.versions {
		if err := s.device.Delete(ctx, v); err != nil {
			s.logger.Warn("delete failed", zap.Uint64("version", uint64(v)), zap.Error(DeviceError.Wrap(err)))
			s.metrics.deleteFailed.Inc(1)
			continue
		}
		s.metrics.deleteSucceeded.Inc(1)
	}
}

// doRepair fetches version through the storage client (which falls back
// to peers when the local copy is missing) and writes it to the device.
// Either step's failure is logged and the repair is abandoned; it is
// idempotent and will be retried by a future event or full sync.
func (s *Synchronizer) doRepair(ctx context.Context, version ObjectVersion) {
	defer mon.Task()(&ctx)(nil)

	fetchCtx, cancel := s.fetchContext(ctx)
	defer cancel()

	data, err := s.client.GetFragment(fetchCtx, version)
	if err != nil {
		s.logger.Warn("repair fetch failed", zap.Uint64("version", uint64(version)), zap.Error(PeerFetchError.Wrap(err)))
		s.metrics.repairFailed.Inc(1)
		return
	}
	if err := s.device.Put(ctx, version, data); err != nil {
		s.logger.Warn("repair write failed", zap.Uint64("version", uint64(version)), zap.Error(DeviceError.Wrap(err)))
		s.metrics.repairFailed.Inc(1)
		return
	}
	s.metrics.repairSucceeded.Inc(1)
}
