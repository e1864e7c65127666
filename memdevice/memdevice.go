// Copyright (C) 2024 Storj Labs, Inc.
// See LICENSE for copying information.

// Package memdevice provides in-memory reference implementations of
// synchronizer.Device and synchronizer.StorageClient, for tests and for
// the reference daemon cmd/shardsyncd. Neither is meant to survive
// contact with a real storage node; the production device handle and
// peer RPC client are out of scope.
package memdevice

import (
	"context"
	"sort"
	"sync"

	"storj.io/shardsync/synchronizer"
)

// Device is a version-keyed, in-memory replica store. Safe for
// concurrent use, though the synchronizer never calls it concurrently
// except between the full-sync sweep and the short-task pipeline.
type Device struct {
	mu   sync.Mutex
	data map[synchronizer.ObjectVersion][]byte
}

// New returns an empty Device.
func New() *Device {
	return &Device{data: make(map[synchronizer.ObjectVersion][]byte)}
}

// Seed inserts version/data pairs directly, bypassing Put. Intended for
// test setup.
func (d *Device) Seed(version synchronizer.ObjectVersion, data []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.data[version] = data
}

// Has reports whether version is currently stored. Intended for test
// assertions.
func (d *Device) Has(version synchronizer.ObjectVersion) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.data[version]
	return ok
}

func (d *Device) Delete(_ context.Context, version synchronizer.ObjectVersion) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.data, version)
	return nil
}

func (d *Device) List(_ context.Context, from synchronizer.ObjectVersion, limit int) ([]synchronizer.ObjectVersion, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var out []synchronizer.ObjectVersion
	for v := range d.data {
		if v >= from {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (d *Device) Get(_ context.Context, version synchronizer.ObjectVersion) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	data, ok := d.data[version]
	if !ok {
		return nil, errNotFound{version}
	}
	return data, nil
}

func (d *Device) Put(_ context.Context, version synchronizer.ObjectVersion, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.data[version] = data
	return nil
}

type errNotFound struct {
	version synchronizer.ObjectVersion
}

func (e errNotFound) Error() string { return "memdevice: version not found" }

// StorageClient fetches fragments from a local Device first, falling
// back to a small fixed set of peer Devices, mirroring the production
// client's "local, then peers" contract.
type StorageClient struct {
	Local          *Device
	Peers          []*Device
	IsMetadataNode bool
}

func (c *StorageClient) GetFragment(ctx context.Context, version synchronizer.ObjectVersion) ([]byte, error) {
	if c.Local != nil {
		if data, err := c.Local.Get(ctx, version); err == nil {
			return data, nil
		}
	}
	for _, peer := range c.Peers {
		if data, err := peer.Get(ctx, version); err == nil {
			return data, nil
		}
	}
	return nil, errNotFound{version}
}

func (c *StorageClient) IsMetadata() bool {
	return c.IsMetadataNode
}
