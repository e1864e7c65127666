// Copyright (C) 2024 Storj Labs, Inc.
// See LICENSE for copying information.

package main

import (
	"time"

	"storj.io/shardsync/synchronizer"
)

// runCfg mirrors storagenode's own runCfg: a single flat struct whose
// fields are bound to cobra flags in newRootCmd, read once at process
// startup. The struct tags document each field; nothing reads them. shardsyncd has no persisted configuration and no admin API:
// every field here is a startup-only flag.
type runCfg struct {
	NodeID       string        `user-config:"true" help:"this node's identity"`
	FullSyncStep uint64        `user-config:"true" help:"versions listed per full-sync step" default:"1000"`
	RepairIdle   string        `user-config:"true" help:"repair idleness threshold, or 'disabled'" default:"disabled"`
	EventBuffer  int           `user-config:"true" help:"control-channel buffer size" default:"4096"`
	DialTimeout  time.Duration `user-config:"true" help:"peer fetch dial timeout" default:"5s"`
	Heartbeat    time.Duration `user-config:"true" help:"interval between heartbeat status logs" default:"1m"`
}

// parseRepairIdleness turns the CLI's textual threshold into a
// synchronizer.RepairIdleness: "disabled", or a Go duration string.
func parseRepairIdleness(s string) (synchronizer.RepairIdleness, error) {
	if s == "" || s == "disabled" {
		return synchronizer.DisabledRepair(), nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return synchronizer.RepairIdleness{}, err
	}
	return synchronizer.RepairAfterIdle(d), nil
}
