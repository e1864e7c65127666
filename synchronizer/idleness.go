// Copyright (C) 2024 Storj Labs, Inc.
// See LICENSE for copying information.

package synchronizer

import "time"

// RepairIdleness configures when repair dispatch is admissible. The zero
// value is Disabled: no repair is ever dispatched.
type RepairIdleness struct {
	threshold time.Duration
	enabled   bool
}

// DisabledRepair returns the configuration under which no repair is ever
// dispatched, regardless of queued work.
func DisabledRepair() RepairIdleness {
	return RepairIdleness{}
}

// RepairAfterIdle returns the configuration under which repair is
// admissible once d has elapsed since the scheduler was last non-idle.
func RepairAfterIdle(d time.Duration) RepairIdleness {
	return RepairIdleness{threshold: d, enabled: true}
}

// Duration reports the configured idleness threshold, and whether repair
// is enabled at all.
func (r RepairIdleness) Duration() (time.Duration, bool) {
	return r.threshold, r.enabled
}

func (r RepairIdleness) String() string {
	if !r.enabled {
		return "disabled"
	}
	return "after " + r.threshold.String() + " idle"
}
