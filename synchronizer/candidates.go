// Copyright (C) 2024 Storj Labs, Inc.
// See LICENSE for copying information.

package synchronizer

import "sort"

// repairCandidates is an ordered set of versions still eligible for
// repair. A version belongs to it iff a pending RepairContent item
// exists for it and no later Deleted event has superseded it. It is the
// lazy-deletion mechanism that lets a Deleted event cancel a queued
// repair without scanning the repair heap: stale items are discarded
// when popped, by checking membership here.
//
// Backed by a sorted slice rather than a balanced tree: the set is
// expected to stay small (bounded by in-flight put/repair concurrency),
// and Go's stdlib has no ordered-set container, so a sorted slice with
// binary search is the idiomatic stand-in for the source's BTreeSet.
type repairCandidates struct {
	versions []ObjectVersion
}

func (c *repairCandidates) search(v ObjectVersion) (int, bool) {
	i := sort.Search(len(c.versions), func(i int) bool { return c.versions[i] >= v })
	return i, i < len(c.versions) && c.versions[i] == v
}

func (c *repairCandidates) insert(v ObjectVersion) {
	i, found := c.search(v)
	if found {
		return
	}
	c.versions = append(c.versions, 0)
	copy(c.versions[i+1:], c.versions[i:])
	c.versions[i] = v
}

func (c *repairCandidates) remove(v ObjectVersion) {
	i, found := c.search(v)
	if !found {
		return
	}
	c.versions = append(c.versions[:i], c.versions[i+1:]...)
}

func (c *repairCandidates) contains(v ObjectVersion) bool {
	_, found := c.search(v)
	return found
}

func (c *repairCandidates) len() int {
	return len(c.versions)
}
