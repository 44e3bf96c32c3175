// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The rcscope authors

package rcswitch

// ProtocolGroup distinguishes protocols by the level of their first
// sync pulse: normal-level protocols start HIGH, inverse-level
// protocols start LOW.
type ProtocolGroup int8

// Protocol groups.
const (
	GroupUnknown ProtocolGroup = -1
	GroupNormal  ProtocolGroup = 0
	GroupInverse ProtocolGroup = 1
)

// PairClass is the classification of one consecutive pulse pair
// against one timing spec.
type PairClass uint8

// Pulse pair classes.
const (
	PairNotMatched PairClass = iota
	PairSync
	PairData0
	PairData1
)

// classifyPair classifies the consecutive pulses a, b against one
// timing spec.
//
// The sync-A membership test accepts TooLong as well as Within: the
// first pulse of a sync pair follows the idle gap from the prior
// packet and may be stretched arbitrarily by it. Sync-B and the data
// ranges are strict. Sync takes precedence over data because a sync
// inside the data phase means a new repetition started.
func classifyPair(spec *TimingSpec, a, b Pulse) PairClass {
	if syncA := spec.Sync.A.Compare(a.DurationUS); syncA != TooShort {
		if spec.Sync.B.Compare(b.DurationUS) == Within {
			return PairSync
		}
	}
	if spec.Data0.A.Compare(a.DurationUS) == Within &&
		spec.Data0.B.Compare(b.DurationUS) == Within {
		return PairData0
	}
	if spec.Data1.A.Compare(a.DurationUS) == Within &&
		spec.Data1.B.Compare(b.DurationUS) == Within {
		return PairData1
	}
	return PairNotMatched
}

// candidateSet is the set of timing-table indices that are still
// consistent with the pulses seen so far in the current packet,
// tagged with the protocol group the packet opened in.
type candidateSet struct {
	indices *Stack[int]
	group   ProtocolGroup
}

func newCandidateSet() candidateSet {
	return candidateSet{
		indices: NewStack[int](MaxProtocolCandidates),
		group:   GroupUnknown,
	}
}

func (c *candidateSet) clear() {
	c.indices.Clear()
	c.group = GroupUnknown
}

// collect scans the group matching the level of pulse a for specs
// whose sync pair admits (a, b) and pushes their group-relative
// indices. Pulses with an unknown level, or two pulses at the same
// level, are silently ignored.
//
// The group slice is sorted by sync.A.LowerUS ascending, so the scan
// aborts as soon as a.DurationUS falls below an entry's lower bound:
// no later entry can match either. The upper bound of sync A is not
// enforced here, mirroring the classifier's gap relaxation.
func (c *candidateSet) collect(table *TimingSpecTable, a, b Pulse) {
	if a.Level == LevelUnknown || b.Level == LevelUnknown || a.Level == b.Level {
		return
	}
	if a.Level == LevelHigh {
		c.group = GroupNormal
	} else {
		c.group = GroupInverse
	}

	specs := table.group(c.group)
	for i := range specs {
		if a.DurationUS < specs[i].Sync.A.LowerUS {
			return
		}
		if specs[i].Sync.B.Compare(b.DurationUS) == Within {
			c.indices.Push(i)
		}
	}
}
