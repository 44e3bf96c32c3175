// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The rcscope authors

package rcswitch

import (
	"fmt"
	"sort"
)

// ProtocolDef is the human-facing definition of one protocol: a base
// clock in microseconds, a symmetric tolerance percentage, and the
// pulse durations of the three symbol pairs as small integer multiples
// of the clock.
type ProtocolDef struct {
	ID           uint16 `yaml:"id"`
	ClockUS      uint32 `yaml:"clock_us"`
	TolerancePct uint32 `yaml:"tolerance_pct"`
	SyncA        uint32 `yaml:"sync_a"`
	SyncB        uint32 `yaml:"sync_b"`
	Data0A       uint32 `yaml:"d0_a"`
	Data0B       uint32 `yaml:"d0_b"`
	Data1A       uint32 `yaml:"d1_a"`
	Data1B       uint32 `yaml:"d1_b"`
	Inverse      bool   `yaml:"inverse"`
}

// String renders the definition in the literal row form
// (id, clock_us, tolerance_pct, sync_a, sync_b, d0_a, d0_b, d1_a, d1_b, inverse).
func (d ProtocolDef) String() string {
	return fmt.Sprintf("(%d, %d, %d,  %d, %d,  %d, %d,  %d, %d, %v)",
		d.ID, d.ClockUS, d.TolerancePct,
		d.SyncA, d.SyncB, d.Data0A, d.Data0B, d.Data1A, d.Data1B, d.Inverse)
}

// TimingSpec is the expanded receive timing specification of one
// protocol: tolerance ranges for the four pulse roles, precomputed so
// the interrupt handler only compares integers.
type TimingSpec struct {
	ID      uint16
	Inverse bool
	Sync    PulsePairRanges
	Data0   PulsePairRanges
	Data1   PulsePairRanges
}

// expandRange converts clock x multiplier into a tolerance range. All
// arithmetic is 32-bit so the expansion cannot overflow 16-bit targets'
// int math; the inputs are validated to keep the products in range.
func expandRange(clockUS, multiplier, tolerancePct uint32) TimeRange {
	nominal := clockUS * multiplier
	return TimeRange{
		LowerUS: nominal * (100 - tolerancePct) / 100,
		UpperUS: nominal * (100 + tolerancePct) / 100,
	}
}

// Expand computes the timing spec for one protocol definition.
// It fails when the definition produces an empty tolerance range
// (pathological tolerance or a zero multiplier), so that the failure
// is observed at configuration time, never at runtime.
func (d ProtocolDef) Expand() (TimingSpec, error) {
	spec := TimingSpec{
		ID:      d.ID,
		Inverse: d.Inverse,
		Sync: PulsePairRanges{
			A: expandRange(d.ClockUS, d.SyncA, d.TolerancePct),
			B: expandRange(d.ClockUS, d.SyncB, d.TolerancePct),
		},
		Data0: PulsePairRanges{
			A: expandRange(d.ClockUS, d.Data0A, d.TolerancePct),
			B: expandRange(d.ClockUS, d.Data0B, d.TolerancePct),
		},
		Data1: PulsePairRanges{
			A: expandRange(d.ClockUS, d.Data1A, d.TolerancePct),
			B: expandRange(d.ClockUS, d.Data1B, d.TolerancePct),
		},
	}

	for _, rng := range []struct {
		name string
		r    TimeRange
	}{
		{"sync A", spec.Sync.A}, {"sync B", spec.Sync.B},
		{"data0 A", spec.Data0.A}, {"data0 B", spec.Data0.B},
		{"data1 A", spec.Data1.A}, {"data1 B", spec.Data1.B},
	} {
		if rng.r.LowerUS >= rng.r.UpperUS {
			return TimingSpec{}, fmt.Errorf(
				"protocol %d: %s range is empty (lower %d >= upper %d); check clock, multiplier and tolerance",
				d.ID, rng.name, rng.r.LowerUS, rng.r.UpperUS)
		}
	}
	return spec, nil
}

// TimingSpecTable is the immutable, sorted array of timing specs the
// receiver decodes against. Entries are sorted by (inverse, sync A
// lower bound) ascending; the candidate collector relies on this order
// to abort its scan early. The table is split into the normal-level
// and inverse-level groups of the same backing array.
type TimingSpecTable struct {
	specs   []TimingSpec
	normal  []TimingSpec
	inverse []TimingSpec
}

// NewTimingSpecTable expands and validates the given protocol
// definitions and returns the sorted table. The input order does not
// matter; permuted definitions produce an identical table.
func NewTimingSpecTable(defs []ProtocolDef) (*TimingSpecTable, error) {
	if len(defs) == 0 {
		return nil, fmt.Errorf("no protocol definitions given")
	}

	specs := make([]TimingSpec, 0, len(defs))
	for _, def := range defs {
		spec, err := def.Expand()
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}

	sort.SliceStable(specs, func(i, j int) bool {
		if specs[i].Inverse != specs[j].Inverse {
			return !specs[i].Inverse
		}
		return specs[i].Sync.A.LowerUS < specs[j].Sync.A.LowerUS
	})

	firstInverse := len(specs)
	for i, spec := range specs {
		if spec.Inverse {
			firstInverse = i
			break
		}
	}

	return &TimingSpecTable{
		specs:   specs,
		normal:  specs[:firstInverse],
		inverse: specs[firstInverse:],
	}, nil
}

// Specs returns the sorted timing specs. The returned slice is shared
// and must not be modified.
func (t *TimingSpecTable) Specs() []TimingSpec {
	return t.specs
}

// Len returns the number of protocols in the table.
func (t *TimingSpecTable) Len() int {
	return len(t.specs)
}

// group returns the sub-table for a protocol group.
func (t *TimingSpecTable) group(g ProtocolGroup) []TimingSpec {
	if g == GroupInverse {
		return t.inverse
	}
	return t.normal
}
