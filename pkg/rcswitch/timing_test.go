// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The rcscope authors

package rcswitch

import (
	"testing"
)

func protocolOne() ProtocolDef {
	return ProtocolDef{
		ID: 1, ClockUS: 350, TolerancePct: 20,
		SyncA: 1, SyncB: 31,
		Data0A: 1, Data0B: 3,
		Data1A: 3, Data1B: 1,
	}
}

func TestExpand_ToleranceMath(t *testing.T) {
	spec, err := protocolOne().Expand()
	if err != nil {
		t.Fatalf("expand failed: %v", err)
	}

	tests := []struct {
		name  string
		r     TimeRange
		lower uint32
		upper uint32
	}{
		{"sync A", spec.Sync.A, 280, 420},
		{"sync B", spec.Sync.B, 8680, 13020},
		{"data0 A", spec.Data0.A, 280, 420},
		{"data0 B", spec.Data0.B, 840, 1260},
		{"data1 A", spec.Data1.A, 840, 1260},
		{"data1 B", spec.Data1.B, 280, 420},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.r.LowerUS != tt.lower || tt.r.UpperUS != tt.upper {
				t.Errorf("expected %d..%d, got %d..%d",
					tt.lower, tt.upper, tt.r.LowerUS, tt.r.UpperUS)
			}
		})
	}
}

func TestExpand_EmptyRangeRejected(t *testing.T) {
	def := protocolOne()
	def.TolerancePct = 0 // lower == upper for every range
	if _, err := def.Expand(); err == nil {
		t.Error("expected error for zero tolerance")
	}

	def = protocolOne()
	def.SyncB = 0
	if _, err := def.Expand(); err == nil {
		t.Error("expected error for zero multiplier")
	}
}

func TestTimeRange_HalfOpen(t *testing.T) {
	r := TimeRange{LowerUS: 280, UpperUS: 420}

	tests := []struct {
		duration uint32
		want     RangeCompare
	}{
		{279, TooShort},
		{280, Within}, // exactly lower is in range
		{419, Within},
		{420, TooLong}, // exactly upper is out of range
		{421, TooLong},
	}
	for _, tt := range tests {
		if got := r.Compare(tt.duration); got != tt.want {
			t.Errorf("compare(%d): expected %d, got %d", tt.duration, tt.want, got)
		}
	}
}

func TestNewTimingSpecTable_Sorted(t *testing.T) {
	table, err := NewTimingSpecTable(DefaultProtocols)
	if err != nil {
		t.Fatalf("table build failed: %v", err)
	}
	if table.Len() != len(DefaultProtocols) {
		t.Fatalf("expected %d specs, got %d", len(DefaultProtocols), table.Len())
	}

	specs := table.Specs()
	for i := 1; i < len(specs); i++ {
		prev, cur := specs[i-1], specs[i]
		if prev.Inverse && !cur.Inverse {
			t.Errorf("spec %d: inverse protocol sorted before normal", i)
		}
		if prev.Inverse == cur.Inverse && prev.Sync.A.LowerUS > cur.Sync.A.LowerUS {
			t.Errorf("spec %d: sync A lower bounds out of order (%d > %d)",
				i, prev.Sync.A.LowerUS, cur.Sync.A.LowerUS)
		}
	}
}

func TestNewTimingSpecTable_PermutationInvariant(t *testing.T) {
	reversed := make([]ProtocolDef, len(DefaultProtocols))
	for i, def := range DefaultProtocols {
		reversed[len(DefaultProtocols)-1-i] = def
	}

	a, err := NewTimingSpecTable(DefaultProtocols)
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewTimingSpecTable(reversed)
	if err != nil {
		t.Fatal(err)
	}

	for i := range a.Specs() {
		if a.Specs()[i] != b.Specs()[i] {
			t.Errorf("spec %d differs between permutations: %+v vs %+v",
				i, a.Specs()[i], b.Specs()[i])
		}
	}
}

func TestNewTimingSpecTable_Empty(t *testing.T) {
	if _, err := NewTimingSpecTable(nil); err == nil {
		t.Error("expected error for empty definition list")
	}
}

func TestTimingSpecTable_Groups(t *testing.T) {
	table, err := NewTimingSpecTable(DefaultProtocols)
	if err != nil {
		t.Fatal(err)
	}
	for _, spec := range table.group(GroupNormal) {
		if spec.Inverse {
			t.Errorf("protocol %d: inverse spec in normal group", spec.ID)
		}
	}
	for _, spec := range table.group(GroupInverse) {
		if !spec.Inverse {
			t.Errorf("protocol %d: normal spec in inverse group", spec.ID)
		}
	}
	if len(table.group(GroupNormal))+len(table.group(GroupInverse)) != table.Len() {
		t.Error("groups do not partition the table")
	}
}
