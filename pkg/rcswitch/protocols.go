// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The rcscope authors

package rcswitch

// DefaultProtocols is the stock protocol table covering the common
// 433/315 MHz remote-control chip families. Sync bounds of several
// rows overlap on purpose; the receiver reports every protocol that
// matched a received packet.
var DefaultProtocols = []ProtocolDef{
	// id, clock, tol%, syncA, syncB, d0A, d0B, d1A, d1B, inverse
	{1, 350, 20, 1, 31, 1, 3, 3, 1, false}, // PT2262
	{2, 650, 20, 1, 10, 1, 3, 3, 1, false},
	{3, 100, 20, 30, 71, 4, 11, 9, 6, false},
	{4, 380, 20, 1, 6, 1, 3, 3, 1, false},
	{5, 500, 20, 6, 14, 1, 2, 2, 1, false},
	{6, 450, 20, 1, 23, 1, 2, 2, 1, true},    // HT6P20B
	{7, 150, 20, 2, 62, 1, 6, 6, 1, false},   // HS2303-PT
	{8, 200, 20, 3, 130, 7, 16, 3, 16, false}, // Conrad RS-200
	{9, 365, 20, 1, 18, 3, 1, 1, 3, true},  // 1ByOne doorbell
	{10, 270, 20, 1, 36, 1, 2, 2, 1, true}, // HT12E
	{11, 320, 20, 1, 36, 1, 2, 2, 1, true}, // SM5212
}

// DefaultTimingSpecTable builds the sorted timing table for
// DefaultProtocols. The stock definitions are known-good, so this
// cannot fail.
func DefaultTimingSpecTable() *TimingSpecTable {
	table, err := NewTimingSpecTable(DefaultProtocols)
	if err != nil {
		panic(err)
	}
	return table
}
