// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The rcscope authors

package rcswitch

import "fmt"

// Statistics tracks decode counters. The fields are written only by
// the edge path; read them via Receiver.Stats while the receiver is
// suspended or a packet is held for exact values.
type Statistics struct {
	// Edges is the number of edges consumed while not suspended.
	Edges uint64
	// Packets is the number of published message packets.
	Packets uint64
	// OverflowPackets counts published packets whose transmitter sent
	// more than MaxPacketBits bits.
	OverflowPackets uint64
	// ShortPackets counts syncs that arrived with fewer than
	// MinPacketBits accumulated bits.
	ShortPackets uint64
	// CandidateOverflows counts published packets whose sync pair
	// matched more than MaxProtocolCandidates protocols.
	CandidateOverflows uint64
	// Reacquisitions counts pulse pairs that matched no live candidate
	// and restarted the sync search.
	Reacquisitions uint64
}

// String returns a formatted counter summary.
func (s Statistics) String() string {
	result := fmt.Sprintf("Edges:           %8d\n", s.Edges)
	result += fmt.Sprintf("Packets:         %8d\n", s.Packets)
	if s.OverflowPackets > 0 {
		result += fmt.Sprintf("Bit overflows:   %8d\n", s.OverflowPackets)
	}
	if s.CandidateOverflows > 0 {
		result += fmt.Sprintf("Cand. overflows: %8d\n", s.CandidateOverflows)
	}
	result += fmt.Sprintf("Short packets:   %8d\n", s.ShortPackets)
	result += fmt.Sprintf("Reacquisitions:  %8d\n", s.Reacquisitions)
	return result
}
