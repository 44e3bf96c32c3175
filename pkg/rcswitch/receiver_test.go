// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The rcscope authors

package rcswitch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

// pulseSlice adapts a pulse slice to PulseSource for replay tests.
type pulseSlice []Pulse

func (s pulseSlice) Len() int            { return len(s) }
func (s pulseSlice) PulseAt(i int) Pulse { return s[i] }

type packetResult struct {
	value     uint32
	bits      int
	protocols []int
}

func newTestReceiver(t *testing.T, defs ...ProtocolDef) *Receiver {
	t.Helper()
	if len(defs) == 0 {
		defs = DefaultProtocols
	}
	table, err := NewTimingSpecTable(defs)
	if err != nil {
		t.Fatal(err)
	}
	r := NewReceiver()
	if err := r.Install(table); err != nil {
		t.Fatal(err)
	}
	return r
}

// replayAll feeds the pulses and collects every published packet.
func replayAll(r *Receiver, pulses []Pulse, startUS uint32) []packetResult {
	var results []packetResult
	Replay(r, pulseSlice(pulses), startUS, func() {
		res := packetResult{
			value: r.ReceivedValue(),
			bits:  r.ReceivedBitsCount(),
		}
		for i := 0; i < r.ReceivedProtocolCount(); i++ {
			res.protocols = append(res.protocols, r.ReceivedProtocol(i))
		}
		results = append(results, res)
	})
	return results
}

func TestReceiver_HappyPath(t *testing.T) {
	r := newTestReceiver(t)
	pulses := Synthesize(protocolOne(), 0x13, 6, 2)

	packets := replayAll(r, pulses, 0)
	if len(packets) != 1 {
		t.Fatalf("expected 1 packet, got %d", len(packets))
	}
	p := packets[0]
	if p.value != 0x13 {
		t.Errorf("expected value 0x13, got 0x%X", p.value)
	}
	if p.bits != 6 {
		t.Errorf("expected 6 bits, got %d", p.bits)
	}
	if len(p.protocols) == 0 || p.protocols[0] != 1 {
		t.Errorf("expected protocol 1, got %v", p.protocols)
	}
	if r.Available() || r.ReceivedValue() != 0 {
		t.Error("receiver should read as empty once the packet was consumed")
	}
}

func TestReceiver_OverlappingSyncPrunedByData(t *testing.T) {
	// Protocols 1 and 7 share overlapping sync bounds, so both are
	// collected at the sync pair; protocol 7's data ranges then fail
	// and only protocol 1 survives to the published packet.
	r := newTestReceiver(t)

	r.OnEdge(1, 1000)  // edge into sync A (HIGH follows)
	r.OnEdge(0, 1350)  // sync A: 350 us HIGH
	r.OnEdge(1, 12200) // sync B: 10850 us LOW
	if got := r.ReceivedProtocolCount(); got != 2 {
		t.Fatalf("expected 2 candidates after sync, got %d", got)
	}

	packets := replayAll(r, Synthesize(protocolOne(), 0x13, 6, 2)[2:], 12200)
	if len(packets) != 1 {
		t.Fatalf("expected 1 packet, got %d", len(packets))
	}
	if len(packets[0].protocols) != 1 || packets[0].protocols[0] != 1 {
		t.Errorf("expected only protocol 1 to survive, got %v", packets[0].protocols)
	}
}

func TestReceiver_FullyOverlappingProtocolsBothReported(t *testing.T) {
	wide := protocolOne()
	wide.ID = 21
	narrow := protocolOne()
	narrow.ID = 22
	narrow.TolerancePct = 10

	r := newTestReceiver(t, wide, narrow)
	packets := replayAll(r, Synthesize(wide, 0x13, 6, 2), 0)
	if len(packets) != 1 {
		t.Fatalf("expected 1 packet, got %d", len(packets))
	}
	ids := map[int]bool{}
	for _, id := range packets[0].protocols {
		ids[id] = true
	}
	if !ids[21] || !ids[22] {
		t.Errorf("expected protocols 21 and 22, got %v", packets[0].protocols)
	}
}

func TestReceiver_FirstPulseTooShortRecovers(t *testing.T) {
	r := newTestReceiver(t, protocolOne())
	pulses := Synthesize(protocolOne(), 0x13, 6, 3)
	// Corrupt the A pulse of the first data bit to 30% of nominal.
	pulses[2].DurationUS = 105

	packets := replayAll(r, pulses, 0)
	if len(packets) != 1 {
		t.Fatalf("expected 1 packet after recovery, got %d", len(packets))
	}
	if packets[0].value != 0x13 {
		t.Errorf("expected value 0x13, got 0x%X", packets[0].value)
	}
	if r.Stats().Reacquisitions == 0 {
		t.Error("expected at least one reacquisition")
	}
}

func TestReceiver_SyncBTooShortNeverPublishes(t *testing.T) {
	p7 := DefaultProtocols[6]
	if p7.ID != 7 {
		t.Fatal("protocol table rows moved")
	}
	r := newTestReceiver(t, protocolOne(), p7)

	pulses := Synthesize(protocolOne(), 0x13, 6, 3)
	// Shrink every sync B below both protocols' lower bounds.
	for rep := 0; rep < 3; rep++ {
		pulses[rep*14+1].DurationUS = 2700
	}

	packets := replayAll(r, pulses, 0)
	if len(packets) != 0 {
		t.Fatalf("expected no packets, got %d", len(packets))
	}
	if r.Available() {
		t.Error("available should stay false")
	}
	if r.ReceivedProtocolCount() != 0 {
		t.Error("no candidates should survive a 2.7 ms sync B")
	}
}

func TestReceiver_SecondPulseTooLongRecovers(t *testing.T) {
	r := newTestReceiver(t, protocolOne())
	pulses := Synthesize(protocolOne(), 0x13, 6, 3)
	// Stretch the B pulse of the third transmitted bit to 140%.
	pulses[7].DurationUS = 1470

	packets := replayAll(r, pulses, 0)
	if len(packets) != 1 {
		t.Fatalf("expected 1 packet after recovery, got %d", len(packets))
	}
	if packets[0].value != 0x13 || packets[0].bits != 6 {
		t.Errorf("expected 0x13/6 bits, got 0x%X/%d", packets[0].value, packets[0].bits)
	}
}

func TestReceiver_BitOverflow(t *testing.T) {
	r := newTestReceiver(t, protocolOne())

	sync := []Pulse{
		{DurationUS: 350, Level: LevelHigh},
		{DurationUS: 10850, Level: LevelLow},
	}
	var pulses []Pulse
	pulses = append(pulses, sync...)
	for i := 0; i < 33; i++ {
		pulses = append(pulses,
			Pulse{DurationUS: 1050, Level: LevelHigh}, // data-1
			Pulse{DurationUS: 350, Level: LevelLow})
	}
	pulses = append(pulses, sync...)

	packets := replayAll(r, pulses, 0)
	if len(packets) != 1 {
		t.Fatalf("expected 1 packet, got %d", len(packets))
	}
	if packets[0].bits != 33 {
		t.Errorf("expected 33 bits, got %d", packets[0].bits)
	}
	if packets[0].value != 0xFFFFFFFF {
		t.Errorf("expected first 32 bits, got 0x%X", packets[0].value)
	}
	if r.Stats().OverflowPackets != 1 {
		t.Errorf("expected 1 overflow packet, got %d", r.Stats().OverflowPackets)
	}
}

func TestReceiver_ShortPacketDiscarded(t *testing.T) {
	r := newTestReceiver(t, protocolOne())

	// Three bits, then a renewed sync: below the minimum, discarded.
	// The renewed sync opens a fresh packet that decodes normally.
	var pulses []Pulse
	pulses = append(pulses, Synthesize(protocolOne(), 0x2, 3, 1)...)
	pulses = append(pulses, Synthesize(protocolOne(), 0x13, 6, 2)...)

	packets := replayAll(r, pulses, 0)
	if len(packets) != 1 {
		t.Fatalf("expected 1 packet, got %d", len(packets))
	}
	if packets[0].value != 0x13 || packets[0].bits != 6 {
		t.Errorf("expected 0x13/6 bits, got 0x%X/%d", packets[0].value, packets[0].bits)
	}
	if r.Stats().ShortPackets != 1 {
		t.Errorf("expected 1 short packet, got %d", r.Stats().ShortPackets)
	}
}

func TestReceiver_SpuriousEdgeDoesNotPublish(t *testing.T) {
	r := newTestReceiver(t)
	r.OnEdge(1, 500)
	r.OnEdge(0, 900)
	r.OnEdge(1, 1100)
	if r.Available() {
		t.Error("stray edges must not publish a packet")
	}
}

func TestReceiver_TimestampWraparound(t *testing.T) {
	r := newTestReceiver(t, protocolOne())
	// Start close to the 32-bit boundary so timestamps wrap mid-packet.
	packets := replayAll(r, Synthesize(protocolOne(), 0x13, 6, 2), 0xFFFFF000)
	if len(packets) != 1 {
		t.Fatalf("expected 1 packet across wraparound, got %d", len(packets))
	}
	if packets[0].value != 0x13 {
		t.Errorf("expected value 0x13, got 0x%X", packets[0].value)
	}
}

func TestReceiver_ResetAvailableIdempotent(t *testing.T) {
	r := newTestReceiver(t, protocolOne())
	pulses := Synthesize(protocolOne(), 0x13, 6, 2)

	got := false
	Replay(r, pulseSlice(pulses), 0, func() { got = true })
	if !got {
		t.Fatal("expected a packet")
	}

	// Replay already reset once; further resets change nothing.
	r.ResetAvailable()
	r.ResetAvailable()
	if r.Available() || r.ReceivedValue() != 0 || r.ReceivedBitsCount() != 0 {
		t.Error("reset receiver should read as empty")
	}
	if r.ReceivedProtocolCount() != 0 {
		t.Error("reset receiver should hold no candidates")
	}
}

func TestReceiver_SuspendResume(t *testing.T) {
	r := newTestReceiver(t, protocolOne())
	pulses := Synthesize(protocolOne(), 0x13, 6, 2)

	r.Suspend()
	packets := replayAll(r, pulses, 0)
	if len(packets) != 0 {
		t.Fatal("suspended receiver must not decode")
	}
	if r.Stats().Edges != 0 {
		t.Error("suspended receiver must not count edges")
	}

	r.Resume()
	packets = replayAll(r, pulses, 500000)
	if len(packets) != 1 {
		t.Fatalf("expected 1 packet after resume, got %d", len(packets))
	}
}

func TestReceiver_InstallRejectsEmptyTable(t *testing.T) {
	r := NewReceiver()
	if err := r.Install(nil); err == nil {
		t.Error("expected error for nil table")
	}
}

func TestReceiver_PacketBitsNeverExceedCapacity(t *testing.T) {
	r := newTestReceiver(t, protocolOne())
	pulses := Synthesize(protocolOne(), 0xDEADBEEF, 32, 3)
	Replay(r, pulseSlice(pulses), 0, func() {
		if r.packet.Len() > MaxPacketBits {
			t.Errorf("packet holds %d bits, capacity is %d", r.packet.Len(), MaxPacketBits)
		}
		if r.ReceivedProtocolCount() < 1 {
			t.Error("published packet must keep at least one candidate")
		}
	})
}

func TestReceiver_SynthesisDecodeRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		def := rapid.SampledFrom(DefaultProtocols).Draw(t, "protocol")
		bits := rapid.IntRange(MinPacketBits, MaxPacketBits).Draw(t, "bits")
		mask := uint32(0xFFFFFFFF)
		if bits < 32 {
			mask = (1 << uint(bits)) - 1
		}
		value := rapid.Uint32().Draw(t, "value") & mask

		table, err := NewTimingSpecTable([]ProtocolDef{def})
		assert.NoError(t, err)
		r := NewReceiver()
		assert.NoError(t, r.Install(table))

		var packets []packetResult
		Replay(r, pulseSlice(Synthesize(def, value, bits, 2)), 0, func() {
			res := packetResult{value: r.ReceivedValue(), bits: r.ReceivedBitsCount()}
			for i := 0; i < r.ReceivedProtocolCount(); i++ {
				res.protocols = append(res.protocols, r.ReceivedProtocol(i))
			}
			packets = append(packets, res)
		})

		assert.Len(t, packets, 1, "idealized transmission must decode exactly once")
		assert.Equal(t, value, packets[0].value)
		assert.Equal(t, bits, packets[0].bits)
		assert.Contains(t, packets[0].protocols, int(def.ID))
	})
}
