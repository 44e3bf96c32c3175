// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The rcscope authors

package rcswitch

import (
	"fmt"
	"sync/atomic"
)

// Clock is the monotonic microsecond counter collaborator. Wraparound
// is tolerated because only differences are used.
type Clock interface {
	Micros() uint32
}

// PinReader reads the current level of the receiver input pin.
type PinReader interface {
	ReadPin() int
}

// receiver states. The state is not stored; it is derived from the
// available flag and the candidate set, so the interrupt handler and
// the main loop can never disagree about it.
const (
	stateSync = iota
	stateData
	stateAvailable
)

// Receiver turns a stream of pin edges into message packets.
//
// The receiver holds the last two received pulses and re-evaluates
// them on every edge. A valid synchronization pulse pair switches it
// into the data phase, where subsequent pulse pairs become data bits.
// A renewed sync pair ends the packet: the transmitter repeats each
// message, so the sync of the next repetition marks the boundary. The
// completed packet stays published until ResetAvailable is called.
//
// OnEdge is the only method that may be called from interrupt context.
// All other state (candidate set, message packet, pulse ring) is owned
// by the interrupt path while Available() is false, and by the main
// loop while it is true.
type Receiver struct {
	table *TimingSpecTable

	pulses     *Ring[Pulse]  // last DataPulsesPerBit pulses
	candidates candidateSet
	packet     *Stack[uint8] // decoded bits, 0 or 1

	dataPulseCount int
	lastEdgeUS     uint32

	available atomic.Bool // written by ISR (release), read by main (acquire)
	suspended atomic.Bool // written by main, read by ISR

	tracer *Tracer
	stats  Statistics
}

// NewReceiver returns a receiver in the quiescent state: no timing
// table bound, no tracer. Install must be called before edges are fed.
func NewReceiver() *Receiver {
	return &Receiver{
		pulses:     NewRing[Pulse](DataPulsesPerBit),
		candidates: newCandidateSet(),
		packet:     NewStack[uint8](MaxPacketBits),
	}
}

// NewReceiverWithTracer returns a receiver that records the most
// recent traceCapacity pulses for the Analyzer. A capacity of zero
// yields a plain receiver without a tracer.
func NewReceiverWithTracer(traceCapacity int) *Receiver {
	r := NewReceiver()
	if traceCapacity > 0 {
		r.tracer = newTracer(traceCapacity)
	}
	return r
}

// Install binds the immutable timing table. It resets the receiver, so
// it can also be used to swap tables between packets. The table is
// never mutated by the receiver.
func (r *Receiver) Install(table *TimingSpecTable) error {
	if table == nil || table.Len() == 0 {
		return fmt.Errorf("no timing spec table to install")
	}
	r.table = table
	r.reset()
	return nil
}

// Tracer returns the pulse tracer, or nil when the receiver was
// created without one.
func (r *Receiver) Tracer() *Tracer {
	return r.tracer
}

// Stats returns a snapshot of the decode counters. The counters are
// owned by the interrupt path; snapshots taken while edges arrive are
// advisory.
func (r *Receiver) Stats() Statistics {
	return r.stats
}

func (r *Receiver) state() int {
	if r.available.Load() {
		return stateAvailable
	}
	if r.candidates.indices.Len() > 0 {
		return stateData
	}
	return stateSync
}

// OnEdge consumes one pin edge. levelAfter is the pin level following
// the edge (0 or 1), tUS the microsecond timestamp of the edge. Safe
// for interrupt context: bounded work, no allocation, no locks.
func (r *Receiver) OnEdge(levelAfter int, tUS uint32) {
	if r.suspended.Load() {
		r.lastEdgeUS = tUS
		return
	}

	// The level held during the elapsed interval is the one prior to
	// this edge.
	level := LevelHigh
	if levelAfter != 0 {
		level = LevelLow
	}
	pulse := Pulse{DurationUS: tUS - r.lastEdgeUS, Level: level}
	r.stats.Edges++

	if r.tracer != nil {
		r.tracer.record(pulse)
	}

	r.pulses.Push(pulse)

	switch r.state() {
	case stateAvailable:
		// Hold the published packet; ignore edges until ResetAvailable.

	case stateSync:
		if r.pulses.Len() > 1 {
			r.candidates.collect(r.table, r.pulses.At(0), r.pulses.At(1))
			// Any candidate found makes the next observable state
			// stateData; see state().
		}

	case stateData:
		r.dataPulseCount++
		if r.dataPulseCount == DataPulsesPerBit {
			r.dataPulseCount = 0
			r.decodePair(r.pulses.At(0), r.pulses.At(1))
		}
	}

	r.lastEdgeUS = tUS
}

// decodePair classifies one complete pulse pair in the data phase and
// advances the packet accordingly.
func (r *Receiver) decodePair(a, b Pulse) {
	switch r.classifyAgainstCandidates(a, b) {
	case PairSync:
		if r.packet.Len() >= MinPacketBits {
			r.stats.Packets++
			if r.packet.OverflowCount() > 0 {
				r.stats.OverflowPackets++
			}
			if r.candidates.indices.OverflowCount() > 0 {
				r.stats.CandidateOverflows++
			}
			// Publishing must be the last write for this packet, so a
			// reader observing available sees the complete message
			// and candidate set.
			r.available.Store(true)
			return
		}
		// Too few bits: treat the pair as the sync of a fresh packet.
		r.stats.ShortPackets++
		r.reacquire(a, b)

	case PairData0:
		r.packet.Push(0)

	case PairData1:
		r.packet.Push(1)

	case PairNotMatched:
		// The pair fits no live candidate, but it may be the sync
		// start of a different protocol.
		r.stats.Reacquisitions++
		r.reacquire(a, b)
	}
}

// classifyAgainstCandidates runs the pair classifier over the live
// candidates, newest first. The first sync ends the scan immediately;
// otherwise the first data match wins and every candidate that
// matched nothing is removed.
func (r *Receiver) classifyAgainstCandidates(a, b Pulse) PairClass {
	specs := r.table.group(r.candidates.group)
	result := PairNotMatched
	for i := r.candidates.indices.Len() - 1; i >= 0; i-- {
		spec := &specs[r.candidates.indices.At(i)]
		switch class := classifyPair(spec, a, b); class {
		case PairSync:
			return PairSync
		case PairData0, PairData1:
			if result == PairNotMatched {
				result = class
			}
		case PairNotMatched:
			r.candidates.indices.PopAt(i)
		}
	}
	return result
}

// reacquire restarts the sync search with the current pulse pair,
// which may itself be a valid sync for some protocol.
func (r *Receiver) reacquire(a, b Pulse) {
	r.candidates.clear()
	r.candidates.collect(r.table, a, b)
	r.packet.Clear()
	r.pulses.Clear()
	r.dataPulseCount = 0
}

// reset clears candidates and packet first and drops the available
// flag last, so the interrupt handler can never observe the flag down
// while the buffers still hold stale data.
func (r *Receiver) reset() {
	r.candidates.clear()
	r.packet.Clear()
	r.pulses.Clear()
	r.dataPulseCount = 0
	r.available.Store(false)
}

// Available reports whether a completed message packet is held.
func (r *Receiver) Available() bool {
	return r.available.Load()
}

// ReceivedValue returns the decoded message value, the first received
// bit in the most significant position. Zero when nothing is
// available. If the packet overflowed, the value holds the first
// MaxPacketBits bits.
func (r *Receiver) ReceivedValue() uint32 {
	if !r.available.Load() {
		return 0
	}
	var value uint32
	for i := 0; i < r.packet.Len(); i++ {
		value <<= 1
		value |= uint32(r.packet.At(i))
	}
	return value
}

// ReceivedBitsCount returns the number of data bits the transmitter
// sent, including bits beyond MaxPacketBits that could not be stored.
func (r *Receiver) ReceivedBitsCount() int {
	if !r.available.Load() {
		return 0
	}
	return r.packet.Len() + int(r.packet.OverflowCount())
}

// ReceivedProtocolCount returns the number of protocols whose sync and
// data timing matched the received packet.
func (r *Receiver) ReceivedProtocolCount() int {
	return r.candidates.indices.Len()
}

// ReceivedProtocol returns the protocol id at the given index of the
// matched set, or -1 when the index is out of range.
func (r *Receiver) ReceivedProtocol(index int) int {
	if index < 0 || index >= r.candidates.indices.Len() {
		return -1
	}
	specs := r.table.group(r.candidates.group)
	return int(specs[r.candidates.indices.At(index)].ID)
}

// ResetAvailable drops the held packet and returns to the sync search.
// It resets unconditionally and is idempotent.
func (r *Receiver) ResetAvailable() {
	r.reset()
}

// Suspend makes the receiver ignore edges (timestamps are still
// tracked so Resume restarts cleanly).
func (r *Receiver) Suspend() {
	r.suspended.Store(true)
}

// Resume re-enables edge processing. It implies a reset.
func (r *Receiver) Resume() {
	if r.suspended.Load() {
		r.reset()
		r.suspended.Store(false)
	}
}

// noteISRCost attributes the measured interrupt cost to the most
// recent trace record.
func (r *Receiver) noteISRCost(costUS uint32) {
	if r.tracer != nil {
		r.tracer.noteCost(costUS)
	}
}

// Trampoline adapts a platform interrupt to a receiver: it samples the
// pin and the clock and forwards the edge. One trampoline per input
// pin; the platform layer registers HandleInterrupt for level changes.
type Trampoline struct {
	receiver *Receiver
	pin      PinReader
	clock    Clock
}

// NewTrampoline wires a receiver to its pin and clock collaborators.
func NewTrampoline(r *Receiver, pin PinReader, clock Clock) *Trampoline {
	return &Trampoline{receiver: r, pin: pin, clock: clock}
}

// HandleInterrupt is the edge callback: read the pin once, timestamp
// the edge, decode, and book the elapsed cost against the trace.
func (t *Trampoline) HandleInterrupt() {
	now := t.clock.Micros()
	t.receiver.OnEdge(t.pin.ReadPin(), now)
	t.receiver.noteISRCost(t.clock.Micros() - now)
}
