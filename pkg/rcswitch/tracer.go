// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The rcscope authors

package rcswitch

import "sync/atomic"

// TraceRecord is one traced pulse together with the cost of the
// interrupt that produced it.
type TraceRecord struct {
	Pulse     Pulse
	ISRCostUS uint32
}

// Tracer keeps a ring of the most recent pulses for offline analysis.
// The edge path writes records; the Analyzer locks the tracer for the
// duration of a read so it sees a consistent snapshot while decoding
// continues.
type Tracer struct {
	records *Ring[TraceRecord]
	locked  atomic.Bool
}

func newTracer(capacity int) *Tracer {
	return &Tracer{records: NewRing[TraceRecord](capacity)}
}

// record stores a pulse unless the tracer is locked by a reader.
func (t *Tracer) record(p Pulse) {
	if t.locked.Load() {
		return
	}
	t.records.Push(TraceRecord{Pulse: p})
}

// noteCost books the measured interrupt cost against the most recent
// record.
func (t *Tracer) noteCost(costUS uint32) {
	if t.locked.Load() || t.records.Len() == 0 {
		return
	}
	last := t.records.Len() - 1
	rec := t.records.At(last)
	rec.ISRCostUS = costUS
	t.records.Set(last, rec)
}

// Lock freezes tracer writes. Decoding proceeds; only tracing pauses.
func (t *Tracer) Lock() {
	t.locked.Store(true)
}

// Unlock resumes tracer writes.
func (t *Tracer) Unlock() {
	t.locked.Store(false)
}

// Len returns the number of records held.
func (t *Tracer) Len() int {
	return t.records.Len()
}

// At returns the record at index i, 0 being the oldest. Call only
// while the tracer is locked or the edge source is quiet.
func (t *Tracer) At(i int) TraceRecord {
	return t.records.At(i)
}

// Cap returns the configured trace capacity.
func (t *Tracer) Cap() int {
	return t.records.Cap()
}

// Clear drops all records.
func (t *Tracer) Clear() {
	t.records.Clear()
}

// PulseAt returns just the pulse of record i; this is the Analyzer's
// read interface.
func (t *Tracer) PulseAt(i int) Pulse {
	return t.records.At(i).Pulse
}

// PulseSource is a read-only sequence of pulses, satisfied by Tracer
// and by loaded capture files.
type PulseSource interface {
	Len() int
	PulseAt(i int) Pulse
}
