// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The rcscope authors

package rcswitch

// Synthesize renders the ideal pulse train a transmitter following the
// given definition would emit for value: repeats repetitions of a sync
// pair followed by bits data bits, most significant bit first. No
// jitter is applied; callers wanting realistic traces can perturb the
// durations afterwards.
func Synthesize(def ProtocolDef, value uint32, bits, repeats int) []Pulse {
	levelA, levelB := LevelHigh, LevelLow
	if def.Inverse {
		levelA, levelB = LevelLow, LevelHigh
	}
	pair := func(pulses []Pulse, a, b uint32) []Pulse {
		return append(pulses,
			Pulse{DurationUS: def.ClockUS * a, Level: levelA},
			Pulse{DurationUS: def.ClockUS * b, Level: levelB})
	}

	pulses := make([]Pulse, 0, repeats*(bits+1)*DataPulsesPerBit)
	for rep := 0; rep < repeats; rep++ {
		pulses = pair(pulses, def.SyncA, def.SyncB)
		for i := bits - 1; i >= 0; i-- {
			if value&(1<<uint(i)) != 0 {
				pulses = pair(pulses, def.Data1A, def.Data1B)
			} else {
				pulses = pair(pulses, def.Data0A, def.Data0B)
			}
		}
	}
	return pulses
}

// Replay feeds a recorded pulse sequence to the receiver as synthetic
// edges. Whenever a packet becomes available, onPacket is called with
// the packet still held, then the receiver is reset so the replay can
// continue. Timestamps start at startUS and may wrap.
func Replay(r *Receiver, src PulseSource, startUS uint32, onPacket func()) {
	t := startUS
	for i := 0; i < src.Len(); i++ {
		p := src.PulseAt(i)
		t += p.DurationUS
		// The edge ending a pulse flips the line to the opposite level.
		levelAfter := 0
		if p.Level == LevelLow {
			levelAfter = 1
		}
		r.OnEdge(levelAfter, t)
		if r.Available() {
			if onPacket != nil {
				onPacket()
			}
			r.ResetAvailable()
		}
	}
}
