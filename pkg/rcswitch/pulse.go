// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The rcscope authors

package rcswitch

// PulseLevel is the line level held between two consecutive edges.
type PulseLevel uint8

// Pulse levels. LevelUnknown marks uninitialized storage only; it never
// reaches the classifier.
const (
	LevelUnknown PulseLevel = iota
	LevelLow
	LevelHigh
)

// String returns "LOW", "HIGH" or "??".
func (l PulseLevel) String() string {
	switch l {
	case LevelLow:
		return "LOW"
	case LevelHigh:
		return "HIGH"
	}
	return "??"
}

// Pulse is the line level held between two consecutive edges together
// with its duration. The level is the one prior to the edge that
// terminates the pulse.
type Pulse struct {
	DurationUS uint32
	Level      PulseLevel
}

// inTolerance reports whether the pulse duration lies within
// ±tolerancePct percent of the given duration.
func (p Pulse) inTolerance(durationUS uint32, tolerancePct uint32) bool {
	delta := durationUS * tolerancePct / 100
	return p.DurationUS >= durationUS-delta && p.DurationUS <= durationUS+delta
}

// RangeCompare is the outcome of testing a duration against a TimeRange.
type RangeCompare int8

// Three-way comparison results.
const (
	TooShort RangeCompare = -1
	Within   RangeCompare = 0
	TooLong  RangeCompare = 1
)

// TimeRange is a half-open microsecond interval: a duration d is within
// iff Lower <= d < Upper.
type TimeRange struct {
	LowerUS uint32
	UpperUS uint32
}

// Compare classifies a duration against the range.
func (r TimeRange) Compare(durationUS uint32) RangeCompare {
	if durationUS < r.LowerUS {
		return TooShort
	}
	if durationUS >= r.UpperUS {
		return TooLong
	}
	return Within
}

// PulsePairRanges holds the allowed durations of the first ("A") and
// second ("B") pulse of a pair.
type PulsePairRanges struct {
	A TimeRange
	B TimeRange
}
