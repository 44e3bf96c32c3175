// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The rcscope authors

// Package capture persists recorded pulse sequences so decoding and
// analysis can be replayed offline. The on-disk format is a small
// versioned CBOR document.
package capture

import (
	"fmt"
	"os"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/rcscope/rcscope/pkg/rcswitch"
)

// FormatVersion is the current capture file format version.
const FormatVersion = 1

// Record is one stored pulse.
type Record struct {
	DurationUS uint32 `cbor:"1,keyasint"`
	Level      uint8  `cbor:"2,keyasint"`
}

// File is a capture document: a versioned header plus the pulse
// records in arrival order, oldest first.
type File struct {
	Version    uint8    `cbor:"1,keyasint"`
	CapturedAt int64    `cbor:"2,keyasint"` // unix seconds
	Note       string   `cbor:"3,keyasint,omitempty"`
	Pulses     []Record `cbor:"4,keyasint"`
}

// Len returns the number of stored pulses.
func (f *File) Len() int {
	return len(f.Pulses)
}

// PulseAt returns the stored pulse at index i, 0 being the oldest.
// Together with Len this satisfies rcswitch.PulseSource.
func (f *File) PulseAt(i int) rcswitch.Pulse {
	r := f.Pulses[i]
	return rcswitch.Pulse{
		DurationUS: r.DurationUS,
		Level:      rcswitch.PulseLevel(r.Level),
	}
}

// New builds a capture document from any pulse source, stamped with
// the current time.
func New(src rcswitch.PulseSource, note string) *File {
	f := &File{
		Version:    FormatVersion,
		CapturedAt: time.Now().Unix(),
		Note:       note,
		Pulses:     make([]Record, 0, src.Len()),
	}
	for i := 0; i < src.Len(); i++ {
		p := src.PulseAt(i)
		f.Pulses = append(f.Pulses, Record{
			DurationUS: p.DurationUS,
			Level:      uint8(p.Level),
		})
	}
	return f
}

// Save writes the capture document to path.
func Save(path string, f *File) error {
	data, err := cbor.Marshal(f)
	if err != nil {
		return fmt.Errorf("failed to encode capture: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write capture: %w", err)
	}
	return nil
}

// Load reads a capture document from path and checks its version.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read capture: %w", err)
	}
	var f File
	if err := cbor.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to decode capture: %w", err)
	}
	if f.Version != FormatVersion {
		return nil, fmt.Errorf("unsupported capture version %d (want %d)",
			f.Version, FormatVersion)
	}
	return &f, nil
}
