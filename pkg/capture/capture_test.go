// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The rcscope authors

package capture

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcscope/rcscope/pkg/rcswitch"
)

func samplePulses() PulseSlice {
	return PulseSlice{
		{DurationUS: 350, Level: rcswitch.LevelHigh},
		{DurationUS: 10850, Level: rcswitch.LevelLow},
		{DurationUS: 350, Level: rcswitch.LevelHigh},
		{DurationUS: 1050, Level: rcswitch.LevelLow},
	}
}

func TestCapture_SaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pulses.cbor")
	f := New(samplePulses(), "bench recording")
	require.NoError(t, Save(path, f))

	loaded, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, uint8(FormatVersion), loaded.Version)
	assert.Equal(t, "bench recording", loaded.Note)
	require.Equal(t, samplePulses().Len(), loaded.Len())
	for i := 0; i < loaded.Len(); i++ {
		assert.Equal(t, samplePulses().PulseAt(i), loaded.PulseAt(i))
	}
}

func TestCapture_RejectsUnknownVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pulses.cbor")
	f := New(samplePulses(), "")
	f.Version = FormatVersion + 1
	require.NoError(t, Save(path, f))

	_, err := Load(path)
	assert.ErrorContains(t, err, "unsupported capture version")
}

func TestReadEdgeLog(t *testing.T) {
	input := `# bench capture
1000 0
1350 1

12200 0
`
	edges, err := ReadEdgeLog(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, edges, 3)
	assert.Equal(t, Edge{TimeUS: 1000, Level: 0}, edges[0])
	assert.Equal(t, Edge{TimeUS: 1350, Level: 1}, edges[1])
	assert.Equal(t, Edge{TimeUS: 12200, Level: 0}, edges[2])
}

func TestReadEdgeLog_Errors(t *testing.T) {
	_, err := ReadEdgeLog(strings.NewReader("1000 2\n"))
	assert.ErrorContains(t, err, "level must be 0 or 1")

	_, err = ReadEdgeLog(strings.NewReader("not-a-number 1\n"))
	assert.ErrorContains(t, err, "bad timestamp")

	_, err = ReadEdgeLog(strings.NewReader("1000\n"))
	assert.Error(t, err)
}

func TestWriteEdgeLog_RoundTrip(t *testing.T) {
	edges := []Edge{
		{TimeUS: 0, Level: 1},
		{TimeUS: 350, Level: 0},
		{TimeUS: 11200, Level: 1},
	}
	var b strings.Builder
	require.NoError(t, WriteEdgeLog(&b, edges))

	back, err := ReadEdgeLog(strings.NewReader(b.String()))
	require.NoError(t, err)
	assert.Equal(t, edges, back)
}

func TestPulses_FromEdges(t *testing.T) {
	// Rising edge at 1000, falling at 1350, rising at 12200: a 350 us
	// HIGH pulse followed by a 10850 us LOW pulse.
	edges := []Edge{
		{TimeUS: 1000, Level: 1},
		{TimeUS: 1350, Level: 0},
		{TimeUS: 12200, Level: 1},
	}
	pulses := Pulses(edges)
	require.Equal(t, 2, pulses.Len())
	assert.Equal(t, rcswitch.Pulse{DurationUS: 350, Level: rcswitch.LevelHigh}, pulses.PulseAt(0))
	assert.Equal(t, rcswitch.Pulse{DurationUS: 10850, Level: rcswitch.LevelLow}, pulses.PulseAt(1))

	assert.Nil(t, Pulses(edges[:1]), "one edge bounds no pulse")
}

func TestPulses_TimestampWraparound(t *testing.T) {
	edges := []Edge{
		{TimeUS: 0xFFFFFF00, Level: 1},
		{TimeUS: 0x00000060, Level: 0}, // 0x160 us later, across the wrap
	}
	pulses := Pulses(edges)
	require.Equal(t, 1, pulses.Len())
	assert.Equal(t, uint32(0x160), pulses.PulseAt(0).DurationUS)
}