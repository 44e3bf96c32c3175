// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The rcscope authors

package capture

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rcscope/rcscope/pkg/rcswitch"
)

// Edge is one recorded pin transition: the microsecond timestamp and
// the pin level after the edge.
type Edge struct {
	TimeUS uint32
	Level  int
}

// ParseEdge parses one edge log line: "<timestamp_us> <level>" with
// level 0 or 1. Blank lines and '#' comments return ok=false with no
// error.
func ParseEdge(line string) (edge Edge, ok bool, err error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return Edge{}, false, nil
	}
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return Edge{}, false, fmt.Errorf("want \"timestamp_us level\", got %q", line)
	}
	t, err := strconv.ParseUint(fields[0], 10, 32)
	if err != nil {
		return Edge{}, false, fmt.Errorf("bad timestamp: %w", err)
	}
	level, err := strconv.Atoi(fields[1])
	if err != nil || (level != 0 && level != 1) {
		return Edge{}, false, fmt.Errorf("level must be 0 or 1, got %q", fields[1])
	}
	return Edge{TimeUS: uint32(t), Level: level}, true, nil
}

// ReadEdgeLog parses a text edge log, one edge per line as understood
// by ParseEdge. Timestamps are raw 32-bit counter values and may wrap.
func ReadEdgeLog(r io.Reader) ([]Edge, error) {
	var edges []Edge
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		edge, ok, err := ParseEdge(scanner.Text())
		if err != nil {
			return nil, fmt.Errorf("edge log line %d: %w", lineNo, err)
		}
		if ok {
			edges = append(edges, edge)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading edge log: %w", err)
	}
	return edges, nil
}

// WriteEdgeLog writes edges in the format ReadEdgeLog parses.
func WriteEdgeLog(w io.Writer, edges []Edge) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "# timestamp_us level")
	for _, e := range edges {
		fmt.Fprintf(bw, "%d %d\n", e.TimeUS, e.Level)
	}
	return bw.Flush()
}

// Pulses converts an edge sequence to the pulses between consecutive
// edges. The interval before the first edge has no defined start, so
// n edges yield n-1 pulses.
func Pulses(edges []Edge) PulseSlice {
	if len(edges) < 2 {
		return nil
	}
	pulses := make(PulseSlice, 0, len(edges)-1)
	for i := 1; i < len(edges); i++ {
		level := rcswitch.LevelHigh
		if edges[i].Level != 0 {
			level = rcswitch.LevelLow
		}
		pulses = append(pulses, rcswitch.Pulse{
			DurationUS: edges[i].TimeUS - edges[i-1].TimeUS,
			Level:      level,
		})
	}
	return pulses
}

// PulseSlice adapts a plain pulse slice to rcswitch.PulseSource.
type PulseSlice []rcswitch.Pulse

// Len returns the number of pulses.
func (s PulseSlice) Len() int {
	return len(s)
}

// PulseAt returns the pulse at index i, 0 being the oldest.
func (s PulseSlice) PulseAt(i int) rcswitch.Pulse {
	return s[i]
}
