// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The rcscope authors

package rcswitch

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	dimStyle    = lipgloss.NewStyle().Faint(true)
	levelStyles = map[PulseLevel]lipgloss.Style{
		LevelLow:     lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
		LevelHigh:    lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		LevelUnknown: dimStyle,
	}
)

// FormatTimingTable renders the expanded timing table, one protocol
// per row with the tolerance ranges of all four pulse roles.
func FormatTimingTable(table *TimingSpecTable) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%4s %-8s %17s %17s %17s",
		"id", "group", "sync [us]", "data0 [us]", "data1 [us]")))
	b.WriteByte('\n')
	for _, spec := range table.Specs() {
		group := "normal"
		if spec.Inverse {
			group = "inverse"
		}
		b.WriteString(fmt.Sprintf("%4d %-8s %17s %17s %17s\n",
			spec.ID, group,
			formatPairRanges(spec.Sync),
			formatPairRanges(spec.Data0),
			formatPairRanges(spec.Data1)))
	}
	return b.String()
}

func formatPairRanges(p PulsePairRanges) string {
	return fmt.Sprintf("%d..%d/%d..%d",
		p.A.LowerUS, p.A.UpperUS, p.B.LowerUS, p.B.UpperUS)
}

// FormatTrace renders the tracer contents newest first, so the pulses
// that led to the present state read from the top. Lock the tracer
// before calling this while edges are live.
func FormatTrace(t *Tracer) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(
		fmt.Sprintf("%d pulses, newest first", t.Len())))
	b.WriteByte('\n')
	for i := t.Len() - 1; i >= 0; i-- {
		rec := t.At(i)
		line := fmt.Sprintf("[%3d] %-7s for %6d us",
			i, rec.Pulse.Level, rec.Pulse.DurationUS)
		b.WriteString(levelStyles[rec.Pulse.Level].Render(line))
		if rec.ISRCostUS > 0 {
			b.WriteString(dimStyle.Render(
				fmt.Sprintf("  (isr %d us)", rec.ISRCostUS)))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// FormatProposal renders an analyzer proposal: the derived definition
// row followed by the per-cluster measurements behind it.
func FormatProposal(p *Proposal) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("proposed protocol definition"))
	b.WriteByte('\n')
	b.WriteString(p.Def.String())
	b.WriteByte('\n')

	b.WriteString(headerStyle.Render("clusters"))
	b.WriteByte('\n')
	names := []string{"sync A", "sync B"}
	for i, c := range p.SyncClusters {
		b.WriteString(formatCluster(names[i], c))
	}
	names = []string{"data0 A", "data0 B", "data1 A", "data1 B"}
	for i, c := range p.DataClusters {
		b.WriteString(formatCluster(names[i], c))
	}
	return b.String()
}

func formatCluster(name string, c Cluster) string {
	below, above := c.SpreadPct()
	return fmt.Sprintf("%-8s %-5s mean %6d us  spread -%d%%/+%d%%  n=%d\n",
		name, c.Level, c.MeanUS, below, above, c.Count)
}
