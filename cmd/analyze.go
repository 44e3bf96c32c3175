// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 The rcscope authors

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcscope/rcscope/pkg/rcswitch"
)

var (
	analyzeEdgeLog   bool
	analyzeTolerance uint32
	analyzeClock     uint32
	analyzeID        uint16
	analyzeSave      string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Derive protocol timing from a recorded pulse sequence",
	Long: `Cluster the pulses of a recording and propose a protocol definition.

Record the unknown transmitter with "monitor --capture" (repeat a
button press a few times), then run analyze over the capture. The
proposal can be written to a YAML protocol file with --save and used
via --protocols afterwards.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().BoolVar(&analyzeEdgeLog, "edge-log", false, "Treat the file as a text edge log")
	analyzeCmd.Flags().Uint32Var(&analyzeTolerance, "tolerance", rcswitch.DefaultTolerancePct, "Clustering tolerance in percent")
	analyzeCmd.Flags().Uint32Var(&analyzeClock, "clock", rcswitch.DefaultAnalyzerClockUS, "Quantization clock in microseconds")
	analyzeCmd.Flags().Uint16Var(&analyzeID, "id", 100, "Protocol id to assign to the proposal")
	analyzeCmd.Flags().StringVar(&analyzeSave, "save", "", "Write the proposal to this YAML protocol file")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	src, err := loadPulseSource(args[0], analyzeEdgeLog)
	if err != nil {
		return err
	}
	logger.Info("analyzing", "file", args[0], "pulses", src.Len(),
		"tolerance_pct", analyzeTolerance)

	analyzer := rcswitch.NewAnalyzer(analyzeTolerance)
	analyzer.ClockUS = analyzeClock
	proposal, err := analyzer.Analyze(src)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}
	proposal.Def.ID = analyzeID

	fmt.Print(rcswitch.FormatProposal(proposal))

	// Confirm the proposal actually expands to a usable table.
	if _, err := rcswitch.NewTimingSpecTable([]rcswitch.ProtocolDef{proposal.Def}); err != nil {
		return fmt.Errorf("proposal does not expand cleanly: %w", err)
	}

	if analyzeSave != "" {
		if err := rcswitch.SaveProtocolFile(analyzeSave, []rcswitch.ProtocolDef{proposal.Def}); err != nil {
			return err
		}
		logger.Info("proposal written", "file", analyzeSave, "id", analyzeID)
	}
	return nil
}
