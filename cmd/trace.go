// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 The rcscope authors

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcscope/rcscope/pkg/capture"
)

var traceCmd = &cobra.Command{
	Use:   "trace <file>",
	Short: "Dump the pulses of a capture file",
	Long: `Print the pulses of a capture file, newest first, with level and
duration. This is the raw view behind decode and analyze; use it to
eyeball a recording before deriving a protocol from it.`,
	Args: cobra.ExactArgs(1),
	RunE: runTrace,
}

func init() {
	rootCmd.AddCommand(traceCmd)
}

func runTrace(cmd *cobra.Command, args []string) error {
	f, err := capture.Load(args[0])
	if err != nil {
		return err
	}
	if f.Note != "" {
		logger.Info("capture", "note", f.Note)
	}
	for i := f.Len() - 1; i >= 0; i-- {
		p := f.PulseAt(i)
		fmt.Printf("[%3d] %-4s for %6d us\n", i, p.Level, p.DurationUS)
	}
	return nil
}
