// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 The rcscope authors

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rcscope/rcscope/pkg/capture"
	"github.com/rcscope/rcscope/pkg/rcswitch"
)

var decodeEdgeLog bool

var decodeCmd = &cobra.Command{
	Use:   "decode <file>",
	Short: "Replay a recorded pulse sequence through the decoder",
	Long: `Replay a capture file through the decoder and print every packet.

The file is a CBOR capture written by "monitor --capture", or with
--edge-log a text file with one "<timestamp_us> <level>" edge per
line. Decode statistics are printed after the replay.`,
	Args: cobra.ExactArgs(1),
	RunE: runDecode,
}

func init() {
	rootCmd.AddCommand(decodeCmd)
	decodeCmd.Flags().BoolVar(&decodeEdgeLog, "edge-log", false, "Treat the file as a text edge log")
}

// loadPulseSource reads a pulse sequence from a capture file or a text
// edge log.
func loadPulseSource(path string, edgeLog bool) (rcswitch.PulseSource, error) {
	if !edgeLog {
		return capture.Load(path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	edges, err := capture.ReadEdgeLog(f)
	if err != nil {
		return nil, err
	}
	pulses := capture.Pulses(edges)
	if pulses.Len() == 0 {
		return nil, fmt.Errorf("edge log %s holds no complete pulse", path)
	}
	return pulses, nil
}

func runDecode(cmd *cobra.Command, args []string) error {
	table, err := loadTable()
	if err != nil {
		return err
	}
	src, err := loadPulseSource(args[0], decodeEdgeLog)
	if err != nil {
		return err
	}
	logger.Info("replaying", "file", args[0], "pulses", src.Len())

	receiver := rcswitch.NewReceiver()
	if err := receiver.Install(table); err != nil {
		return err
	}

	packets := 0
	rcswitch.Replay(receiver, src, 0, func() {
		printPacket(receiver)
		packets++
	})

	if packets == 0 {
		logger.Warn("no packets decoded; try analyze to derive a protocol definition")
	}
	fmt.Println()
	fmt.Print(receiver.Stats())
	return nil
}
