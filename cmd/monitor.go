// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 The rcscope authors

package cmd

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rcscope/rcscope/pkg/capture"
	"github.com/rcscope/rcscope/pkg/rcswitch"
)

var (
	monitorTrace   int
	monitorCapture string
	monitorCount   int
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Decode packets from a live edge stream",
	Long: `Continuously decode remote control packets from a live edge stream.

The edge source streams one pin transition per line as
"<timestamp_us> <level>". Each decoded packet is printed with its
value, bit count and the protocols whose timing matched it.

With --trace, the most recent pulses are recorded; on exit (Ctrl+C)
the trace can be written to a capture file with --capture for offline
replay and analysis. Decode statistics are printed on exit.`,
	RunE: runMonitor,
}

func init() {
	rootCmd.AddCommand(monitorCmd)
	monitorCmd.Flags().IntVar(&monitorTrace, "trace", 256, "Pulse trace capacity (0 disables tracing)")
	monitorCmd.Flags().StringVar(&monitorCapture, "capture", "", "Write the pulse trace to this capture file on exit")
	monitorCmd.Flags().IntVar(&monitorCount, "count", 0, "Stop after this many packets (0 = run until Ctrl+C)")
}

func runMonitor(cmd *cobra.Command, args []string) error {
	table, err := loadTable()
	if err != nil {
		return err
	}
	if monitorCapture != "" && monitorTrace == 0 {
		return fmt.Errorf("--capture needs --trace > 0")
	}

	conn, connInfo, err := OpenConnection()
	if err != nil {
		return err
	}
	defer conn.Close()

	logger.Info("monitoring", "connection", connInfo, "protocols", table.Len())

	receiver := rcswitch.NewReceiverWithTracer(monitorTrace)
	if err := receiver.Install(table); err != nil {
		return err
	}

	// Ctrl+C stops the read loop; the connection close unblocks it.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("stopping")
		conn.Close()
	}()

	packets := 0
	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		edge, ok, err := capture.ParseEdge(scanner.Text())
		if err != nil {
			logger.Debug("bad edge line", "err", err)
			continue
		}
		if !ok {
			continue
		}

		receiver.OnEdge(edge.Level, edge.TimeUS)
		if !receiver.Available() {
			continue
		}

		printPacket(receiver)
		receiver.ResetAvailable()

		packets++
		if monitorCount > 0 && packets >= monitorCount {
			break
		}
	}

	fmt.Println()
	fmt.Print(receiver.Stats())

	if monitorCapture != "" {
		t := receiver.Tracer()
		t.Lock()
		if err := capture.Save(monitorCapture, capture.New(t, connInfo)); err != nil {
			return err
		}
		logger.Info("trace written", "file", monitorCapture, "pulses", t.Len())
	}
	return nil
}

// printPacket prints one held packet with every matching protocol id.
func printPacket(r *rcswitch.Receiver) {
	ids := make([]string, 0, r.ReceivedProtocolCount())
	for i := 0; i < r.ReceivedProtocolCount(); i++ {
		ids = append(ids, fmt.Sprintf("%d", r.ReceivedProtocol(i)))
	}
	fmt.Printf("value=0x%08X  bits=%d  protocols=[%s]\n",
		r.ReceivedValue(), r.ReceivedBitsCount(), strings.Join(ids, " "))
}
