// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 The rcscope authors

package cmd

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/rcscope/rcscope/pkg/rcswitch"
)

var (
	// Serial connection flags
	portName string
	baudRate int

	// WebSocket connection flags
	wsURL         string
	wsUsername    string
	wsNoSSLVerify bool

	// Protocol table flags
	protocolsPath string

	verbose bool
)

var logger = log.New(os.Stderr)

var rootCmd = &cobra.Command{
	Use:   "rcscope",
	Short: "433/315 MHz remote control packet decoder",
	Long: `Rcscope - decode and analyze packets from 433/315 MHz remote controls.

An edge source (a serial bridge or a WebSocket bridge) streams pin
transitions from an OOK radio receiver; rcscope recognizes the
transmitter's protocol by its pulse timing and decodes the message
packets. Recorded pulse traces can be replayed, analyzed and turned
into new protocol definitions.

Connection modes:
  Serial:    --port /dev/ttyUSB0 [--baud 115200]
  WebSocket: --url ws://host/path [--username user]

For WebSocket authentication, the password is read from the
RCSCOPE_PASSWORD environment variable. The --password flag is
intentionally not provided to avoid leaking credentials in shell
history.`,
	Version: "1.0.0",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			logger.SetLevel(log.DebugLevel)
		}
	},
}

func init() {
	// Serial connection flags
	rootCmd.PersistentFlags().StringVarP(&portName, "port", "p", "", "Serial port device")
	rootCmd.PersistentFlags().IntVarP(&baudRate, "baud", "b", 115200, "Baud rate (serial only)")

	// WebSocket connection flags
	rootCmd.PersistentFlags().StringVarP(&wsURL, "url", "u", "", "WebSocket URL (ws:// or wss://)")
	rootCmd.PersistentFlags().StringVar(&wsUsername, "username", "", "Username for HTTP Basic auth")
	rootCmd.PersistentFlags().BoolVar(&wsNoSSLVerify, "no-ssl-verify", false, "Skip TLS certificate verification (wss:// only)")

	rootCmd.PersistentFlags().StringVar(&protocolsPath, "protocols", "", "YAML protocol definition file (default: built-in table)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// loadDefs returns the protocol definitions from --protocols, or the
// stock rows when the flag is unset.
func loadDefs() ([]rcswitch.ProtocolDef, error) {
	if protocolsPath == "" {
		return rcswitch.DefaultProtocols, nil
	}
	return rcswitch.LoadProtocolDefs(protocolsPath)
}

// loadTable builds the timing table from --protocols, or the stock
// table when the flag is unset.
func loadTable() (*rcswitch.TimingSpecTable, error) {
	defs, err := loadDefs()
	if err != nil {
		return nil, err
	}
	return rcswitch.NewTimingSpecTable(defs)
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
