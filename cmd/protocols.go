// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 The rcscope authors

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcscope/rcscope/pkg/rcswitch"
)

var protocolsDefs bool

var protocolsCmd = &cobra.Command{
	Use:   "protocols",
	Short: "List the active protocol timing table",
	Long: `Print the expanded timing table the decoder works with.

Each row shows the tolerance ranges of the sync, data-0 and data-1
pulse pairs, in the sorted order the candidate collector scans. With
--defs the unexpanded definition rows of the active table are
printed instead.`,
	RunE: runProtocols,
}

func init() {
	rootCmd.AddCommand(protocolsCmd)
	protocolsCmd.Flags().BoolVar(&protocolsDefs, "defs", false, "Print raw definition rows instead of expanded ranges")
}

func runProtocols(cmd *cobra.Command, args []string) error {
	if protocolsDefs {
		defs, err := loadDefs()
		if err != nil {
			return err
		}
		for _, def := range defs {
			fmt.Println(def)
		}
		return nil
	}

	table, err := loadTable()
	if err != nil {
		return err
	}
	fmt.Print(rcswitch.FormatTimingTable(table))
	return nil
}
