// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 The rcscope authors
//
// Rcscope - 433/315 MHz remote control packet decoder

package main

import (
	"os"

	"github.com/rcscope/rcscope/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
