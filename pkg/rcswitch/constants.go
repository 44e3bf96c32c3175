// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The rcscope authors

// Package rcswitch decodes 433/315 MHz remote-control packets from a
// stream of pin-edge events.
//
// A radio receiver front-end delivers a two-level square wave on a
// digital input pin. Each edge is reported to a Receiver together with
// a microsecond timestamp; the Receiver recognizes one of the
// configured protocols by its synchronization pulse pair, decodes the
// data bits that follow, and publishes the completed message packet to
// the polling application. An optional pulse tracer records recent
// pulses for the offline Analyzer, which proposes timing parameters
// for an unknown transmitter.
//
// The edge path (Receiver.OnEdge) is written for interrupt context:
// bounded work, no allocation, no locks.
package rcswitch

// Capacity limits of the receiver
const (
	// MaxProtocolCandidates is the maximum number of protocols that can
	// be collected for one synchronization pulse pair. Further matches
	// are dropped and counted as overflow.
	MaxProtocolCandidates = 7

	// MinPacketBits is the minimum number of data bits for a message
	// packet to be accepted when the trailing sync arrives.
	MinPacketBits = 6

	// MaxPacketBits is the maximum number of data bits a message packet
	// can store. Trailing bits beyond this are dropped and counted.
	MaxPacketBits = 32

	// DataPulsesPerBit is fixed by the supported protocol family: every
	// symbol (sync, data-0, data-1) is exactly one pulse pair.
	DataPulsesPerBit = 2
)

// Analyzer limits
const (
	// syncCategoryCount and dataCategoryCount are the cluster counts a
	// well-formed trace must resolve to: one sync pair and the four
	// data pulse roles.
	syncCategoryCount = 2
	dataCategoryCount = 4
	allCategoryCount  = syncCategoryCount + dataCategoryCount

	// minSyncRatio is the minimum sync-B/sync-A duration ratio for a
	// pulse pair to count as synchronization.
	minSyncRatio = 8

	// minDataRatioPct is the minimum long/short ratio within a data
	// pulse pair, in percent.
	minDataRatioPct = 150

	// DefaultAnalyzerClockUS is the quantization clock used when the
	// caller of the Analyzer does not supply one.
	DefaultAnalyzerClockUS = 10

	// DefaultTolerancePct is the pulse duration tolerance used by the
	// built-in protocol table and the Analyzer default.
	DefaultTolerancePct = 20
)
