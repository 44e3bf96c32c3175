// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The rcscope authors

package rcswitch

import (
	"fmt"
	"sort"
)

// Cluster is a group of traced pulses with matching level and similar
// duration. MeanUS is a running mean over the folded-in pulses.
type Cluster struct {
	Level  PulseLevel
	MeanUS uint32
	MinUS  uint32
	MaxUS  uint32
	Count  uint32
}

// add folds one pulse into the cluster, updating the running mean.
func (c *Cluster) add(p Pulse) {
	c.MeanUS = (c.Count*c.MeanUS + p.DurationUS) / (c.Count + 1)
	c.Count++
	if p.DurationUS < c.MinUS {
		c.MinUS = p.DurationUS
	}
	if p.DurationUS > c.MaxUS {
		c.MaxUS = p.DurationUS
	}
}

// fits reports whether the pulse belongs to this cluster: level match
// and duration within ±tolerancePct of the running mean.
func (c *Cluster) fits(p Pulse, tolerancePct uint32) bool {
	return p.Level == c.Level && p.inTolerance(c.MeanUS, tolerancePct)
}

// SpreadPct returns how far the cluster's extremes deviate from its
// mean, in percent (below, above).
func (c *Cluster) SpreadPct() (below, above uint32) {
	if c.MeanUS == 0 {
		return 0, 0
	}
	below = (c.MeanUS - c.MinUS) * 100 / c.MeanUS
	above = (c.MaxUS - c.MeanUS) * 100 / c.MeanUS
	return below, above
}

func newCluster(p Pulse) Cluster {
	return Cluster{
		Level:  p.Level,
		MeanUS: p.DurationUS,
		MinUS:  p.DurationUS,
		MaxUS:  p.DurationUS,
		Count:  1,
	}
}

// clusterSet is a bounded collection of clusters.
type clusterSet struct {
	clusters *Stack[Cluster]
}

func newClusterSet(capacity int) clusterSet {
	return clusterSet{clusters: NewStack[Cluster](capacity)}
}

// put folds the pulse into the first fitting cluster or opens a new
// one. Clusters beyond the capacity are dropped and counted.
func (cs *clusterSet) put(p Pulse, tolerancePct uint32) {
	for i := 0; i < cs.clusters.Len(); i++ {
		c := cs.clusters.At(i)
		if c.fits(p, tolerancePct) {
			c.add(p)
			cs.clusters.data[i] = c
			return
		}
	}
	cs.clusters.Push(newCluster(p))
}

func (cs *clusterSet) sortByDuration() {
	live := cs.clusters.data[:cs.clusters.Len()]
	sort.SliceStable(live, func(i, j int) bool {
		return live[i].MeanUS < live[j].MeanUS
	})
}

func (cs *clusterSet) sortByLevelThenDuration() {
	live := cs.clusters.data[:cs.clusters.Len()]
	sort.SliceStable(live, func(i, j int) bool {
		if live[i].Level != live[j].Level {
			return live[i].Level < live[j].Level
		}
		return live[i].MeanUS < live[j].MeanUS
	})
}

func (cs *clusterSet) all() []Cluster {
	return cs.clusters.data[:cs.clusters.Len()]
}

// Proposal is the analyzer's suggested protocol definition for an
// unknown transmitter, plus the clusters it was derived from.
type Proposal struct {
	Def          ProtocolDef
	SyncClusters []Cluster // sorted short (A) then long (B)
	DataClusters []Cluster // d0A, d0B, d1A, d1B
}

// Analyzer infers a protocol timing proposal from a recorded pulse
// sequence. It runs entirely outside interrupt context; when the
// source is a live Tracer, the analyzer locks it for the duration of
// the run so the trace cannot shift underneath it.
type Analyzer struct {
	TolerancePct uint32
	ClockUS      uint32
}

// NewAnalyzer returns an analyzer with the given tolerance, using the
// default quantization clock.
func NewAnalyzer(tolerancePct uint32) *Analyzer {
	return &Analyzer{TolerancePct: tolerancePct, ClockUS: DefaultAnalyzerClockUS}
}

// Analyze clusters the recorded pulses, identifies the sync pair and
// the four data pulse roles, and emits a proposed protocol definition.
// Validation failures return a diagnostic error and no proposal.
func (a *Analyzer) Analyze(src PulseSource) (*Proposal, error) {
	if t, ok := src.(*Tracer); ok {
		t.Lock()
		defer t.Unlock()
	}
	if src.Len() == 0 {
		return nil, fmt.Errorf("no pulses recorded")
	}

	// Pass 1: cluster every pulse by level and duration.
	all := newClusterSet(allCategoryCount)
	for i := 0; i < src.Len(); i++ {
		all.put(src.PulseAt(i), a.TolerancePct)
	}
	if n := all.clusters.OverflowCount(); n > 0 {
		return nil, fmt.Errorf(
			"pulses fall into more than %d duration categories (%d dropped); trace looks like noise or mixed transmitters",
			allCategoryCount, n)
	}
	all.sortByDuration()

	// The longest cluster is assumed to be sync B. It must dominate
	// the shortest cluster by the sync ratio, otherwise no protocol of
	// this family is present.
	clusters := all.all()
	syncB := clusters[len(clusters)-1]
	if syncB.MeanUS < minSyncRatio*clusters[0].MeanUS {
		return nil, fmt.Errorf(
			"no dominant long pulse: longest category %d us is under %dx the shortest (%d us)",
			syncB.MeanUS, minSyncRatio, clusters[0].MeanUS)
	}

	// Pass 2: split into sync and data clusters. A pulse whose
	// successor is a sync B is the matching sync A.
	syncs := newClusterSet(syncCategoryCount)
	data := newClusterSet(dataCategoryCount)
	for i := 0; i < src.Len(); i++ {
		pulse := src.PulseAt(i)
		isSyncB := pulse.inTolerance(syncB.MeanUS, a.TolerancePct)
		switch {
		case isSyncB:
			syncs.put(pulse, a.TolerancePct)
		case i+1 < src.Len() && src.PulseAt(i+1).inTolerance(syncB.MeanUS, a.TolerancePct):
			// Predecessor of a sync B: this is a sync A.
			syncs.put(pulse, a.TolerancePct)
		case i+1 == src.Len():
			// Last pulse, not a sync B: could be data or a truncated
			// sync A, drop it.
		default:
			data.put(pulse, a.TolerancePct)
		}
	}
	syncs.sortByDuration()

	if err := a.validate(&syncs, &data); err != nil {
		return nil, err
	}
	return a.propose(&syncs, &data)
}

// validate checks that the trace resolves to exactly one sync pair
// (opposite levels, ratio >= minSyncRatio) and four data clusters.
func (a *Analyzer) validate(syncs, data *clusterSet) error {
	if syncs.clusters.Len() != syncCategoryCount {
		return fmt.Errorf("expected %d sync pulse categories, found %d",
			syncCategoryCount, syncs.clusters.Len())
	}
	syncA, syncB := syncs.clusters.At(0), syncs.clusters.At(1)
	if syncA.Level == syncB.Level {
		return fmt.Errorf("sync pulses have the same level (%s); not a two-pulse sync", syncA.Level)
	}
	if syncB.MeanUS < minSyncRatio*syncA.MeanUS {
		return fmt.Errorf("sync pulse ratio %d:%d is under the required %d:1",
			syncB.MeanUS, syncA.MeanUS, minSyncRatio)
	}
	if n := data.clusters.Len(); n != dataCategoryCount {
		return fmt.Errorf("expected %d data pulse categories, found %d (overflowed: %d)",
			dataCategoryCount, n, data.clusters.OverflowCount())
	}
	return nil
}

// propose assigns the four data clusters to the (d0A, d0B, d1A, d1B)
// roles and quantizes all means to the clock. Data-0 is short-then-
// long, data-1 long-then-short; A pulses share the sync A level.
func (a *Analyzer) propose(syncs, data *clusterSet) (*Proposal, error) {
	syncA := syncs.clusters.At(0)
	inverse := syncA.Level == LevelLow

	data.sortByLevelThenDuration()
	d := data.all() // lowShort, lowLong, highShort, highLong
	lowShort, lowLong := d[0], d[1]
	highShort, highLong := d[2], d[3]
	if lowShort.Level != LevelLow || highShort.Level != LevelHigh ||
		lowLong.Level != LevelLow || highLong.Level != LevelHigh {
		return nil, fmt.Errorf("data pulse categories are not two per level")
	}
	if 100*lowLong.MeanUS < minDataRatioPct*lowShort.MeanUS ||
		100*highLong.MeanUS < minDataRatioPct*highShort.MeanUS {
		return nil, fmt.Errorf("data pulse pairs are not distinct enough (need %d%% long/short ratio)",
			minDataRatioPct)
	}

	var d0A, d0B, d1A, d1B Cluster
	if inverse {
		d0A, d0B = lowShort, highLong
		d1A, d1B = lowLong, highShort
	} else {
		d0A, d0B = highShort, lowLong
		d1A, d1B = highLong, lowShort
	}

	clock := a.ClockUS
	if clock == 0 {
		clock = DefaultAnalyzerClockUS
	}
	round := func(meanUS uint32) uint32 {
		return (meanUS + clock/2) / clock
	}

	proposal := &Proposal{
		Def: ProtocolDef{
			ClockUS:      clock,
			TolerancePct: a.TolerancePct,
			SyncA:        round(syncA.MeanUS),
			SyncB:        round(syncs.clusters.At(1).MeanUS),
			Data0A:       round(d0A.MeanUS),
			Data0B:       round(d0B.MeanUS),
			Data1A:       round(d1A.MeanUS),
			Data1B:       round(d1B.MeanUS),
			Inverse:      inverse,
		},
		SyncClusters: []Cluster{syncA, syncs.clusters.At(1)},
		DataClusters: []Cluster{d0A, d0B, d1A, d1B},
	}
	return proposal, nil
}
