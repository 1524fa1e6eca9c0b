package tsp

import "sync/atomic"

// ConnectionMetrics contains atomic metrics for an instrument connection.
// Metrics can be used as the value of a prometheus CounterFunc or GaugeFunc.
type ConnectionMetrics struct {
	// WriteCount indicates the number of command lines written.
	WriteCount atomic.Uint64
	// QueryCount indicates the number of query round-trips performed.
	QueryCount atomic.Uint64
	// TransportErrCount indicates the number of transport errors observed.
	TransportErrCount atomic.Uint64
	// SweepCount indicates the number of completed voltage sweeps.
	SweepCount atomic.Uint64
}

func (m *ConnectionMetrics) incWriteCount() {
	m.WriteCount.Add(1)
}

func (m *ConnectionMetrics) incQueryCount() {
	m.QueryCount.Add(1)
}

func (m *ConnectionMetrics) incTransportErrCount() {
	m.TransportErrCount.Add(1)
}

func (m *ConnectionMetrics) incSweepCount() {
	m.SweepCount.Add(1)
}
