package metrics

import (
	"testing"

	"github.com/caproto/caproto-sub000/ca"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestCollectorObservesCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.ObserveSent(ca.CMD_SEARCH)
	c.ObserveSent(ca.CMD_SEARCH)
	c.ObserveReceived(ca.CMD_VERSION)
	c.ObserveNeedData()
	c.SetActiveCircuits(3)
	c.SetActiveChannels(5)
	c.ObserveDatagram("tx")

	require.Equal(t, float64(2), testutil.ToFloat64(c.sent.WithLabelValues(ca.CMD_SEARCH.String())))
	require.Equal(t, float64(1), testutil.ToFloat64(c.received.WithLabelValues(ca.CMD_VERSION.String())))
	require.Equal(t, float64(1), testutil.ToFloat64(c.needData))
	require.Equal(t, float64(3), testutil.ToFloat64(c.circuits))
	require.Equal(t, float64(5), testutil.ToFloat64(c.channels))
	require.Equal(t, float64(1), testutil.ToFloat64(c.datagrams.WithLabelValues("tx")))
}

func TestNilCollectorIsANoop(t *testing.T) {
	var c *Collector
	require.NotPanics(t, func() {
		c.ObserveSent(ca.CMD_SEARCH)
		c.ObserveReceived(ca.CMD_VERSION)
		c.ObserveNeedData()
		c.SetActiveCircuits(1)
		c.SetActiveChannels(1)
		c.ObserveDatagram("rx")
	})
}
