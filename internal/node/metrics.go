package node

import (
	"context"

	"github.com/noobcash/noobcash-go/internal/metrics"
)

// GatherMetrics implements spec.md §4.8's bootstrap-only
// GET /metrics/total: pull every peer's own metrics and combine them
// with this node's into network-wide totals and averages.
func (n *Node) GatherMetrics(ctx context.Context) metrics.Snapshot {
	_, peers := n.selfAndPeers()

	var remote []metrics.Snapshot
	for _, p := range peers {
		n.log.Info("gathering metrics", "from", p.Address)

		var snap metrics.Snapshot
		if err := n.peers.Get(ctx, p.Address+"/metrics/", &snap); err != nil {
			n.log.Error("gather metrics failed", "from", p.Address, "error", err)
			continue
		}
		remote = append(remote, snap)
	}

	return metrics.Aggregate(n.metrics.Snapshot(), remote)
}

// RecordDriverMetrics records a completed transaction-driver run's
// counters, per spec.md §4.7.
func (n *Node) RecordDriverMetrics(successful, failed int, throughput float64) {
	for i := 0; i < successful; i++ {
		n.metrics.RecordTransaction(true)
	}
	for i := 0; i < failed; i++ {
		n.metrics.RecordTransaction(false)
	}
	n.metrics.SetThroughput(throughput)
}
