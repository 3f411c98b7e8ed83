package metrics

import "github.com/gmichels/selenium-grid-exporter/internal/grid"

// GridFamilies and NodeFamilies list the published families in output order.
var (
	GridFamilies = []string{GridTotalSlots, GridNodeCount, GridSessionCount, GridSessionQueueSize}
	NodeFamilies = []string{NodeSlotCount, NodeSessionCount, NodeUsagePercent}
)

// Aggregate flattens a topology into samples: the four grid-level gauges,
// then each per-node family for every node in topology order. The result
// always holds 4 + 3*len(t.Nodes) samples.
func Aggregate(t *grid.Topology) []Sample {
	if t == nil {
		t = &grid.Topology{}
	}

	samples := make([]Sample, 0, len(GridFamilies)+len(NodeFamilies)*len(t.Nodes))
	samples = append(samples,
		Sample{Name: GridTotalSlots, Value: float64(t.TotalSlots)},
		Sample{Name: GridNodeCount, Value: float64(t.NodeCount)},
		Sample{Name: GridSessionCount, Value: float64(t.SessionCount)},
		Sample{Name: GridSessionQueueSize, Value: float64(t.SessionQueueSize)},
	)

	for _, n := range t.Nodes {
		samples = append(samples, nodeSample(NodeSlotCount, n, float64(n.SlotCount)))
	}
	for _, n := range t.Nodes {
		samples = append(samples, nodeSample(NodeSessionCount, n, float64(n.SessionCount)))
	}
	for _, n := range t.Nodes {
		samples = append(samples, nodeSample(NodeUsagePercent, n, UsagePercent(n.SessionCount, n.SlotCount)))
	}

	return samples
}

// UsagePercent is sessions/slots*100, or 0 for a node without slots.
func UsagePercent(sessions, slots int) float64 {
	if slots <= 0 {
		return 0
	}

	return float64(sessions) / float64(slots) * 100
}

func nodeSample(name string, n grid.Node, value float64) Sample {
	return Sample{
		Name: name,
		Labels: []Label{
			{Name: LabelDeployment, Value: n.Deployment},
			{Name: LabelNode, Value: n.Browser},
		},
		Value: value,
	}
}
