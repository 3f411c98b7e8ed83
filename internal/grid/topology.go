package grid

const (
	// UnknownBrowser labels nodes whose first slot declares no browser.
	UnknownBrowser = "unknown"

	deploymentPrefix = "selenium-node-"
)

// Topology is a point-in-time view of the grid, built by one refresh cycle
// and discarded after aggregation.
type Topology struct {
	TotalSlots       int
	NodeCount        int
	SessionCount     int
	SessionQueueSize int
	Nodes            []Node
}

// Node summarizes one registered grid node.
type Node struct {
	ID           string
	Browser      string
	Deployment   string
	SlotCount    int
	SessionCount int
}

// DeploymentName returns the deployment a node offering browser runs in.
func DeploymentName(browser string) string {
	return deploymentPrefix + browser
}

func newNode(id, browser string, slots, sessions int) Node {
	if browser == "" {
		browser = UnknownBrowser
	}

	return Node{
		ID:           id,
		Browser:      browser,
		Deployment:   DeploymentName(browser),
		SlotCount:    slots,
		SessionCount: sessions,
	}
}

// newTopology derives the grid totals from the node list.
func newTopology(nodes []Node, queueSize int) *Topology {
	t := &Topology{
		NodeCount:        len(nodes),
		SessionQueueSize: queueSize,
		Nodes:            nodes,
	}
	for _, n := range nodes {
		t.TotalSlots += n.SlotCount
		t.SessionCount += n.SessionCount
	}

	return t
}

// GroupByBrowser merges nodes that offer the same browser into a single
// node, keeping the order in which each browser first appears. Grid totals
// are carried over unchanged.
func GroupByBrowser(t *Topology) *Topology {
	if t == nil {
		return nil
	}

	index := make(map[string]int, len(t.Nodes))
	merged := make([]Node, 0, len(t.Nodes))

	for _, n := range t.Nodes {
		i, ok := index[n.Browser]
		if !ok {
			index[n.Browser] = len(merged)
			merged = append(merged, Node{
				ID:           n.Deployment,
				Browser:      n.Browser,
				Deployment:   n.Deployment,
				SlotCount:    n.SlotCount,
				SessionCount: n.SessionCount,
			})
			continue
		}
		merged[i].SlotCount += n.SlotCount
		merged[i].SessionCount += n.SessionCount
	}

	return &Topology{
		TotalSlots:       t.TotalSlots,
		NodeCount:        t.NodeCount,
		SessionCount:     t.SessionCount,
		SessionQueueSize: t.SessionQueueSize,
		Nodes:            merged,
	}
}
