package metrics

// Metric families published for the grid.
const (
	GridTotalSlots       = "selenium_grid_total_slots"
	GridNodeCount        = "selenium_grid_node_count"
	GridSessionCount     = "selenium_grid_session_count"
	GridSessionQueueSize = "selenium_grid_session_queue_size"
	NodeSlotCount        = "selenium_node_slot_count"
	NodeSessionCount     = "selenium_node_session_count"
	NodeUsagePercent     = "selenium_node_usage_percent"
)

// Label keys attached to per-node families.
const (
	LabelDeployment = "deployment"
	LabelNode       = "node"
)

var help = map[string]string{
	GridTotalSlots:       "Total number of slots in the grid",
	GridNodeCount:        "Number of nodes in grid",
	GridSessionCount:     "Number of running sessions",
	GridSessionQueueSize: "Number of queued sessions",
	NodeSlotCount:        "Total number of node slots",
	NodeSessionCount:     "Total number of node sessions",
	NodeUsagePercent:     "% of used node slots",
}

// Help returns the static description of a metric family.
func Help(name string) string {
	return help[name]
}

// Label is one key/value pair of a sample's label set.
type Label struct {
	Name  string
	Value string
}

// Sample is a single gauge reading. Samples have no identity beyond their
// name and labels.
type Sample struct {
	Name   string
	Labels []Label
	Value  float64
}

func (s Sample) clone() Sample {
	if s.Labels != nil {
		s.Labels = append([]Label(nil), s.Labels...)
	}
	return s
}
