package grid_test

import (
	"testing"

	"github.com/gmichels/selenium-grid-exporter/internal/grid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeploymentName(t *testing.T) {
	assert.Equal(t, "selenium-node-chrome", grid.DeploymentName("chrome"))
}

func TestGroupByBrowser(t *testing.T) {
	topo := &grid.Topology{
		TotalSlots:       7,
		NodeCount:        4,
		SessionCount:     3,
		SessionQueueSize: 1,
		Nodes: []grid.Node{
			{ID: "a", Browser: "chrome", Deployment: "selenium-node-chrome", SlotCount: 2, SessionCount: 1},
			{ID: "b", Browser: "firefox", Deployment: "selenium-node-firefox", SlotCount: 1, SessionCount: 0},
			{ID: "c", Browser: "chrome", Deployment: "selenium-node-chrome", SlotCount: 3, SessionCount: 2},
			{ID: "d", Browser: "firefox", Deployment: "selenium-node-firefox", SlotCount: 1, SessionCount: 0},
		},
	}

	grouped := grid.GroupByBrowser(topo)
	require.Len(t, grouped.Nodes, 2)

	assert.Equal(t, "chrome", grouped.Nodes[0].Browser)
	assert.Equal(t, 5, grouped.Nodes[0].SlotCount)
	assert.Equal(t, 3, grouped.Nodes[0].SessionCount)
	assert.Equal(t, "firefox", grouped.Nodes[1].Browser)
	assert.Equal(t, 2, grouped.Nodes[1].SlotCount)

	assert.Equal(t, 7, grouped.TotalSlots)
	assert.Equal(t, 4, grouped.NodeCount, "grid totals are carried over")
	assert.Equal(t, 1, grouped.SessionQueueSize)
	assert.Len(t, topo.Nodes, 4, "input is left untouched")
}

func TestGroupByBrowserNil(t *testing.T) {
	assert.Nil(t, grid.GroupByBrowser(nil))
}
