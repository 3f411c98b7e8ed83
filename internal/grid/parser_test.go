package grid_test

import (
	"testing"

	"github.com/gmichels/selenium-grid-exporter/internal/grid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoNodeStatus = `{
  "value": {
    "ready": true,
    "message": "Selenium Grid ready.",
    "nodes": [
      {
        "id": "a1b2",
        "uri": "http://10.0.0.5:5555",
        "availability": "UP",
        "slots": [
          {"session": null, "stereotype": {"browserName": "chrome", "platformName": "LINUX"}},
          {"session": null, "stereotype": {"browserName": "chrome"}},
          {"session": null, "stereotype": {"browserName": "chrome"}}
        ]
      },
      {
        "id": "c3d4",
        "slots": [
          {"session": null, "stereotype": {"browserName": "firefox"}}
        ]
      }
    ]
  }
}`

func TestParseStatusEmptyGrid(t *testing.T) {
	topo, err := grid.ParseStatus([]byte(`{"value": {"ready": true, "nodes": []}}`))
	require.NoError(t, err)

	assert.Equal(t, 0, topo.TotalSlots)
	assert.Equal(t, 0, topo.NodeCount)
	assert.Equal(t, 0, topo.SessionCount)
	assert.Equal(t, 0, topo.SessionQueueSize)
	assert.Empty(t, topo.Nodes)
}

func TestParseStatusTwoNodes(t *testing.T) {
	topo, err := grid.ParseStatus([]byte(twoNodeStatus))
	require.NoError(t, err)

	assert.Equal(t, 4, topo.TotalSlots)
	assert.Equal(t, 2, topo.NodeCount)
	assert.Equal(t, 0, topo.SessionCount)
	require.Len(t, topo.Nodes, 2)

	assert.Equal(t, grid.Node{
		ID: "a1b2", Browser: "chrome", Deployment: "selenium-node-chrome", SlotCount: 3, SessionCount: 0,
	}, topo.Nodes[0])
	assert.Equal(t, grid.Node{
		ID: "c3d4", Browser: "firefox", Deployment: "selenium-node-firefox", SlotCount: 1, SessionCount: 0,
	}, topo.Nodes[1])
}

func TestParseStatusCountsSessions(t *testing.T) {
	raw := `{"value": {"nodes": [{"id": "n1", "slots": [
		{"session": {"sessionId": "s-1", "capabilities": {}}, "stereotype": {"browserName": "chrome"}},
		{"session": null, "stereotype": {"browserName": "chrome"}}
	]}]}}`

	topo, err := grid.ParseStatus([]byte(raw))
	require.NoError(t, err)

	require.Len(t, topo.Nodes, 1)
	assert.Equal(t, 2, topo.Nodes[0].SlotCount)
	assert.Equal(t, 1, topo.Nodes[0].SessionCount)
	assert.Equal(t, 1, topo.SessionCount)
	assert.Equal(t, 2, topo.TotalSlots)
}

func TestParseStatusTolerance(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		nodes int
		check func(t *testing.T, topo *grid.Topology)
	}{
		{
			name: "missing value",
			raw:  `{}`,
		},
		{
			name: "null value",
			raw:  `{"value": null}`,
		},
		{
			name: "missing nodes",
			raw:  `{"value": {"ready": false}}`,
		},
		{
			name:  "node without slots",
			raw:   `{"value": {"nodes": [{"id": "empty"}]}}`,
			nodes: 1,
			check: func(t *testing.T, topo *grid.Topology) {
				assert.Equal(t, grid.UnknownBrowser, topo.Nodes[0].Browser)
				assert.Equal(t, "selenium-node-unknown", topo.Nodes[0].Deployment)
				assert.Equal(t, 0, topo.Nodes[0].SlotCount)
			},
		},
		{
			name:  "slot without stereotype",
			raw:   `{"value": {"nodes": [{"id": "n", "slots": [{"session": null}]}]}}`,
			nodes: 1,
			check: func(t *testing.T, topo *grid.Topology) {
				assert.Equal(t, grid.UnknownBrowser, topo.Nodes[0].Browser)
				assert.Equal(t, 1, topo.Nodes[0].SlotCount)
			},
		},
		{
			name:  "slot without session key",
			raw:   `{"value": {"nodes": [{"slots": [{"stereotype": {"browserName": "MicrosoftEdge"}}]}]}}`,
			nodes: 1,
			check: func(t *testing.T, topo *grid.Topology) {
				assert.Equal(t, "MicrosoftEdge", topo.Nodes[0].Browser)
				assert.Equal(t, 0, topo.Nodes[0].SessionCount)
			},
		},
		{
			name: "unconsumed fields with unexpected types",
			raw: `{"value": {"ready": "true", "message": {"text": "up"}, "nodes": [
				{"id": "n1", "uri": 4444, "availability": {"state": "UP"},
				 "slots": [{"session": null, "stereotype": {"browserName": "chrome"}}]}
			]}}`,
			nodes: 1,
			check: func(t *testing.T, topo *grid.Topology) {
				assert.Equal(t, "chrome", topo.Nodes[0].Browser)
				assert.Equal(t, 1, topo.Nodes[0].SlotCount)
			},
		},
		{
			name: "browser from first slot only",
			raw: `{"value": {"nodes": [{"slots": [
				{"stereotype": {"browserName": "firefox"}},
				{"stereotype": {"browserName": "chrome"}}
			]}]}}`,
			nodes: 1,
			check: func(t *testing.T, topo *grid.Topology) {
				assert.Equal(t, "firefox", topo.Nodes[0].Browser)
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			topo, err := grid.ParseStatus([]byte(tc.raw))
			require.NoError(t, err)
			require.Len(t, topo.Nodes, tc.nodes)
			assert.Equal(t, tc.nodes, topo.NodeCount)
			if tc.check != nil {
				tc.check(t, topo)
			}
		})
	}
}

func TestParseStatusSessionQueue(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want int
	}{
		{"number", `{"value": {"sessionQueue": 3}}`, 3},
		{"float", `{"value": {"sessionQueue": 2.0}}`, 2},
		{"exponent", `{"value": {"sessionQueue": 1e1}}`, 10},
		{"negative", `{"value": {"sessionQueue": -1}}`, 0},
		{"string", `{"value": {"sessionQueue": "3"}}`, 0},
		{"list", `{"value": {"sessionQueue": [{"browserName": "chrome"}, {"browserName": "firefox"}]}}`, 2},
		{"null", `{"value": {"sessionQueue": null}}`, 0},
		{"object", `{"value": {"sessionQueue": {"size": 4}}}`, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			topo, err := grid.ParseStatus([]byte(tc.raw))
			require.NoError(t, err)
			assert.Equal(t, tc.want, topo.SessionQueueSize)
		})
	}
}

func TestParseStatusErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", `<html>Bad Gateway</html>`},
		{"truncated", `{"value": {"nodes": [`},
		{"empty", ``},
		{"array", `[1, 2, 3]`},
		{"string", `"ready"`},
		{"null", `null`},
		{"value not object", `{"value": [1]}`},
		{"nodes wrong type", `{"value": {"nodes": "many"}}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			topo, err := grid.ParseStatus([]byte(tc.raw))
			require.Error(t, err)
			assert.Nil(t, topo)
			assert.True(t, grid.IsParseError(err), "got %v", err)
			assert.False(t, grid.IsFetchError(err))
		})
	}
}

func TestParseGraphQL(t *testing.T) {
	raw := `{"data": {
		"grid": {"totalSlots": 4, "nodeCount": 2, "sessionCount": 1, "sessionQueueSize": 5},
		"nodesInfo": {"nodes": [
			{"id": "n1", "slotCount": 3, "sessionCount": 1,
			 "stereotypes": "[{\"slots\": 3, \"stereotype\": {\"browserName\": \"chrome\"}}]"},
			{"id": "n2", "slotCount": 1, "sessionCount": 0, "stereotypes": "not json"}
		]}
	}}`

	topo, err := grid.ParseGraphQL([]byte(raw))
	require.NoError(t, err)

	assert.Equal(t, 4, topo.TotalSlots)
	assert.Equal(t, 2, topo.NodeCount)
	assert.Equal(t, 1, topo.SessionCount)
	assert.Equal(t, 5, topo.SessionQueueSize)
	require.Len(t, topo.Nodes, 2)
	assert.Equal(t, grid.Node{ID: "n1", Browser: "chrome", Deployment: "selenium-node-chrome", SlotCount: 3, SessionCount: 1}, topo.Nodes[0])
	assert.Equal(t, grid.UnknownBrowser, topo.Nodes[1].Browser)
}

func TestParseGraphQLDerivesTotalsWithoutGrid(t *testing.T) {
	raw := `{"data": {"nodesInfo": {"nodes": [
		{"id": "n1", "slotCount": 2, "sessionCount": 2, "stereotypes": "[{\"stereotype\": {\"browserName\": \"firefox\"}}]"}
	]}}}`

	topo, err := grid.ParseGraphQL([]byte(raw))
	require.NoError(t, err)

	assert.Equal(t, 2, topo.TotalSlots)
	assert.Equal(t, 1, topo.NodeCount)
	assert.Equal(t, 2, topo.SessionCount)
}

func TestParseGraphQLErrors(t *testing.T) {
	_, err := grid.ParseGraphQL([]byte(`{"errors": [{"message": "field 'foo' undefined"}]}`))
	require.Error(t, err)
	assert.True(t, grid.IsParseError(err))
	assert.Contains(t, err.Error(), "field 'foo' undefined")

	_, err = grid.ParseGraphQL([]byte(`[]`))
	require.Error(t, err)
	assert.True(t, grid.IsParseError(err))
}
