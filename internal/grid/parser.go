package grid

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
)

var jsonNull = []byte("null")

// Only consumed fields are declared; anything else in the payload is ignored.
type statusNode struct {
	ID    string       `json:"id"`
	Slots []statusSlot `json:"slots"`
}

type statusSlot struct {
	Session    json.RawMessage `json:"session"`
	Stereotype struct {
		BrowserName string `json:"browserName"`
	} `json:"stereotype"`
}

type statusValue struct {
	Nodes        []statusNode    `json:"nodes"`
	SessionQueue json.RawMessage `json:"sessionQueue"`
}

// ParseStatus decodes a grid /status document. Missing optional fields are
// read as zero; only malformed JSON or a payload whose top level (or whose
// "value") is not an object is rejected.
func ParseStatus(raw []byte) (*Topology, error) {
	top, err := decodeObject(raw)
	if err != nil {
		return nil, err
	}

	var value statusValue
	if rawValue, ok := top["value"]; ok && !isNull(rawValue) {
		if !isObject(rawValue) {
			return nil, parseErrorf("status field %q is not an object", "value")
		}
		if err := json.Unmarshal(rawValue, &value); err != nil {
			return nil, parseError(err)
		}
	}

	nodes := make([]Node, 0, len(value.Nodes))
	for _, n := range value.Nodes {
		browser := ""
		if len(n.Slots) > 0 {
			browser = n.Slots[0].Stereotype.BrowserName
		}

		sessions := 0
		for _, s := range n.Slots {
			if len(s.Session) > 0 && !isNull(s.Session) {
				sessions++
			}
		}

		nodes = append(nodes, newNode(n.ID, browser, len(n.Slots), sessions))
	}

	return newTopology(nodes, queueSize(value.SessionQueue)), nil
}

// queueSize accepts either a number or the list of queued requests.
// Fractional or negative counts are truncated and clamped at zero.
func queueSize(raw json.RawMessage) int {
	if len(raw) == 0 || isNull(raw) {
		return 0
	}

	var size float64
	if err := json.Unmarshal(raw, &size); err == nil {
		if size < 1 || math.IsNaN(size) {
			return 0
		}
		if size > math.MaxInt32 {
			return math.MaxInt32
		}
		return int(size)
	}

	var pending []json.RawMessage
	if err := json.Unmarshal(raw, &pending); err == nil {
		return len(pending)
	}

	return 0
}

// GraphQLQuery asks the grid for its totals and a per-node summary.
const GraphQLQuery = "{ grid {totalSlots, nodeCount, sessionCount, sessionQueueSize}," +
	" nodesInfo { nodes { id, slotCount, sessionCount, stereotypes } } }"

type graphQLResponse struct {
	Data *struct {
		Grid *struct {
			TotalSlots       int `json:"totalSlots"`
			NodeCount        int `json:"nodeCount"`
			SessionCount     int `json:"sessionCount"`
			SessionQueueSize int `json:"sessionQueueSize"`
		} `json:"grid"`
		NodesInfo *struct {
			Nodes []graphQLNode `json:"nodes"`
		} `json:"nodesInfo"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

type graphQLNode struct {
	ID           string `json:"id"`
	SlotCount    int    `json:"slotCount"`
	SessionCount int    `json:"sessionCount"`
	Stereotypes  string `json:"stereotypes"`
}

type stereotype struct {
	Slots      int `json:"slots"`
	Stereotype struct {
		BrowserName string `json:"browserName"`
	} `json:"stereotype"`
}

// ParseGraphQL decodes the response to GraphQLQuery. Grid totals come from
// the grid itself when reported, otherwise they are derived from the nodes.
func ParseGraphQL(raw []byte) (*Topology, error) {
	if _, err := decodeObject(raw); err != nil {
		return nil, err
	}

	var resp graphQLResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, parseError(err)
	}

	if resp.Data == nil && len(resp.Errors) > 0 {
		msgs := make([]string, 0, len(resp.Errors))
		for _, e := range resp.Errors {
			msgs = append(msgs, e.Message)
		}
		return nil, parseErrorf("graphql errors: %s", strings.Join(msgs, "; "))
	}

	var nodes []Node
	if resp.Data != nil && resp.Data.NodesInfo != nil {
		nodes = make([]Node, 0, len(resp.Data.NodesInfo.Nodes))
		for _, n := range resp.Data.NodesInfo.Nodes {
			nodes = append(nodes, newNode(n.ID, stereotypeBrowser(n.Stereotypes), n.SlotCount, n.SessionCount))
		}
	}

	t := newTopology(nodes, 0)
	if resp.Data != nil && resp.Data.Grid != nil {
		g := resp.Data.Grid
		t.TotalSlots = g.TotalSlots
		t.NodeCount = g.NodeCount
		t.SessionCount = g.SessionCount
		t.SessionQueueSize = g.SessionQueueSize
	}

	return t, nil
}

// stereotypeBrowser reads the browser from the JSON-encoded stereotype list
// the grid reports per node.
func stereotypeBrowser(encoded string) string {
	var list []stereotype
	if err := json.Unmarshal([]byte(encoded), &list); err != nil || len(list) == 0 {
		return UnknownBrowser
	}

	return list[0].Stereotype.BrowserName
}

func decodeObject(raw []byte) (map[string]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if !isObject(trimmed) {
		if !json.Valid(trimmed) {
			return nil, parseErrorf("payload is not valid JSON")
		}
		return nil, parseErrorf("payload is not a JSON object")
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &top); err != nil {
		return nil, parseError(err)
	}

	return top, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), jsonNull)
}

func isObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}
