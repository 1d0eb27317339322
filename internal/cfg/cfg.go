// Package cfg loads the instrumentation's control-flow successor map: for
// each edge id, the list of edge ids that can follow it. The map is
// produced once by the instrumentation pass and is read-only thereafter.
package cfg

import (
	"fmt"
	"os"

	"github.com/tidwall/gjson"
)

// Graph is the read-only CFG successor map, indexed by edge id.
type Graph struct {
	successors [][]int
}

// Successors returns the successor edge ids of edge, or nil if edge is
// out of range or has no recorded successors.
func (g *Graph) Successors(edge int) []int {
	if edge < 0 || edge >= len(g.successors) {
		return nil
	}
	return g.successors[edge]
}

// Size returns the number of edges the graph was built for.
func (g *Graph) Size() int { return len(g.successors) }

// Load reads the CFG metadata file at path. The format is a flat JSON
// array, one entry per edge id in ascending order, each entry the array
// of that edge's successor edge ids:
//
//	[[1,2],[3],[],[4,5,6], ...]
//
// gjson is used instead of a struct-tagged unmarshal because the file is
// walked once, top to bottom, with no need to materialize named fields —
// the same lean parse-then-walk idiom the state/scenario packages used
// for arbitrary response JSON.
func Load(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cfg: read %s: %w", path, err)
	}
	root := gjson.ParseBytes(data)
	if !root.IsArray() {
		return nil, fmt.Errorf("cfg: %s: top level is not an array", path)
	}

	entries := root.Array()
	g := &Graph{successors: make([][]int, len(entries))}
	for i, entry := range entries {
		if !entry.IsArray() {
			return nil, fmt.Errorf("cfg: %s: edge %d entry is not an array", path, i)
		}
		succ := entry.Array()
		ids := make([]int, len(succ))
		for j, s := range succ {
			ids[j] = int(s.Int())
		}
		g.successors[i] = ids
	}
	return g, nil
}

// IsFrontierInner reports whether edge is a frontier edge using the
// "inner" definition (virgin && !trace): more than one successor, and at
// least one successor not hit by the current execution's trace bits.
func (g *Graph) IsFrontierInner(edge int, virgin, trace []byte) bool {
	succ := g.Successors(edge)
	if len(succ) <= 1 {
		return false
	}
	for _, s := range succ {
		if s < 0 || s >= len(virgin) {
			continue
		}
		if virgin[s] == 0xff && trace[s] == 0 {
			return true
		}
	}
	return false
}

// IsFrontierOuter reports whether edge is a frontier edge using the
// "outer" definition (virgin alone): more than one successor, and at
// least one successor never hit globally.
func (g *Graph) IsFrontierOuter(edge int, virgin []byte) bool {
	succ := g.Successors(edge)
	if len(succ) <= 1 {
		return false
	}
	for _, s := range succ {
		if s < 0 || s >= len(virgin) {
			continue
		}
		if virgin[s] == 0xff {
			return true
		}
	}
	return false
}
