/*
Copyright SUSE LLC.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package resolver

import (
	"fmt"
	"sort"

	"github.com/pkg/errors"

	pkg "github.com/stonefir/opam/internal/pkg"
)

// Kind is the category of a plan action.
type Kind int

const (
	Install Kind = iota
	Upgrade
	Downgrade
	Recompile
	Delete
)

func (k Kind) String() string {
	switch k {
	case Install:
		return "install"
	case Upgrade:
		return "upgrade"
	case Downgrade:
		return "downgrade"
	case Recompile:
		return "recompile"
	case Delete:
		return "remove"
	}
	return "unknown"
}

// Action is a plan vertex. Old is nil for Install; New is nil for Delete.
// A Recompile action references the same (name, version) in both universes:
// the package stays installed but a dependency of it changed.
type Action struct {
	Kind Kind
	Old  *pkg.Pkg
	New  *pkg.Pkg
}

// Pkg returns the package the action is keyed by: the target-universe
// package, or the current one for deletions.
func (a *Action) Pkg() *pkg.Pkg {
	if a.New != nil {
		return a.New
	}
	return a.Old
}

func (a *Action) String() string {
	switch a.Kind {
	case Install:
		return fmt.Sprintf("install %s", a.New)
	case Upgrade:
		return fmt.Sprintf("upgrade %s to %s", a.Old, a.New.Version)
	case Downgrade:
		return fmt.Sprintf("downgrade %s to %s", a.Old, a.New.Version)
	case Recompile:
		return fmt.Sprintf("recompile %s", a.Pkg())
	case Delete:
		return fmt.Sprintf("remove %s", a.Old)
	}
	return "unknown action"
}

// classifyChange turns a raw change into its external category, using the
// version comparator for upgrade vs downgrade. A same-version change is a
// recompile (reinstall).
func classifyChange(old, new *pkg.Pkg) *Action {
	if old == nil {
		return &Action{Kind: Install, New: new}
	}
	switch cmp := pkg.CompareVersions(old.Version, new.Version); {
	case cmp < 0:
		return &Action{Kind: Upgrade, Old: old, New: new}
	case cmp > 0:
		return &Action{Kind: Downgrade, Old: old, New: new}
	default:
		return &Action{Kind: Recompile, Old: old, New: new}
	}
}

// ActionGraph is the DAG of plan actions, built as an arena: a vector of
// vertices plus edge sets keyed by vertex id. It is mutated only during plan
// construction and published immutable with the plan.
type ActionGraph struct {
	vertices []*Action
	index    map[string]int // fingerprint of Pkg() -> vertex id
	succs    map[int]map[int]bool
	preds    map[int]map[int]bool
}

func NewActionGraph() *ActionGraph {
	return &ActionGraph{
		index: make(map[string]int),
		succs: make(map[int]map[int]bool),
		preds: make(map[int]map[int]bool),
	}
}

// AddVertex adds an action keyed by its package fingerprint. Exactly one
// action per affected package: adding a second action for the same package
// returns the existing vertex untouched.
func (g *ActionGraph) AddVertex(a *Action) int {
	fp := a.Pkg().GetFingerPrint()
	if id, ok := g.index[fp]; ok {
		return id
	}
	id := len(g.vertices)
	g.vertices = append(g.vertices, a)
	g.index[fp] = id
	g.succs[id] = make(map[int]bool)
	g.preds[id] = make(map[int]bool)
	return id
}

// AddEdge links two existing vertices by package fingerprint: the
// predecessor must complete before the successor. Unknown fingerprints are
// ignored.
func (g *ActionGraph) AddEdge(fromFP, toFP string) {
	from, okF := g.index[fromFP]
	to, okT := g.index[toFP]
	if !okF || !okT || from == to {
		return
	}
	g.succs[from][to] = true
	g.preds[to][from] = true
}

// Get returns the action for a package fingerprint, or nil.
func (g *ActionGraph) Get(fp string) *Action {
	id, ok := g.index[fp]
	if !ok {
		return nil
	}
	return g.vertices[id]
}

func (g *ActionGraph) Len() int {
	return len(g.vertices)
}

func (g *ActionGraph) sortedIDs() []int {
	fps := make([]string, 0, len(g.index))
	for fp := range g.index {
		fps = append(fps, fp)
	}
	sort.Strings(fps)
	ids := make([]int, 0, len(fps))
	for _, fp := range fps {
		ids = append(ids, g.index[fp])
	}
	return ids
}

// Actions returns the vertices ordered by package fingerprint.
func (g *ActionGraph) Actions() []*Action {
	acts := make([]*Action, 0, len(g.vertices))
	for _, id := range g.sortedIDs() {
		acts = append(acts, g.vertices[id])
	}
	return acts
}

// Successors returns the actions that must wait for the action of fp.
func (g *ActionGraph) Successors(fp string) []*Action {
	id, ok := g.index[fp]
	if !ok {
		return nil
	}
	succFPs := []string{}
	for s := range g.succs[id] {
		succFPs = append(succFPs, g.vertices[s].Pkg().GetFingerPrint())
	}
	sort.Strings(succFPs)
	acts := make([]*Action, 0, len(succFPs))
	for _, sfp := range succFPs {
		acts = append(acts, g.vertices[g.index[sfp]])
	}
	return acts
}

// Edges returns every (predecessor, successor) pair, deterministically
// ordered.
func (g *ActionGraph) Edges() [][2]*Action {
	edges := [][2]*Action{}
	for _, id := range g.sortedIDs() {
		from := g.vertices[id]
		for _, to := range g.Successors(from.Pkg().GetFingerPrint()) {
			edges = append(edges, [2]*Action{from, to})
		}
	}
	return edges
}

// TopoOrder returns the actions in an order respecting every edge, erroring
// on a cycle. A cycle indicates a bug: the target dependency graph is
// acyclic after transitive reduction, and the action graph inherits its
// edges.
func (g *ActionGraph) TopoOrder() ([]*Action, error) {
	indegree := make(map[int]int, len(g.vertices))
	for id := range g.vertices {
		indegree[id] = len(g.preds[id])
	}
	ready := []int{}
	for _, id := range g.sortedIDs() {
		if indegree[id] == 0 {
			ready = append(ready, id)
		}
	}

	order := []*Action{}
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		order = append(order, g.vertices[id])
		released := []int{}
		for s := range g.succs[id] {
			indegree[s]--
			if indegree[s] == 0 {
				released = append(released, s)
			}
		}
		sort.Ints(released)
		ready = append(ready, released...)
	}
	if len(order) != len(g.vertices) {
		return nil, errors.Errorf("action graph has a cycle among %d vertices",
			len(g.vertices)-len(order))
	}
	return order, nil
}
