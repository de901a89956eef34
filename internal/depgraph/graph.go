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

// Package depgraph implements the dependency graphs the resolver plans over:
// a vertex per package, an edge a -> b when a clause of a's dependencies can
// be satisfied by b. All traversals are deterministic: ties are broken by
// package fingerprint.
package depgraph

import (
	"sort"

	"github.com/pkg/errors"

	pkg "github.com/stonefir/opam/internal/pkg"
)

type Graph struct {
	vertices map[string]*pkg.Pkg
	succs    map[string]map[string]bool
	preds    map[string]map[string]bool
}

func New() *Graph {
	return &Graph{
		vertices: make(map[string]*pkg.Pkg),
		succs:    make(map[string]map[string]bool),
		preds:    make(map[string]map[string]bool),
	}
}

func (g *Graph) AddVertex(p *pkg.Pkg) {
	fp := p.GetFingerPrint()
	if _, ok := g.vertices[fp]; ok {
		return
	}
	g.vertices[fp] = p
	g.succs[fp] = make(map[string]bool)
	g.preds[fp] = make(map[string]bool)
}

// AddEdge adds a -> b, adding the vertices if needed. Self edges are ignored.
func (g *Graph) AddEdge(a, b *pkg.Pkg) {
	afp, bfp := a.GetFingerPrint(), b.GetFingerPrint()
	if afp == bfp {
		return
	}
	g.AddVertex(a)
	g.AddVertex(b)
	g.succs[afp][bfp] = true
	g.preds[bfp][afp] = true
}

func (g *Graph) HasVertex(fp string) bool {
	_, ok := g.vertices[fp]
	return ok
}

func (g *Graph) HasEdge(afp, bfp string) bool {
	return g.succs[afp][bfp]
}

func (g *Graph) Len() int {
	return len(g.vertices)
}

func (g *Graph) sortedFingerprints() []string {
	fps := make([]string, 0, len(g.vertices))
	for fp := range g.vertices {
		fps = append(fps, fp)
	}
	sort.Strings(fps)
	return fps
}

// Vertices returns the vertices ordered by fingerprint.
func (g *Graph) Vertices() []*pkg.Pkg {
	pkgs := make([]*pkg.Pkg, 0, len(g.vertices))
	for _, fp := range g.sortedFingerprints() {
		pkgs = append(pkgs, g.vertices[fp])
	}
	return pkgs
}

func (g *Graph) neighbors(fp string, set map[string]map[string]bool) []*pkg.Pkg {
	fps := make([]string, 0, len(set[fp]))
	for n := range set[fp] {
		fps = append(fps, n)
	}
	sort.Strings(fps)
	pkgs := make([]*pkg.Pkg, 0, len(fps))
	for _, n := range fps {
		pkgs = append(pkgs, g.vertices[n])
	}
	return pkgs
}

// Successors returns the direct successors of fp, ordered by fingerprint.
func (g *Graph) Successors(fp string) []*pkg.Pkg {
	return g.neighbors(fp, g.succs)
}

// Predecessors returns the direct predecessors of fp, ordered by fingerprint.
func (g *Graph) Predecessors(fp string) []*pkg.Pkg {
	return g.neighbors(fp, g.preds)
}

// Mirror returns a copy of the graph with every edge reversed.
func (g *Graph) Mirror() *Graph {
	m := New()
	for _, p := range g.vertices {
		m.AddVertex(p)
	}
	for afp, set := range g.succs {
		for bfp := range set {
			m.AddEdge(g.vertices[bfp], g.vertices[afp])
		}
	}
	return m
}

// Induced returns the subgraph over the vertices keep accepts.
func (g *Graph) Induced(keep func(*pkg.Pkg) bool) *Graph {
	sub := New()
	for _, p := range g.vertices {
		if keep(p) {
			sub.AddVertex(p)
		}
	}
	for afp, set := range g.succs {
		if !sub.HasVertex(afp) {
			continue
		}
		for bfp := range set {
			if sub.HasVertex(bfp) {
				sub.AddEdge(g.vertices[afp], g.vertices[bfp])
			}
		}
	}
	return sub
}

// TopoSort returns the vertices in topological order (edge a -> b puts a
// before b). The ready set is kept sorted by fingerprint so the order is
// deterministic. Returns an error when the graph has a cycle.
func (g *Graph) TopoSort() ([]*pkg.Pkg, error) {
	indegree := make(map[string]int, len(g.vertices))
	for fp := range g.vertices {
		indegree[fp] = len(g.preds[fp])
	}

	ready := []string{}
	for fp, d := range indegree {
		if d == 0 {
			ready = append(ready, fp)
		}
	}
	sort.Strings(ready)

	order := make([]*pkg.Pkg, 0, len(g.vertices))
	for len(ready) > 0 {
		fp := ready[0]
		ready = ready[1:]
		order = append(order, g.vertices[fp])

		released := []string{}
		for succ := range g.succs[fp] {
			indegree[succ]--
			if indegree[succ] == 0 {
				released = append(released, succ)
			}
		}
		sort.Strings(released)
		ready = append(ready, released...)
		sort.Strings(ready)
	}

	if len(order) != len(g.vertices) {
		return nil, errors.Errorf("depgraph: cycle among %d vertices", len(g.vertices)-len(order))
	}
	return order, nil
}

// reachableAvoiding reports whether to is reachable from from without using
// the direct edge from -> to.
func (g *Graph) reachableAvoiding(from, to string) bool {
	seen := map[string]bool{from: true}
	stack := []string{}
	for succ := range g.succs[from] {
		if succ != to {
			stack = append(stack, succ)
		}
	}
	for len(stack) > 0 {
		fp := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if fp == to {
			return true
		}
		if seen[fp] {
			continue
		}
		seen[fp] = true
		for succ := range g.succs[fp] {
			stack = append(stack, succ)
		}
	}
	return false
}

// TransitiveReduction removes every edge implied by a longer path, in place.
func (g *Graph) TransitiveReduction() {
	for afp, set := range g.succs {
		redundant := []string{}
		for bfp := range set {
			if g.reachableAvoiding(afp, bfp) {
				redundant = append(redundant, bfp)
			}
		}
		for _, bfp := range redundant {
			delete(g.succs[afp], bfp)
			delete(g.preds[bfp], afp)
		}
	}
}

// Reachable returns every vertex reachable from the seed set (seeds
// included), following successor edges, in topological order relative to the
// full graph. Works only on acyclic graphs.
func (g *Graph) Reachable(seeds []*pkg.Pkg) ([]*pkg.Pkg, error) {
	seen := map[string]bool{}
	stack := []string{}
	for _, p := range seeds {
		fp := p.GetFingerPrint()
		if g.HasVertex(fp) {
			stack = append(stack, fp)
		}
	}
	for len(stack) > 0 {
		fp := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[fp] {
			continue
		}
		seen[fp] = true
		for succ := range g.succs[fp] {
			stack = append(stack, succ)
		}
	}

	order, err := g.TopoSort()
	if err != nil {
		return nil, err
	}
	result := []*pkg.Pkg{}
	for _, p := range order {
		if seen[p.GetFingerPrint()] {
			result = append(result, p)
		}
	}
	return result, nil
}
