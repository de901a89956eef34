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
	"sort"

	"github.com/pkg/errors"

	"github.com/stonefir/opam/internal/depgraph"
	pkg "github.com/stonefir/opam/internal/pkg"
)

// debugArtifacts carries the graphs the builder worked on, for the optional
// debug dumps.
type debugArtifacts struct {
	graphCurrent   *depgraph.Graph
	graphToInstall *depgraph.Graph
	graphToRemove  *depgraph.Graph
}

// buildPlan constructs the final action graph from the raw internal actions:
// it orders the install side along the target dependency graph, inserts the
// transitive recompile obligations, classifies and orders the deletions, and
// assembles the output DAG.
func (r *Resolver) buildPlan(current, target *pkg.Universe,
	acts []*internalAction, req *pkg.Request) (*Plan, *debugArtifacts, error) {

	addMap := map[string]*internalAction{}
	delMap := map[string]*internalAction{}
	for _, ia := range acts {
		switch ia.kind {
		case internalChange:
			addMap[ia.name()] = ia
		case internalDelete:
			delMap[ia.name()] = ia
		default:
			return nil, nil, errors.Errorf("assertion: %s action among diff results", ia.name())
		}
	}

	// dependency graph of what the target wants installed, minimized
	graphToInstall := depgraph.FromUniverse(target, depgraph.BuildOptions{
		WithOptional:  true,
		InstalledOnly: true,
	})
	graphToInstall.TransitiveReduction()

	// dependency graph of the currently installed world, optional edges
	// included so that removal effects can be traced through them
	graphCurrent := depgraph.FromUniverse(current, depgraph.BuildOptions{
		WithOptional:  true,
		InstalledOnly: true,
	})

	// deletions: order them, and find the survivors they dirty
	toRemove, deletionDirty, graphToRemove, err :=
		r.classifyDeletions(current, target, graphCurrent, addMap, delMap)
	if err != nil {
		return nil, nil, err
	}

	// Phase A: mirror the install graph so edges run from dependency to
	// dependent, keep only currently-installed or newly-added vertices,
	// drop anything being deleted
	mirrored := graphToInstall.Mirror().Induced(func(p *pkg.Pkg) bool {
		if _, deleted := delMap[p.Name]; deleted {
			return false
		}
		if current.Installed(p.Name) != nil {
			return true
		}
		_, added := addMap[p.Name]
		return added
	})

	// Phase B: topological fold propagating dirtiness. A vertex that is not
	// itself changing but is dirty becomes a recompile obligation.
	order, err := mirrored.TopoSort()
	if err != nil {
		return nil, nil, errors.Wrap(err, "target dependency graph")
	}
	dirty := map[string]bool{}
	for name := range addMap {
		dirty[name] = true
	}
	for name := range deletionDirty {
		dirty[name] = true
	}
	recompiles := map[string]*pkg.Pkg{}
	for _, v := range order {
		_, added := addMap[v.Name]
		if !added && !dirty[v.Name] {
			continue
		}
		if !added {
			recompiles[v.Name] = v
		}
		for _, succ := range mirrored.Successors(v.GetFingerPrint()) {
			dirty[succ.Name] = true
		}
	}
	// deletion-dirtied survivors recompile even when outside the install graph
	for name := range deletionDirty {
		if _, added := addMap[name]; added {
			continue
		}
		if p := target.Installed(name); p != nil {
			recompiles[name] = p
		}
	}

	// Phase D: assemble the output DAG, one vertex per surviving action,
	// keyed by the target-universe package fingerprint
	g := NewActionGraph()
	addNames := make([]string, 0, len(addMap))
	for name := range addMap {
		addNames = append(addNames, name)
	}
	sort.Strings(addNames)
	for _, name := range addNames {
		ia := addMap[name]
		g.AddVertex(classifyChange(ia.from, ia.to))
	}
	recompileNames := make([]string, 0, len(recompiles))
	for name := range recompiles {
		recompileNames = append(recompileNames, name)
	}
	sort.Strings(recompileNames)
	for _, name := range recompileNames {
		g.AddVertex(&Action{
			Kind: Recompile,
			Old:  current.Installed(name),
			New:  recompiles[name],
		})
	}

	// copy the dependency ordering between action vertices
	for _, from := range mirrored.Vertices() {
		for _, to := range mirrored.Successors(from.GetFingerPrint()) {
			g.AddEdge(from.GetFingerPrint(), to.GetFingerPrint())
		}
	}

	r.reinstallFixup(g, current)

	if _, err := g.TopoOrder(); err != nil {
		return nil, nil, err
	}

	plan := &Plan{ToRemove: toRemove, ToAdd: g}
	artifacts := &debugArtifacts{
		graphCurrent:   graphCurrent,
		graphToInstall: graphToInstall,
		graphToRemove:  graphToRemove,
	}
	return plan, artifacts, nil
}

// classifyDeletions is Phase C: topologically order the packages being
// deleted so a package goes before its reverse dependencies, and collect the
// surviving packages whose dependencies are going away; those must be
// recompiled. Traversal layers are name-ordered, so the outcome never
// depends on map iteration order.
func (r *Resolver) classifyDeletions(current, target *pkg.Universe,
	graphCurrent *depgraph.Graph,
	addMap, delMap map[string]*internalAction) ([]*pkg.Pkg, map[string]bool, *depgraph.Graph, error) {

	graphToRemove := graphCurrent.Induced(func(p *pkg.Pkg) bool {
		_, deleted := delMap[p.Name]
		return deleted
	})

	// edges run dependent -> dependency; mirroring puts a dependency ahead
	// of its reverse dependencies in the order
	order, err := graphToRemove.Mirror().TopoSort()
	if err != nil {
		return nil, nil, nil, errors.Wrap(err, "removal graph")
	}
	toRemove := make([]*pkg.Pkg, 0, len(order))
	for _, p := range order {
		toRemove = append(toRemove, p)
	}

	// survivors that depend, hard or optionally, on something deleted
	dirty := map[string]bool{}
	for name := range delMap {
		deleted := current.Installed(name)
		if deleted == nil {
			continue
		}
		for _, q := range graphCurrent.Predecessors(deleted.GetFingerPrint()) {
			if _, goes := delMap[q.Name]; goes {
				continue
			}
			if _, changes := addMap[q.Name]; changes {
				continue
			}
			if target.Installed(q.Name) != nil {
				dirty[q.Name] = true
			}
		}
	}
	return toRemove, dirty, graphToRemove, nil
}

// reinstallFixup rewrites any install vertex whose package name is in fact
// already installed at another version into an upgrade or downgrade: the
// diff cannot always tell, because the target universe may have dropped the
// old version.
func (r *Resolver) reinstallFixup(g *ActionGraph, current *pkg.Universe) {
	for _, act := range g.Actions() {
		if act.Kind != Install {
			continue
		}
		old := current.Installed(act.New.Name)
		if old == nil || old.Version == act.New.Version {
			continue
		}
		fixed := classifyChange(old, act.New)
		act.Kind = fixed.Kind
		act.Old = fixed.Old
	}
}
