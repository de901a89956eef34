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

	pkg "github.com/stonefir/opam/internal/pkg"
)

// internal actions are what the diff and optimization pipeline trades in,
// before the graph builder categorizes them into plan actions.
type internalKind int

const (
	internalChange internalKind = iota
	internalDelete
	internalRecompile
)

type internalAction struct {
	kind internalKind
	from *pkg.Pkg // nil when the name was not installed before
	to   *pkg.Pkg // nil for deletions
}

func (ia *internalAction) name() string {
	if ia.to != nil {
		return ia.to.Name
	}
	return ia.from.Name
}

// diffUniverses computes the set-difference between the installed entries of
// the current and target universes, per package name. No name appears twice.
// Recompiles are not produced here; the graph builder introduces them after
// dependency analysis.
func diffUniverses(current, target *pkg.Universe) []*internalAction {
	names := map[string]bool{}
	for _, n := range current.Names() {
		names[n] = true
	}
	for _, n := range target.Names() {
		names[n] = true
	}
	ordered := make([]string, 0, len(names))
	for n := range names {
		ordered = append(ordered, n)
	}
	sort.Strings(ordered)

	acts := []*internalAction{}
	for _, n := range ordered {
		cur := current.Installed(n)
		tgt := target.Installed(n)
		switch {
		case cur == nil && tgt == nil:
		case cur == nil:
			acts = append(acts, &internalAction{kind: internalChange, to: tgt})
		case tgt == nil:
			acts = append(acts, &internalAction{kind: internalDelete, from: cur})
		case cur.Version != tgt.Version:
			acts = append(acts, &internalAction{kind: internalChange, from: cur, to: tgt})
		}
	}
	return acts
}
