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

package solver

import (
	"sort"

	"github.com/stonefir/opam/internal/cudf"
	pkg "github.com/stonefir/opam/internal/pkg"
)

// analyzeUnsat replays the request over the universe to reconstruct why the
// solver found no model: a breadth-first walk from the synthetic request
// vertex through the dependency closure, recording a Dependency fact per
// clause, a Missing fact per clause nothing satisfies, and a Conflict fact
// per excluded pair inside the walked closure.
func analyzeUnsat(u *pkg.Universe, table *cudf.Table, req *pkg.Request, withOptional bool) []Reason {
	root := pkg.NewPkg(SentinelRequestName, "1", false)
	reasons := []Reason{}
	visited := map[string]bool{}
	queue := []*pkg.Pkg{}

	enqueue := func(pkgs []*pkg.Pkg) {
		for _, p := range pkgs {
			if !visited[p.GetFingerPrint()] {
				visited[p.GetFingerPrint()] = true
				queue = append(queue, p)
			}
		}
	}

	// request level: one Dependency fact per requested atom
	for _, a := range append(append([]*pkg.Atom{}, req.Install...), req.Upgrade...) {
		clause := []*pkg.Atom{a}
		cands := clauseCandidates(u, clause)
		reasons = append(reasons, Dependency{From: root, Clause: clause, Candidates: cands})
		if !clauseSatisfiable(u, clause) {
			reasons = append(reasons, Missing{Pkg: root, Clause: clause})
		}
		enqueue(cands)
	}

	// dependency closure
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]

		cnf := p.Depends
		if withOptional {
			cnf = append(append([][]*pkg.Atom{}, p.Depends...), table.OptionalDeps(p)...)
		}
		for _, clause := range cnf {
			cands := clauseCandidates(u, clause)
			reasons = append(reasons, Dependency{From: p, Clause: clause, Candidates: cands})
			if !clauseSatisfiable(u, clause) {
				reasons = append(reasons, Missing{Pkg: p, Clause: clause})
			}
			enqueue(cands)
		}
	}

	// conflicts inside the walked closure
	walked := []*pkg.Pkg{}
	for _, p := range u.Packages() {
		if visited[p.GetFingerPrint()] {
			walked = append(walked, p)
		}
	}
	sort.Slice(walked, func(i, j int) bool {
		return walked[i].GetFingerPrint() < walked[j].GetFingerPrint()
	})
	for _, p := range walked {
		for _, a := range p.Conflicts {
			for _, q := range u.Matching(a) {
				if q.Equal(p) || !visited[q.GetFingerPrint()] {
					continue
				}
				reasons = append(reasons, Conflict{First: p, Second: q, Context: a.String()})
			}
		}
	}

	return reasons
}

// clauseCandidates returns every version of every name the clause mentions,
// whether or not it satisfies the constraints; the chain display wants the
// packages that were considered, not only the survivors.
func clauseCandidates(u *pkg.Universe, clause []*pkg.Atom) []*pkg.Pkg {
	seen := map[string]bool{}
	cands := []*pkg.Pkg{}
	for _, a := range clause {
		for _, p := range u.GetPackagesByName(a.Name) {
			fp := p.GetFingerPrint()
			if !seen[fp] {
				seen[fp] = true
				cands = append(cands, p)
			}
		}
	}
	return cands
}

func clauseSatisfiable(u *pkg.Universe, clause []*pkg.Atom) bool {
	for _, a := range clause {
		if len(u.Matching(a)) > 0 {
			return true
		}
	}
	return false
}
