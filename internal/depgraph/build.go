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

package depgraph

import (
	pkg "github.com/stonefir/opam/internal/pkg"
)

// BuildOptions selects which slice of the universe a graph is built over.
type BuildOptions struct {
	// WithOptional also draws edges for optional dependencies.
	WithOptional bool
	// InstalledOnly restricts vertices to the installed packages.
	InstalledOnly bool
}

// FromUniverse builds the dependency graph of a universe: an edge a -> b when
// some clause of a's dependencies can be satisfied by b. Callers wanting the
// minimal graph run TransitiveReduction afterwards.
func FromUniverse(u *pkg.Universe, opts BuildOptions) *Graph {
	g := New()

	included := func(p *pkg.Pkg) bool {
		return !opts.InstalledOnly || p.Installed
	}

	for _, a := range u.Packages() {
		if !included(a) {
			continue
		}
		g.AddVertex(a)

		cnf := a.Depends
		if opts.WithOptional {
			cnf = append(append([][]*pkg.Atom{}, a.Depends...), a.DependsOptional...)
		}
		for _, clause := range cnf {
			for _, atom := range clause {
				for _, b := range u.Matching(atom) {
					if included(b) {
						g.AddEdge(a, b)
					}
				}
			}
		}
	}
	return g
}

// OptionalEdge reports whether the edge a -> b is satisfiable only through
// a's optional dependencies, i.e. no hard dependency clause of a accepts b.
func OptionalEdge(a, b *pkg.Pkg) bool {
	matchedBy := func(cnf [][]*pkg.Atom) bool {
		for _, clause := range cnf {
			for _, atom := range clause {
				if atom.Matches(b) {
					return true
				}
			}
		}
		return false
	}
	return !matchedBy(a.Depends) && matchedBy(a.DependsOptional)
}
