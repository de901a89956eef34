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
	"github.com/stonefir/opam/internal/depgraph"
	pkg "github.com/stonefir/opam/internal/pkg"
)

// FilterForwardDependencies returns the packages reachable from subset by
// walking dependency edges forward (towards dependencies), topologically
// ordered and subset included.
func FilterForwardDependencies(u *pkg.Universe, subset []*pkg.Pkg) ([]*pkg.Pkg, error) {
	g := depgraph.FromUniverse(u, depgraph.BuildOptions{WithOptional: true})
	g.TransitiveReduction()
	return g.Reachable(subset)
}

// FilterBackwardDependencies is the symmetric walk towards dependents.
func FilterBackwardDependencies(u *pkg.Universe, subset []*pkg.Pkg) ([]*pkg.Pkg, error) {
	g := depgraph.FromUniverse(u, depgraph.BuildOptions{WithOptional: true})
	g.TransitiveReduction()
	return g.Mirror().Reachable(subset)
}
