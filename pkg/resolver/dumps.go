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
	"os"
	"path/filepath"

	"github.com/stonefir/opam/internal/cudf"
	"github.com/stonefir/opam/internal/depgraph"
	pkg "github.com/stonefir/opam/internal/pkg"
)

// writeDebugDumps writes the universes as .cudf files and the dependency
// graphs as .dot files at stable filenames under the configured dump dir.
// Observability aids only: failures are logged and swallowed, behavior never
// depends on them.
func (r *Resolver) writeDebugDumps(current, target *pkg.Universe, artifacts *debugArtifacts) {
	r.dumpUniverse("universe.cudf", current)
	r.dumpUniverse("universe-all.cudf", target)
	r.dumpGraph("filter-depends.dot", "filter-depends", artifacts.graphCurrent)
	r.dumpGraph("to-install.dot", "to-install", artifacts.graphToInstall)
	r.dumpGraph("to-remove.dot", "to-remove", artifacts.graphToRemove)
}

func (r *Resolver) dumpUniverse(name string, u *pkg.Universe) {
	table, err := cudf.Init(u)
	if err != nil {
		r.logger.Debugf("skipping dump %s: %v", name, err)
		return
	}
	f, err := os.Create(filepath.Join(r.settings.DumpDir, name))
	if err != nil {
		r.logger.Debugf("skipping dump %s: %v", name, err)
		return
	}
	defer f.Close()
	if err := cudf.WriteUniverse(f, table, u); err != nil {
		r.logger.Debugf("dump %s failed: %v", name, err)
	}
}

func (r *Resolver) dumpGraph(file, name string, g *depgraph.Graph) {
	if g == nil {
		return
	}
	f, err := os.Create(filepath.Join(r.settings.DumpDir, file))
	if err != nil {
		r.logger.Debugf("skipping dump %s: %v", file, err)
		return
	}
	defer f.Close()
	if err := g.WriteDOT(f, name); err != nil {
		r.logger.Debugf("dump %s failed: %v", file, err)
	}
}
