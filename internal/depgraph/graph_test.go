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
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	pkg "github.com/stonefir/opam/internal/pkg"
)

func mkpkg(name string) *pkg.Pkg {
	return pkg.NewPkg(name, "1.0.0", false)
}

func fps(pkgs []*pkg.Pkg) []string {
	out := []string{}
	for _, p := range pkgs {
		out = append(out, p.Name)
	}
	return out
}

func TestTopoSort(t *testing.T) {
	g := New()
	a, b, c := mkpkg("a"), mkpkg("b"), mkpkg("c")
	g.AddEdge(a, b)
	g.AddEdge(b, c)
	g.AddEdge(a, c)

	is := assert.New(t)
	order, err := g.TopoSort()
	is.NoError(err)
	is.Equal([]string{"a", "b", "c"}, fps(order))
}

func TestTopoSortDeterministicTieBreak(t *testing.T) {
	// no edges at all: order must still be stable
	g := New()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		g.AddVertex(mkpkg(name))
	}
	is := assert.New(t)
	order, err := g.TopoSort()
	is.NoError(err)
	is.Equal([]string{"alpha", "mid", "zeta"}, fps(order))
}

func TestTopoSortCycle(t *testing.T) {
	g := New()
	a, b := mkpkg("a"), mkpkg("b")
	g.AddEdge(a, b)
	g.AddEdge(b, a)

	_, err := g.TopoSort()
	assert.Error(t, err)
}

func TestMirror(t *testing.T) {
	g := New()
	a, b := mkpkg("a"), mkpkg("b")
	g.AddEdge(a, b)

	is := assert.New(t)
	m := g.Mirror()
	is.True(m.HasEdge(b.GetFingerPrint(), a.GetFingerPrint()))
	is.False(m.HasEdge(a.GetFingerPrint(), b.GetFingerPrint()))
}

func TestTransitiveReduction(t *testing.T) {
	g := New()
	a, b, c := mkpkg("a"), mkpkg("b"), mkpkg("c")
	g.AddEdge(a, b)
	g.AddEdge(b, c)
	g.AddEdge(a, c) // implied by a -> b -> c

	g.TransitiveReduction()

	is := assert.New(t)
	is.True(g.HasEdge(a.GetFingerPrint(), b.GetFingerPrint()))
	is.True(g.HasEdge(b.GetFingerPrint(), c.GetFingerPrint()))
	is.False(g.HasEdge(a.GetFingerPrint(), c.GetFingerPrint()))
}

func TestReachable(t *testing.T) {
	g := New()
	a, b, c, d := mkpkg("a"), mkpkg("b"), mkpkg("c"), mkpkg("d")
	g.AddEdge(a, b)
	g.AddEdge(b, c)
	g.AddVertex(d)

	is := assert.New(t)
	reach, err := g.Reachable([]*pkg.Pkg{b})
	is.NoError(err)
	is.Equal([]string{"b", "c"}, fps(reach))
}

func TestInduced(t *testing.T) {
	g := New()
	a, b, c := mkpkg("a"), mkpkg("b"), mkpkg("c")
	g.AddEdge(a, b)
	g.AddEdge(b, c)

	sub := g.Induced(func(p *pkg.Pkg) bool { return p.Name != "b" })

	is := assert.New(t)
	is.Equal(2, sub.Len())
	is.False(sub.HasEdge(a.GetFingerPrint(), c.GetFingerPrint()),
		"induced subgraph does not invent edges across removed vertices")
}

func TestFromUniverse(t *testing.T) {
	is := assert.New(t)
	u := pkg.NewUniverse()
	a := pkg.NewPkg("a", "1.0.0", true)
	dep, err := pkg.ParseAtom("b>=1.0.0")
	is.NoError(err)
	a.Depends = [][]*pkg.Atom{{dep}}
	opt, err := pkg.ParseAtom("c")
	is.NoError(err)
	a.DependsOptional = [][]*pkg.Atom{{opt}}
	is.NoError(u.Add(a))
	is.NoError(u.Add(pkg.NewPkg("b", "1.0.0", true)))
	is.NoError(u.Add(pkg.NewPkg("b", "0.9.0", false)))
	is.NoError(u.Add(pkg.NewPkg("c", "1.0.0", true)))

	hard := FromUniverse(u, BuildOptions{})
	is.True(hard.HasEdge("a-1.0.0", "b-1.0.0"))
	is.False(hard.HasEdge("a-1.0.0", "b-0.9.0"), "constraint filters versions")
	is.False(hard.HasEdge("a-1.0.0", "c-1.0.0"), "optional edge absent from hard graph")

	full := FromUniverse(u, BuildOptions{WithOptional: true})
	is.True(full.HasEdge("a-1.0.0", "c-1.0.0"))

	installedOnly := FromUniverse(u, BuildOptions{InstalledOnly: true})
	is.False(installedOnly.HasVertex("b-0.9.0"))
}

func TestOptionalEdge(t *testing.T) {
	is := assert.New(t)
	a := pkg.NewPkg("a", "1.0.0", true)
	a.DependsOptional = [][]*pkg.Atom{{pkg.NewAtom("b")}}
	b := pkg.NewPkg("b", "1.0.0", true)

	is.True(OptionalEdge(a, b))

	a.Depends = [][]*pkg.Atom{{pkg.NewAtom("b")}}
	is.False(OptionalEdge(a, b), "a hard clause accepting b wins")
}

func TestWriteDOT(t *testing.T) {
	g := New()
	g.AddEdge(mkpkg("a"), mkpkg("b"))

	var buf bytes.Buffer
	is := assert.New(t)
	is.NoError(g.WriteDOT(&buf, "test"))
	is.Contains(buf.String(), `"a-1.0.0" -> "b-1.0.0";`)
}
