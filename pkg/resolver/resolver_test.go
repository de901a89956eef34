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
	"bytes"
	"testing"

	"github.com/Masterminds/log-go"
	logcli "github.com/Masterminds/log-go/impl/cli"
	"github.com/stretchr/testify/assert"

	pkg "github.com/stonefir/opam/internal/pkg"
	"github.com/stonefir/opam/internal/solver"
	"github.com/stonefir/opam/pkg/cli"
)

type pspec struct {
	name      string
	version   string
	installed bool
	depends   []string
	depopts   []string
	conflicts []string
}

func buildWorld(t *testing.T, specs []pspec) *pkg.Universe {
	is := assert.New(t)
	u := pkg.NewUniverse()
	for _, s := range specs {
		p := pkg.NewPkg(s.name, s.version, s.installed)
		for _, c := range s.depends {
			clause, err := pkg.ParseClause(c)
			is.NoError(err)
			p.Depends = append(p.Depends, clause)
		}
		for _, c := range s.depopts {
			clause, err := pkg.ParseClause(c)
			is.NoError(err)
			p.DependsOptional = append(p.DependsOptional, clause)
		}
		for _, c := range s.conflicts {
			a, err := pkg.ParseAtom(c)
			is.NoError(err)
			p.Conflicts = append(p.Conflicts, a)
		}
		is.NoError(u.Add(p))
	}
	return u
}

func atoms(t *testing.T, strs ...string) []*pkg.Atom {
	is := assert.New(t)
	out := []*pkg.Atom{}
	for _, s := range strs {
		a, err := pkg.ParseAtom(s)
		is.NoError(err)
		out = append(out, a)
	}
	return out
}

// testResolver builds a resolver logging into a buffer, like the rest of the
// test suite does for command output.
func testResolver() *Resolver {
	buf := new(bytes.Buffer)
	logger := logcli.NewStandard()
	logger.InfoOut = buf
	logger.WarnOut = buf
	logger.ErrorOut = buf
	logger.DebugOut = buf
	log.Current = logger

	settings := &cli.EnvSettings{DumpDir: "."}
	return New(solver.NewGophersat(), settings, logger)
}

func actionStrings(p *Plan) []string {
	out := []string{}
	order, _ := p.ToAdd.TopoOrder()
	for _, a := range order {
		out = append(out, a.String())
	}
	return out
}

func removeStrings(p *Plan) []string {
	out := []string{}
	for _, rm := range p.ToRemove {
		out = append(out, rm.GetFingerPrint())
	}
	return out
}

// applyPlan computes the post-state universe of executing the plan.
func applyPlan(t *testing.T, u *pkg.Universe, p *Plan) *pkg.Universe {
	is := assert.New(t)
	installed := map[string]string{}
	for _, ip := range u.InstalledPackages() {
		installed[ip.Name] = ip.Version
	}
	for _, rm := range p.ToRemove {
		delete(installed, rm.Name)
	}
	for _, a := range p.ToAdd.Actions() {
		if a.New != nil {
			installed[a.New.Name] = a.New.Version
		}
	}

	post := pkg.NewUniverse()
	for _, orig := range u.Packages() {
		copied := *orig
		copied.Installed = installed[orig.Name] == orig.Version
		is.NoError(post.Add(&copied))
	}
	return post
}

// assertSound checks the soundness property: the post-state satisfies the
// request and every installed package's hard dependencies.
func assertSound(t *testing.T, post *pkg.Universe, req *pkg.Request) {
	is := assert.New(t)
	for _, a := range req.Install {
		p := post.Installed(a.Name)
		is.NotNil(p, "install atom %s unsatisfied", a)
		if p != nil {
			is.True(a.Matches(p), "install atom %s unsatisfied by %s", a, p)
		}
	}
	for _, a := range req.Remove {
		is.Nil(post.Installed(a.Name), "remove atom %s still installed", a)
	}
	for _, p := range post.InstalledPackages() {
		for _, clause := range p.Depends {
			satisfied := false
			for _, a := range clause {
				if dep := post.Installed(a.Name); dep != nil && a.Matches(dep) {
					satisfied = true
				}
			}
			is.True(satisfied, "installed %s has unmet clause %s", p, pkg.FormatClause(clause))
		}
	}
}

func TestResolveFreshInstallOfLeaf(t *testing.T) {
	is := assert.New(t)
	u := buildWorld(t, []pspec{{name: "a", version: "1.0.0"}})
	req := &pkg.Request{Install: atoms(t, "a")}

	plan, conflict, err := testResolver().Resolve(u, req)
	is.NoError(err)
	is.Nil(conflict)
	is.Empty(plan.ToRemove)
	is.Equal([]string{"install a-1.0.0"}, actionStrings(plan))
	is.Empty(plan.ToAdd.Edges())

	assertSound(t, applyPlan(t, u, plan), req)
}

func TestResolveInstallWithDependency(t *testing.T) {
	is := assert.New(t)
	u := buildWorld(t, []pspec{
		{name: "a", version: "1.0.0", depends: []string{"b"}},
		{name: "b", version: "1.0.0"},
	})
	req := &pkg.Request{Install: atoms(t, "a")}

	plan, conflict, err := testResolver().Resolve(u, req)
	is.NoError(err)
	is.Nil(conflict)
	is.Empty(plan.ToRemove)
	is.Equal([]string{"install b-1.0.0", "install a-1.0.0"}, actionStrings(plan),
		"the dependency installs first")

	edges := plan.ToAdd.Edges()
	is.Len(edges, 1)
	is.Equal("b-1.0.0", edges[0][0].Pkg().GetFingerPrint())
	is.Equal("a-1.0.0", edges[0][1].Pkg().GetFingerPrint())

	assertSound(t, applyPlan(t, u, plan), req)
}

func TestResolveUpgradePropagatesRecompile(t *testing.T) {
	is := assert.New(t)
	u := buildWorld(t, []pspec{
		{name: "a", version: "1.0.0", installed: true},
		{name: "a", version: "2.0.0"},
		{name: "b", version: "1.0.0", installed: true, depends: []string{"a"}},
	})
	req := &pkg.Request{Upgrade: atoms(t, "a")}

	plan, conflict, err := testResolver().Resolve(u, req)
	is.NoError(err)
	is.Nil(conflict)
	is.Empty(plan.ToRemove)
	is.Equal([]string{"upgrade a-1.0.0 to 2.0.0", "recompile b-1.0.0"}, actionStrings(plan))

	edges := plan.ToAdd.Edges()
	is.Len(edges, 1)
	is.Equal("a-2.0.0", edges[0][0].Pkg().GetFingerPrint())
	is.Equal("b-1.0.0", edges[0][1].Pkg().GetFingerPrint())

	s := CalculateStats(plan)
	is.Equal(Stats{Upgrade: 1, Reinstall: 1}, s)
	is.True(DeleteOrUpdate(plan))
}

func TestResolveRemovePropagatesThroughOptionalDep(t *testing.T) {
	is := assert.New(t)
	u := buildWorld(t, []pspec{
		{name: "a", version: "1.0.0", installed: true},
		{name: "b", version: "1.0.0", installed: true, depopts: []string{"a"}},
	})
	req := &pkg.Request{Remove: atoms(t, "a")}

	plan, conflict, err := testResolver().Resolve(u, req)
	is.NoError(err)
	is.Nil(conflict)
	// optional deps compile hard on removal, so the optionally-depending
	// reverse dependent goes too, never silently left dangling
	is.Equal([]string{"a-1.0.0", "b-1.0.0"}, removeStrings(plan),
		"a package is deleted before its reverse dependencies")
	is.Zero(plan.ToAdd.Len())
	is.True(DeleteOrUpdate(plan))

	assertSound(t, applyPlan(t, u, plan), req)
}

func TestResolveRemoveRecompilesSurvivingOptionalDependent(t *testing.T) {
	is := assert.New(t)
	u := buildWorld(t, []pspec{
		{name: "a", version: "1.0.0", installed: true},
		{name: "c", version: "1.0.0", installed: true},
		{name: "b", version: "1.0.0", installed: true, depopts: []string{"a | c"}},
	})
	req := &pkg.Request{Remove: atoms(t, "a")}

	plan, conflict, err := testResolver().Resolve(u, req)
	is.NoError(err)
	is.Nil(conflict)
	is.Equal([]string{"a-1.0.0"}, removeStrings(plan))
	is.Equal([]string{"recompile b-1.0.0"}, actionStrings(plan),
		"the surviving dependent is rebuilt, its optional dependency went away")
}

func TestResolveConflict(t *testing.T) {
	is := assert.New(t)
	u := buildWorld(t, []pspec{
		{name: "a", version: "1.0.0", depends: []string{"b>=2.0.0"}},
		{name: "b", version: "1.0.0"},
	})
	req := &pkg.Request{Install: atoms(t, "a")}

	plan, conflict, err := testResolver().Resolve(u, req)
	is.NoError(err)
	is.Nil(plan)
	is.NotNil(conflict)

	report := conflict()
	is.Contains(report, "b>=2.0.0")
	is.Contains(report, "a <- b")
}

func TestResolveMinimizationAvoidsGratuitousUpgrade(t *testing.T) {
	is := assert.New(t)
	u := buildWorld(t, []pspec{
		{name: "a", version: "1.0.0", installed: true},
		{name: "a", version: "2.0.0"},
		{name: "b", version: "1.0.0", installed: true, depends: []string{"a>=1.0.0"}},
	})
	req := &pkg.Request{Install: atoms(t, "b")}

	plan, conflict, err := testResolver().Resolve(u, req)
	is.NoError(err)
	is.Nil(conflict)
	is.Empty(plan.ToRemove)
	is.Zero(plan.ToAdd.Len(), "a-1.0.0 is acceptable, no upgrade of a")
	is.False(DeleteOrUpdate(plan))
}

func TestResolveCoverage(t *testing.T) {
	// exactly one action per name whose installation state differs
	is := assert.New(t)
	u := buildWorld(t, []pspec{
		{name: "a", version: "1.0.0", depends: []string{"b"}},
		{name: "b", version: "1.0.0", depends: []string{"c"}},
		{name: "c", version: "1.0.0"},
	})
	req := &pkg.Request{Install: atoms(t, "a")}

	plan, conflict, err := testResolver().Resolve(u, req)
	is.NoError(err)
	is.Nil(conflict)

	seen := map[string]int{}
	for _, a := range plan.ToAdd.Actions() {
		seen[a.Pkg().Name]++
	}
	for _, rm := range plan.ToRemove {
		seen[rm.Name]++
	}
	is.Equal(map[string]int{"a": 1, "b": 1, "c": 1}, seen)

	order, err := plan.ToAdd.TopoOrder()
	is.NoError(err)
	is.Len(order, 3, "the plan DAG is acyclic and complete")
}

func TestResolveIdempotence(t *testing.T) {
	is := assert.New(t)
	u := buildWorld(t, []pspec{
		{name: "a", version: "1.0.0", depends: []string{"b"}},
		{name: "b", version: "1.0.0"},
	})
	req := &pkg.Request{Install: atoms(t, "a")}

	r := testResolver()
	plan, conflict, err := r.Resolve(u, req)
	is.NoError(err)
	is.Nil(conflict)

	post := applyPlan(t, u, plan)
	again, conflict, err := r.Resolve(post, req)
	is.NoError(err)
	is.Nil(conflict)
	is.Empty(again.ToRemove)
	is.Zero(again.ToAdd.Len(), "resolving the post-state is a no-op")
}

func TestResolveEvictionBecomesUpgrade(t *testing.T) {
	// installing a pinned newer version while the older one is installed
	// must come out as one upgrade action, not an install plus a delete
	is := assert.New(t)
	u := buildWorld(t, []pspec{
		{name: "a", version: "1.0.0", installed: true},
		{name: "a", version: "2.0.0"},
	})
	req := &pkg.Request{Install: atoms(t, "a=2.0.0")}

	plan, conflict, err := testResolver().Resolve(u, req)
	is.NoError(err)
	is.Nil(conflict)
	is.Equal([]string{"upgrade a-1.0.0 to 2.0.0"}, actionStrings(plan))
	is.Empty(plan.ToRemove)
}

func TestResolveDowngrade(t *testing.T) {
	is := assert.New(t)
	u := buildWorld(t, []pspec{
		{name: "a", version: "1.0.0"},
		{name: "a", version: "2.0.0", installed: true},
	})
	req := &pkg.Request{Install: atoms(t, "a=1.0.0")}

	plan, conflict, err := testResolver().Resolve(u, req)
	is.NoError(err)
	is.Nil(conflict)
	is.Equal([]string{"downgrade a-2.0.0 to 1.0.0"}, actionStrings(plan))

	s := CalculateStats(plan)
	is.Equal(1, s.Downgrade)
	is.True(DeleteOrUpdate(plan))
}

func TestResolvePureRemovalSkipsMinimization(t *testing.T) {
	is := assert.New(t)
	u := buildWorld(t, []pspec{
		{name: "a", version: "1.0.0", installed: true},
	})
	req := &pkg.Request{Remove: atoms(t, "a")}
	is.True(req.PureRemoval())

	plan, conflict, err := testResolver().Resolve(u, req)
	is.NoError(err)
	is.Nil(conflict)
	is.Equal([]string{"a-1.0.0"}, removeStrings(plan))
	is.Zero(plan.ToAdd.Len())
}

func TestResolveInvalidRequest(t *testing.T) {
	is := assert.New(t)
	u := buildWorld(t, []pspec{{name: "a", version: "1.0.0"}})
	req := &pkg.Request{Install: atoms(t, "a"), Remove: atoms(t, "a")}

	_, _, err := testResolver().Resolve(u, req)
	is.Error(err)
}

func TestDiffUniverses(t *testing.T) {
	is := assert.New(t)
	current := buildWorld(t, []pspec{
		{name: "keep", version: "1.0.0", installed: true},
		{name: "gone", version: "1.0.0", installed: true},
		{name: "moved", version: "1.0.0", installed: true},
		{name: "moved", version: "2.0.0"},
		{name: "fresh", version: "1.0.0"},
	})
	target := buildWorld(t, []pspec{
		{name: "keep", version: "1.0.0", installed: true},
		{name: "gone", version: "1.0.0"},
		{name: "moved", version: "1.0.0"},
		{name: "moved", version: "2.0.0", installed: true},
		{name: "fresh", version: "1.0.0", installed: true},
	})

	acts := diffUniverses(current, target)
	is.Len(acts, 3)

	byName := map[string]*internalAction{}
	for _, ia := range acts {
		is.NotContains(byName, ia.name(), "no name appears twice")
		byName[ia.name()] = ia
	}
	is.Equal(internalChange, byName["fresh"].kind)
	is.Nil(byName["fresh"].from)
	is.Equal(internalDelete, byName["gone"].kind)
	is.Equal(internalChange, byName["moved"].kind)
	is.Equal("1.0.0", byName["moved"].from.Version)
	is.Equal("2.0.0", byName["moved"].to.Version)
	is.NotContains(byName, "keep")
}

func TestFilterDependencies(t *testing.T) {
	is := assert.New(t)
	u := buildWorld(t, []pspec{
		{name: "a", version: "1.0.0", depends: []string{"b"}},
		{name: "b", version: "1.0.0", depends: []string{"c"}},
		{name: "c", version: "1.0.0"},
		{name: "lone", version: "1.0.0"},
	})

	forward, err := FilterForwardDependencies(u, []*pkg.Pkg{u.GetPackage("b", "1.0.0")})
	is.NoError(err)
	names := []string{}
	for _, p := range forward {
		names = append(names, p.Name)
	}
	is.Equal([]string{"b", "c"}, names)

	backward, err := FilterBackwardDependencies(u, []*pkg.Pkg{u.GetPackage("b", "1.0.0")})
	is.NoError(err)
	names = []string{}
	for _, p := range backward {
		names = append(names, p.Name)
	}
	is.Equal([]string{"b", "a"}, names)
}
