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

// Package resolver is the action-planning core: it turns a universe and a
// request into either a partially-ordered action plan or a conflict report.
// It is purely functional at the boundary and holds no state between calls.
package resolver

import (
	"sort"

	"github.com/Masterminds/log-go"

	pkg "github.com/stonefir/opam/internal/pkg"
	"github.com/stonefir/opam/internal/solver"
	"github.com/stonefir/opam/pkg/cli"
)

type Resolver struct {
	solver   solver.Solver
	settings *cli.EnvSettings
	logger   log.Logger
}

func New(s solver.Solver, settings *cli.EnvSettings, logger log.Logger) *Resolver {
	return &Resolver{
		solver:   s,
		settings: settings,
		logger:   logger,
	}
}

// Resolve computes the plan satisfying the request, or the reason there is
// none. Exactly one of the three results is meaningful: the plan on success,
// the lazy conflict report when the request is unsatisfiable, the error on a
// fatal solver or encoder failure.
//
// Optional dependencies are compiled as hard ones whenever the request
// removes something, so that removal propagates through optionally-depending
// reverse dependents; otherwise they stay out of the constraint problem.
func (r *Resolver) Resolve(u *pkg.Universe, req *pkg.Request) (*Plan, func() string, error) {
	if err := req.Validate(); err != nil {
		return nil, nil, err
	}
	withOptional := len(req.Remove) > 0

	r.logger.Debugf("resolving %s", req)
	ans := r.solver.CheckRequest(u, req, withOptional)
	switch ans.Status {
	case solver.Fatal:
		return nil, nil, ans.Err
	case solver.Unsat:
		return nil, solver.Explain(ans.Reasons), nil
	}

	target := ans.Universe
	acts := diffUniverses(u, target)

	// a request without installs returns the plain answer untouched
	if len(req.Install) > 0 {
		if minActs, minTarget, ok := r.minimize(u, req, acts); ok {
			r.logger.Debugf("minimization kept %d of %d raw actions", len(minActs), len(acts))
			acts, target = minActs, minTarget
		}
	}

	plan, artifacts, err := r.buildPlan(u, target, acts, req)
	if err != nil {
		return nil, nil, err
	}
	if r.settings.Debug {
		r.writeDebugDumps(u, target, artifacts)
	}
	return plan, nil, nil
}

// minimize runs the second-phase optimization pass: probe which changed
// packages can sit at their newest version, then re-solve with everything
// else pinned no lower than the first answer chose, dropping upgrade atoms
// for packages nobody installed depends on. Returns ok=false when the first
// answer is to be kept.
func (r *Resolver) minimize(u *pkg.Universe, req *pkg.Request,
	acts []*internalAction) ([]*internalAction, *pkg.Universe, bool) {

	pinned := map[string]bool{}
	for _, a := range req.Install {
		if a.Constraint != nil {
			pinned[a.Name] = true
		}
	}

	// keepVersions: moved packages pinned by the request.
	// changeVersions: everything else that moved.
	keepVersions := map[string]string{}
	changeVersions := map[string]string{}
	for _, ia := range acts {
		if ia.kind != internalChange {
			continue
		}
		if pinned[ia.name()] {
			keepVersions[ia.name()] = ia.to.Version
		} else {
			changeVersions[ia.name()] = ia.to.Version
		}
	}
	if len(changeVersions) == 0 {
		return nil, nil, false
	}

	changed := sortedKeys(changeVersions)

	// probe each changed package independently at its newest version
	maxPkgs := map[string]bool{}
	for _, name := range changed {
		probe := &pkg.Request{}
		for _, kept := range sortedKeys(keepVersions) {
			probe.Upgrade = append(probe.Upgrade,
				pkg.NewConstrainedAtom(kept, pkg.OpEq, keepVersions[kept]))
		}
		for _, other := range changed {
			if other == name {
				probe.Upgrade = append(probe.Upgrade,
					pkg.NewConstrainedAtom(name, pkg.OpEq, u.MaxVersion(name)))
			} else {
				probe.Upgrade = append(probe.Upgrade,
					pkg.NewConstrainedAtom(other, pkg.OpGeq, changeVersions[other]))
			}
		}
		pans := r.solver.CheckRequest(u, probe, false)
		if pans.Status == solver.Sat {
			maxPkgs[name] = true
		}
	}

	// final probe: everything maximizable at max, the rest no lower than
	// the first answer, filtered down to what the installed world needs
	needed := r.neededNames(u, req)
	final := &pkg.Request{}
	for _, kept := range sortedKeys(keepVersions) {
		final.Upgrade = append(final.Upgrade,
			pkg.NewConstrainedAtom(kept, pkg.OpEq, keepVersions[kept]))
	}
	for _, name := range changed {
		if !needed[name] {
			continue
		}
		if maxPkgs[name] {
			final.Upgrade = append(final.Upgrade,
				pkg.NewConstrainedAtom(name, pkg.OpEq, u.MaxVersion(name)))
		} else {
			final.Upgrade = append(final.Upgrade,
				pkg.NewConstrainedAtom(name, pkg.OpGeq, changeVersions[name]))
		}
	}

	fans := r.solver.CheckRequest(u, final, false)
	if fans.Status != solver.Sat {
		return nil, nil, false
	}
	minActs := diffUniverses(u, fans.Universe)

	// keep the less disruptive of the two answers; ties go to the probe,
	// which pinned the requested packages at their newest versions
	if churn(minActs, req) > churn(acts, req) {
		return nil, nil, false
	}
	return minActs, fans.Universe, true
}

// neededNames is the minimize filter: names currently installed (minus the
// requested removals), names some installed package transitively depends on,
// and the names the request itself demands.
func (r *Resolver) neededNames(u *pkg.Universe, req *pkg.Request) map[string]bool {
	removed := req.RemoveNames()
	needed := map[string]bool{}
	queue := []string{}
	for _, p := range u.InstalledPackages() {
		if !removed[p.Name] {
			needed[p.Name] = true
			queue = append(queue, p.Name)
		}
	}
	for name := range req.Names() {
		if !needed[name] {
			needed[name] = true
			queue = append(queue, name)
		}
	}
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		for _, p := range u.GetPackagesByName(name) {
			for _, clause := range p.Depends {
				for _, a := range clause {
					if !needed[a.Name] {
						needed[a.Name] = true
						queue = append(queue, a.Name)
					}
				}
			}
		}
	}
	return needed
}

// churn counts the actions touching packages the request never mentioned.
func churn(acts []*internalAction, req *pkg.Request) int {
	requested := req.Names()
	count := 0
	for _, ia := range acts {
		if !requested[ia.name()] {
			count++
		}
	}
	return count
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
