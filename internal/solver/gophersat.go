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
	"github.com/crillab/gophersat/maxsat"
	"github.com/pkg/errors"

	"github.com/stonefir/opam/internal/cudf"
	pkg "github.com/stonefir/opam/internal/pkg"
)

// Gophersat checks requests with the gophersat MAXSAT/pseudo-boolean solver.
// It is stateless; every call builds a fresh encoder table that owns the
// name and id mappings for that resolution.
type Gophersat struct{}

func NewGophersat() *Gophersat {
	return &Gophersat{}
}

// problem is the in-flight state of one CheckRequest call.
type problem struct {
	table    *cudf.Table
	universe *pkg.Universe
	cpkgs    []*cudf.CPkg            // ordered by (name, version)
	byEsc    map[string][]*cudf.CPkg // escaped name -> ascending versions
	byExtFP  map[string]*cudf.CPkg   // external fingerprint -> encoded pkg
	lastID   int
	constrs  []maxsat.Constr
}

// soft preference weights. Keeping an installed package outweighs the bias
// against pulling in new packages, so the optimum is the status quo whenever
// the hard constraints allow it.
const (
	weightKeepInstalled = 2
	weightAvoidInstall  = 1
)

func (g *Gophersat) CheckRequest(u *pkg.Universe, req *pkg.Request, withOptional bool) *Answer {
	if err := req.Validate(); err != nil {
		return &Answer{Status: Fatal, Err: err}
	}

	table, err := cudf.Init(u)
	if err != nil {
		return &Answer{Status: Fatal, Err: err}
	}

	pb := &problem{
		table:    table,
		universe: u,
		byEsc:    make(map[string][]*cudf.CPkg),
		byExtFP:  make(map[string]*cudf.CPkg),
	}
	for _, p := range u.Packages() {
		cp, err := table.ToConstraintPkg(p, withOptional)
		if err != nil {
			return &Answer{Status: Fatal, Err: err}
		}
		pb.cpkgs = append(pb.cpkgs, cp)
		pb.byEsc[cp.Name] = append(pb.byEsc[cp.Name], cp)
		pb.byExtFP[p.GetFingerPrint()] = cp
	}

	// a request atom nothing can ever satisfy short-circuits into analysis
	for _, a := range append(append([]*pkg.Atom{}, req.Install...), req.Upgrade...) {
		if len(u.Matching(a)) == 0 {
			return &Answer{Status: Unsat, Reasons: analyzeUnsat(u, table, req, withOptional)}
		}
	}

	// generate constraints for all packages, then for the request
	for i, cp := range pb.cpkgs {
		pb.buildConstraintPresent(cp, req)
		pb.buildConstraintRelations(cp)
		pb.buildConstraintConflicts(cp)
		if i == 0 || pb.cpkgs[i-1].Name != cp.Name {
			pb.buildConstraintAtMost1(cp)
		}
	}
	pb.buildConstraintToModify(req)

	// create problem with constraints, and solve
	mproblem := maxsat.New(pb.constrs...)
	msolver := mproblem.Solver()
	result := msolver.Optimal(nil, nil)

	switch result.Status.String() {
	case "SAT":
		target, err := pb.targetUniverse(result.Model)
		if err != nil {
			return &Answer{Status: Fatal, Err: err}
		}
		return &Answer{Status: Sat, Universe: target}
	case "UNSAT":
		return &Answer{Status: Unsat, Reasons: analyzeUnsat(u, table, req, withOptional)}
	}
	return &Answer{
		Status: Fatal,
		Err:    errors.Wrapf(ErrSolverInternal, "solver returned %s", result.Status),
	}
}

// lit creates a literal for cp, assigning the package an id, to recover it
// from the model later. Ids follow first-use order, which is also the order
// constraints are appended in.
func (pb *problem) lit(cp *cudf.CPkg, negated bool) maxsat.Lit {
	if cp.ID == -1 {
		pb.lastID++
		cp.ID = pb.lastID
	}
	return maxsat.Lit{
		Var:     cp.GetFingerPrint(),
		Negated: negated,
	}
}

// soft appends a unit soft clause weight times. Weights are expressed by
// repetition so only plain soft clauses are needed from the solver.
func (pb *problem) soft(l maxsat.Lit, weight int) {
	for i := 0; i < weight; i++ {
		pb.constrs = append(pb.constrs, maxsat.SoftClause(l))
	}
}

// buildConstraintPresent biases the solution towards the status quo:
// installed packages prefer staying, unknown packages prefer staying out.
// Packages the request wants moved or removed get no keep preference.
func (pb *problem) buildConstraintPresent(cp *cudf.CPkg, req *pkg.Request) {
	name := pb.externalName(cp)
	requested := req.Names()[name]

	moved := false
	for _, atoms := range [][]*pkg.Atom{req.Remove, req.Upgrade} {
		for _, a := range atoms {
			if a.Name == name {
				moved = true
			}
		}
	}

	if cp.Installed && !moved {
		pb.soft(pb.lit(cp, false), weightKeepInstalled)
		return
	}
	if !cp.Installed && !requested {
		// newer versions are cheaper to pull in than older ones
		rank := 0
		for _, other := range pb.byEsc[cp.Name] {
			if !other.Installed && other.Version > cp.Version {
				rank++
			}
		}
		pb.soft(pb.lit(cp, true), weightAvoidInstall+rank)
	}
}

// buildConstraintRelations encodes the dependency CNF of cp.
// E.g: A depends on B >= 2, with B having several or zero versions to choose
// from:
//     not(A) or B-2 or ... or B-5
// A clause with no candidate versions forbids installing A at all.
func (pb *problem) buildConstraintRelations(cp *cudf.CPkg) {
	for _, clause := range cp.Depends {
		lits := []maxsat.Lit{pb.lit(cp, true)}
		for _, catom := range clause {
			for _, cand := range pb.byEsc[catom.Name] {
				if cand != cp && catom.Matches(cand.Version) {
					lits = append(lits, pb.lit(cand, false))
				}
			}
		}
		pb.constrs = append(pb.constrs, maxsat.HardClause(lits...))
	}
}

// buildConstraintConflicts mutually excludes cp and every package matching
// one of its conflict atoms.
func (pb *problem) buildConstraintConflicts(cp *cudf.CPkg) {
	for _, catom := range cp.Conflicts {
		for _, other := range pb.byEsc[catom.Name] {
			if other != cp && catom.Matches(other.Version) {
				pb.constrs = append(pb.constrs,
					maxsat.HardClause(pb.lit(cp, true), pb.lit(other, true)))
			}
		}
	}
}

// buildConstraintAtMost1 excludes co-installation of the versions of a name.
// E.g: B having versions B-1, B-2, B-3:
//     not(B-1) + not(B-2) + not(B-3) >= 2  (at most 1 installed)
func (pb *problem) buildConstraintAtMost1(cp *cudf.CPkg) {
	versions := pb.byEsc[cp.Name]
	if len(versions) < 2 {
		return
	}
	lits := []maxsat.Lit{}
	coeffs := []int{}
	for _, v := range versions {
		lits = append(lits, pb.lit(v, true))
		coeffs = append(coeffs, 1)
	}
	pb.constrs = append(pb.constrs, maxsat.HardPBConstr(lits, coeffs, len(lits)-1))
}

// buildConstraintToModify encodes the request atoms: install and upgrade
// atoms require at least one matching version, remove atoms forbid every
// matching version. Soft clauses prefer the newest matching version.
func (pb *problem) buildConstraintToModify(req *pkg.Request) {
	for _, a := range req.Install {
		pb.requireOne(pb.installCandidates(a))
	}
	for _, a := range req.Upgrade {
		pb.requireOne(pb.upgradeCandidates(a))
	}
	for _, a := range req.Remove {
		for _, p := range pb.universe.Matching(a) {
			cp := pb.byExtFP[p.GetFingerPrint()]
			pb.constrs = append(pb.constrs, maxsat.HardClause(pb.lit(cp, true)))
		}
	}
}

func (pb *problem) installCandidates(a *pkg.Atom) []*cudf.CPkg {
	cands := []*cudf.CPkg{}
	for _, p := range pb.universe.Matching(a) {
		cands = append(cands, pb.byExtFP[p.GetFingerPrint()])
	}
	return cands
}

// upgradeCandidates further restricts matching versions to those at or above
// the currently installed one. An equality-pinned atom names its exact
// version and is exempt from the floor.
func (pb *problem) upgradeCandidates(a *pkg.Atom) []*cudf.CPkg {
	installed := pb.universe.Installed(a.Name)
	pinned := a.Constraint != nil && a.Constraint.Op == pkg.OpEq
	cands := []*cudf.CPkg{}
	for _, p := range pb.universe.Matching(a) {
		if !pinned && installed != nil && pkg.CompareVersions(p.Version, installed.Version) < 0 {
			continue
		}
		cands = append(cands, pb.byExtFP[p.GetFingerPrint()])
	}
	return cands
}

// requireOne adds an at-least-one constraint over cands, plus soft clauses
// preferring the newest candidate. cands is ascending by version.
func (pb *problem) requireOne(cands []*cudf.CPkg) {
	if len(cands) == 0 {
		return
	}
	lits := []maxsat.Lit{}
	coeffs := []int{}
	for _, cand := range cands {
		lits = append(lits, pb.lit(cand, false))
		coeffs = append(coeffs, 1)
	}
	pb.constrs = append(pb.constrs, maxsat.HardPBConstr(lits, coeffs, 1))

	for i, cand := range cands {
		pb.soft(pb.lit(cand, false), i+1)
	}
}

func (pb *problem) externalName(cp *cudf.CPkg) string {
	// names in the table always unescape; the encoder created them
	name, _ := pb.table.UnescapeName(cp.Name)
	return name
}

// targetUniverse folds the model back into a universe: every package of the
// input universe, with installed taken from its variable's binding. Packages
// the solver never saw a constraint for keep their current state.
func (pb *problem) targetUniverse(model []bool) (*pkg.Universe, error) {
	target := pkg.NewUniverse()
	for _, cp := range pb.cpkgs {
		name := pb.externalName(cp)
		version, err := pb.table.DecodeVersion(name, cp.Version)
		if err != nil {
			return nil, err
		}
		orig := pb.universe.GetPackage(name, version)
		if orig == nil {
			return nil, errors.Wrapf(ErrSolverInternal, "model names unknown package %s-%s", name, version)
		}

		installed := cp.Installed
		if cp.ID != -1 {
			if cp.ID-1 >= len(model) {
				return nil, errors.Wrapf(ErrSolverInternal, "model too short for id %d", cp.ID)
			}
			installed = model[cp.ID-1]
		}

		copied := *orig
		copied.ID = -1
		copied.Installed = installed
		if err := target.Add(&copied); err != nil {
			return nil, errors.Wrap(ErrSolverInternal, err.Error())
		}
	}
	return target, nil
}
