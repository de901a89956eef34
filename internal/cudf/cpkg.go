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

package cudf

import (
	"fmt"

	pkg "github.com/stonefir/opam/internal/pkg"
)

// CAtom is an encoded atom: escaped name plus an optional constraint over the
// dense integer versions. A version of 0 never matches anything, it is how an
// unsatisfiable constraint (e.g. "= 2.0.0" when no such version exists) is
// normalized.
type CAtom struct {
	Name        string
	Constrained bool
	Op          pkg.RelOp
	Version     int
}

// Matches reports whether the integer version satisfies the atom.
func (a CAtom) Matches(v int) bool {
	if !a.Constrained {
		return true
	}
	switch a.Op {
	case pkg.OpEq:
		return v == a.Version
	case pkg.OpNeq:
		return v != a.Version
	case pkg.OpLt:
		return v < a.Version
	case pkg.OpLeq:
		return v <= a.Version
	case pkg.OpGt:
		return v > a.Version
	case pkg.OpGeq:
		return v >= a.Version
	}
	return false
}

func (a CAtom) String() string {
	if !a.Constrained {
		return a.Name
	}
	return fmt.Sprintf("%s %s %d", a.Name, a.Op, a.Version)
}

// CPkg is an encoded package, the unit the base solver reasons about.
type CPkg struct {
	ID        int // position in the solver model, default -1
	Name      string
	Version   int
	Installed bool
	Depends   [][]CAtom
	Conflicts []CAtom
	Extras    map[string]string
}

// GetFingerPrint returns the solver variable for the encoded package. The
// separator cannot collide with escaped names, '=' is not in their alphabet.
func (cp *CPkg) GetFingerPrint() string {
	return fmt.Sprintf("%s=%d", cp.Name, cp.Version)
}

// EncodeAtom translates an atom to the integer-versioned form. Constraints
// naming a version absent from the table are normalized to an equivalent
// constraint over known versions, or to the never-matching atom when no known
// version can satisfy them. An atom naming a package the universe has no
// version of at all is not an error, it is a dependency nothing satisfies:
// it encodes to the never-matching atom too.
func (t *Table) EncodeAtom(a *pkg.Atom) (CAtom, error) {
	esc, err := t.EscapeName(a.Name)
	if err != nil {
		esc = t.registerName(a.Name)
		return CAtom{Name: esc, Constrained: true, Op: pkg.OpEq, Version: 0}, nil
	}
	if a.Constraint == nil {
		return CAtom{Name: esc}, nil
	}

	op, version := a.Constraint.Op, a.Constraint.Version
	if v, err := t.EncodeVersion(a.Name, version); err == nil {
		return CAtom{Name: esc, Constrained: true, Op: op, Version: v}, nil
	}

	// the constrained version is not in the table, normalize
	never := CAtom{Name: esc, Constrained: true, Op: pkg.OpEq, Version: 0}
	versions := t.versionsAsc(a.Name)
	switch op {
	case pkg.OpEq:
		return never, nil
	case pkg.OpNeq:
		return CAtom{Name: esc}, nil
	case pkg.OpGeq, pkg.OpGt:
		for i, known := range versions {
			if pkg.CompareVersions(known, version) > 0 {
				return CAtom{Name: esc, Constrained: true, Op: pkg.OpGeq, Version: i + 1}, nil
			}
		}
		return never, nil
	case pkg.OpLeq, pkg.OpLt:
		for i := len(versions) - 1; i >= 0; i-- {
			if pkg.CompareVersions(versions[i], version) < 0 {
				return CAtom{Name: esc, Constrained: true, Op: pkg.OpLeq, Version: i + 1}, nil
			}
		}
		return never, nil
	}
	return never, nil
}

// DecodeAtom is the inverse of EncodeAtom on well-formed inputs.
func (t *Table) DecodeAtom(a CAtom) (*pkg.Atom, error) {
	name, err := t.UnescapeName(a.Name)
	if err != nil {
		return nil, err
	}
	if !a.Constrained {
		return pkg.NewAtom(name), nil
	}
	version, err := t.DecodeVersion(name, a.Version)
	if err != nil {
		return nil, err
	}
	return pkg.NewConstrainedAtom(name, a.Op, version), nil
}

func (t *Table) encodeCNF(cnf [][]*pkg.Atom) ([][]CAtom, error) {
	if len(cnf) == 0 {
		return nil, nil
	}
	encoded := make([][]CAtom, 0, len(cnf))
	for _, clause := range cnf {
		eclause := make([]CAtom, 0, len(clause))
		for _, a := range clause {
			ea, err := t.EncodeAtom(a)
			if err != nil {
				return nil, err
			}
			eclause = append(eclause, ea)
		}
		encoded = append(encoded, eclause)
	}
	return encoded, nil
}

// ToConstraintPkg emits the encoded form of p. When withOptional is set, the
// cached optional-dependency clauses are merged into the hard dependencies,
// so that removals propagate through optionally-depending reverse dependents.
func (t *Table) ToConstraintPkg(p *pkg.Pkg, withOptional bool) (*CPkg, error) {
	esc, err := t.EscapeName(p.Name)
	if err != nil {
		return nil, err
	}
	v, err := t.EncodeVersion(p.Name, p.Version)
	if err != nil {
		return nil, err
	}

	cnf := p.Depends
	depopts := t.OptionalDeps(p)
	if withOptional && len(depopts) > 0 {
		cnf = append(append([][]*pkg.Atom{}, p.Depends...), depopts...)
	}
	depends, err := t.encodeCNF(cnf)
	if err != nil {
		return nil, err
	}

	conflicts := []CAtom{}
	for _, a := range p.Conflicts {
		ea, err := t.EncodeAtom(a)
		if err != nil {
			return nil, err
		}
		conflicts = append(conflicts, ea)
	}

	extras := map[string]string{}
	for k, v := range p.Extras {
		extras[k] = v
	}
	if len(depopts) > 0 {
		extras[PropertyDepopts] = FormatDepoptFormula(depopts)
	}

	return &CPkg{
		ID:        -1,
		Name:      esc,
		Version:   v,
		Installed: p.Installed,
		Depends:   depends,
		Conflicts: conflicts,
		Extras:    extras,
	}, nil
}

// FromConstraintPkg is the inverse of ToConstraintPkg. Optional dependencies
// are recovered from the extras formula, not from the depends field, since
// the encoder may have merged them there.
func (t *Table) FromConstraintPkg(cp *CPkg) (*pkg.Pkg, error) {
	name, err := t.UnescapeName(cp.Name)
	if err != nil {
		return nil, err
	}
	version, err := t.DecodeVersion(name, cp.Version)
	if err != nil {
		return nil, err
	}

	p := pkg.NewPkg(name, version, cp.Installed)
	for _, clause := range cp.Depends {
		decoded := make([]*pkg.Atom, 0, len(clause))
		for _, ea := range clause {
			a, err := t.DecodeAtom(ea)
			if err != nil {
				return nil, err
			}
			decoded = append(decoded, a)
		}
		p.Depends = append(p.Depends, decoded)
	}
	for _, ea := range cp.Conflicts {
		a, err := t.DecodeAtom(ea)
		if err != nil {
			return nil, err
		}
		p.Conflicts = append(p.Conflicts, a)
	}

	if formula, ok := cp.Extras[PropertyDepopts]; ok && formula != "" {
		depopts, err := ParseDepoptFormula(formula)
		if err != nil {
			return nil, err
		}
		p.DependsOptional = depopts
	}
	if len(cp.Extras) > 0 {
		p.Extras = map[string]string{}
		for k, v := range cp.Extras {
			p.Extras[k] = v
		}
	}
	return p, nil
}
