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

package pkg

import (
	"fmt"
	"strings"

	shellwords "github.com/mattn/go-shellwords"
	"github.com/pkg/errors"
)

// RelOp is a version relational operator.
type RelOp int

const (
	OpEq RelOp = iota
	OpNeq
	OpLt
	OpLeq
	OpGt
	OpGeq
)

func (op RelOp) String() string {
	switch op {
	case OpEq:
		return "="
	case OpNeq:
		return "!="
	case OpLt:
		return "<"
	case OpLeq:
		return "<="
	case OpGt:
		return ">"
	case OpGeq:
		return ">="
	}
	return "?"
}

// VersionConstraint restricts the versions an atom accepts. A nil
// *VersionConstraint means any version.
type VersionConstraint struct {
	Op      RelOp
	Version string
}

// Matches reports whether version satisfies the constraint.
func (c *VersionConstraint) Matches(version string) bool {
	if c == nil {
		return true
	}
	cmp := CompareVersions(version, c.Version)
	switch c.Op {
	case OpEq:
		return cmp == 0
	case OpNeq:
		return cmp != 0
	case OpLt:
		return cmp < 0
	case OpLeq:
		return cmp <= 0
	case OpGt:
		return cmp > 0
	case OpGeq:
		return cmp >= 0
	}
	return false
}

func (c *VersionConstraint) String() string {
	if c == nil {
		return ""
	}
	return fmt.Sprintf("%s%s", c.Op, c.Version)
}

// Atom is a package name plus an optional version constraint. It is the unit
// requests and relations are made of.
type Atom struct {
	Name       string
	Constraint *VersionConstraint
}

func NewAtom(name string) *Atom {
	return &Atom{Name: name}
}

func NewConstrainedAtom(name string, op RelOp, version string) *Atom {
	return &Atom{Name: name, Constraint: &VersionConstraint{Op: op, Version: version}}
}

// Matches reports whether package p satisfies the atom.
func (a *Atom) Matches(p *Pkg) bool {
	if a.Name != p.Name {
		return false
	}
	return a.Constraint.Matches(p.Version)
}

func (a *Atom) String() string {
	if a.Constraint == nil {
		return a.Name
	}
	return fmt.Sprintf("%s%s", a.Name, a.Constraint)
}

// relops, longest first so ">=" is found before ">".
var relops = []struct {
	token string
	op    RelOp
}{
	{">=", OpGeq},
	{"<=", OpLeq},
	{"!=", OpNeq},
	{">", OpGt},
	{"<", OpLt},
	{"=", OpEq},
}

// ParseAtom parses an atom written as "name", "name=1.0.0", "name>=1.0.0" and
// so on. Whitespace between name, operator and version is accepted, as atoms
// coming from depopt formulas or the command line may be spaced out.
func ParseAtom(s string) (*Atom, error) {
	// '<' and '>' are escaped so the tokenizer keeps them as literal
	// characters instead of reading them as shell redirections
	tokens, err := shellwords.Parse(strings.NewReplacer("<", `\<`, ">", `\>`).Replace(s))
	if err != nil {
		return nil, errors.Wrapf(err, "parsing atom %q", s)
	}
	joined := strings.Join(tokens, "")
	if joined == "" {
		return nil, errors.Errorf("parsing atom %q: empty atom", s)
	}

	for _, r := range relops {
		i := strings.Index(joined, r.token)
		if i < 0 {
			continue
		}
		name := joined[:i]
		version := joined[i+len(r.token):]
		if name == "" || version == "" {
			return nil, errors.Errorf("parsing atom %q: missing name or version", s)
		}
		return NewConstrainedAtom(name, r.op, version), nil
	}
	return NewAtom(joined), nil
}

// ParseClause parses a disjunction of atoms separated by "|".
func ParseClause(s string) ([]*Atom, error) {
	clause := []*Atom{}
	for _, alt := range strings.Split(s, "|") {
		alt = strings.TrimSpace(alt)
		if alt == "" {
			return nil, errors.Errorf("parsing clause %q: empty alternative", s)
		}
		a, err := ParseAtom(alt)
		if err != nil {
			return nil, err
		}
		clause = append(clause, a)
	}
	return clause, nil
}

// FormatClause renders a disjunction of atoms, inverse of ParseClause.
func FormatClause(clause []*Atom) string {
	alts := make([]string, 0, len(clause))
	for _, a := range clause {
		alts = append(alts, a.String())
	}
	return strings.Join(alts, " | ")
}
