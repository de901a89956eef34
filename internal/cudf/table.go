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

// Package cudf translates between the external package model (human version
// strings, CNF formulas, optional dependencies in extras) and the
// integer-versioned constraint model the base solver consumes.
//
// Integer versions are dense and start at 1, as pseudo-boolean ids cannot be
// 0, and are monotonic in the external version comparator.
package cudf

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	pkg "github.com/stonefir/opam/internal/pkg"
)

// Table owns the name and version mappings for the duration of one
// resolution. Every translation between encoded and external forms goes
// through it.
type Table struct {
	mapNameToEscaped map[string]string
	mapEscapedToName map[string]string
	// map: name -> version string -> dense integer version
	mapVersionToInt map[string]map[string]int
	// map: name -> dense integer version -> version string
	mapIntToVersion map[string]map[int]string
	// map: fingerprint -> parsed optional-dependency CNF. Parsed once at
	// init, so the textual formula is never re-parsed on access.
	depoptCache map[string][][]*pkg.Atom
}

// Init scans the universe, assigns a dense integer version per
// (name, version) pair, records the name escapings, and parses every
// optional-dependency formula into the cache.
func Init(u *pkg.Universe) (*Table, error) {
	t := &Table{
		mapNameToEscaped: make(map[string]string),
		mapEscapedToName: make(map[string]string),
		mapVersionToInt:  make(map[string]map[string]int),
		mapIntToVersion:  make(map[string]map[int]string),
		depoptCache:      make(map[string][][]*pkg.Atom),
	}

	for _, name := range u.Names() {
		esc := escapeName(name)
		t.mapNameToEscaped[name] = esc
		t.mapEscapedToName[esc] = name

		t.mapVersionToInt[name] = make(map[string]int)
		t.mapIntToVersion[name] = make(map[int]string)
		for i, p := range u.GetPackagesByName(name) {
			t.mapVersionToInt[name][p.Version] = i + 1
			t.mapIntToVersion[name][i+1] = p.Version
		}
	}

	for _, p := range u.Packages() {
		cnf := p.DependsOptional
		if cnf == nil && p.Extras[PropertyDepopts] != "" {
			parsed, err := ParseDepoptFormula(p.Extras[PropertyDepopts])
			if err != nil {
				return nil, errors.Wrapf(err, "package %s", p)
			}
			cnf = parsed
		}
		if cnf != nil {
			t.depoptCache[p.GetFingerPrint()] = cnf
		}
	}

	return t, nil
}

// OptionalDeps returns the parsed optional-dependency CNF of p, from the
// cache built at init.
func (t *Table) OptionalDeps(p *pkg.Pkg) [][]*pkg.Atom {
	return t.depoptCache[p.GetFingerPrint()]
}

// registerName records the escaping of a name the init scan never saw, so
// that atoms referencing unknown packages still escape reversibly.
func (t *Table) registerName(name string) string {
	esc := escapeName(name)
	t.mapNameToEscaped[name] = esc
	t.mapEscapedToName[esc] = name
	return esc
}

// EscapeName returns the solver-safe form of name.
func (t *Table) EscapeName(name string) (string, error) {
	esc, ok := t.mapNameToEscaped[name]
	if !ok {
		return "", errors.Wrap(ErrUnknownName, name)
	}
	return esc, nil
}

// UnescapeName is the inverse of EscapeName.
func (t *Table) UnescapeName(escaped string) (string, error) {
	name, ok := t.mapEscapedToName[escaped]
	if !ok {
		return "", errors.Wrap(ErrUnknownName, escaped)
	}
	return name, nil
}

// EncodeVersion returns the dense integer version of (name, version).
func (t *Table) EncodeVersion(name, version string) (int, error) {
	versions, ok := t.mapVersionToInt[name]
	if !ok {
		return 0, errors.Wrap(ErrUnknownName, name)
	}
	v, ok := versions[version]
	if !ok {
		return 0, errors.Wrapf(ErrUnknownName, "%s version %s", name, version)
	}
	return v, nil
}

// DecodeVersion is the inverse of EncodeVersion.
func (t *Table) DecodeVersion(name string, v int) (string, error) {
	versions, ok := t.mapIntToVersion[name]
	if !ok {
		return "", errors.Wrap(ErrUnknownName, name)
	}
	version, ok := versions[v]
	if !ok {
		return "", errors.Wrapf(ErrUnknownName, "%s version id %d", name, v)
	}
	return version, nil
}

// VersionCount returns how many versions of name the table knows.
func (t *Table) VersionCount(name string) int {
	return len(t.mapVersionToInt[name])
}

// versionsAsc returns the known versions of name, ascending.
func (t *Table) versionsAsc(name string) []string {
	versions := make([]string, 0, len(t.mapVersionToInt[name]))
	for v := range t.mapVersionToInt[name] {
		versions = append(versions, v)
	}
	pkg.SortVersions(versions)
	return versions
}

// The base solver only accepts names over [a-z A-Z 0-9 - + . @], anything
// else is percent-escaped. The escaping is reversible since '%' itself is
// escaped.
func nameByteAllowed(b byte) bool {
	switch {
	case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b >= '0' && b <= '9':
		return true
	case b == '-', b == '+', b == '.', b == '@':
		return true
	}
	return false
}

func escapeName(name string) string {
	var sb strings.Builder
	for i := 0; i < len(name); i++ {
		b := name[i]
		if nameByteAllowed(b) {
			sb.WriteByte(b)
		} else {
			sb.WriteString(fmt.Sprintf("%%%02x", b))
		}
	}
	return sb.String()
}
