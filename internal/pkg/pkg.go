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
	"bytes"
	"encoding/json"
	"fmt"
)

// Pkg is the minimum object the resolver reasons about. It is comprised of a
// package name, its version, and its relations to the rest of the universe
// (dependencies, conflicts, optional dependencies).
// Note that each package is unique: the same name with a different version is
// a different package. E.g: ocaml-4.11.0 and ocaml-4.12.0 are different
// packages.
type Pkg struct {
	ID              int `json:"-" yaml:"-"` // position in the solver model, default -1
	Name            string
	Version         string
	Installed       bool
	Depends         [][]*Atom `json:",omitempty" yaml:",omitempty"` // CNF: conjunction of disjunctive clauses
	Conflicts       []*Atom   `json:",omitempty" yaml:",omitempty"`
	DependsOptional [][]*Atom `json:",omitempty" yaml:",omitempty"` // same shape as Depends; satisfied if possible
	// Extras carries opaque properties for round-tripping through the
	// encoder. The textual form of DependsOptional lives here under the
	// "depopts" key.
	Extras map[string]string `json:",omitempty" yaml:",omitempty"`
}

func NewPkg(name, version string, installed bool) *Pkg {
	return &Pkg{
		ID:        -1,
		Name:      name,
		Version:   version,
		Installed: installed,
	}
}

// NewPkgMock creates a new package with the given relations already wired.
// Useful for testing.
func NewPkgMock(name, version string,
	depends, dependsOptional [][]*Atom, installed bool) *Pkg {

	p := NewPkg(name, version, installed)
	p.Depends = depends
	p.DependsOptional = dependsOptional
	return p
}

// JSON serializes package p into JSON, returning a []byte
func (p *Pkg) JSON() ([]byte, error) {
	buffer := &bytes.Buffer{}
	encoder := json.NewEncoder(buffer)
	encoder.SetEscapeHTML(false)
	err := encoder.Encode(p)
	return buffer.Bytes(), err
}

// GetFingerPrint returns a unique id of the package.
func (p *Pkg) GetFingerPrint() string {
	return fmt.Sprintf("%s-%s", p.Name, p.Version)
}

func CreateFingerPrint(name, version string) string {
	return fmt.Sprintf("%s-%s", name, version)
}

// GetBaseFingerPrint returns a unique id of the package minus version.
// This helps when filtering packages to find those that are similar and differ
// only in the version.
func (p *Pkg) GetBaseFingerPrint() string {
	return p.Name
}

func (p *Pkg) String() string {
	return p.GetFingerPrint()
}

// Equal reports whether two packages denote the same (name, version) pair.
// Packages from different universes are related only by this identity, never
// by pointer.
func (p *Pkg) Equal(other *Pkg) bool {
	if p == nil || other == nil {
		return p == other
	}
	return p.Name == other.Name && p.Version == other.Version
}
