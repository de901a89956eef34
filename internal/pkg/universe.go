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
	"sort"

	"github.com/Masterminds/log-go"
	"github.com/pkg/errors"
)

// Universe implements a database of 2 keys (fingerprint, name) and the
// packages known to one resolution. Each package name maps to a table of the
// versions it is available at.
//
// Invariant: at most one installed entry per name. Add enforces it.
type Universe struct {
	mapFingerprintToPkg map[string]*Pkg
	// map: name -> version -> fingerprint
	mapNameToVersions map[string]map[string]string
	// map: name -> fingerprint of the installed version
	mapNameToInstalled map[string]string
}

func NewUniverse() *Universe {
	return &Universe{
		mapFingerprintToPkg: make(map[string]*Pkg),
		mapNameToVersions:   make(map[string]map[string]string),
		mapNameToInstalled:  make(map[string]string),
	}
}

// Add adds a package to the universe. Adding a second installed version of a
// name is an error; adding the same (name, version) twice merges the entries,
// filling in only what the first one left unknown.
func (u *Universe) Add(p *Pkg) error {
	fp := p.GetFingerPrint()
	if existing, ok := u.mapFingerprintToPkg[fp]; ok {
		u.mapFingerprintToPkg[fp] = mergePkgs(existing, p)
	} else {
		u.mapFingerprintToPkg[fp] = p
	}

	versions, ok := u.mapNameToVersions[p.Name]
	if !ok {
		versions = make(map[string]string)
		u.mapNameToVersions[p.Name] = versions
	}
	versions[p.Version] = fp

	if u.mapFingerprintToPkg[fp].Installed {
		if prev, ok := u.mapNameToInstalled[p.Name]; ok && prev != fp {
			return errors.Errorf("universe: %s and %s cannot both be installed",
				prev, fp)
		}
		u.mapNameToInstalled[p.Name] = fp
	}
	return nil
}

// mergePkgs completes unknown info of the entry already in the universe with
// info from the new entry.
func mergePkgs(old, new *Pkg) *Pkg {
	result := old
	if !old.Installed {
		result.Installed = new.Installed
	}
	if len(old.Depends) == 0 {
		result.Depends = new.Depends
	}
	if len(old.Conflicts) == 0 {
		result.Conflicts = new.Conflicts
	}
	if len(old.DependsOptional) == 0 {
		result.DependsOptional = new.DependsOptional
	}
	if len(old.Extras) == 0 {
		result.Extras = new.Extras
	}
	return result
}

func (u *Universe) GetPackageByFingerprint(fp string) *Pkg {
	p, ok := u.mapFingerprintToPkg[fp]
	if !ok {
		return nil
	}
	return p
}

func (u *Universe) GetPackage(name, version string) *Pkg {
	return u.GetPackageByFingerprint(CreateFingerPrint(name, version))
}

// GetPackagesByName returns all versions of name, ordered ascending.
func (u *Universe) GetPackagesByName(name string) []*Pkg {
	versions, ok := u.mapNameToVersions[name]
	if !ok {
		return nil
	}
	ordered := make([]string, 0, len(versions))
	for v := range versions {
		ordered = append(ordered, v)
	}
	SortVersions(ordered)
	pkgs := make([]*Pkg, 0, len(ordered))
	for _, v := range ordered {
		pkgs = append(pkgs, u.mapFingerprintToPkg[versions[v]])
	}
	return pkgs
}

// Installed returns the installed version of name, or nil.
func (u *Universe) Installed(name string) *Pkg {
	fp, ok := u.mapNameToInstalled[name]
	if !ok {
		return nil
	}
	return u.mapFingerprintToPkg[fp]
}

// InstalledPackages returns every installed package, ordered by name.
func (u *Universe) InstalledPackages() []*Pkg {
	names := make([]string, 0, len(u.mapNameToInstalled))
	for name := range u.mapNameToInstalled {
		names = append(names, name)
	}
	sort.Strings(names)
	pkgs := make([]*Pkg, 0, len(names))
	for _, name := range names {
		pkgs = append(pkgs, u.mapFingerprintToPkg[u.mapNameToInstalled[name]])
	}
	return pkgs
}

// Names returns every package name, sorted.
func (u *Universe) Names() []string {
	names := make([]string, 0, len(u.mapNameToVersions))
	for name := range u.mapNameToVersions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Packages returns every package, ordered by name then version.
func (u *Universe) Packages() []*Pkg {
	pkgs := []*Pkg{}
	for _, name := range u.Names() {
		pkgs = append(pkgs, u.GetPackagesByName(name)...)
	}
	return pkgs
}

func (u *Universe) Len() int {
	return len(u.mapFingerprintToPkg)
}

// MaxVersion returns the highest known version of name, or "" when the name
// is unknown.
func (u *Universe) MaxVersion(name string) string {
	pkgs := u.GetPackagesByName(name)
	if len(pkgs) == 0 {
		return ""
	}
	return pkgs[len(pkgs)-1].Version
}

// Matching returns the packages satisfying atom a, ordered ascending by
// version.
func (u *Universe) Matching(a *Atom) []*Pkg {
	matching := []*Pkg{}
	for _, p := range u.GetPackagesByName(a.Name) {
		if a.Matches(p) {
			matching = append(matching, p)
		}
	}
	return matching
}

// Clone returns a deep-enough copy: package structs are copied, relation
// slices are shared since they are never mutated after construction.
func (u *Universe) Clone() *Universe {
	clone := NewUniverse()
	for _, p := range u.Packages() {
		copied := *p
		// errors are impossible here, the source universe held the invariant
		_ = clone.Add(&copied)
	}
	return clone
}

func (u *Universe) DebugPrintDB(logger log.Logger) {
	logger.Debugf("Printing universe")
	for _, p := range u.Packages() {
		logger.Debug(p.String())
	}
}
