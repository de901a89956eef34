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
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// The YAML document formats for universes and requests. Depends and depopts
// are CNF: a list of clauses, each clause a list of atom strings meaning a
// disjunction.

type pkgDoc struct {
	Name      string     `yaml:"name"`
	Version   string     `yaml:"version"`
	Installed bool       `yaml:"installed,omitempty"`
	Depends   [][]string `yaml:"depends,omitempty"`
	Conflicts []string   `yaml:"conflicts,omitempty"`
	Depopts   [][]string `yaml:"depopts,omitempty"`
}

type universeDoc struct {
	Packages []pkgDoc `yaml:"packages"`
}

type requestDoc struct {
	Install []string `yaml:"install,omitempty"`
	Remove  []string `yaml:"remove,omitempty"`
	Upgrade []string `yaml:"upgrade,omitempty"`
}

func parseCNF(clauses [][]string) ([][]*Atom, error) {
	if len(clauses) == 0 {
		return nil, nil
	}
	cnf := make([][]*Atom, 0, len(clauses))
	for _, clause := range clauses {
		atoms := make([]*Atom, 0, len(clause))
		for _, s := range clause {
			a, err := ParseAtom(s)
			if err != nil {
				return nil, err
			}
			atoms = append(atoms, a)
		}
		cnf = append(cnf, atoms)
	}
	return cnf, nil
}

func parseAtomList(strs []string) ([]*Atom, error) {
	if len(strs) == 0 {
		return nil, nil
	}
	atoms := make([]*Atom, 0, len(strs))
	for _, s := range strs {
		a, err := ParseAtom(s)
		if err != nil {
			return nil, err
		}
		atoms = append(atoms, a)
	}
	return atoms, nil
}

// LoadUniverse builds a universe from its YAML document form.
func LoadUniverse(data []byte) (*Universe, error) {
	doc := universeDoc{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "loading universe")
	}

	u := NewUniverse()
	for _, pd := range doc.Packages {
		if pd.Name == "" || pd.Version == "" {
			return nil, errors.Errorf("loading universe: package without name or version")
		}
		p := NewPkg(pd.Name, pd.Version, pd.Installed)
		var err error
		if p.Depends, err = parseCNF(pd.Depends); err != nil {
			return nil, errors.Wrapf(err, "loading universe: package %s", p)
		}
		if p.Conflicts, err = parseAtomList(pd.Conflicts); err != nil {
			return nil, errors.Wrapf(err, "loading universe: package %s", p)
		}
		if p.DependsOptional, err = parseCNF(pd.Depopts); err != nil {
			return nil, errors.Wrapf(err, "loading universe: package %s", p)
		}
		if err := u.Add(p); err != nil {
			return nil, err
		}
	}
	return u, nil
}

// LoadRequest builds a request from its YAML document form.
func LoadRequest(data []byte) (*Request, error) {
	doc := requestDoc{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "loading request")
	}

	r := &Request{}
	var err error
	if r.Install, err = parseAtomList(doc.Install); err != nil {
		return nil, errors.Wrap(err, "loading request")
	}
	if r.Remove, err = parseAtomList(doc.Remove); err != nil {
		return nil, errors.Wrap(err, "loading request")
	}
	if r.Upgrade, err = parseAtomList(doc.Upgrade); err != nil {
		return nil, errors.Wrap(err, "loading request")
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}
