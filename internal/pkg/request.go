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

	"github.com/pkg/errors"
)

// Request is what the user asked for, normalized to three atom lists. A
// constraint-less install atom means "install whatever version satisfies the
// rest of the system"; a constraint-bearing atom pins the version.
type Request struct {
	Install []*Atom
	Remove  []*Atom
	Upgrade []*Atom
}

// Validate checks the request invariants: the install and remove name sets
// must be disjoint.
func (r *Request) Validate() error {
	installed := map[string]bool{}
	for _, a := range r.Install {
		installed[a.Name] = true
	}
	for _, a := range r.Remove {
		if installed[a.Name] {
			return errors.Errorf("request: %s is in both install and remove", a.Name)
		}
	}
	return nil
}

// PureRemoval reports whether the request only removes packages.
func (r *Request) PureRemoval() bool {
	return len(r.Remove) > 0 && len(r.Install) == 0 && len(r.Upgrade) == 0
}

// Names returns the set of names the request mentions.
func (r *Request) Names() map[string]bool {
	names := map[string]bool{}
	for _, atoms := range [][]*Atom{r.Install, r.Remove, r.Upgrade} {
		for _, a := range atoms {
			names[a.Name] = true
		}
	}
	return names
}

// RemoveNames returns the set of names the request removes.
func (r *Request) RemoveNames() map[string]bool {
	names := map[string]bool{}
	for _, a := range r.Remove {
		names[a.Name] = true
	}
	return names
}

func (r *Request) String() string {
	part := func(verb string, atoms []*Atom) string {
		if len(atoms) == 0 {
			return ""
		}
		strs := make([]string, 0, len(atoms))
		for _, a := range atoms {
			strs = append(strs, a.String())
		}
		return fmt.Sprintf("%s(%s)", verb, strings.Join(strs, ", "))
	}
	parts := []string{}
	for _, s := range []string{
		part("install", r.Install),
		part("remove", r.Remove),
		part("upgrade", r.Upgrade),
	} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return "empty request"
	}
	return strings.Join(parts, " ")
}
