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
	"strings"

	pkg "github.com/stonefir/opam/internal/pkg"
)

// SentinelRequestName is the name of the synthetic package representing the
// user's request at the root of reason chains.
const SentinelRequestName = "dose-dummy-request"

// sentinelPrefixes is the full set of recognized synthetic-vertex names;
// solver versions differ on what they inject.
var sentinelPrefixes = []string{"dose-dummy-request", "dummy"}

// IsSentinel reports whether name denotes a synthetic request vertex rather
// than a real package.
func IsSentinel(name string) bool {
	for _, prefix := range sentinelPrefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

// Reason is an atomic fact explaining an unsatisfiable request.
type Reason interface {
	isReason()
}

// Conflict means a and b cannot be installed together.
type Conflict struct {
	First   *pkg.Pkg
	Second  *pkg.Pkg
	Context string
}

// Missing means no package satisfies a dependency clause of Pkg.
type Missing struct {
	Pkg    *pkg.Pkg
	Clause []*pkg.Atom
}

// Dependency records that From depends, through Clause, on the candidate
// packages. The Dependency facts form a DAG whose single root is the
// synthetic request vertex.
type Dependency struct {
	From       *pkg.Pkg
	Clause     []*pkg.Atom
	Candidates []*pkg.Pkg
}

func (Conflict) isReason()   {}
func (Missing) isReason()    {}
func (Dependency) isReason() {}
