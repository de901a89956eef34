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
	"github.com/pkg/errors"

	pkg "github.com/stonefir/opam/internal/pkg"
)

// ErrSolverInternal means the base solver failed for reasons of its own;
// callers treat it as fatal.
var ErrSolverInternal = errors.New("solver internal error")

type Status int

const (
	Sat Status = iota
	Unsat
	Fatal
)

func (s Status) String() string {
	switch s {
	case Sat:
		return "SAT"
	case Unsat:
		return "UNSAT"
	case Fatal:
		return "ERROR"
	}
	return "UNKNOWN"
}

// Answer is the outcome of one solver call.
//
// Sat carries a target universe with installed set on exactly the packages
// that are supposed to be installed after the operation. Unsat carries the
// reason facts. Fatal carries the error.
type Answer struct {
	Status   Status
	Universe *pkg.Universe
	Reasons  []Reason
	Err      error
}

// Solver is the narrow contract the resolution pipeline needs from a
// SAT-style dependency solver. When withOptional is set, optional
// dependencies are compiled as hard ones.
type Solver interface {
	CheckRequest(u *pkg.Universe, req *pkg.Request, withOptional bool) *Answer
}
