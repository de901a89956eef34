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
	"strings"

	"github.com/pkg/errors"

	pkg "github.com/stonefir/opam/internal/pkg"
)

// PropertyDepopts is the extras key the optional-dependency formula rides
// under, matching the preamble-declared property of the constraint documents.
const PropertyDepopts = "depopts"

// ParseDepoptFormula parses the textual optional-dependency formula: clauses
// separated by commas, alternatives inside a clause separated by "|".
// E.g: "a>=1.0.0 | b, c".
func ParseDepoptFormula(formula string) ([][]*pkg.Atom, error) {
	formula = strings.TrimSpace(formula)
	if formula == "" {
		return nil, nil
	}
	cnf := [][]*pkg.Atom{}
	for _, clause := range strings.Split(formula, ",") {
		atoms, err := pkg.ParseClause(clause)
		if err != nil {
			return nil, errors.Wrapf(ErrMalformedDepopt, "%q: %v", formula, err)
		}
		cnf = append(cnf, atoms)
	}
	return cnf, nil
}

// FormatDepoptFormula renders a CNF back to the textual formula, inverse of
// ParseDepoptFormula.
func FormatDepoptFormula(cnf [][]*pkg.Atom) string {
	clauses := make([]string, 0, len(cnf))
	for _, clause := range cnf {
		clauses = append(clauses, pkg.FormatClause(clause))
	}
	return strings.Join(clauses, ", ")
}
