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
	"io"
	"strings"

	pkg "github.com/stonefir/opam/internal/pkg"
)

// WriteUniverse dumps the universe in CUDF-style stanzas, in encoded form.
// Observability aid only: absence of these dumps must not affect behavior.
func WriteUniverse(w io.Writer, t *Table, u *pkg.Universe) error {
	if _, err := fmt.Fprintf(w, "preamble: \nproperty: %s: string = [\"\"]\n\n", PropertyDepopts); err != nil {
		return err
	}
	for _, p := range u.Packages() {
		cp, err := t.ToConstraintPkg(p, false)
		if err != nil {
			return err
		}
		if err := writeStanza(w, cp); err != nil {
			return err
		}
	}
	return nil
}

func writeStanza(w io.Writer, cp *CPkg) error {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("package: %s\n", cp.Name))
	sb.WriteString(fmt.Sprintf("version: %d\n", cp.Version))
	if len(cp.Depends) > 0 {
		clauses := make([]string, 0, len(cp.Depends))
		for _, clause := range cp.Depends {
			alts := make([]string, 0, len(clause))
			for _, a := range clause {
				alts = append(alts, a.String())
			}
			clauses = append(clauses, strings.Join(alts, " | "))
		}
		sb.WriteString(fmt.Sprintf("depends: %s\n", strings.Join(clauses, ", ")))
	}
	if len(cp.Conflicts) > 0 {
		alts := make([]string, 0, len(cp.Conflicts))
		for _, a := range cp.Conflicts {
			alts = append(alts, a.String())
		}
		sb.WriteString(fmt.Sprintf("conflicts: %s\n", strings.Join(alts, ", ")))
	}
	if formula, ok := cp.Extras[PropertyDepopts]; ok && formula != "" {
		sb.WriteString(fmt.Sprintf("%s: [%q]\n", PropertyDepopts, formula))
	}
	if cp.Installed {
		sb.WriteString("installed: true\n")
	}
	sb.WriteString("\n")
	_, err := io.WriteString(w, sb.String())
	return err
}
