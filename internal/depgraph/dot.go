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

package depgraph

import (
	"fmt"
	"io"
)

// WriteDOT dumps the graph in graphviz form. Observability aid only.
func (g *Graph) WriteDOT(w io.Writer, name string) error {
	if _, err := fmt.Fprintf(w, "digraph %q {\n", name); err != nil {
		return err
	}
	for _, fp := range g.sortedFingerprints() {
		if _, err := fmt.Fprintf(w, "  %q;\n", fp); err != nil {
			return err
		}
	}
	for _, afp := range g.sortedFingerprints() {
		for _, b := range g.Successors(afp) {
			if _, err := fmt.Fprintf(w, "  %q -> %q;\n", afp, b.GetFingerPrint()); err != nil {
				return err
			}
		}
	}
	_, err := fmt.Fprintln(w, "}")
	return err
}
