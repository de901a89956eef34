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
	"fmt"
	"strings"

	pkg "github.com/stonefir/opam/internal/pkg"
)

// Explain turns a reason list into a lazy report producer: formatting cost
// is paid only when the caller renders it.
func Explain(reasons []Reason) func() string {
	return func() string {
		return renderReport(reasons)
	}
}

// renderReport produces the two-part report: the atomic conflict/missing
// facts, then the dependency chains, rendered root to leaf as "a <- b <- c"
// (reading "a depends on b depends on c").
func renderReport(reasons []Reason) string {
	conflicts := []Conflict{}
	missing := []Missing{}
	deps := []Dependency{}
	for _, r := range reasons {
		switch fact := r.(type) {
		case Conflict:
			conflicts = append(conflicts, fact)
		case Missing:
			missing = append(missing, fact)
		case Dependency:
			deps = append(deps, fact)
		}
	}

	var sb strings.Builder
	sb.WriteString("The request cannot be satisfied:\n")
	for _, c := range conflicts {
		sb.WriteString(fmt.Sprintf("  - %s conflicts with %s (%s)\n",
			displayName(c.First), displayName(c.Second), c.Context))
	}
	for _, m := range missing {
		if IsSentinel(m.Pkg.Name) {
			sb.WriteString(fmt.Sprintf("  - missing: no package matches %s\n",
				pkg.FormatClause(m.Clause)))
		} else {
			sb.WriteString(fmt.Sprintf("  - missing: %s depends on %s, which no package satisfies\n",
				displayName(m.Pkg), pkg.FormatClause(m.Clause)))
		}
	}

	chains := unrollChains(deps)
	if len(chains) > 0 {
		sb.WriteString("The following dependency chains are involved:\n")
		for _, chain := range chains {
			sb.WriteString(fmt.Sprintf("  - %s\n", strings.Join(chain, " <- ")))
		}
	}
	return sb.String()
}

func displayName(p *pkg.Pkg) string {
	return p.Name
}

// unrollChains walks the Dependency multimap from the synthetic root to the
// leaves and returns each root-to-leaf path, with synthetic vertices
// filtered from the display and single-element chains dropped.
func unrollChains(deps []Dependency) [][]string {
	if len(deps) == 0 {
		return nil
	}

	children := map[string][]Dependency{}
	for _, d := range deps {
		fp := d.From.GetFingerPrint()
		children[fp] = append(children[fp], d)
	}

	// the first Dependency vertex is the synthetic request root
	root := deps[0].From

	chains := [][]string{}
	seen := map[string]bool{}
	emit := func(path []*pkg.Pkg) {
		display := []string{}
		for _, p := range path {
			if !IsSentinel(p.Name) {
				display = append(display, displayName(p))
			}
		}
		if len(display) < 2 {
			return
		}
		key := strings.Join(display, "<-")
		if !seen[key] {
			seen[key] = true
			chains = append(chains, display)
		}
	}

	var walk func(p *pkg.Pkg, path []*pkg.Pkg)
	walk = func(p *pkg.Pkg, path []*pkg.Pkg) {
		path = append(path, p)
		facts := children[p.GetFingerPrint()]
		extended := false
		for _, fact := range facts {
			for _, cand := range fact.Candidates {
				if onPath(path, cand) {
					continue
				}
				extended = true
				walk(cand, path)
			}
		}
		if !extended {
			emit(path)
		}
	}
	walk(root, nil)
	return chains
}

func onPath(path []*pkg.Pkg, p *pkg.Pkg) bool {
	for _, q := range path {
		if q.Equal(p) {
			return true
		}
	}
	return false
}
