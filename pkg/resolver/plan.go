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

package resolver

import (
	"encoding/json"
	"strings"

	"github.com/gosuri/uitable"
	"gopkg.in/yaml.v2"

	pkg "github.com/stonefir/opam/internal/pkg"
	"github.com/stonefir/opam/pkg/eyecandy"
)

// Plan is the resolution outcome: an ordered removal list and a DAG of
// actions to perform. Executing ToRemove in order, then the ToAdd actions in
// any topological order respecting the edges, transitions the system to a
// state satisfying the request.
type Plan struct {
	ToRemove []*pkg.Pkg
	ToAdd    *ActionGraph
}

// Stats counts the plan's actions per category. A reinstall is a recompile
// or a same-version change.
type Stats struct {
	Install   int
	Reinstall int
	Upgrade   int
	Downgrade int
	Remove    int
}

// CalculateStats is a side computation over the final plan.
func CalculateStats(p *Plan) Stats {
	s := Stats{Remove: len(p.ToRemove)}
	for _, a := range p.ToAdd.Actions() {
		switch a.Kind {
		case Install:
			s.Install++
		case Upgrade:
			s.Upgrade++
		case Downgrade:
			s.Downgrade++
		case Recompile:
			s.Reinstall++
		}
	}
	return s
}

// DeleteOrUpdate reports whether the plan removes a package or changes a
// version, as opposed to only installing fresh packages or recompiling.
func DeleteOrUpdate(p *Plan) bool {
	if len(p.ToRemove) > 0 {
		return true
	}
	for _, a := range p.ToAdd.Actions() {
		if a.Kind == Upgrade || a.Kind == Downgrade {
			return true
		}
	}
	return false
}

type OutputMode int

const (
	JSON OutputMode = iota
	YAML
	Table
)

// planDoc is the marshalled form of a plan.
type planDoc struct {
	ToRemove []string    `json:"toRemove,omitempty" yaml:"toRemove,omitempty"`
	Actions  []actionDoc `json:"actions" yaml:"actions"`
	Edges    [][2]string `json:"edges,omitempty" yaml:"edges,omitempty"`
}

type actionDoc struct {
	Action  string `json:"action" yaml:"action"`
	Package string `json:"package" yaml:"package"`
	Old     string `json:"old,omitempty" yaml:"old,omitempty"`
	New     string `json:"new,omitempty" yaml:"new,omitempty"`
}

func planToDoc(p *Plan) planDoc {
	doc := planDoc{Actions: []actionDoc{}}
	for _, rm := range p.ToRemove {
		doc.ToRemove = append(doc.ToRemove, rm.GetFingerPrint())
	}
	actions, err := p.ToAdd.TopoOrder()
	if err != nil {
		// the builder verified acyclicity; fall back to arbitrary order
		actions = p.ToAdd.Actions()
	}
	for _, a := range actions {
		ad := actionDoc{Action: a.Kind.String(), Package: a.Pkg().Name}
		if a.Old != nil {
			ad.Old = a.Old.Version
		}
		if a.New != nil {
			ad.New = a.New.Version
		}
		doc.Actions = append(doc.Actions, ad)
	}
	for _, e := range p.ToAdd.Edges() {
		doc.Edges = append(doc.Edges,
			[2]string{e[0].Pkg().GetFingerPrint(), e[1].Pkg().GetFingerPrint()})
	}
	return doc
}

// FormatOutput renders the plan in the selected mode.
func FormatOutput(p *Plan, t OutputMode) string {
	var sb strings.Builder
	switch t {
	case Table:
		table := uitable.New()
		table.AddRow("ACTION", "PACKAGE", "OLD", "NEW")
		doc := planToDoc(p)
		for _, rm := range p.ToRemove {
			table.AddRow("remove", rm.Name, rm.Version, "")
		}
		for _, a := range doc.Actions {
			table.AddRow(a.Action, a.Package, a.Old, a.New)
		}
		sb.WriteString(table.String())
		sb.WriteString("\n")
	case YAML:
		o, _ := yaml.Marshal(planToDoc(p))
		sb.WriteString(string(o))
	case JSON:
		o, _ := json.Marshal(planToDoc(p))
		sb.WriteString(string(o))
	}
	return sb.String()
}

// PrintPlan logs the plan in human-readable form.
func (r *Resolver) PrintPlan(p *Plan) {
	if len(p.ToRemove) == 0 && p.ToAdd.Len() == 0 {
		r.logger.Info(eyecandy.ESPrintf(r.settings.NoEmojis,
			":sparkles: Nothing to do, the system already satisfies the request"))
		return
	}

	r.logger.Info(eyecandy.ESPrintf(r.settings.NoEmojis,
		":memo: The following actions will be performed:"))
	for _, line := range strings.Split(FormatOutput(p, Table), "\n") {
		if line != "" {
			r.logger.Info(line)
		}
	}
	s := CalculateStats(p)
	r.logger.Info(eyecandy.ESPrintf(r.settings.NoEmojis,
		":bar_chart: %d to install, %d to upgrade, %d to downgrade, %d to recompile, %d to remove",
		s.Install, s.Upgrade, s.Downgrade, s.Reinstall, s.Remove))
	if DeleteOrUpdate(p) {
		r.logger.Warn(eyecandy.Yellow(eyecandy.ESPrint(r.settings.NoEmojis,
			":warning: This plan removes packages or changes installed versions")))
	}
}
