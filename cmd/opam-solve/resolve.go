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

package main

import (
	"fmt"
	"io/ioutil"
	"os"

	"github.com/Masterminds/log-go"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	pkg "github.com/stonefir/opam/internal/pkg"
	"github.com/stonefir/opam/internal/solver"
	"github.com/stonefir/opam/pkg/eyecandy"
	"github.com/stonefir/opam/pkg/resolver"
)

const resolveDesc = `
This command resolves a request (packages to install, remove, upgrade)
against a universe of available package versions, and prints either the
resulting action plan or an explanation of why no plan exists.
`

func loadInputs(universeFile, requestFile string) (*pkg.Universe, *pkg.Request, error) {
	udata, err := ioutil.ReadFile(universeFile)
	if err != nil {
		return nil, nil, errors.Wrap(err, "reading universe")
	}
	u, err := pkg.LoadUniverse(udata)
	if err != nil {
		return nil, nil, err
	}
	rdata, err := ioutil.ReadFile(requestFile)
	if err != nil {
		return nil, nil, errors.Wrap(err, "reading request")
	}
	req, err := pkg.LoadRequest(rdata)
	if err != nil {
		return nil, nil, err
	}
	return u, req, nil
}

func parseOutputMode(s string) (resolver.OutputMode, error) {
	switch s {
	case "table":
		return resolver.Table, nil
	case "yaml":
		return resolver.YAML, nil
	case "json":
		return resolver.JSON, nil
	}
	return resolver.Table, errors.Errorf("unknown output format %q", s)
}

func newResolveCmd(logger log.Logger) *cobra.Command {
	var universeFile, requestFile, output string

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "resolve a request against a universe and print the plan",
		Long:  resolveDesc,
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := parseOutputMode(output)
			if err != nil {
				return err
			}
			u, req, err := loadInputs(universeFile, requestFile)
			if err != nil {
				return err
			}

			r := resolver.New(solver.NewGophersat(), settings, logger)
			plan, conflict, err := r.Resolve(u, req)
			if err != nil {
				return err
			}
			if conflict != nil {
				logger.Error(eyecandy.Red(eyecandy.ESPrint(settings.NoEmojis,
					":cross_mark: The request cannot be satisfied")))
				fmt.Fprint(os.Stderr, conflict())
				return errors.New("no solution found")
			}

			if mode == resolver.Table {
				r.PrintPlan(plan)
			} else {
				fmt.Fprint(os.Stdout, resolver.FormatOutput(plan, mode))
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&universeFile, "universe", "u", "universe.yaml", "universe YAML file")
	f.StringVarP(&requestFile, "request", "r", "request.yaml", "request YAML file")
	f.StringVarP(&output, "output", "o", "table", "output format: table, yaml or json")

	return cmd
}
