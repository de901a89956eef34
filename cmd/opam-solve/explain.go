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
	"os"

	"github.com/Masterminds/log-go"
	"github.com/spf13/cobra"

	"github.com/stonefir/opam/internal/solver"
	"github.com/stonefir/opam/pkg/eyecandy"
	"github.com/stonefir/opam/pkg/resolver"
)

const explainDesc = `
This command resolves a request against a universe and, when no plan exists,
prints the conflict report: the unsatisfiable facts and the dependency
chains leading to them. A satisfiable request reports that there is nothing
to explain.
`

func newExplainCmd(logger log.Logger) *cobra.Command {
	var universeFile, requestFile string

	cmd := &cobra.Command{
		Use:   "explain",
		Short: "explain why a request cannot be satisfied",
		Long:  explainDesc,
		RunE: func(cmd *cobra.Command, args []string) error {
			u, req, err := loadInputs(universeFile, requestFile)
			if err != nil {
				return err
			}

			r := resolver.New(solver.NewGophersat(), settings, logger)
			_, conflict, err := r.Resolve(u, req)
			if err != nil {
				return err
			}
			if conflict == nil {
				logger.Info(eyecandy.ESPrint(settings.NoEmojis,
					":sparkles: The request is satisfiable, nothing to explain"))
				return nil
			}

			logger.Error(eyecandy.Red(eyecandy.ESPrint(settings.NoEmojis,
				":cross_mark: The request cannot be satisfied")))
			fmt.Fprint(os.Stdout, conflict())
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&universeFile, "universe", "u", "universe.yaml", "universe YAML file")
	f.StringVarP(&requestFile, "request", "r", "request.yaml", "request YAML file")

	return cmd
}
