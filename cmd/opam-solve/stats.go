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
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"

	"github.com/stonefir/opam/internal/solver"
	"github.com/stonefir/opam/pkg/eyecandy"
	"github.com/stonefir/opam/pkg/resolver"
)

func newStatsCmd(logger log.Logger) *cobra.Command {
	var universeFile, requestFile string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "resolve a request and print plan statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
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

			out := struct {
				Stats          resolver.Stats `yaml:"stats"`
				DeleteOrUpdate bool           `yaml:"deleteOrUpdate"`
			}{
				Stats:          resolver.CalculateStats(plan),
				DeleteOrUpdate: resolver.DeleteOrUpdate(plan),
			}
			o, err := yaml.Marshal(out)
			if err != nil {
				return err
			}
			fmt.Fprint(os.Stdout, string(o))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&universeFile, "universe", "u", "universe.yaml", "universe YAML file")
	f.StringVarP(&requestFile, "request", "r", "request.yaml", "request YAML file")

	return cmd
}
