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

// Package cli describes the operating environment of the resolver tooling.
package cli

import (
	"os"
	"strconv"

	"github.com/spf13/pflag"
)

// EnvSettings are the settable behaviors, initialized from the environment
// and overridable by flags.
type EnvSettings struct {
	// Debug enables verbose logging and the debug dumps.
	Debug bool
	// NoColors disables colorized output.
	NoColors bool
	// NoEmojis strips emojis from messages.
	NoEmojis bool
	// DumpDir is where debug dumps land.
	DumpDir string
}

func New() *EnvSettings {
	env := &EnvSettings{}
	env.Debug, _ = strconv.ParseBool(os.Getenv("OPAM_SOLVE_DEBUG"))
	env.NoColors, _ = strconv.ParseBool(os.Getenv("OPAM_SOLVE_NO_COLORS"))
	env.NoEmojis, _ = strconv.ParseBool(os.Getenv("OPAM_SOLVE_NO_EMOJIS"))
	env.DumpDir = os.Getenv("OPAM_SOLVE_DUMP_DIR")
	if env.DumpDir == "" {
		env.DumpDir = "."
	}
	return env
}

// AddFlags binds the settings to a flag set.
func (s *EnvSettings) AddFlags(fs *pflag.FlagSet) {
	fs.BoolVar(&s.Debug, "debug", s.Debug, "enable verbose output and debug dumps")
	fs.BoolVar(&s.NoColors, "no-colors", s.NoColors, "disable colorized output")
	fs.BoolVar(&s.NoEmojis, "no-emojis", s.NoEmojis, "disable emojis in output")
	fs.StringVar(&s.DumpDir, "dump-dir", s.DumpDir, "directory for debug dumps")
}
