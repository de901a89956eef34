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

/*Package eyecandy decorates the resolver's messages: emoji-aware formatting
for plan and conflict output, and the colors the CLI highlights them with.
*/
package eyecandy

import (
	"fmt"
	"regexp"

	"github.com/fatih/color"
	"github.com/kyokomi/emoji/v2"
)

// ESPrintf formats a plan or status message, rendering the :emoji: markers,
// or stripping them when emojis are disabled.
func ESPrintf(emojisDisabled bool, format string, v ...interface{}) string {
	if emojisDisabled {
		return fmt.Sprintf(stripEmojiMarkers(format), v...)
	}
	return emoji.Sprintf(format, v...)
}

// ESPrint is ESPrintf without formatting verbs.
func ESPrint(emojisDisabled bool, s string) string {
	if emojisDisabled {
		return fmt.Sprint(stripEmojiMarkers(s))
	}
	return emoji.Sprint(s)
}

var emojiMarker = regexp.MustCompile(`:[a-zA-Z0-9-_+]+?:`)

func stripEmojiMarkers(s string) string {
	return emojiMarker.ReplaceAllString(s, "")
}

// The colors conflict reports and disruptive plans are highlighted with.
// They honour color.NoColor, which main sets from the settings.
var (
	// Red marks an unsatisfiable request.
	Red = color.New(color.FgRed).SprintFunc()
	// Yellow marks a plan that removes packages or changes versions.
	Yellow = color.New(color.FgYellow).SprintFunc()
)
