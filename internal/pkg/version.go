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

package pkg

import (
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// CompareVersions is the version comparator the whole resolver is built on.
// Versions are opaque strings; they are ordered by semver when both sides
// parse, and lexicographically otherwise, so that non-semver version schemes
// still get a total order.
func CompareVersions(a, b string) int {
	va, errA := semver.NewVersion(a)
	vb, errB := semver.NewVersion(b)
	if errA != nil || errB != nil {
		return strings.Compare(a, b)
	}
	return va.Compare(vb)
}

// VersionLess reports a < b under CompareVersions.
func VersionLess(a, b string) bool {
	return CompareVersions(a, b) < 0
}

// SortVersions orders versions ascending, in place.
func SortVersions(versions []string) {
	sort.Slice(versions, func(i, j int) bool {
		return VersionLess(versions[i], versions[j])
	})
}
