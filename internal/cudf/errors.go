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

import "github.com/pkg/errors"

var (
	// ErrMalformedDepopt means the textual optional-dependency formula in a
	// package's extras could not be parsed.
	ErrMalformedDepopt = errors.New("malformed optional-dependency formula")

	// ErrUnknownName means a name or version id being decoded is not in the
	// table.
	ErrUnknownName = errors.New("unknown name in encoder table")
)
