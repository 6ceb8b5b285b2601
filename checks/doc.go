// Copyright 2025 Magnus Pierre
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package checks validates tables. Every check takes a *datatable.Frame and
// returns the same frame when the property holds, or an error when it does
// not. Failed properties are reported as *ValidationError; misuse of a check
// (unknown columns, bad modes, bad rules) is reported as an error wrapping
// ErrConfiguration.
//
// Checks chain naturally:
//
//	f, err := checks.NoneMissing(f)
//	if err == nil {
//		f, err = checks.IsShape(f, -1, 3)
//	}
package checks
