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

package checks

// Check names, as reported in ValidationError.Check and accepted by suites.
const (
	NameVerifyDF      = "verify_df"
	NameVerifyColumns = "verify_columns"
	NameVerifyRows    = "verify_rows"
	NameNoneMissing   = "none_missing"
	NameIsMonotonic   = "is_monotonic"
	NameIsShape       = "is_shape"
	NameIsUnique      = "is_unique"
	NameUniqueIndex   = "unique_index"
	NameWithinSet     = "within_set"
	NameWithinRange   = "within_range"
	NameWithinNStd    = "within_n_std"
	NameHasDtypes     = "has_dtypes"
	NameOneToMany     = "one_to_many"
	NameIsSameAs      = "is_same_as"
)
