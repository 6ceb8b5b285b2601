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

import (
	"fmt"

	"github.com/magpierre/engarde/datatable"
)

// AnySize matches any row or column count in IsShape.
const AnySize = -1

// IsShape passes when f has the given number of rows and columns. AnySize
// leaves a dimension unconstrained.
func IsShape(f *datatable.Frame, rows, cols int) (*datatable.Frame, error) {
	if rows < AnySize || cols < AnySize {
		return nil, fmt.Errorf("%w: (%d, %d)", ErrInvalidShape, rows, cols)
	}
	r, c := f.Shape()
	if (rows == AnySize || rows == r) && (cols == AnySize || cols == c) {
		return f, nil
	}
	return nil, fail(NameIsShape, f, "Expected shape: (%d, %d)\n\t\tActual shape:   (%d, %d)", rows, cols, r, c)
}
