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

package datatable

import "errors"

// Common errors returned by the datatable package.
var (
	// ErrInvalidColumn is returned when a column index is out of range.
	ErrInvalidColumn = errors.New("invalid column index")

	// ErrInvalidRow is returned when a row index is out of range.
	ErrInvalidRow = errors.New("invalid row index")

	// ErrTypeMismatch is returned when two values cannot be compared.
	ErrTypeMismatch = errors.New("type mismatch in comparison")

	// ErrNoRecord is returned when a required record is nil.
	ErrNoRecord = errors.New("record is nil")

	// ErrEmptyData is returned when data is empty where it shouldn't be.
	ErrEmptyData = errors.New("data is empty")

	// ErrColumnNotFound is returned when a column name is not found.
	ErrColumnNotFound = errors.New("column not found")

	// ErrDuplicateColumn is returned when two columns share a name.
	ErrDuplicateColumn = errors.New("duplicate column name")

	// ErrLengthMismatch is returned when columns or an index disagree on row count.
	ErrLengthMismatch = errors.New("length mismatch")

	// ErrUnsupportedType is returned for arrow types the package cannot build or read.
	ErrUnsupportedType = errors.New("unsupported data type")

	// ErrNotEqual is returned by Equal when two frames differ.
	ErrNotEqual = errors.New("frame mismatch")
)
