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
	"errors"
	"fmt"
	"strings"

	"github.com/magpierre/engarde/datatable"
)

var (
	// ErrValidationFailed is matched by every *ValidationError.
	ErrValidationFailed = errors.New("validation failed")

	// ErrConfiguration is wrapped by every error caused by invalid check
	// parameters rather than by the data.
	ErrConfiguration = errors.New("invalid check configuration")

	ErrInvalidHow       = fmt.Errorf("%w: how must be %q or %q", ErrConfiguration, HowAll, HowAny)
	ErrNonBooleanResult = fmt.Errorf("%w: predicate must return a bool", ErrConfiguration)
	ErrInvalidRule      = fmt.Errorf("%w: invalid rule", ErrConfiguration)
	ErrInvalidShape     = fmt.Errorf("%w: invalid shape", ErrConfiguration)
	ErrInvalidN         = fmt.Errorf("%w: n must be positive", ErrConfiguration)
	ErrIncomparable     = fmt.Errorf("%w: values cannot be compared", ErrConfiguration)
)

// Location is a single offending cell.
type Location struct {
	Row    any
	Column string
}

func (l Location) String() string {
	return fmt.Sprintf("(%v, %s)", l.Row, l.Column)
}

// ValidationError describes a property that does not hold for a frame.
type ValidationError struct {
	// Check is the name of the failing check, e.g. "none_missing".
	Check string
	// Message is a human readable description of the failure.
	Message string

	// Columns lists failing columns, Rows failing row labels.
	Columns []string
	Rows    []any
	// Locations lists offending cells in column-major order.
	Locations []Location
	// Values holds offending values.
	Values []any
	// Mask marks offending cells for checks that compute one.
	Mask *datatable.Mask
	// Frame is the frame that failed.
	Frame *datatable.Frame

	Cause error
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if len(e.Locations) > 0 {
		b.WriteString(": ")
		b.WriteString(formatLocations(e.Locations, 10))
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause, if any.
func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// Is makes errors.Is(err, ErrValidationFailed) true for every ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}

// AsValidationError extracts a *ValidationError from err's chain.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// IsValidationError reports whether err is a validation failure.
func IsValidationError(err error) bool {
	_, ok := AsValidationError(err)
	return ok
}

// IsConfigurationError reports whether err is caused by invalid check
// parameters.
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

func formatLocations(locs []Location, limit int) string {
	parts := make([]string, 0, min(len(locs), limit))
	for i, l := range locs {
		if i == limit {
			break
		}
		parts = append(parts, l.String())
	}
	s := "[" + strings.Join(parts, " ") + "]"
	if len(locs) > limit {
		s += fmt.Sprintf(" and %d more", len(locs)-limit)
	}
	return s
}

func fail(check string, f *datatable.Frame, format string, args ...any) *ValidationError {
	return &ValidationError{Check: check, Message: fmt.Sprintf(format, args...), Frame: f}
}

func unknownColumn(err error) error {
	return fmt.Errorf("%w: %w", ErrConfiguration, err)
}
