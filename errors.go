// Copyright (c) 2024–2026 The apsin developers. All rights reserved.
// Project site: https://github.com/gotmc/apsin
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package apsin

import (
	"fmt"
	"strings"
)

// Validation happens before anything touches the wire, so any of the errors
// below (other than ParseError) guarantees no command reached the
// instrument. Transport failures are not wrapped; they surface to the caller
// exactly as the transport returned them.

// OutOfRangeError reports a numeric write rejected because the value falls
// outside the control's current limits.
type OutOfRangeError struct {
	Control  string
	Value    float64
	Min, Max float64
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("%s value %g outside limits [%g, %g]", e.Control, e.Value, e.Min, e.Max)
}

// InvalidChoiceError reports a discrete write rejected because the value is
// not an exact member of the control's allowed set.
type InvalidChoiceError struct {
	Control string
	Value   string
	Allowed []string
}

func (e *InvalidChoiceError) Error() string {
	return fmt.Sprintf("%s value %q not one of {%s}", e.Control, e.Value, strings.Join(e.Allowed, ", "))
}

// ParseError reports an instrument response that could not be converted to
// the control's value type. The caller must treat the control's value as
// unknown.
type ParseError struct {
	Control string
	Raw     string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse %s response %q: %s", e.Control, e.Raw, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// UnsupportedOverrideError reports an attempt to replace the limits of a
// control whose limits are fixed across the instrument family.
type UnsupportedOverrideError struct {
	Control string
}

func (e *UnsupportedOverrideError) Error() string {
	return fmt.Sprintf("limits of %s cannot be overridden", e.Control)
}
