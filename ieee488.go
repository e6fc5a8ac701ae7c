// Copyright (c) 2024–2026 The apsin developers. All rights reserved.
// Project site: https://github.com/gotmc/apsin
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package apsin

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gotmc/query"
	"go.uber.org/multierr"
)

// Common IEEE 488.2 / SCPI commands supported by every instrument in the
// APSIN family.

// ID queries the identification string (*IDN?).
func (sg *SignalGenerator) ID() (string, error) {
	return sg.readString("*IDN?")
}

// Options queries the installed hardware options (*OPT?).
func (sg *SignalGenerator) Options() (string, error) {
	return sg.readString("*OPT?")
}

// readString runs a string query and strips the terminator and surrounding
// whitespace from the reply.
func (sg *SignalGenerator) readString(cmd string) (string, error) {
	s, err := query.String(sg.trans, cmd)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(s), nil
}

// Complete queries the operation complete bit (*OPC?), which reads true once
// all pending operations have finished.
func (sg *SignalGenerator) Complete() (bool, error) {
	return query.Bool(sg.trans, "*OPC?")
}

// Status queries the status byte (*STB?).
func (sg *SignalGenerator) Status() (int, error) {
	return query.Int(sg.trans, "*STB?")
}

// Reset restores the instrument to its factory state (*RST).
func (sg *SignalGenerator) Reset() error {
	return sg.trans.Command("*RST")
}

// Clear clears the instrument's status registers and error queue (*CLS).
func (sg *SignalGenerator) Clear() error {
	return sg.trans.Command("*CLS")
}

// InstrumentError is one entry popped from the instrument's error queue.
type InstrumentError struct {
	Code    int
	Message string
}

func (e *InstrumentError) Error() string {
	return fmt.Sprintf("instrument error %d: %s", e.Code, e.Message)
}

// NextError pops the oldest entry from the instrument error queue
// (SYST:ERR?). It returns nil once the queue is empty.
func (sg *SignalGenerator) NextError() (*InstrumentError, error) {
	s, err := sg.readString("SYST:ERR?")
	if err != nil {
		return nil, err
	}
	code, msg, err := parseSystemError(s)
	if err != nil {
		return nil, &ParseError{Control: "error_queue", Raw: s, Err: err}
	}
	if code == 0 {
		return nil, nil
	}
	return &InstrumentError{Code: code, Message: msg}, nil
}

// Cap on queue drains, in case a confused instrument keeps reporting the
// same error instead of emptying its queue.
const maxErrorQueue = 32

// CheckErrors drains the instrument error queue and returns all entries
// found, combined into a single error. It returns nil if the queue was
// empty.
func (sg *SignalGenerator) CheckErrors() error {
	var errs error
	for i := 0; i < maxErrorQueue; i++ {
		ie, err := sg.NextError()
		if err != nil {
			return multierr.Append(errs, err)
		}
		if ie == nil {
			return errs
		}
		errs = multierr.Append(errs, ie)
	}
	return errs
}

// parseSystemError splits a SYST:ERR? response of the form
// `-222,"Data out of range"` into its code and message.
func parseSystemError(s string) (code int, msg string, err error) {
	rawCode, rawMsg, found := strings.Cut(strings.TrimSpace(s), ",")
	if !found {
		return 0, "", fmt.Errorf("missing comma in %q", s)
	}
	code, err = strconv.Atoi(strings.TrimSpace(rawCode))
	if err != nil {
		return 0, "", err
	}
	msg = strings.Trim(strings.TrimSpace(rawMsg), `"`)
	return code, msg, nil
}
