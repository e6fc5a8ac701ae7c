// Copyright (c) 2024–2026 The apsin developers. All rights reserved.
// Project site: https://github.com/gotmc/apsin
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

// Package apsin controls Anapico APSINXXG signal generators using SCPI
// commands over an injected transport (USB virtual COM port, LAN socket,
// or a GPIB controller such as a Prologix adapter).
package apsin

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gotmc/query"
)

// Transport is the SCPI channel to the instrument. Command sends a
// write-only command, optionally formatting it first; Query sends a command
// and returns the instrument's response. Both block for the duration of the
// exchange. A *scpi.Conn implements Transport, as does any gotmc-style GPIB
// controller.
//
// A Transport must not be shared between SignalGenerator instances or used
// concurrently from multiple goroutines without external synchronization.
type Transport interface {
	Command(format string, a ...any) error
	Query(cmd string) (string, error)
}

// Output states accepted by the discrete controls.
const (
	On  = "ON"
	Off = "OFF"
)

// SignalGenerator models one APSINXXG family signal generator. Each instance
// owns a private copy of its control table, so widening the limits on one
// generator never affects another.
type SignalGenerator struct {
	trans    Transport
	name     string
	controls map[string]*control
	err      error // first construction-time option failure
}

// Option applies a construction-time setting to the signal generator.
type Option func(*SignalGenerator)

// New creates a signal generator driven through the given transport. The
// default frequency limits of [100e3, 12e9] Hz and power limits of [-20, 15]
// dBm correspond to an APSIN12G without options; pass WithFrequencyLimits or
// WithPowerLimits (or call SetLimits later) for other hardware variants.
func New(trans Transport, opts ...Option) (*SignalGenerator, error) {
	sg := SignalGenerator{
		trans:    trans,
		name:     "Anapico APSINXXG Signal Generator",
		controls: defaultControls(),
	}

	// Apply options using the functional option pattern.
	for _, opt := range opts {
		opt(&sg)
	}
	if sg.err != nil {
		return nil, sg.err
	}

	return &sg, nil
}

// WithName overrides the default instance name.
func WithName(name string) Option { return func(sg *SignalGenerator) { sg.name = name } }

// WithFrequencyLimits sets the frequency limits in Hz at construction, for
// hardware variants whose range differs from the stock APSIN12G.
func WithFrequencyLimits(min, max float64) Option {
	return func(sg *SignalGenerator) {
		if err := sg.SetLimits(FrequencyControl, min, max); err != nil && sg.err == nil {
			sg.err = err
		}
	}
}

// WithPowerLimits sets the output power limits in dBm at construction.
func WithPowerLimits(min, max float64) Option {
	return func(sg *SignalGenerator) {
		if err := sg.SetLimits(PowerControl, min, max); err != nil && sg.err == nil {
			sg.err = err
		}
	}
}

// Name returns the instance name.
func (sg *SignalGenerator) Name() string { return sg.name }

// Frequency reads the CW output frequency in Hz.
func (sg *SignalGenerator) Frequency() (float64, error) {
	return sg.readFloat(FrequencyControl)
}

// SetFrequency sets the CW output frequency in Hz. The value is checked
// against the frequency limits before anything is sent, so an out-of-range
// frequency never reaches the instrument.
func (sg *SignalGenerator) SetFrequency(hz float64) error {
	return sg.writeFloat(FrequencyControl, hz)
}

// Power reads the output power in dBm.
func (sg *SignalGenerator) Power() (float64, error) {
	return sg.readFloat(PowerControl)
}

// SetPower sets the output power in dBm, checked against the power limits
// before transmission.
func (sg *SignalGenerator) SetPower(dbm float64) error {
	return sg.writeFloat(PowerControl, dbm)
}

// Blanking reads whether the output is blanked while the frequency changes.
// The instrument reports On or Off.
func (sg *SignalGenerator) Blanking() (string, error) {
	return sg.readDiscrete(BlankingControl)
}

// SetBlanking controls blanking of the output power during frequency
// changes. On blanks the output while the frequency settles; Off leaves it
// active. The state must match On or Off exactly.
func (sg *SignalGenerator) SetBlanking(state string) error {
	return sg.writeDiscrete(BlankingControl, state)
}

// ReferenceOutput reads the state of the 10 MHz reference output.
func (sg *SignalGenerator) ReferenceOutput() (string, error) {
	return sg.readDiscrete(ReferenceOutputControl)
}

// SetReferenceOutput enables (On) or disables (Off) the 10 MHz reference
// output from the synthesizer.
func (sg *SignalGenerator) SetReferenceOutput(state string) error {
	return sg.writeDiscrete(ReferenceOutputControl, state)
}

// EnableRF enables the RF output.
func (sg *SignalGenerator) EnableRF() error {
	return sg.trans.Command("OUTP:STAT 1")
}

// DisableRF disables the RF output.
func (sg *SignalGenerator) DisableRF() error {
	return sg.trans.Command("OUTP:STAT 0")
}

// readFloat queries a numeric control and parses the reply. Transport
// failures surface unchanged; an unparseable reply is a *ParseError.
func (sg *SignalGenerator) readFloat(name string) (float64, error) {
	c := sg.controls[name]
	s, err := sg.trans.Query(c.query)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, &ParseError{Control: c.name, Raw: s, Err: err}
	}
	return v, nil
}

// writeFloat validates a numeric value against the control's limits and, if
// accepted, formats and sends the write command.
func (sg *SignalGenerator) writeFloat(name string, v float64) error {
	c := sg.controls[name]
	// Written so NaN is rejected rather than slipping past both comparisons.
	if !(v >= c.min && v <= c.max) {
		return &OutOfRangeError{Control: c.name, Value: v, Min: c.min, Max: c.max}
	}
	return sg.trans.Command(c.write, v)
}

// readDiscrete queries a discrete control and returns the reply with the
// terminator and surrounding whitespace removed, so it compares equal to the
// documented On/Off forms.
func (sg *SignalGenerator) readDiscrete(name string) (string, error) {
	c := sg.controls[name]
	s, err := query.String(sg.trans, c.query)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(s), nil
}

func (sg *SignalGenerator) writeDiscrete(name, v string) error {
	c := sg.controls[name]
	if !c.allows(v) {
		return &InvalidChoiceError{Control: c.name, Value: v, Allowed: c.allowed}
	}
	return sg.trans.Command(c.write, v)
}

// SetLimits replaces the allowed range of a numeric control, scoped to this
// instance. Only controls whose limits vary across hardware options
// (FrequencyControl, PowerControl) accept new limits; for any other control
// a *UnsupportedOverrideError is returned.
func (sg *SignalGenerator) SetLimits(name string, min, max float64) error {
	c, ok := sg.controls[name]
	if !ok || !c.mutable {
		return &UnsupportedOverrideError{Control: name}
	}
	// min <= max also rules out NaN limits.
	if !(min <= max) {
		return fmt.Errorf("invalid %s limits [%g, %g]", name, min, max)
	}
	c.min, c.max = min, max
	return nil
}

// Limits reports the current [min, max] range of a numeric control.
func (sg *SignalGenerator) Limits(name string) (min, max float64, err error) {
	c, ok := sg.controls[name]
	if !ok || c.allowed != nil {
		return 0, 0, fmt.Errorf("no numeric control named %q", name)
	}
	return c.min, c.max, nil
}
