// Copyright (c) 2024–2026 The apsin developers. All rights reserved.
// Project site: https://github.com/gotmc/apsin
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package apsin

import "slices"

// Control names accepted by SetLimits and Limits.
const (
	FrequencyControl       = "frequency"
	PowerControl           = "power"
	BlankingControl        = "blanking"
	ReferenceOutputControl = "reference_output"
)

// control binds one instrument parameter to its SCPI query/write command
// pair and the validation applied before any command is sent. A control is
// either numeric (allowed == nil, bounded by [min, max]) or discrete
// (allowed lists the exact accepted strings).
type control struct {
	name     string
	query    string // SCPI query for the current value
	write    string // SCPI write template with a single format verb
	min, max float64
	allowed  []string
	mutable  bool // limits may be replaced per instance
}

func (c *control) allows(v string) bool {
	return slices.Contains(c.allowed, v)
}

// defaultControls builds a fresh control table for one instance. Each call
// returns independent copies so per-instance limit overrides never leak into
// other instances. Defaults match an APSIN12G without options.
func defaultControls() map[string]*control {
	return map[string]*control{
		PowerControl: {
			name:    PowerControl,
			query:   "SOUR:POW:LEV:IMM:AMPL?;",
			write:   "SOUR:POW:LEV:IMM:AMPL %gdBm;",
			min:     -20,
			max:     15,
			mutable: true,
		},
		FrequencyControl: {
			name:    FrequencyControl,
			query:   "SOUR:FREQ:CW?;",
			write:   "SOUR:FREQ:CW %eHz;",
			min:     100e3,
			max:     12e9,
			mutable: true,
		},
		BlankingControl: {
			name:    BlankingControl,
			query:   ":OUTP:BLAN:STAT?",
			write:   ":OUTP:BLAN:STAT %s",
			allowed: []string{On, Off},
		},
		ReferenceOutputControl: {
			name:    ReferenceOutputControl,
			query:   "SOUR:ROSC:OUTP:STAT?",
			write:   "SOUR:ROSC:OUTP:STAT %s",
			allowed: []string{On, Off},
		},
	}
}
