// Copyright (c) 2024–2026 The apsin developers. All rights reserved.
// Project site: https://github.com/gotmc/apsin
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package apsin

import (
	"errors"
	"testing"

	"go.uber.org/multierr"
)

func TestID(t *testing.T) {
	sg, ft := newTestGenerator(t)
	ft.reply("*IDN?", "AnaPico AG,APSIN12G,000123,0.4.207\n")
	idn, err := sg.ID()
	if err != nil {
		t.Fatalf("ID error: %s", err)
	}
	if idn != "AnaPico AG,APSIN12G,000123,0.4.207" {
		t.Errorf("ID = %q", idn)
	}
}

func TestComplete(t *testing.T) {
	sg, ft := newTestGenerator(t)
	ft.reply("*OPC?", "1\n")
	done, err := sg.Complete()
	if err != nil {
		t.Fatalf("Complete error: %s", err)
	}
	if !done {
		t.Error("Complete = false; want true")
	}
}

func TestResetAndClear(t *testing.T) {
	sg, ft := newTestGenerator(t)
	if err := sg.Reset(); err != nil {
		t.Fatalf("Reset error: %s", err)
	}
	if err := sg.Clear(); err != nil {
		t.Fatalf("Clear error: %s", err)
	}
	want := []string{"*RST", "*CLS"}
	if len(ft.cmds) != 2 || ft.cmds[0] != want[0] || ft.cmds[1] != want[1] {
		t.Errorf("sent %q; want %q", ft.cmds, want)
	}
}

func TestNextError(t *testing.T) {
	sg, ft := newTestGenerator(t)
	ft.reply("SYST:ERR?", `-222,"Data out of range"`+"\n", `0,"No error"`+"\n")

	ie, err := sg.NextError()
	if err != nil {
		t.Fatalf("NextError error: %s", err)
	}
	if ie == nil || ie.Code != -222 || ie.Message != "Data out of range" {
		t.Errorf("NextError = %+v; want code -222, message %q", ie, "Data out of range")
	}

	ie, err = sg.NextError()
	if err != nil {
		t.Fatalf("NextError error: %s", err)
	}
	if ie != nil {
		t.Errorf("NextError on empty queue = %+v; want nil", ie)
	}
}

func TestNextErrorMalformed(t *testing.T) {
	sg, ft := newTestGenerator(t)
	ft.reply("SYST:ERR?", "garbage with no comma\n")
	_, err := sg.NextError()
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("NextError error = %v; want *ParseError", err)
	}
}

func TestCheckErrorsDrainsQueue(t *testing.T) {
	sg, ft := newTestGenerator(t)
	ft.reply("SYST:ERR?",
		`-222,"Data out of range"`+"\n",
		`-113,"Undefined header"`+"\n",
		`0,"No error"`+"\n",
	)

	err := sg.CheckErrors()
	if err == nil {
		t.Fatal("CheckErrors = nil; want two combined errors")
	}
	errs := multierr.Errors(err)
	if len(errs) != 2 {
		t.Fatalf("CheckErrors returned %d errors; want 2: %s", len(errs), err)
	}
	var ie *InstrumentError
	if !errors.As(errs[0], &ie) || ie.Code != -222 {
		t.Errorf("first error = %v; want instrument error -222", errs[0])
	}
}

func TestCheckErrorsEmptyQueue(t *testing.T) {
	sg, ft := newTestGenerator(t)
	ft.reply("SYST:ERR?", `0,"No error"`+"\n")
	if err := sg.CheckErrors(); err != nil {
		t.Errorf("CheckErrors = %v; want nil for empty queue", err)
	}
}
