// Copyright (c) 2024–2026 The apsin developers. All rights reserved.
// Project site: https://github.com/gotmc/apsin
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

// Package scpi provides a line-oriented SCPI connection over any stream
// transport, such as a USB virtual COM port or a LAN socket. It handles
// command termination and response framing; it knows nothing about any
// particular instrument's command set.
package scpi

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"strings"
	"time"
)

// Conn models one SCPI connection to an instrument. A Conn is owned by a
// single driver instance for its lifetime; concurrent use from multiple
// goroutines without external synchronization is undefined.
type Conn struct {
	rw         io.ReadWriter
	br         *bufio.Reader
	term       byte          // appended to outgoing commands, ends incoming replies
	writeDelay time.Duration // pause before each write, for slow instruments
	debug      bool          // if true, log commands and responses. Set via WithDebug().
}

// Option applies an option to the connection.
type Option func(*Conn)

// NewConn creates a SCPI connection over the given stream. The default
// terminator is a newline on both directions.
func NewConn(rw io.ReadWriter, opts ...Option) *Conn {
	c := Conn{
		rw:   rw,
		term: '\n',
	}

	// Apply options using the functional option pattern.
	for _, opt := range opts {
		opt(&c)
	}
	c.br = bufio.NewReader(rw)

	return &c
}

// WithTerminator sets the command/response terminator character.
func WithTerminator(term byte) Option { return func(c *Conn) { c.term = term } }

// WithWriteDelay inserts a pause before every write, for instruments that
// drop commands arriving back to back.
func WithWriteDelay(d time.Duration) Option { return func(c *Conn) { c.writeDelay = d } }

// WithDebug causes commands and responses to be logged.
func WithDebug() Option { return func(c *Conn) { c.debug = true } }

// Read reads raw bytes from the instrument into the given byte slice.
func (c *Conn) Read(p []byte) (n int, err error) {
	return c.br.Read(p)
}

// Write writes raw bytes to the instrument.
func (c *Conn) Write(p []byte) (n int, err error) {
	return c.rw.Write(p)
}

// WriteString writes a string to the instrument. All leading and trailing
// whitespace is removed before appending the terminator.
func (c *Conn) WriteString(s string) (n int, err error) {
	cmd := fmt.Sprintf("%s%c", strings.TrimSpace(s), c.term)
	if c.debug {
		log.Printf("write %q", cmd)
	}
	if c.writeDelay > 0 {
		time.Sleep(c.writeDelay)
	}
	return c.rw.Write([]byte(cmd))
}

// Command formats according to a format specifier if arguments are provided
// and sends the resulting SCPI/ASCII command to the instrument, write-only.
func (c *Conn) Command(format string, a ...any) error {
	cmd := format
	if a != nil {
		cmd = fmt.Sprintf(format, a...)
	}
	_, err := c.WriteString(cmd)
	return err
}

// Query sends the given SCPI/ASCII command to the instrument and reads the
// response up to and including the terminator. The cmd string does not need
// to include a terminator. A response ended by EOF instead of the terminator
// is returned as-is with a nil error.
func (c *Conn) Query(cmd string) (string, error) {
	if _, err := c.WriteString(cmd); err != nil {
		return "", fmt.Errorf("error writing query: %w", err)
	}
	s, err := c.br.ReadString(c.term)
	if c.debug {
		log.Printf("read %q", s)
	}
	if err == io.EOF {
		return s, nil
	}
	return s, err
}
