// Package connutil wires the command-line flags shared by the example
// programs and opens the transport they name, either a USB virtual COM port
// or a LAN socket.
package connutil

import (
	"flag"
	"io"
	"log"
	"net"
	"strings"
	"time"

	"github.com/gotmc/apsin/lib/find"
	"github.com/gotmc/apsin/scpi"
	"go.bug.st/serial"
	"go.uber.org/multierr"
)

type Conn struct {
	Addr        string // serial device path, or host:port for LAN SCPI
	Baud        int
	Delay       time.Duration
	ReadTimeout time.Duration
	Debug       bool

	tty     string
	finderr error
}

// AddFlags is to be called before [flag.Parse].
func (c *Conn) AddFlags() {
	c.tty, c.finderr = find.Find(find.AnapicoFilter)
	if c.finderr != nil {
		c.tty = "ttyACM0"
	}

	if c.Baud == 0 {
		c.Baud = 115200
	}
	if c.Delay == 0 {
		c.Delay = 100 * time.Millisecond
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 30 * time.Second
	}

	flag.StringVar(
		&c.Addr,
		"addr",
		"/dev/"+c.tty,
		"Serial port or host:port of the signal generator",
	)
	flag.IntVar(&c.Baud, "baud", c.Baud, "baud rate for serial connections")
	flag.DurationVar(&c.Delay, "delay", c.Delay, "delay between writes")
	flag.DurationVar(&c.ReadTimeout, "timeout", c.ReadTimeout, "read timeout")
	flag.BoolVar(&c.Debug, "debug", c.Debug, "log SCPI traffic")
}

// Setup opens the transport named by the flags and wraps it in a SCPI
// connection. It is to be called after both [(Conn).AddFlags] and
// [flag.Parse]. The returned cleanup discards unread data where the
// transport supports it and closes the port.
func (c *Conn) Setup(opts []scpi.Option) (conn *scpi.Conn, cleanup func() error, err error) {
	if c.finderr != nil && c.Addr == "/dev/ttyACM0" {
		// only print this if the port isn't overridden via flag
		log.Printf("locating serial port failed, guessing: %s", c.finderr)
	}

	log.Printf("Address = %s", c.Addr)

	var rw io.ReadWriteCloser
	if isNetAddr(c.Addr) {
		nc, err := net.DialTimeout("tcp", c.Addr, c.ReadTimeout)
		if err != nil {
			return nil, nil, err
		}
		rw = deadlineConn{Conn: nc, timeout: c.ReadTimeout}
	} else {
		port, err := serial.Open(c.Addr, &serial.Mode{BaudRate: c.Baud})
		if err != nil {
			return nil, nil, err
		}
		if err := port.SetReadTimeout(c.ReadTimeout); err != nil {
			return nil, nil, multierr.Append(err, port.Close())
		}
		rw = port
	}

	if c.Delay > 0 {
		opts = append(opts, scpi.WithWriteDelay(c.Delay))
	}
	if c.Debug {
		opts = append(opts, scpi.WithDebug())
	}

	cleanup = func() error {
		var errs error
		if rb, ok := rw.(interface{ ResetInputBuffer() error }); ok {
			errs = multierr.Append(errs, rb.ResetInputBuffer())
		}
		return multierr.Append(errs, rw.Close())
	}
	return scpi.NewConn(rw, opts...), cleanup, nil
}

// isNetAddr reports whether addr looks like host:port rather than a device
// path.
func isNetAddr(addr string) bool {
	return !strings.HasPrefix(addr, "/") && strings.Contains(addr, ":")
}

// deadlineConn bounds every read on a net.Conn, so a query against an
// unresponsive instrument fails the same way a serial read timeout does.
type deadlineConn struct {
	net.Conn
	timeout time.Duration
}

func (d deadlineConn) Read(p []byte) (int, error) {
	if err := d.Conn.SetReadDeadline(time.Now().Add(d.timeout)); err != nil {
		return 0, err
	}
	return d.Conn.Read(p)
}
