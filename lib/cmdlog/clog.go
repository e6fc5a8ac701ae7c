package cmdlog

import (
	"log"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Conn is the slice of the SCPI connection the logging helpers need.
type Conn interface {
	Query(cmd string) (string, error)
	Command(format string, a ...any) error
}

func isAscii(s string) bool {
	return !strings.ContainsFunc(s, func(r rune) bool {
		switch {
		case r < 7:
			return true
		case r > 6 && r < 14:
			return false
		case r > 13 && r < 32:
			return true
		case r > 127:
			return true
		}
		return false
	})
}

var (
	CmdStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	RespStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("35"))
)

// PrettyFuncs returns logging wrappers around the connection: query runs a
// query and returns the raw response, lquery runs a query and logs the
// response, cmd sends a write-only command and logs it.
func PrettyFuncs(conn Conn) (
	query func(string) string,
	lquery func(string),
	cmd func(string),
) {
	query = func(q string) string {
		s, err := conn.Query(q)
		if err != nil {
			log.Printf("query %q: error %s", CmdStyle.Render(q), err)
		}
		return s
	}
	lquery = func(q string) {
		a := strings.TrimSuffix(query(q), "\n")
		q = CmdStyle.Render(q)

		if len(a) == 0 {
			log.Print(RespStyle.Render("<no response>"))
			return
		}

		if isAscii(a) {
			log.Printf("%s: [%d] %q", q, len(a), a)
		} else {
			log.Printf("%s: [%d] % 2x", q, len(a), []byte(a))
		}
	}

	cmd = func(c string) {
		if err := conn.Command(c); err != nil {
			log.Printf("cmd %s: error %s", CmdStyle.Render(c), err)
		} else {
			log.Printf("%s()", CmdStyle.Render(c))
		}
	}
	return query, lquery, cmd
}
