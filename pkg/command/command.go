// package command implements the interactive commands of the client: the descriptors
// that make up the command table, the dispatcher that runs one input line against it,
// and the handlers that drive a rawconn.Conn.

package command

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// HandlerFunc runs a command. It receives the full token list, command name first.
type HandlerFunc func(s *Session, args []string) error

// Descriptor describes one command
type Descriptor struct {
	Name  string
	Args  int    // number of arguments required after the name
	Usage string // empty if the command takes no arguments
	Help  string
	Run   HandlerFunc
}

// Synopsis is the name followed by the usage, if any
func (d Descriptor) Synopsis() string {
	if d.Usage == "" {
		return d.Name
	}
	return d.Name + " " + d.Usage
}

// Registry is an ordered command table with unique names
type Registry []Descriptor

// NewRegistry checks that every descriptor has a name and a handler and that no two
// descriptors share a name
func NewRegistry(descs ...Descriptor) (Registry, error) {
	seen := make(map[string]bool)
	for _, d := range descs {
		if d.Name == "" {
			return nil, errors.New("command with empty name")
		}
		if d.Run == nil {
			return nil, fmt.Errorf("command %q has no handler", d.Name)
		}
		if seen[d.Name] {
			return nil, fmt.Errorf("duplicate command %q", d.Name)
		}
		seen[d.Name] = true
	}
	return append(Registry(nil), descs...), nil
}

// Builtins returns the client's command table
func Builtins() Registry {
	r, err := NewRegistry(
		Descriptor{"help", 0, "", "Help message", handleHelp},
		Descriptor{"state", 0, "", "Show connection state", handleState},
		Descriptor{"connect", 2, "`ip` `port`", "Make connection", handleConnect},
		Descriptor{"read", 0, "", "Read data from connection", handleRead},
		Descriptor{"write", 1, "`message`", "Write `message` to connection", handleWrite},
		Descriptor{"close", 0, "", "Close connection", handleClose},
		Descriptor{"shutdown", 1, "read|write", "Shutdown connection", handleShutdown},
	)
	if err != nil {
		panic(err)
	}
	return r
}

// Lookup finds a command by exact, case-sensitive name
func (r Registry) Lookup(name string) (Descriptor, bool) {
	for _, d := range r {
		if d.Name == name {
			return d, true
		}
	}
	return Descriptor{}, false
}

// Complete lists the command names that start with prefix, ignoring case
func (r Registry) Complete(prefix string) []string {
	var names []string
	lower := strings.ToLower(prefix)
	for _, d := range r {
		if strings.HasPrefix(strings.ToLower(d.Name), lower) {
			names = append(names, d.Name)
		}
	}
	return names
}

// Hint returns " <usage>" when line is exactly a command name (ignoring case) that
// takes arguments, or the empty string
func (r Registry) Hint(line string) string {
	for _, d := range r {
		if strings.EqualFold(line, d.Name) && d.Usage != "" {
			return " " + d.Usage
		}
	}
	return ""
}

// WriteHelp prints the command table in declaration order
func (r Registry) WriteHelp(w io.Writer) error {
	for _, d := range r {
		_, err := fmt.Fprintf(w, "%-30s%s\n", d.Synopsis(), d.Help)
		if err != nil {
			return err
		}
	}
	return nil
}
