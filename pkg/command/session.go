package command

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/monasticacademy/tcpclient/pkg/rawconn"
)

var (
	ErrParse      = errors.New("parse error")
	ErrNotFound   = errors.New("command not found")
	ErrArguments  = errors.New("arguments error")
	ErrWrongState = errors.New("wrong connection state")
	ErrEOF        = errors.New("read EOF")
)

var errorColor = color.New(color.FgRed, color.Bold)

// History records input lines
type History interface {
	SaveHistory(line string) error
}

// Session is everything a command can touch: the one connection, the command table,
// the history, and the two output streams
type Session struct {
	Conn     *rawconn.Conn
	Registry Registry
	History  History // may be nil
	Stdout   io.Writer
	Stderr   io.Writer

	// Verbosef receives diagnostic messages; may be nil
	Verbosef func(format string, parts ...interface{})
}

// NewSession creates a session with a closed connection and the builtin commands
func NewSession(history History, stdout, stderr io.Writer) *Session {
	return &Session{
		Conn:     rawconn.New(),
		Registry: Builtins(),
		History:  history,
		Stdout:   stdout,
		Stderr:   stderr,
	}
}

// Execute runs one input line. Lines that fail to tokenize are reported and dropped;
// every other non-empty line goes into the history before it is dispatched, so that
// mistyped commands can be recalled and fixed. The returned error describes what went
// wrong for callers that care; the interactive loop ignores it.
func (s *Session) Execute(line string) error {
	args, err := Tokenize(line)
	if err != nil {
		s.errorf("Parse line error: '%s'", line)
		return fmt.Errorf("%w: %v", ErrParse, err)
	}
	if len(args) == 0 {
		return nil
	}

	if s.History != nil {
		if err := s.History.SaveHistory(line); err != nil {
			s.errorf("error saving history: %v", err)
		}
	}

	cmd, found := s.Registry.Lookup(args[0])
	if !found {
		s.errorf("Command not found: '%s'", args[0])
		return fmt.Errorf("%w: %q", ErrNotFound, args[0])
	}

	if len(args)-1 < cmd.Args {
		s.errorf("arguments error")
		s.errorf("usage: %s", cmd.Synopsis())
		return fmt.Errorf("%w: %s needs %d, got %d", ErrArguments, cmd.Name, cmd.Args, len(args)-1)
	}

	s.verbosef("running %s with %d arguments", cmd.Name, len(args)-1)
	return cmd.Run(s, args)
}

func (s *Session) printf(format string, parts ...interface{}) {
	fmt.Fprintf(s.Stdout, format, parts...)
}

func (s *Session) errorf(format string, parts ...interface{}) {
	if !strings.HasSuffix(format, "\n") {
		format += "\n"
	}
	errorColor.Fprintf(s.Stderr, format, parts...)
}

func (s *Session) verbosef(format string, parts ...interface{}) {
	if s.Verbosef != nil {
		s.Verbosef(format, parts...)
	}
}

// wrongState reports that the command cannot run in the current state
func (s *Session) wrongState(explanation ...string) error {
	state := s.Conn.State()
	s.printf("Error state: `%s`\n", state)
	for _, line := range explanation {
		s.printf("%s\n", line)
	}
	return fmt.Errorf("%w: %v", ErrWrongState, state)
}
