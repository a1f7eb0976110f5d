package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/alexflint/go-arg"
	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"github.com/monasticacademy/tcpclient/pkg/command"
	"github.com/monasticacademy/tcpclient/pkg/rawconn"
)

var isVerbose bool

func verbose(msg string) {
	if isVerbose {
		log.Print(msg)
	}
}

func verbosef(fmt string, parts ...interface{}) {
	if isVerbose {
		log.Printf(fmt, parts...)
	}
}

var errorColor = color.New(color.FgRed, color.Bold)

// errors go here; replaced by the line editor's stderr once it is running
var stderr io.Writer = color.Error

func errorf(fmt string, parts ...interface{}) {
	if !strings.HasSuffix(fmt, "\n") {
		fmt += "\n"
	}
	errorColor.Fprintf(stderr, fmt, parts...)
}

// closeOnExit releases a connection that is still open when the loop ends
func closeOnExit(conn *rawconn.Conn) {
	if conn.State() != rawconn.Connected {
		return
	}
	verbosef("closing connection to %v before exit", conn.Peer())
	if err := conn.Close(); err != nil {
		verbosef("error closing connection: %v", err)
	}
}

func Main() error {
	var args struct {
		History      string `default:".chistory.txt" help:"file to load history from and append commands to (empty for no file)"`
		HistoryLimit int    `arg:"--history-limit" default:"500" help:"maximum number of history entries to keep"`
		Prompt       string `default:"client > " help:"prompt shown before each command"`
		Verbose      bool   `arg:"-v,--verbose"`
		Stderr       bool   `help:"log to stderr (default is stdout)"`
	}
	arg.MustParse(&args)

	isVerbose = args.Verbose

	commands := command.Builtins()
	rl, err := readline.NewEx(&readline.Config{
		Prompt:                 args.Prompt,
		HistoryFile:            args.History,
		HistoryLimit:           args.HistoryLimit,
		DisableAutoSaveHistory: true,
		AutoComplete:           &completer{commands},
		Painter:                &hintPainter{commands},
	})
	if err != nil {
		return fmt.Errorf("error initializing line editor: %w", err)
	}
	defer rl.Close()

	stderr = rl.Stderr()
	if args.Stderr {
		log.SetOutput(rl.Stderr())
	} else {
		log.SetOutput(rl.Stdout())
	}
	if args.History != "" {
		verbosef("using history file %v", args.History)
	}

	session := command.NewSession(rl, rl.Stdout(), rl.Stderr())
	session.Registry = commands
	session.Verbosef = verbosef
	defer closeOnExit(session.Conn)

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			// ctrl-c on an empty prompt quits, otherwise it just drops the line
			if len(line) == 0 {
				break
			}
			continue
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("error reading from terminal: %w", err)
		}

		execute(session, line)
	}

	verbose("input closed, exiting")
	return nil
}

func main() {
	log.SetOutput(os.Stdout)
	log.SetFlags(0)
	err := Main()
	if err != nil {
		log.Fatal(err)
	}
}
