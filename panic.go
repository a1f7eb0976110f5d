package main

import (
	"runtime/debug"

	"github.com/monasticacademy/tcpclient/pkg/command"
)

func handlePanic() {
	if r := recover(); r != nil {
		errorf("%v", r)
		errorf("%s", debug.Stack())
	}
}

// execute runs one input line. A panic inside a command is reported and swallowed
// so that the prompt always comes back.
func execute(s *command.Session, line string) {
	defer handlePanic()
	err := s.Execute(line)
	if err != nil {
		verbosef("%q: %v", line, err)
	}
}
