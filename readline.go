package main

import (
	"strings"

	"github.com/fatih/color"
	"github.com/monasticacademy/tcpclient/pkg/command"
)

var hintColor = color.New(color.FgMagenta)

// completer completes command names in the line editor
type completer struct {
	commands command.Registry
}

// Do returns the remaining characters of every command name that starts with what
// has been typed so far. The editor appends the suffix to the typed text, so only
// names whose prefix matches in case are offered. Only the first word is completed.
func (c *completer) Do(line []rune, pos int) ([][]rune, int) {
	typed := line[:pos]
	if strings.ContainsAny(string(typed), " \t") {
		return nil, 0
	}

	var suffixes [][]rune
	for _, name := range c.commands.Complete(string(typed)) {
		if !strings.HasPrefix(name, string(typed)) {
			continue
		}
		suffixes = append(suffixes, []rune(name)[len(typed):])
	}
	return suffixes, len(typed)
}

// hintPainter shows the usage of a command after its name while it is being typed
type hintPainter struct {
	commands command.Registry
}

func (h *hintPainter) Paint(line []rune, pos int) []rune {
	hint := h.commands.Hint(string(line))
	if hint == "" {
		return line
	}
	painted := make([]rune, 0, len(line)+len(hint))
	painted = append(painted, line...)
	return append(painted, []rune(hintColor.Sprint(hint))...)
}
