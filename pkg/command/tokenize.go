package command

import (
	"github.com/kballard/go-shellquote"
)

// Tokenize splits a line into a command name and its arguments. Spaces, tabs, and
// newlines separate tokens, single and double quotes group text containing whitespace,
// and a backslash escapes the next character. Every other character, '#' included, is
// literal. An unterminated quote or a trailing backslash is an error.
func Tokenize(line string) ([]string, error) {
	return shellquote.Split(line)
}
