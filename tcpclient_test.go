package main

import (
	"bytes"
	"net"
	"os"
	"strconv"
	"testing"

	"github.com/fatih/color"
	"github.com/monasticacademy/tcpclient/pkg/command"
	"github.com/monasticacademy/tcpclient/pkg/rawconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func runes(ss ...string) [][]rune {
	var out [][]rune
	for _, s := range ss {
		out = append(out, []rune(s))
	}
	return out
}

func TestCompleter(t *testing.T) {
	c := &completer{command.Builtins()}

	got, n := c.Do([]rune("co"), 2)
	assert.Equal(t, 2, n)
	assert.Equal(t, runes("nnect"), got)

	got, n = c.Do([]rune("sh"), 2)
	assert.Equal(t, 2, n)
	assert.Equal(t, runes("utdown"), got)

	// appending to a differently cased prefix would never name a command
	got, _ = c.Do([]rune("SH"), 2)
	assert.Empty(t, got)
	got, _ = c.Do([]rune("Co"), 2)
	assert.Empty(t, got)

	got, n = c.Do([]rune("c"), 1)
	assert.Equal(t, 1, n)
	assert.Equal(t, runes("onnect", "lose"), got)

	got, _ = c.Do([]rune("write he"), 8)
	assert.Empty(t, got)

	got, _ = c.Do([]rune("zz"), 2)
	assert.Empty(t, got)
}

func TestHintPainter(t *testing.T) {
	p := &hintPainter{command.Builtins()}

	assert.Equal(t, "connect `ip` `port`", string(p.Paint([]rune("connect"), 7)))
	assert.Equal(t, "WRITE `message`", string(p.Paint([]rune("WRITE"), 5)))
	assert.Equal(t, "state", string(p.Paint([]rune("state"), 5)))
	assert.Equal(t, "write hi", string(p.Paint([]rune("write hi"), 8)))
}

func TestExecuteRecoversPanic(t *testing.T) {
	var out, errs bytes.Buffer
	old := stderr
	stderr = &errs
	defer func() { stderr = old }()

	s := command.NewSession(nil, &out, &errs)
	s.Registry = command.Registry{{Name: "boom", Run: func(*command.Session, []string) error {
		panic("kaboom")
	}}}

	assert.NotPanics(t, func() { execute(s, "boom") })
	assert.Contains(t, errs.String(), "kaboom")

	// the session is still usable afterwards
	s.Registry = command.Builtins()
	execute(s, "state")
	assert.Equal(t, "s_closed\n", out.String())
}

func TestCloseOnExit(t *testing.T) {
	conn := rawconn.New()
	closeOnExit(conn)
	assert.Equal(t, rawconn.Closed, conn.State())

	port, accept := listenOnce(t)
	_, err := conn.Connect("127.0.0.1", port)
	require.NoError(t, err)
	defer func() {
		if c := <-accept; c != nil {
			c.Close()
		}
	}()

	closeOnExit(conn)
	assert.Equal(t, rawconn.Closed, conn.State())
}

func listenOnce(t *testing.T) (string, chan net.Conn) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })

	accepted := make(chan net.Conn, 1)
	go func() {
		conn, _ := l.Accept()
		accepted <- conn
	}()
	return strconv.Itoa(l.Addr().(*net.TCPAddr).Port), accepted
}
