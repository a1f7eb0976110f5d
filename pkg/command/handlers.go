package command

import (
	"errors"
	"io"

	"github.com/monasticacademy/tcpclient/pkg/rawconn"
)

// ReadSize is the most that one read command will receive
const ReadSize = 1024

func handleHelp(s *Session, args []string) error {
	return s.Registry.WriteHelp(s.Stdout)
}

func handleState(s *Session, args []string) error {
	s.printf("%s\n", s.Conn.State())
	return nil
}

func handleConnect(s *Session, args []string) error {
	ip, port := args[1], args[2]
	if s.Conn.State() != rawconn.Closed {
		return s.wrongState("Already connected.", "Close it before making a new connection.")
	}

	peer, err := s.Conn.Connect(ip, port)
	if err != nil {
		var stepErr *rawconn.StepError
		if !errors.As(err, &stepErr) {
			s.errorf("connect error: %v", err)
			return err
		}
		switch stepErr.Step {
		case rawconn.StepSocket:
			s.errorf("create socket error: %v", stepErr.Err)
		case rawconn.StepAddress:
			s.errorf("address error: %v, ip '%s' port '%s'", stepErr.Err, ip, port)
		default:
			s.errorf("connect to %s:%s error: %v", ip, port, stepErr.Err)
		}
		return err
	}

	s.verbosef("connected to %v on fd %d", peer, s.Conn.Fd())
	s.printf("Connected %s:%s\n", ip, port)
	return nil
}

func handleRead(s *Session, args []string) error {
	if s.Conn.State() != rawconn.Connected {
		return s.wrongState("Can't read on closed connection.")
	}
	s.printf("Reading ...\n")

	buf := make([]byte, ReadSize)
	n, err := s.Conn.Read(buf)
	if errors.Is(err, io.EOF) {
		// the peer is done sending but the connection stays open until "close"
		s.printf("Read EOF\n")
		return ErrEOF
	}
	if err != nil {
		s.errorf("recv error: %v", err)
		return err
	}

	s.printf("(%d)'%s'\n", n, Escape(buf[:n]))
	return nil
}

func handleWrite(s *Session, args []string) error {
	if s.Conn.State() != rawconn.Connected {
		return s.wrongState("Can't write on closed connection.")
	}
	s.printf("Writing ...\n")

	msg := args[1]
	n, err := s.Conn.Write([]byte(msg))
	if err != nil {
		s.errorf("send error: %v", err)
		return err
	}

	s.printf("(%d)'%s'\n", n, msg)
	return nil
}

func handleClose(s *Session, args []string) error {
	if s.Conn.State() != rawconn.Connected {
		return s.wrongState("Not connected.")
	}

	fd := s.Conn.Fd()
	if err := s.Conn.Close(); err != nil {
		s.verbosef("close on fd %d returned %v, ignoring", fd, err)
	}
	s.printf("Closed\n")
	return nil
}

func handleShutdown(s *Session, args []string) error {
	if s.Conn.State() != rawconn.Connected {
		return s.wrongState("Not connected.")
	}

	dir, err := rawconn.ParseDirection(args[1])
	if err != nil {
		s.errorf("Invalid shutdown mode `%s`", args[1])
		return err
	}

	if err := s.Conn.Shutdown(dir); err != nil {
		s.errorf("shutdown error: %v", err)
		return err
	}
	s.verbosef("shut down the %v side of fd %d", dir, s.Conn.Fd())
	s.printf("OK\n")
	return nil
}
