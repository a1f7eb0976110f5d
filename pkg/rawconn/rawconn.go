// package rawconn holds a single TCP connection made directly with socket syscalls,
// together with its lifecycle state. Nothing is buffered and nothing is retried: each
// method is one syscall against the descriptor, and the state flag is the only guard
// against using a descriptor after it has been released.

package rawconn

import (
	"errors"
	"fmt"
	"io"
	"net"
	"net/netip"
	"strconv"

	"golang.org/x/sys/unix"
)

// State is the lifecycle state of a connection
type State int

const (
	Closed State = iota
	Connected
)

func (s State) String() string {
	switch s {
	case Closed:
		return "s_closed"
	case Connected:
		return "s_connected"
	}
	return "s_unknown(" + strconv.Itoa(int(s)) + ")"
}

var (
	ErrNotConnected     = errors.New("not connected")
	ErrAlreadyConnected = errors.New("already connected")
	ErrInvalidDirection = errors.New("invalid shutdown direction")
)

// Steps of a connect that can fail independently
const (
	StepSocket  = "socket"
	StepAddress = "address"
	StepConnect = "connect"
)

// StepError reports which step of a connect failed
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

type AddrPort struct {
	Addr net.IP
	Port uint16
}

func (ap AddrPort) String() string {
	return ap.Addr.String() + ":" + strconv.Itoa(int(ap.Port))
}

// ParseAddrPort parses a dotted-decimal IPv4 address and a decimal port
func ParseAddrPort(ip, port string) (AddrPort, error) {
	a, err := netip.ParseAddr(ip)
	if err != nil || !a.Is4() {
		return AddrPort{}, fmt.Errorf("%q is not a dotted-decimal IPv4 address", ip)
	}
	p, err := strconv.ParseUint(port, 10, 16)
	if err != nil {
		return AddrPort{}, fmt.Errorf("error parsing port %q: %w", port, err)
	}
	return AddrPort{Addr: net.IP(a.AsSlice()), Port: uint16(p)}, nil
}

// Direction is the half of a connection to shut down
type Direction int

const (
	ShutRead  Direction = unix.SHUT_RD
	ShutWrite Direction = unix.SHUT_WR
)

// ParseDirection accepts "read" or "write"
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "read":
		return ShutRead, nil
	case "write":
		return ShutWrite, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidDirection, s)
}

func (d Direction) String() string {
	switch d {
	case ShutRead:
		return "read"
	case ShutWrite:
		return "write"
	}
	return "direction(" + strconv.Itoa(int(d)) + ")"
}

// Conn is a TCP connection that is either closed or connected. The descriptor is
// valid if and only if the state is Connected.
type Conn struct {
	state State
	fd    int
	peer  AddrPort
}

// New returns a connection in the Closed state
func New() *Conn {
	return &Conn{state: Closed, fd: -1}
}

func (c *Conn) State() State {
	return c.state
}

// Peer is the address passed to the last successful Connect
func (c *Conn) Peer() AddrPort {
	return c.peer
}

// Fd returns the underlying descriptor, or -1 when closed
func (c *Conn) Fd() int {
	if c.state != Connected {
		return -1
	}
	return c.fd
}

// Connect creates a stream socket and connects it to ip:port. It either leaves the
// connection Connected or leaves it Closed with no descriptor held.
func (c *Conn) Connect(ip, port string) (AddrPort, error) {
	if c.state != Closed {
		return AddrPort{}, ErrAlreadyConnected
	}

	addr, err := ParseAddrPort(ip, port)
	if err != nil {
		return AddrPort{}, &StepError{Step: StepAddress, Err: err}
	}

	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return addr, &StepError{Step: StepSocket, Err: err}
	}

	sa := unix.SockaddrInet4{Port: int(addr.Port)}
	copy(sa.Addr[:], addr.Addr)
	err = unix.Connect(fd, &sa)
	if err != nil {
		// the socket never became usable, so release it here rather than leak it
		unix.Close(fd)
		return addr, &StepError{Step: StepConnect, Err: err}
	}

	c.fd = fd
	c.peer = addr
	c.state = Connected
	return addr, nil
}

// Read performs one blocking receive into buf. A receive of zero bytes is reported as
// io.EOF and does not change the state.
func (c *Conn) Read(buf []byte) (int, error) {
	if c.state != Connected {
		return 0, ErrNotConnected
	}

	var n int
	var err error
	for {
		n, _, err = unix.Recvfrom(c.fd, buf, 0)
		if err != unix.EINTR {
			break
		}
	}
	if err != nil {
		return 0, err
	}
	if n == 0 && len(buf) > 0 {
		return 0, io.EOF
	}
	return n, nil
}

// Write sends p as-is in a single send
func (c *Conn) Write(p []byte) (int, error) {
	if c.state != Connected {
		return 0, ErrNotConnected
	}

	var n int
	var err error
	for {
		n, err = unix.Write(c.fd, p)
		if err != unix.EINTR {
			break
		}
	}
	if err != nil {
		return 0, err
	}
	return n, nil
}

// Shutdown half-closes the connection. The state stays Connected.
func (c *Conn) Shutdown(d Direction) error {
	if c.state != Connected {
		return ErrNotConnected
	}
	if d != ShutRead && d != ShutWrite {
		return fmt.Errorf("%w: %v", ErrInvalidDirection, d)
	}
	return unix.Shutdown(c.fd, int(d))
}

// Close releases the descriptor and moves to Closed. An error from the close syscall
// is returned but the descriptor is considered released either way.
func (c *Conn) Close() error {
	if c.state != Connected {
		return ErrNotConnected
	}
	fd := c.fd
	c.fd = -1
	c.state = Closed
	return unix.Close(fd)
}
