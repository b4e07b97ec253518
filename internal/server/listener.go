package server

import (
	"context"
	"net"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/nocc-oss/pdistcc/internal/compiler"
)

// Listener binds a TCP socket with address reuse enabled and dispatches
// every accepted connection to its own goroutine, per the concurrent
// serving discipline: sessions share nothing but a read-only settings
// snapshot and the process's own temporary-file namespace.
type Listener struct {
	ln       net.Listener
	settings compiler.Settings
}

// Listen binds addr ("host:port") with SO_REUSEADDR set on the listening
// socket, so a restarted daemon can rebind immediately.
func Listen(addr string, settings compiler.Settings) (*Listener, error) {
	lc := net.ListenConfig{
		Control: func(_, _ string, c syscall.RawConn) error {
			var sockErr error
			err := c.Control(func(fd uintptr) {
				sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
			})
			if err != nil {
				return err
			}
			return sockErr
		},
	}
	ln, err := lc.Listen(context.Background(), "tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Listener{ln: ln, settings: settings}, nil
}

// Serve accepts connections until ctx is cancelled or the listener is
// closed. Each connection is served concurrently; Serve itself blocks
// until the accept loop exits.
func (l *Listener) Serve(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		l.ln.Close()
	}()

	for {
		conn, err := l.ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				return err
			}
		}
		go Serve(conn, l.settings)
	}
}

// Close stops accepting new connections. In-flight sessions run to
// completion or fail on their next I/O once their peer disconnects.
func (l *Listener) Close() error {
	return l.ln.Close()
}

// Addr returns the listener's bound address.
func (l *Listener) Addr() net.Addr {
	return l.ln.Addr()
}
