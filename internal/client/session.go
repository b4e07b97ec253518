// Package client implements the client half of the protocol: connect to
// a worker, ship a preprocessed translation unit and the residual
// compiler command, and write back the resulting object file, stdout,
// and stderr.
package client

import (
	"bytes"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"github.com/nocc-oss/pdistcc/internal/common"
	"github.com/nocc-oss/pdistcc/internal/token"
)

// Session holds the live socket for one outbound compilation request: the
// preprocessed input path, the desired object output path, and sinks for
// the captured stdout/stderr. It is created on connect and destroyed
// after the response has been handled.
type Session struct {
	conn net.Conn

	preprocessedFile string
	objectFile       string

	Stdout bytes.Buffer
	Stderr bytes.Buffer

	// ExitCode is the remote compiler's exit status, valid once
	// HandleResponse returns without error.
	ExitCode int
}

// Connect dials host:port with a bounded connect timeout.
func Connect(host string, port int) (*Session, error) {
	conn, err := net.DialTimeout("tcp", fmt.Sprintf("%s:%d", host, port), 10*time.Second)
	if err != nil {
		return nil, err
	}
	return &Session{conn: conn}, nil
}

// Close closes the underlying socket. Safe to call multiple times.
func (s *Session) Close() error {
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}

// Request sends, in order: DIST(1), ARGC(n), then for each arg an
// ARGV(len) token followed by its UTF-8 bytes, then DOTI(size) followed
// by the preprocessed file's bytes. objectFile is retained so that
// HandleResponse knows where to write the resulting object.
func (s *Session) Request(args []string, preprocessedFile, objectFile string) error {
	s.preprocessedFile = preprocessedFile
	s.objectFile = objectFile

	if err := s.writeToken(token.TagDIST, token.Version); err != nil {
		return err
	}
	if err := s.writeToken(token.TagARGC, uint32(len(args))); err != nil {
		return err
	}
	for _, arg := range args {
		raw := []byte(arg)
		if err := s.writeToken(token.TagARGV, uint32(len(raw))); err != nil {
			return err
		}
		if _, err := s.conn.Write(raw); err != nil {
			return err
		}
	}

	f, err := os.Open(preprocessedFile)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	if err := s.writeToken(token.TagDOTI, uint32(info.Size())); err != nil {
		return err
	}
	return token.CopyOut(s.conn, f, uint32(info.Size()))
}

func (s *Session) writeToken(tag token.Tag, value uint32) error {
	raw, err := token.Encode(tag, value)
	if err != nil {
		return err
	}
	_, err = s.conn.Write(raw)
	return err
}

// HandleResponse reads DONE/STAT/SERR/SOUT in order and, when the exit
// code is zero, DOTO, writing any object bytes to objectFile. It returns
// the remote exit code; a non-zero code is a valid protocol outcome, not
// an error.
func (s *Session) HandleResponse() (int, error) {
	version, err := token.Expect(s.conn, token.TagDONE)
	if err != nil {
		return 0, err
	}
	if version != token.Version {
		return 0, &token.ProtocolError{Message: "unsupported server version"}
	}

	stat, err := token.Expect(s.conn, token.TagSTAT)
	if err != nil {
		return 0, err
	}
	s.ExitCode = int(int32(stat))

	errLen, err := token.Expect(s.conn, token.TagSERR)
	if err != nil {
		return 0, err
	}
	if err := token.CopyIn(s.conn, &s.Stderr, errLen); err != nil {
		return 0, err
	}

	outLen, err := token.Expect(s.conn, token.TagSOUT)
	if err != nil {
		return 0, err
	}
	if err := token.CopyIn(s.conn, &s.Stdout, outLen); err != nil {
		return 0, err
	}

	// A non-zero exit code ends the exchange here: the DOTO token the
	// server still sends to keep the framing total is not read, and no
	// object file is written.
	if s.ExitCode != 0 {
		return s.ExitCode, nil
	}

	objLen, err := token.Expect(s.conn, token.TagDOTO)
	if err != nil {
		return 0, err
	}
	if objLen == 0 {
		return s.ExitCode, nil
	}

	if err := common.MkdirForFile(s.objectFile); err != nil {
		return 0, err
	}
	out, err := os.Create(s.objectFile)
	if err != nil {
		return 0, err
	}
	defer out.Close()

	if err := token.CopyIn(s.conn, out, objLen); err != nil {
		return 0, err
	}
	return s.ExitCode, out.Sync()
}

var _ io.Closer = (*Session)(nil)
