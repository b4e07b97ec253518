package server

import (
	"bytes"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/nocc-oss/pdistcc/internal/compiler"
	"github.com/nocc-oss/pdistcc/internal/metrics"
	"github.com/nocc-oss/pdistcc/internal/token"
)

// session is the server-side state machine for one accepted connection:
// read the request, classify it, read the preprocessed payload, run the
// compiler, and reply. Every temporary file it creates is unlinked on
// exit, whether the session succeeded or failed.
type session struct {
	conn     net.Conn
	settings compiler.Settings
	cleanup  []string
}

// Serve runs one full session to completion over conn. It never returns
// an error to the caller: every failure is logged and reflected either
// in the wire reply or, for a broken connection, by simply closing.
func Serve(conn net.Conn, settings compiler.Settings) {
	s := &session{conn: conn, settings: settings}
	defer s.conn.Close()
	defer s.runCleanup()

	args, err := s.readRequest()
	if err != nil {
		logServer.Info(1, "session ended while reading request:", err)
		return
	}

	inv, classifyErr := compiler.New(args[0], args[1:], s.settings)
	if classifyErr == nil {
		classifyErr = inv.Classify()
	}

	dotiPath, err := s.readDOTI()
	if err != nil {
		logServer.Info(1, "session ended while reading payload:", err)
		return
	}

	metrics.BytesReceived.Add(float64(fileSize(dotiPath)))

	if classifyErr != nil {
		logServer.Info(0, "rejected invocation:", classifyErr)
		metrics.SessionsRejected.Inc()
		s.reply(1, classifyErr.Error(), "", nil)
		return
	}

	inv.SetPreprocessedFile(dotiPath)
	objPath := dotiPath + filepath.Ext(inv.ObjectFile())
	inv.SetObjectFile(objPath)
	s.cleanup = append(s.cleanup, objPath)

	rc, stdout, stderr := s.compile(inv)
	objBytes, objErr := os.ReadFile(objPath)
	if objErr != nil {
		if rc == 0 {
			logServer.Error("compiler exited 0 but produced no object file:", objPath)
		}
		objBytes = nil
	}
	metrics.BytesSent.Add(float64(len(objBytes)))
	s.reply(rc, stderr, stdout, objBytes)
}

func fileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}

func (s *session) readRequest() ([]string, error) {
	v, err := token.Expect(s.conn, token.TagDIST)
	if err != nil {
		return nil, err
	}
	if v != token.Version {
		return nil, &token.ProtocolError{Message: "unsupported client version"}
	}

	argc, err := token.Expect(s.conn, token.TagARGC)
	if err != nil {
		return nil, err
	}

	args := make([]string, 0, argc)
	for i := uint32(0); i < argc; i++ {
		n, err := token.Expect(s.conn, token.TagARGV)
		if err != nil {
			return nil, err
		}
		buf := make([]byte, n)
		if err := token.ReadExactly(s.conn, buf); err != nil {
			return nil, err
		}
		args = append(args, string(buf))
	}
	if len(args) == 0 {
		return nil, &token.ProtocolError{Message: "empty argument list"}
	}
	return args, nil
}

func (s *session) readDOTI() (string, error) {
	n, err := token.Expect(s.conn, token.TagDOTI)
	if err != nil {
		return "", err
	}

	f, err := os.CreateTemp("", "pdistcc-*.ii")
	if err != nil {
		return "", err
	}
	defer f.Close()
	s.cleanup = append(s.cleanup, f.Name())

	if err := token.CopyIn(s.conn, f, n); err != nil {
		return "", err
	}
	return f.Name(), nil
}

func (s *session) compile(inv compiler.Invocation) (exitCode int, stdout, stderr string) {
	cmd := inv.CompilerCmd()
	c := exec.Command(cmd[0], cmd[1:]...)
	var outBuf, errBuf bytes.Buffer
	c.Stdout = &outBuf
	c.Stderr = &errBuf

	start := time.Now()
	err := c.Run()
	metrics.CompilerDuration.Observe(time.Since(start).Seconds())
	metrics.SessionsTotal.Inc()

	code := 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			code = exitErr.ExitCode()
		} else {
			code = 1
			logServer.Error("failed to start compiler:", err)
		}
	}
	return code, outBuf.String(), errBuf.String()
}

func (s *session) reply(statCode int, stderrText, stdoutText string, objBytes []byte) {
	writeTok := func(tag token.Tag, value uint32) bool {
		raw, err := token.Encode(tag, value)
		if err != nil {
			return false
		}
		_, err = s.conn.Write(raw)
		return err == nil
	}

	if !writeTok(token.TagDONE, token.Version) {
		return
	}
	if !writeTok(token.TagSTAT, uint32(int32(statCode))) {
		return
	}
	if !writeTok(token.TagSERR, uint32(len(stderrText))) {
		return
	}
	if _, err := s.conn.Write([]byte(stderrText)); err != nil {
		return
	}
	if !writeTok(token.TagSOUT, uint32(len(stdoutText))) {
		return
	}
	if _, err := s.conn.Write([]byte(stdoutText)); err != nil {
		return
	}
	_ = writeTok(token.TagDOTO, uint32(len(objBytes)))
	if len(objBytes) > 0 {
		_, _ = s.conn.Write(objBytes)
	}
}

func (s *session) runCleanup() {
	for _, path := range s.cleanup {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			logServer.Info(2, "cleanup failed for", path, err)
		}
	}
}

