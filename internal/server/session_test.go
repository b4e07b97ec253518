package server

import (
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/nocc-oss/pdistcc/internal/compiler"
	"github.com/nocc-oss/pdistcc/internal/token"
)

// installFakeCompiler writes a shell script masquerading as a compiler:
// it locates "-o PATH" in its argv and writes body to that path, exiting
// 0. It prepends dir to PATH for the duration of the test.
func installFakeCompiler(t *testing.T, name, body string) {
	t.Helper()
	dir := t.TempDir()
	script := filepath.Join(dir, name)
	contents := "#!/bin/sh\n" +
		"out=\"\"\n" +
		"while [ $# -gt 0 ]; do\n" +
		"  if [ \"$1\" = \"-o\" ]; then shift; out=\"$1\"; fi\n" +
		"  shift\n" +
		"done\n" +
		"printf '%s' '" + body + "' > \"$out\"\n" +
		"exit 0\n"
	if err := os.WriteFile(script, []byte(contents), 0755); err != nil {
		t.Fatal(err)
	}
	oldPath := os.Getenv("PATH")
	os.Setenv("PATH", dir+string(os.PathListSeparator)+oldPath)
	t.Cleanup(func() { os.Setenv("PATH", oldPath) })
}

func sendRequest(t *testing.T, conn net.Conn, args []string, preprocessedBytes []byte) {
	t.Helper()
	write := func(tag token.Tag, value uint32) {
		raw, err := token.Encode(tag, value)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := conn.Write(raw); err != nil {
			t.Fatal(err)
		}
	}
	write(token.TagDIST, token.Version)
	write(token.TagARGC, uint32(len(args)))
	for _, arg := range args {
		raw := []byte(arg)
		write(token.TagARGV, uint32(len(raw)))
		if _, err := conn.Write(raw); err != nil {
			t.Fatal(err)
		}
	}
	write(token.TagDOTI, uint32(len(preprocessedBytes)))
	if _, err := conn.Write(preprocessedBytes); err != nil {
		t.Fatal(err)
	}
}

type response struct {
	version  uint32
	stat     int
	stderr   []byte
	stdout   []byte
	object   []byte
	hasObj   bool
}

func readResponse(t *testing.T, conn net.Conn) response {
	t.Helper()
	var r response

	v, err := token.Expect(conn, token.TagDONE)
	if err != nil {
		t.Fatal(err)
	}
	r.version = v

	stat, err := token.Expect(conn, token.TagSTAT)
	if err != nil {
		t.Fatal(err)
	}
	r.stat = int(int32(stat))

	errLen, err := token.Expect(conn, token.TagSERR)
	if err != nil {
		t.Fatal(err)
	}
	r.stderr = make([]byte, errLen)
	if err := token.ReadExactly(conn, r.stderr); err != nil {
		t.Fatal(err)
	}

	outLen, err := token.Expect(conn, token.TagSOUT)
	if err != nil {
		t.Fatal(err)
	}
	r.stdout = make([]byte, outLen)
	if err := token.ReadExactly(conn, r.stdout); err != nil {
		t.Fatal(err)
	}

	objLen, err := token.Expect(conn, token.TagDOTO)
	if err != nil {
		t.Fatal(err)
	}
	r.hasObj = objLen > 0
	r.object = make([]byte, objLen)
	if err := token.ReadExactly(conn, r.object); err != nil {
		t.Fatal(err)
	}
	return r
}

func TestServeWireRoundTrip(t *testing.T) {
	installFakeCompiler(t, "g++", "FAKEELF")

	clientConn, serverConn := net.Pipe()
	done := make(chan struct{})
	go func() {
		Serve(serverConn, compiler.Settings{})
		close(done)
	}()

	sendRequest(t, clientConn, []string{"g++", "-c", "-o", "hello.o", "-x", "c++", "hello.ii"}, []byte("int main(){}"))
	resp := readResponse(t, clientConn)
	clientConn.Close()
	<-done

	if resp.stat != 0 {
		t.Fatalf("stat = %d, want 0; stderr=%q", resp.stat, resp.stderr)
	}
	if string(resp.object) != "FAKEELF" {
		t.Fatalf("object = %q, want FAKEELF", resp.object)
	}
}

func TestServeRejectsUnsupportedCompiler(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	done := make(chan struct{})
	go func() {
		Serve(serverConn, compiler.Settings{})
		close(done)
	}()

	sendRequest(t, clientConn, []string{"tcc", "-c", "-o", "hello.o", "hello.c"}, []byte("int main(){}"))
	resp := readResponse(t, clientConn)
	clientConn.Close()
	<-done

	if resp.stat == 0 {
		t.Fatal("stat = 0, want non-zero for an unsupported compiler")
	}
}

func TestServeRejectsLinking(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	done := make(chan struct{})
	go func() {
		Serve(serverConn, compiler.Settings{})
		close(done)
	}()

	sendRequest(t, clientConn, []string{"g++", "-o", "hello", "hello.ii"}, []byte("int main(){}"))
	resp := readResponse(t, clientConn)
	clientConn.Close()
	<-done

	if resp.stat == 0 {
		t.Fatal("stat = 0, want non-zero for a link command")
	}
}
