package client

import (
	"os/exec"
	"testing"

	"github.com/nocc-oss/pdistcc/internal/compiler"
	"github.com/nocc-oss/pdistcc/internal/sched"
)

func TestRunFallsBackLocallyOnUnsupportedCompiler(t *testing.T) {
	if _, err := exec.LookPath("true"); err != nil {
		t.Skip("no /usr/bin/true on this system")
	}
	w := &Wrapper{
		Hosts:    []sched.HostSpec{{Host: "build1", Port: 3632, Weight: 1}},
		Settings: compiler.Settings{},
	}
	if code := w.Run("true", nil); code != 0 {
		t.Fatalf("Run() = %d, want 0", code)
	}
}

func TestRunPropagatesExitCodeLocally(t *testing.T) {
	if _, err := exec.LookPath("false"); err != nil {
		t.Skip("no /usr/bin/false on this system")
	}
	w := &Wrapper{
		Hosts:    []sched.HostSpec{{Host: "build1", Port: 3632, Weight: 1}},
		Settings: compiler.Settings{},
	}
	if code := w.Run("false", nil); code != 1 {
		t.Fatalf("Run() = %d, want 1", code)
	}
}

func TestRunChild(t *testing.T) {
	if _, err := exec.LookPath("true"); err != nil {
		t.Skip("no /usr/bin/true on this system")
	}
	if code := runChild([]string{"true"}); code != 0 {
		t.Fatalf("runChild(true) = %d, want 0", code)
	}
}
