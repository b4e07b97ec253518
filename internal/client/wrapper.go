package client

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/nocc-oss/pdistcc/internal/compiler"
	"github.com/nocc-oss/pdistcc/internal/sched"
)

// Wrapper ties together classification, local preprocessing, scheduling,
// and the outbound session, mirroring wrap_compiler() in the command-line
// client this system is compatible with.
type Wrapper struct {
	Hosts    []sched.HostSpec
	Settings compiler.Settings
}

// Run intercepts program+args: it classifies the invocation, and either
// runs it locally (unsupported compiler/mode, -E invocations, or the
// localhost sentinel) or ships it to a remote worker. It returns the
// process exit code to propagate.
func (w *Wrapper) Run(program string, args []string) int {
	inv, err := compiler.New(program, args, w.Settings)
	if err != nil {
		return w.runLocally(program, args)
	}

	if err := inv.Classify(); err != nil {
		return w.runLocally(program, args)
	}

	if inv.CalledForPreprocessing() {
		return w.runLocally(program, args)
	}

	if err := inv.RewriteLocalArgs(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	host := sched.Pick(w.Hosts, inv.SourceFile())
	if host.IsLocal() {
		return w.runLocally(program, args)
	}

	preprocessorCmd := inv.PreprocessorCmd()
	if code := runChild(preprocessorCmd); code != 0 {
		fmt.Fprintln(os.Stderr, &compiler.PreprocessorFailed{ExitCode: code})
		return code
	}

	session, err := Connect(host.Host, host.Port)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer session.Close()

	compilerCmd := inv.CompilerCmd()
	if err := session.Request(compilerCmd, inv.PreprocessedFile(), inv.ObjectFile()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	code, err := session.HandleResponse()
	os.Stderr.Write(session.Stderr.Bytes())
	os.Stdout.Write(session.Stdout.Bytes())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return code
}

func (w *Wrapper) runLocally(program string, args []string) int {
	return runChild(append([]string{program}, args...))
}

// runChild executes cmd[0] with cmd[1:], connecting stdout/stderr
// directly to this process's own, and returns its exit code.
func runChild(cmd []string) int {
	c := exec.Command(cmd[0], cmd[1:]...)
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	if err := c.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return exitErr.ExitCode()
		}
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
