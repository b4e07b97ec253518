// Package compiler implements the compiler command model: classifying a
// compiler invocation as a distributable single-source object compile, and
// deriving the local preprocessing command and the remote compilation
// command from it, for both the GCC and MSVC (clang-cl) families.
package compiler

import "fmt"

// UnsupportedCompiler is raised when the basename of argv[0] does not match
// any known compiler family.
type UnsupportedCompiler struct {
	Basename string
}

func (e *UnsupportedCompiler) Error() string {
	return fmt.Sprintf("unsupported compiler: %q", e.Basename)
}

// UnsupportedCompilationMode is raised when Classify rejects an invocation:
// multiple (or zero) source files, linking instead of compiling, a missing
// output path, or a disqualifying flag (PDB generation, multiprocessing,
// response files).
type UnsupportedCompilationMode struct {
	Reason string
}

func (e *UnsupportedCompilationMode) Error() string {
	return "unsupported compilation mode: " + e.Reason
}

// PreprocessorFailed is raised by the client wrapper (not by this package)
// when the local preprocessor child exits non-zero; it is declared here
// since it belongs to the same error taxonomy as the types above.
type PreprocessorFailed struct {
	ExitCode int
}

func (e *PreprocessorFailed) Error() string {
	return fmt.Sprintf("local preprocessor failed with exit code %d", e.ExitCode)
}
