package compiler

import (
	"bytes"
	"os/exec"
	"path"
	"path/filepath"
	"strings"

	"github.com/nocc-oss/pdistcc/internal/common"
)

// gccInvocation implements Invocation for the GCC family (gcc, g++, c++,
// and triplet-prefixed cross compilers).
type gccInvocation struct {
	program  string
	args     []string // original args, sans program, as passed on the command line
	settings Settings

	srcFile          string
	objFile          string
	preprocessedFile string
	lang             Language
}

func newGCCInvocation(program string, args []string, settings Settings) *gccInvocation {
	if settings.GCCCompilerDir != "" {
		program = path.Join(settings.GCCCompilerDir, filepath.Base(program))
	}
	return &gccInvocation{program: program, args: append([]string(nil), args...), settings: settings}
}

func (g *gccInvocation) Family() Family { return FamilyGCC }
func (g *gccInvocation) Program() string { return g.program }
func (g *gccInvocation) SourceFile() string { return g.srcFile }
func (g *gccInvocation) ObjectFile() string { return g.objFile }
func (g *gccInvocation) PreprocessedFile() string { return g.preprocessedFile }
func (g *gccInvocation) Language() Language { return g.lang }

// Classify scans the argument list once: exactly one source file, -c
// present, -o PATH present. The scan also skips the argument following
// -x (language override) and -o (output) when searching for sources.
func (g *gccInvocation) Classify() error {
	sourceCount := 0
	isObjectCompilation := false
	hasObjectFile := false

	for i := 0; i < len(g.args); i++ {
		arg := g.args[i]
		switch {
		case arg == "-c":
			isObjectCompilation = true
		case arg == "-x":
			i++ // skip the language name that follows
		case arg == "-o":
			if i+1 < len(g.args) {
				i++
				g.objFile = g.args[i]
				hasObjectFile = true
			}
		case isSourceFile(arg):
			sourceCount++
			g.srcFile = arg
		}
	}

	if sourceCount == 0 {
		return &UnsupportedCompilationMode{Reason: "no source files"}
	}
	if sourceCount > 1 {
		return &UnsupportedCompilationMode{Reason: "multiple source files"}
	}
	if !isObjectCompilation {
		return &UnsupportedCompilationMode{Reason: "linking"}
	}
	if !hasObjectFile {
		return &UnsupportedCompilationMode{Reason: "output object not specified"}
	}

	// Only a .c source is C for the GCC family; .i (like every other
	// source extension) is treated as C++.
	g.lang = LangCXX
	if lowerExt(g.srcFile) == "c" {
		g.lang = LangC
	}
	return nil
}

func isSourceFile(arg string) bool {
	return isSourceExtension(lowerExt(arg))
}

func lowerExt(fileName string) string {
	ext := filepath.Ext(fileName)
	if ext == "" {
		return ""
	}
	return strings.ToLower(ext[1:])
}

// preprocessedFileName derives foo.i / foo.ii from an object path, per the
// source language.
func preprocessedFileName(objFile string, lang Language) string {
	suffix := ".i"
	if lang == LangCXX {
		suffix = ".ii"
	}
	return common.ReplaceFileExt(objFile, suffix)
}

// replaceExt is a thin wrapper so call sites here read like the rest of
// the package; the actual extension surgery lives in common, shared with
// the MSVC wrapper.
func replaceExt(fileName, newExt string) string {
	return common.ReplaceFileExt(fileName, "."+newExt)
}

// PreprocessorCmd copies the argument list, replaces -c with -E, and
// replaces "-o OBJ" with "-o PREPROC". The source argument is preserved.
func (g *gccInvocation) PreprocessorCmd() []string {
	cmd := make([]string, 0, len(g.args)+2)
	cmd = append(cmd, g.program)

	nextIsObject := false
	for _, arg := range g.args {
		switch {
		case arg == "-c":
			cmd = append(cmd, "-E")
		case nextIsObject:
			g.objFile = arg
			g.preprocessedFile = preprocessedFileName(arg, g.lang)
			cmd = append(cmd, g.preprocessedFile)
			nextIsObject = false
		case arg == "-o":
			nextIsObject = true
			cmd = append(cmd, arg)
		default:
			cmd = append(cmd, arg)
		}
	}
	return cmd
}

// CompilerCmd removes every preprocessor-only flag, replaces the source
// argument with the preprocessed file, and, if -x wasn't already present,
// inserts "-x c"/"-x c++" before it.
func (g *gccInvocation) CompilerCmd() []string {
	hasXFlag := false
	for _, arg := range g.args {
		if arg == "-x" {
			hasXFlag = true
			break
		}
	}

	cmd := make([]string, 0, len(g.args)+3)
	cmd = append(cmd, g.program)

	skipNext := false
	for _, arg := range g.args {
		if skipNext {
			skipNext = false
			continue
		}
		if skip, pairs := isGCCPreprocessorFlag(arg); skip {
			skipNext = pairs
			continue
		}
		if arg == g.srcFile {
			if !hasXFlag {
				cmd = append(cmd, "-x", string(g.lang))
			}
			cmd = append(cmd, g.preprocessedFile)
			continue
		}
		cmd = append(cmd, arg)
	}
	return cmd
}

// isGCCPreprocessorFlag reports whether arg is a preprocessor-only flag
// that must be stripped from the remote compilation command, and whether
// it takes a separate following argument that must be stripped too.
//
// Both "-Ipath" (glued) and "-I path" (separate) count as preprocessor
// flags, the more permissive of the two readings.
func isGCCPreprocessorFlag(arg string) (skip bool, takesNextArg bool) {
	switch {
	case strings.HasPrefix(arg, "-D"):
		return true, false
	case arg == "-I":
		return true, true
	case strings.HasPrefix(arg, "-I"):
		return true, false
	case strings.HasPrefix(arg, "-Wp,"):
		return true, false
	case arg == "-Xpreprocessor":
		return true, true
	case arg == "-MD" || arg == "-M" || arg == "-nostdinc":
		return true, false
	case arg == "-MT" || arg == "-MF":
		return true, true
	case arg == "-include" || arg == "-imacro" || arg == "-iquote" || arg == "-isystem":
		return true, true
	default:
		return false, false
	}
}

func (g *gccInvocation) SetSourceFile(path string) {
	if path == g.srcFile {
		return
	}
	for i, a := range g.args {
		if a == g.srcFile {
			g.args[i] = path
		}
	}
	g.srcFile = path
}

func (g *gccInvocation) SetObjectFile(path string) {
	if path == g.objFile {
		return
	}
	for i, a := range g.args {
		if a == g.objFile {
			g.args[i] = path
		}
	}
	g.objFile = path
}

func (g *gccInvocation) SetPreprocessedFile(path string) {
	g.preprocessedFile = path
}

func (g *gccInvocation) CalledForPreprocessing() bool {
	for _, arg := range g.args {
		if arg == "-E" {
			return true
		}
	}
	return false
}

// RewriteLocalArgs resolves -march=native/-mcpu=native/-mtune(=native) to
// their concrete values by querying the local compiler. This must run on
// the client before the command is shipped: the remote worker has no
// notion of "this client's native arch".
func (g *gccInvocation) RewriteLocalArgs() error {
	for i, arg := range g.args {
		var flag string
		switch arg {
		case "-march=native", "-mcpu=native":
			flag = "-march"
		case "-mtune=native", "-mtune":
			flag = "-mtune"
		default:
			continue
		}
		resolved, err := g.resolveNativeFlag(flag)
		if err != nil {
			return err
		}
		g.args[i] = resolved
	}
	return nil
}

func (g *gccInvocation) resolveNativeFlag(flag string) (string, error) {
	cmd := exec.Command(g.program, flag+"=native", "-Q", "--help=target")
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return "", err
	}
	prefix := flag + "="
	for _, line := range strings.Split(out.String(), "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, prefix) {
			return strings.Join(strings.Fields(trimmed), ""), nil
		}
	}
	return "", &UnsupportedCompilationMode{Reason: "failed to resolve " + flag + "=native"}
}
