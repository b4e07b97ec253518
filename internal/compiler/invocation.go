package compiler

import (
	"path/filepath"
	"regexp"
)

// Language is the source language of a compilation, derived from the
// source file's extension.
type Language string

const (
	LangC   Language = "c"
	LangCXX Language = "c++"
)

// Settings carries the recognized configuration knobs of the command
// model as an explicit record rather than an untyped string-keyed map.
type Settings struct {
	// GCCCompilerDir, if non-empty, rewrites a GCC-family program path to
	// path.Join(GCCCompilerDir, basename(program)) before any command is
	// derived from it.
	GCCCompilerDir string

	// MSVCDistccCompat, when true, makes compiler_cmd() translate /c to
	// -c and drop /Fo... entirely, for compatibility with a remote
	// wrapper that supplies its own output path via -o.
	MSVCDistccCompat bool

	// MSVCUseClang, when true, makes compiler_cmd() replace the program
	// with MSVCClangPath instead of keeping the original cl.exe/clang-cl
	// path.
	MSVCUseClang bool

	// MSVCClangPath is the program substituted when MSVCUseClang is
	// true. Defaults to "clang-cl" if empty.
	MSVCClangPath string
}

func (s Settings) clangPath() string {
	if s.MSVCClangPath != "" {
		return s.MSVCClangPath
	}
	return "clang-cl"
}

// Invocation is the shared capability set both compiler families
// implement: classification, the two derived commands, path accessors and
// setters, and family-specific escape hatches (CalledForPreprocessing and
// RewriteLocalArgs are no-ops outside the GCC family).
type Invocation interface {
	Family() Family

	// Classify scans the argument list once and decides whether this
	// invocation is a single-source, object-producing compile this
	// system can distribute. On success, SourceFile/ObjectFile/Language
	// are all populated.
	Classify() error

	// PreprocessorCmd is the command run locally to produce the
	// preprocessed translation unit.
	PreprocessorCmd() []string

	// CompilerCmd is the command the server executes against the
	// preprocessed translation unit.
	CompilerCmd() []string

	Program() string
	SourceFile() string
	ObjectFile() string
	PreprocessedFile() string
	Language() Language

	SetSourceFile(path string)
	SetObjectFile(path string)
	SetPreprocessedFile(path string)

	// CalledForPreprocessing reports whether the original invocation was
	// itself just a preprocess (GCC's -E). Always false for MSVC.
	CalledForPreprocessing() bool

	// RewriteLocalArgs resolves -march=native/-mcpu=native/-mtune=native
	// to their concrete values by querying the local compiler. It must
	// run on the client before the invocation is shipped. A no-op for
	// MSVC.
	RewriteLocalArgs() error
}

// Family distinguishes the two compiler command models this system knows
// how to split into a local preprocessing command and a remote
// compilation command.
type Family int

const (
	FamilyUnknown Family = iota
	FamilyGCC
	FamilyMSVC
)

var (
	gccTripletRx = regexp.MustCompile(`^.*-gcc(-[0-9.]+)*$`)
	gxxTripletRx = regexp.MustCompile(`^.*-g[+][+](-[0-9.]+)*$`)
)

// DetectFamily classifies a compiler executable by its basename: gcc/g++/c++
// and triplet-prefixed variants are GCC family; cl, clang-cl and their .exe
// forms are MSVC family.
func DetectFamily(program string) Family {
	name := filepath.Base(program)
	switch name {
	case "gcc", "g++", "c++":
		return FamilyGCC
	case "cl", "clang-cl", "cl.exe", "clang-cl.exe":
		return FamilyMSVC
	}
	if gccTripletRx.MatchString(name) || gxxTripletRx.MatchString(name) {
		return FamilyGCC
	}
	return FamilyUnknown
}

// New constructs the invocation wrapper appropriate for program's basename,
// or returns UnsupportedCompiler.
func New(program string, args []string, settings Settings) (Invocation, error) {
	switch DetectFamily(program) {
	case FamilyGCC:
		return newGCCInvocation(program, args, settings), nil
	case FamilyMSVC:
		return newMSVCInvocation(program, args, settings), nil
	default:
		return nil, &UnsupportedCompiler{Basename: filepath.Base(program)}
	}
}

// isSourceExtension reports whether ext (without the leading dot, already
// lowercased) names a recognized C/C++ source file, including the already-
// preprocessed i/ii forms.
func isSourceExtension(ext string) bool {
	switch ext {
	case "c", "cpp", "cxx", "cc", "i", "ii":
		return true
	default:
		return false
	}
}

// languageForSourceExtension returns C if the extension is c (or i,
// msvc-only), C++ otherwise.
func languageForSourceExtension(ext string) Language {
	if ext == "c" || ext == "i" {
		return LangC
	}
	return LangCXX
}
