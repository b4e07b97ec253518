package compiler

import "strings"

// msvcInvocation implements Invocation for the MSVC family (cl, clang-cl,
// and their .exe forms).
type msvcInvocation struct {
	program  string
	args     []string
	settings Settings

	srcFile          string
	objFile          string
	preprocessedFile string
	lang             Language
}

func newMSVCInvocation(program string, args []string, settings Settings) *msvcInvocation {
	return &msvcInvocation{program: program, args: append([]string(nil), args...), settings: settings}
}

func (m *msvcInvocation) Family() Family { return FamilyMSVC }
func (m *msvcInvocation) Program() string { return m.program }
func (m *msvcInvocation) SourceFile() string { return m.srcFile }
func (m *msvcInvocation) ObjectFile() string { return m.objFile }
func (m *msvcInvocation) PreprocessedFile() string { return m.preprocessedFile }
func (m *msvcInvocation) Language() Language { return m.lang }

// Classify enforces a single source file, /c or -c, an explicit /FoPATH,
// and rejects PDB generation, multiprocess compilation, and response
// files.
func (m *msvcInvocation) Classify() error {
	sourceCount := 0
	isObjectCompilation := false
	hasObjectFile := false

	for _, arg := range m.args {
		switch {
		case arg == "/c" || arg == "-c":
			isObjectCompilation = true
		case strings.HasPrefix(arg, "/Fo"):
			m.objFile = strings.TrimPrefix(arg, "/Fo")
			hasObjectFile = true
		case arg == "/Zi" || arg == "/ZI":
			return &UnsupportedCompilationMode{Reason: "PDB generation requested"}
		case strings.HasPrefix(arg, "/MP"):
			return &UnsupportedCompilationMode{Reason: "multiprocess compilation requested"}
		case strings.HasPrefix(arg, "@"):
			return &UnsupportedCompilationMode{Reason: "response file expansion requested"}
		case isSourceFile(arg):
			sourceCount++
			m.srcFile = arg
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

	m.lang = languageForSourceExtension(lowerExt(m.srcFile))
	return nil
}

// PreprocessorCmd strips /c, -c, /E, and any PDB-related flag (/FS,
// /Fd...), and replaces /FoOBJ with the pair "/P", "/FiPREPROC". The
// preprocessed extension is always "i", regardless of source language.
func (m *msvcInvocation) PreprocessorCmd() []string {
	cmd := make([]string, 0, len(m.args)+2)
	cmd = append(cmd, m.program)

	for _, arg := range m.args {
		switch {
		case arg == "/c" || arg == "-c" || arg == "/E":
			continue
		case arg == "/FS" || strings.HasPrefix(arg, "/Fd"):
			continue
		case strings.HasPrefix(arg, "/Fo"):
			obj := strings.TrimPrefix(arg, "/Fo")
			m.objFile = obj
			m.preprocessedFile = replaceExt(obj, "i")
			cmd = append(cmd, "/P", "/Fi"+m.preprocessedFile)
		default:
			cmd = append(cmd, arg)
		}
	}
	return cmd
}

// CompilerCmd omits preprocessor flags (/D.../I...) and PDB-related
// flags, applies distcc_compat's /c and /Fo translation, and replaces the
// source argument with /TC or /TP followed by the preprocessed path
// (unless /TC or /TP was already present). With use_clang, the program
// is replaced by clang_path.
func (m *msvcInvocation) CompilerCmd() []string {
	hasExplicitLang := false
	for _, arg := range m.args {
		if arg == "/TC" || arg == "/TP" {
			hasExplicitLang = true
			break
		}
	}

	program := m.program
	if m.settings.MSVCUseClang {
		program = m.settings.clangPath()
	}
	cmd := make([]string, 0, len(m.args)+3)
	cmd = append(cmd, program)

	for _, arg := range m.args {
		switch {
		case strings.HasPrefix(arg, "/D") || strings.HasPrefix(arg, "/I"):
			continue
		case arg == "/FS" || strings.HasPrefix(arg, "/Fd"):
			continue
		case arg == "/c":
			if m.settings.MSVCDistccCompat {
				cmd = append(cmd, "-c")
			} else {
				cmd = append(cmd, arg)
			}
		case strings.HasPrefix(arg, "/Fo"):
			if !m.settings.MSVCDistccCompat {
				cmd = append(cmd, arg)
			}
		case arg == m.srcFile:
			if !hasExplicitLang {
				if m.lang == LangC {
					cmd = append(cmd, "/TC")
				} else {
					cmd = append(cmd, "/TP")
				}
			}
			cmd = append(cmd, m.preprocessedFile)
		default:
			cmd = append(cmd, arg)
		}
	}
	return cmd
}

func (m *msvcInvocation) SetSourceFile(path string) {
	if path == m.srcFile {
		return
	}
	for i, a := range m.args {
		if a == m.srcFile {
			m.args[i] = path
		}
	}
	m.srcFile = path
}

func (m *msvcInvocation) SetObjectFile(path string) {
	if path == m.objFile {
		return
	}
	old := "/Fo" + m.objFile
	for i, a := range m.args {
		if a == old {
			m.args[i] = "/Fo" + path
		}
	}
	m.objFile = path
}

func (m *msvcInvocation) SetPreprocessedFile(path string) {
	m.preprocessedFile = path
}

// CalledForPreprocessing is always false for MSVC: Classify does not look
// at /E, and PreprocessorCmd drops /E from the local command.
func (m *msvcInvocation) CalledForPreprocessing() bool { return false }

// RewriteLocalArgs is a no-op for MSVC: there is no native-arch flag to
// resolve.
func (m *msvcInvocation) RewriteLocalArgs() error { return nil }
