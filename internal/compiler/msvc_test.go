package compiler

import (
	"testing"

	. "gopkg.in/check.v1"
)

type MSVCWrapperSuite struct{}

var _ = Suite(&MSVCWrapperSuite{})

func newMSVC(cmdline []string, settings Settings) *msvcInvocation {
	return newMSVCInvocation(cmdline[0], cmdline[1:], settings)
}

func (s *MSVCWrapperSuite) TestRejectsPDB(c *C) {
	w := newMSVC([]string{"cl.exe", "/Zi", "/c", "/Fofoo.obj", "foo.cpp"}, Settings{})
	_, ok := w.Classify().(*UnsupportedCompilationMode)
	c.Assert(ok, Equals, true)
}

func (s *MSVCWrapperSuite) TestRejectsMultipleSources(c *C) {
	w := newMSVC([]string{"cl.exe", "/c", `/Foproj\`, "foo.cpp", "bar.cpp"}, Settings{})
	_, ok := w.Classify().(*UnsupportedCompilationMode)
	c.Assert(ok, Equals, true)
}

func (s *MSVCWrapperSuite) TestPositive(c *C) {
	w := newMSVC([]string{"cl.exe", "/c", "/Fofoo.obj", "/Z7", "/O2", "foo.cpp"}, Settings{})
	c.Assert(w.Classify(), IsNil)
}

func (s *MSVCWrapperSuite) TestObjectFile(c *C) {
	w := newMSVC([]string{"cl.exe", "/c", "/Fofoo.obj", "foo.cpp"}, Settings{})
	c.Assert(w.Classify(), IsNil)
	c.Assert(w.ObjectFile(), Equals, "foo.obj")
}

func (s *MSVCWrapperSuite) TestSourceFile(c *C) {
	w := newMSVC([]string{"cl.exe", "/c", "/Fofoo.obj", "foo.cpp"}, Settings{})
	c.Assert(w.Classify(), IsNil)
	c.Assert(w.SourceFile(), Equals, "foo.cpp")
}

func (s *MSVCWrapperSuite) TestPreprocessorCmd(c *C) {
	w := newMSVC([]string{"cl.exe", "/c", "/Fofoo.obj", "foo.cpp"}, Settings{})
	c.Assert(w.Classify(), IsNil)
	c.Assert(w.PreprocessorCmd(), DeepEquals, []string{"cl.exe", "/P", "/Fifoo.i", "foo.cpp"})
}

func (s *MSVCWrapperSuite) TestCompilerCmdNative(c *C) {
	w := newMSVC([]string{"cl.exe", "/c", "/Fofoo.obj", "foo.cpp"}, Settings{MSVCUseClang: false})
	c.Assert(w.Classify(), IsNil)
	w.PreprocessorCmd()
	c.Assert(w.CompilerCmd(), DeepEquals, []string{"cl.exe", "/c", "/Fofoo.obj", "/TP", "foo.i"})
}

func (s *MSVCWrapperSuite) TestCompilerCmdClangCl(c *C) {
	w := newMSVC([]string{"cl.exe", "/c", "/Fofoo.obj", "foo.cpp"}, Settings{MSVCUseClang: true})
	c.Assert(w.Classify(), IsNil)
	w.PreprocessorCmd()
	c.Assert(w.CompilerCmd(), DeepEquals, []string{"clang-cl", "/c", "/Fofoo.obj", "/TP", "foo.i"})
}

func (s *MSVCWrapperSuite) TestSetPreprocessedFile(c *C) {
	w := newMSVC([]string{"cl.exe", "/c", "/Fofoo.obj", "/TP", "foo.i"}, Settings{MSVCUseClang: true})
	c.Assert(w.Classify(), IsNil)
	w.SetPreprocessedFile("/tmp/fooXYZ.i")
	c.Assert(w.PreprocessedFile(), Equals, "/tmp/fooXYZ.i")
	c.Assert(w.CompilerCmd(), DeepEquals, []string{"clang-cl", "/c", "/Fofoo.obj", "/TP", "/tmp/fooXYZ.i"})
}

func (s *MSVCWrapperSuite) TestSetObjectFile(c *C) {
	w := newMSVC([]string{"cl.exe", "/c", "/Fofoo.obj", "foo.cpp"}, Settings{MSVCUseClang: false})
	c.Assert(w.Classify(), IsNil)
	w.SetPreprocessedFile("foo.ii")
	w.SetObjectFile(`C:\tmp\fooXYZ.obj`)
	c.Assert(w.ObjectFile(), Equals, `C:\tmp\fooXYZ.obj`)
	c.Assert(w.CompilerCmd(), DeepEquals, []string{"cl.exe", "/c", `/FoC:\tmp\fooXYZ.obj`, "/TP", "foo.ii"})
}

func (s *MSVCWrapperSuite) TestSkipsDefines(c *C) {
	w := newMSVC([]string{"cl.exe", "/c", "/DFOO=BAR", "/Fofoo.obj", "/D_X=Y", "foo.cpp"}, Settings{MSVCUseClang: false})
	c.Assert(w.Classify(), IsNil)
	w.SetPreprocessedFile("foo.ii")
	c.Assert(w.CompilerCmd(), DeepEquals, []string{"cl.exe", "/c", "/Fofoo.obj", "/TP", "foo.ii"})
}

func TestMSVCNoSourcesXFail(t *testing.T) {
	w := newMSVC([]string{"cl.exe", "/c", "/Fofoo.obj"}, Settings{})
	if _, ok := w.Classify().(*UnsupportedCompilationMode); !ok {
		t.Fatal("Classify did not reject a command with no sources")
	}
}

func TestMSVCLinkingXFail(t *testing.T) {
	w := newMSVC([]string{"cl.exe", "foo.c"}, Settings{})
	if _, ok := w.Classify().(*UnsupportedCompilationMode); !ok {
		t.Fatal("Classify did not reject a link command")
	}
}

func TestMSVCResponseFileXFail(t *testing.T) {
	w := newMSVC([]string{"cl.exe", "/c", "/Fofoo.o", "foo.c", "@options.txt"}, Settings{})
	if _, ok := w.Classify().(*UnsupportedCompilationMode); !ok {
		t.Fatal("Classify did not reject a response file")
	}
}

func TestMSVCFdWithoutDebugInfo(t *testing.T) {
	w := newMSVC([]string{"cl.exe", "/c", "/Fofoo.o", "foo.c", "/Fdfoo.pdb"}, Settings{MSVCUseClang: false})
	if err := w.Classify(); err != nil {
		t.Fatal(err)
	}
	wantPre := []string{"cl.exe", "/P", "/Fifoo.i", "foo.c"}
	if got := w.PreprocessorCmd(); !equalStrings(got, wantPre) {
		t.Fatalf("PreprocessorCmd() = %v, want %v", got, wantPre)
	}
	wantCompile := []string{"cl.exe", "/c", "/Fofoo.o", "/TC", "foo.i"}
	if got := w.CompilerCmd(); !equalStrings(got, wantCompile) {
		t.Fatalf("CompilerCmd() = %v, want %v", got, wantCompile)
	}
}

func TestMSVCMPXFail(t *testing.T) {
	w := newMSVC([]string{"cl.exe", "/c", "/Fofoo.o", "foo.c", "/MP4"}, Settings{MSVCUseClang: false})
	if _, ok := w.Classify().(*UnsupportedCompilationMode); !ok {
		t.Fatal("Classify did not reject /MP4")
	}
}

func TestMSVCUseClang(t *testing.T) {
	w := newMSVC([]string{"cl.exe", "/c", "/Fofoo.obj", "foo.cpp"}, Settings{
		MSVCUseClang:  true,
		MSVCClangPath: "D:/bin/clang-cl.exe",
	})
	if err := w.Classify(); err != nil {
		t.Fatal(err)
	}
	wantPre := []string{"cl.exe", "/P", "/Fifoo.i", "foo.cpp"}
	if got := w.PreprocessorCmd(); !equalStrings(got, wantPre) {
		t.Fatalf("PreprocessorCmd() = %v, want %v", got, wantPre)
	}
	wantCompile := []string{"D:/bin/clang-cl.exe", "/c", "/Fofoo.obj", "/TP", "foo.i"}
	if got := w.CompilerCmd(); !equalStrings(got, wantCompile) {
		t.Fatalf("CompilerCmd() = %v, want %v", got, wantCompile)
	}
}
