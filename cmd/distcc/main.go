// Command distcc is a one-shot drop-in compiler wrapper: it classifies
// the compiler invocation it was given, preprocesses locally, and ships
// the residual compile to a remote worker chosen from --host/DISTCC_HOSTS,
// falling back to local execution whenever that's not possible.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/nocc-oss/pdistcc/internal/client"
	"github.com/nocc-oss/pdistcc/internal/common"
	"github.com/nocc-oss/pdistcc/internal/compiler"
	"github.com/nocc-oss/pdistcc/internal/config"
	"github.com/nocc-oss/pdistcc/internal/sched"
)

func failedStart(err interface{}) {
	_, _ = fmt.Fprintln(os.Stderr, "[distcc]", err)
	os.Exit(1)
}

func parseHostsEnv(env string) []string {
	fields := strings.Fields(env)
	hosts := make([]string, 0, len(fields))
	hosts = append(hosts, fields...)
	return hosts
}

func main() {
	showVersionAndExit := common.CmdEnvBool("Show version and exit.", false,
		"version", "")
	showVersionAndExitShort := common.CmdEnvBool("Show version and exit.", false,
		"v", "")
	logFileName := common.CmdEnvString("A filename to log to, nothing by default.\nErrors are duplicated to stderr always.", "",
		"log-filename", "DISTCC_LOG_FILENAME")
	logVerbosity := common.CmdEnvInt("Logger verbosity for INFO (-1 off, default 0, max 2).", 0,
		"log-verbosity", "DISTCC_LOG_VERBOSITY")
	gccCompilerDir := common.CmdEnvString("If set, rewrite a GCC-family program path to this directory before running it.", "",
		"gcc-compiler-dir", "DISTCC_GCC_COMPILER_DIR")
	msvcUseClang := common.CmdEnvBool("For the MSVC family, compile with clang-cl instead of cl.exe.", false,
		"msvc-use-clang", "DISTCC_MSVC_USE_CLANG")
	msvcClangPath := common.CmdEnvString("Program substituted when -msvc-use-clang is set.", "clang-cl",
		"msvc-clang-path", "DISTCC_MSVC_CLANG_PATH")
	msvcDistccCompat := common.CmdEnvBool("For the MSVC family, translate /c to -c and drop /Fo... for a distcc-compatible remote wrapper.", false,
		"msvc-distcc-compat", "DISTCC_MSVC_COMPAT")

	args := os.Args[1:]
	var hostFlags []string
	i := 0
	for i < len(args) {
		if args[i] == "--host" && i+1 < len(args) {
			hostFlags = append(hostFlags, args[i+1])
			args = append(args[:i], args[i+2:]...)
			continue
		}
		if strings.HasPrefix(args[i], "--host=") {
			hostFlags = append(hostFlags, strings.TrimPrefix(args[i], "--host="))
			args = append(args[:i], args[i+1:]...)
			continue
		}
		break
	}
	os.Args = append([]string{os.Args[0]}, args...)

	common.ParseCmdFlagsCombiningWithEnv()

	if *showVersionAndExit || *showVersionAndExitShort {
		fmt.Println(common.GetVersion())
		os.Exit(0)
	}

	if err := client.MakeLoggerClient(*logFileName, *logVerbosity, true); err != nil {
		failedStart(err)
	}

	if len(args) == 0 {
		failedStart("usage: distcc [--host HOST:PORT/WEIGHT ...] compiler [args...]")
	}

	hostStrs := hostFlags
	if len(hostStrs) == 0 {
		if env := os.Getenv("DISTCC_HOSTS"); env != "" {
			hostStrs = parseHostsEnv(env)
		}
	}
	if len(hostStrs) == 0 {
		cfg, err := config.LoadClientConfig(config.Dir())
		if err == nil && len(cfg.Hosts) > 0 {
			hostStrs = cfg.Hosts
		}
	}
	if len(hostStrs) == 0 {
		hostStrs = []string{"localhost:3632"}
	}

	hosts := make([]sched.HostSpec, 0, len(hostStrs))
	for _, s := range hostStrs {
		h, err := sched.ParseHostSpec(s)
		if err != nil {
			failedStart(err)
		}
		hosts = append(hosts, h)
	}

	w := &client.Wrapper{
		Hosts: hosts,
		Settings: compiler.Settings{
			GCCCompilerDir:   *gccCompilerDir,
			MSVCUseClang:     *msvcUseClang,
			MSVCClangPath:    *msvcClangPath,
			MSVCDistccCompat: *msvcDistccCompat,
		},
	}

	os.Exit(w.Run(args[0], args[1:]))
}
