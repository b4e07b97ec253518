// Command distccd is the daemon half: it binds a TCP listener and serves
// compilation sessions concurrently, one goroutine per connection.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/nocc-oss/pdistcc/internal/common"
	"github.com/nocc-oss/pdistcc/internal/compiler"
	"github.com/nocc-oss/pdistcc/internal/config"
	"github.com/nocc-oss/pdistcc/internal/metrics"
	"github.com/nocc-oss/pdistcc/internal/server"
)

func failedStart(err interface{}) {
	_, _ = fmt.Fprintln(os.Stderr, "[distccd]", err)
	os.Exit(1)
}

func main() {
	defaultCfg, _ := config.LoadServerConfig(config.Dir())

	showVersionAndExit := common.CmdEnvBool("Show version and exit.", false,
		"version", "")
	showVersionAndExitShort := common.CmdEnvBool("Show version and exit.", false,
		"v", "")
	listenAddr := common.CmdEnvString("Address to bind, e.g. ':3632'.", defaultCfg.ListenAddr,
		"listen", "DISTCCD_LISTEN")
	metricsAddr := common.CmdEnvString("Address to serve /metrics on, empty to disable.", defaultCfg.MetricsAddr,
		"metrics-listen", "DISTCCD_METRICS_LISTEN")
	logFileName := common.CmdEnvString("A filename to log to, stderr by default.", defaultCfg.LogFileName,
		"log-filename", "DISTCCD_LOG_FILENAME")
	logVerbosity := common.CmdEnvInt("Logger verbosity for INFO (-1 off, default 0, max 2).", defaultCfg.LogLevel,
		"log-verbosity", "DISTCCD_LOG_VERBOSITY")
	gccCompilerDir := common.CmdEnvString("If set, rewrite a GCC-family program path to this directory before running it.", "",
		"gcc-compiler-dir", "DISTCCD_GCC_COMPILER_DIR")

	common.ParseCmdFlagsCombiningWithEnv()

	if *showVersionAndExit || *showVersionAndExitShort {
		fmt.Println(common.GetVersion())
		os.Exit(0)
	}

	if err := server.MakeLoggerServer(*logFileName, *logVerbosity); err != nil {
		failedStart(err)
	}

	settings := compiler.Settings{GCCCompilerDir: *gccCompilerDir}

	ln, err := server.Listen(*listenAddr, settings)
	if err != nil {
		failedStart(err)
	}

	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", metrics.Handler())
			_ = http.ListenAndServe(*metricsAddr, mux)
		}()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	fmt.Fprintln(os.Stderr, "[distccd] listening on", ln.Addr().String())
	if err := ln.Serve(ctx); err != nil {
		failedStart(err)
	}
}
