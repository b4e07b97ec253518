package server

import "github.com/nocc-oss/pdistcc/internal/common"

// anywhere in the server code, use logServer.Info() and other methods for logging;
// until MakeLoggerServer is called it is a logger that discards everything
var logServer, _ = common.MakeLogger("", 0, true, false)

func MakeLoggerServer(logFile string, verbosity int64) error {
	var err error
	logServer, err = common.MakeLogger(logFile, verbosity, false, false)
	return err
}
