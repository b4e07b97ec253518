package common

import (
	"os"
	"path"
	"path/filepath"
)

// MkdirForFile ensures fileName's parent directory exists, used by the
// client before it creates the output object file: the compiler's own
// -o/-Fo argument may name a path in a directory the invoking build
// system hasn't created yet on this machine.
func MkdirForFile(fileName string) error {
	if err := os.MkdirAll(filepath.Dir(fileName), os.ModePerm); err != nil {
		return err
	}
	return nil
}

// ReplaceFileExt swaps fileName's extension for newExt (which must
// include the leading dot), used by the command model to derive
// preprocessed-file names (foo.o -> foo.i / foo.ii) from object paths.
func ReplaceFileExt(fileName string, newExt string) string {
	logExt := path.Ext(fileName)
	return fileName[0:len(fileName)-len(logExt)] + newExt
}
