package logger

import (
	"go.uber.org/zap"
)

// Log is the process-wide logger. It is a no-op logger until Init is called,
// so packages can log from tests without setup.
var Log = zap.NewNop()

// Init replaces Log with a production logger, or a development logger when
// verbose is set.
func Init(verbose bool) error {
	var (
		l   *zap.Logger
		err error
	)
	if verbose {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		return err
	}
	Log = l
	return nil
}

// Sync flushes any buffered log entries.
func Sync() {
	_ = Log.Sync()
}
