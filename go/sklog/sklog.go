// Package sklog is the leveled logging facade used by the translator, the
// config loader and the dimquant CLI. Output goes to stderr without debug
// lines until SetLogger installs another sklogimpl.Logger.
package sklog

import (
	"os"

	"go.dimquant.dev/dimquant/go/sklog/sklogimpl"
	"go.dimquant.dev/dimquant/go/sklog/stdlogging"
)

func init() {
	sklogimpl.SetLogger(stdlogging.New(os.Stderr, false))
}

// SetLogger replaces the logger every function in this package writes to.
func SetLogger(l sklogimpl.Logger) {
	sklogimpl.SetLogger(l)
}

// The plain functions format their arguments with fmt.Sprint, the f
// variants with fmt.Sprintf.

func Debug(msg ...interface{}) {
	sklogimpl.Log(1, sklogimpl.Debug, "", msg...)
}

func Debugf(format string, v ...interface{}) {
	sklogimpl.Log(1, sklogimpl.Debug, format, v...)
}

func Info(msg ...interface{}) {
	sklogimpl.Log(1, sklogimpl.Info, "", msg...)
}

func Infof(format string, v ...interface{}) {
	sklogimpl.Log(1, sklogimpl.Info, format, v...)
}

func Warningf(format string, v ...interface{}) {
	sklogimpl.Log(1, sklogimpl.Warning, format, v...)
}

func Error(msg ...interface{}) {
	sklogimpl.Log(1, sklogimpl.Error, "", msg...)
}

// ErrorfWithDepth reports the log line depth frames above its caller, so
// helpers such as util.Close can attribute errors to their own caller.
func ErrorfWithDepth(depth int, format string, v ...interface{}) {
	sklogimpl.Log(1+depth, sklogimpl.Error, format, v...)
}

// Fatal logs and exits the program.
func Fatal(msg ...interface{}) {
	sklogimpl.Log(1, sklogimpl.Fatal, "", msg...)
}

func Flush() {
	sklogimpl.Flush()
}
