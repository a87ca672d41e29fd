// Package sklogimpl holds the logger that package sklog forwards to. It is a
// separate package so that Logger implementations can import it without an
// import cycle back to sklog.
package sklogimpl

import (
	"sync"
)

// Severity of a log line.
type Severity int

const (
	Debug Severity = iota
	Info
	Warning
	Error
	Fatal
)

// String returns the upper case name of the severity.
func (s Severity) String() string {
	switch s {
	case Debug:
		return "DEBUG"
	case Info:
		return "INFO"
	case Warning:
		return "WARNING"
	case Error:
		return "ERROR"
	case Fatal:
		return "FATAL"
	}
	return "UNKNOWN"
}

// Logger is the interface every log backend implements.
type Logger interface {
	// Log writes a single line. depth is the number of stack frames between
	// the original sklog call and Log. An empty fmt means args are joined with
	// fmt.Sprint semantics.
	Log(depth int, severity Severity, fmt string, args ...interface{})

	// Flush writes out any buffered lines.
	Flush()
}

var (
	mtx    sync.RWMutex
	logger Logger
)

// SetLogger replaces the current logger.
func SetLogger(l Logger) {
	mtx.Lock()
	defer mtx.Unlock()
	logger = l
}

// Log forwards to the current logger.
func Log(depth int, severity Severity, fmt string, args ...interface{}) {
	mtx.RLock()
	l := logger
	mtx.RUnlock()
	if l == nil {
		return
	}
	l.Log(depth+1, severity, fmt, args...)
}

// Flush forwards to the current logger.
func Flush() {
	mtx.RLock()
	l := logger
	mtx.RUnlock()
	if l != nil {
		l.Flush()
	}
}
