// Package skerr provides functions for adding context to errors. Errors
// created or wrapped here record the call sites they passed through, and
// still match their root cause with errors.Is and errors.As.
package skerr

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
)

// StackTrace identifies a single frame of a call stack.
type StackTrace struct {
	File string
	Line int
}

// String returns file:line.
func (st *StackTrace) String() string {
	return fmt.Sprintf("%s:%d", st.File, st.Line)
}

// CallStack returns at most height frames of the current call stack, skipping
// the innermost startAt frames (0 is the caller of CallStack).
func CallStack(height, startAt int) []StackTrace {
	stack := make([]StackTrace, 0, height)
	for i := 0; i < height; i++ {
		_, file, line, ok := runtime.Caller(startAt + 1 + i)
		if !ok {
			break
		}
		stack = append(stack, StackTrace{
			File: filepath.Base(file),
			Line: line,
		})
	}
	return stack
}

// ErrorWithContext is the error type returned by this package.
type ErrorWithContext struct {
	// Wrapped is the original error, never an *ErrorWithContext.
	Wrapped error
	// CallStack is where the error was first created or wrapped.
	CallStack []StackTrace
	// Context holds messages added by Wrapf, innermost first.
	Context []string
}

// Error implements the error interface.
func (err *ErrorWithContext) Error() string {
	var out strings.Builder
	for i := len(err.Context) - 1; i >= 0; i-- {
		out.WriteString(err.Context[i])
		out.WriteString(": ")
	}
	out.WriteString(err.Wrapped.Error())
	if len(err.CallStack) > 0 {
		out.WriteString(". At")
		for _, st := range err.CallStack {
			out.WriteString(" ")
			out.WriteString(st.String())
		}
	}
	return out.String()
}

// Unwrap allows errors.Is and errors.As to see the wrapped error.
func (err *ErrorWithContext) Unwrap() error {
	return err.Wrapped
}

// Wrap adds call stack information to err. If err already carries a call
// stack it is returned unchanged. Wrap(nil) returns nil.
func Wrap(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(*ErrorWithContext); ok {
		return err
	}
	return &ErrorWithContext{
		Wrapped:   err,
		CallStack: CallStack(5, 2),
	}
}

// Wrapf is like Wrap but also prepends a formatted message to the error.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	msg := fmt.Sprintf(format, args...)
	if wrapped, ok := err.(*ErrorWithContext); ok {
		ctx := make([]string, 0, len(wrapped.Context)+1)
		ctx = append(ctx, wrapped.Context...)
		return &ErrorWithContext{
			Wrapped:   wrapped.Wrapped,
			CallStack: wrapped.CallStack,
			Context:   append(ctx, msg),
		}
	}
	return &ErrorWithContext{
		Wrapped:   err,
		CallStack: CallStack(5, 2),
		Context:   []string{msg},
	}
}

// Fmt is like fmt.Errorf (including %w) but records the call stack.
func Fmt(format string, args ...interface{}) error {
	return &ErrorWithContext{
		Wrapped:   fmt.Errorf(format, args...),
		CallStack: CallStack(5, 2),
	}
}

// Unwrap returns the error that was originally wrapped, discarding any
// context and call stack.
func Unwrap(err error) error {
	if wrapped, ok := err.(*ErrorWithContext); ok {
		return wrapped.Wrapped
	}
	return err
}
