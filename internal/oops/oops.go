// oops package wraps errors with a message and the call stack where they were raised
package oops

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/go-stack/stack"
	"github.com/rs/zerolog"
)

// An error raised while reading or writing an image, with where it happened
type Error struct {
	Message string
	Wrapped error // May be nil
	Stack   Stack
}

func (e *Error) Error() string {
	if e.Wrapped == nil {
		return e.Message
	}
	return e.Message + ": " + e.Wrapped.Error()
}

func (e *Error) Unwrap() error {
	return e.Wrapped
}

// Innermost frame first
type Stack []Frame

type Frame struct {
	File     string `json:"file"`
	Line     int    `json:"line"`
	Function string `json:"function"`
}

// Prints a frame as "dir/file.go:line function"
func (f Frame) String() string {
	return fmt.Sprintf("%s/%s:%d %s", filepath.Base(filepath.Dir(f.File)), filepath.Base(f.File), f.Line, f.Function)
}

func (s Stack) MarshalZerologArray(a *zerolog.Array) {
	for _, f := range s {
		a.Object(f)
	}
}

func (f Frame) MarshalZerologObject(e *zerolog.Event) {
	e.Str("file", f.File).Int("line", f.Line).Str("function", f.Function)
}

// Finds the first *Error in the chain and returns its stack (for zerolog.ErrorStackMarshaler)
func ZerologStackMarshaler(err error) interface{} {
	var e *Error
	if errors.As(err, &e) {
		return e.Stack
	}
	return nil
}

// Returns the call stack of the caller
func Trace() Stack {
	return capture(2)
}

// Wraps an error (nil is fine) with a formatted message and the caller's stack
func New(wrapped error, format string, args ...interface{}) error {
	return &Error{
		Message: fmt.Sprintf(format, args...),
		Wrapped: wrapped,
		Stack:   capture(2),
	}
}

// skip 0 is capture itself, 1 its caller
func capture(skip int) Stack {
	calls := stack.Trace().TrimBelow(stack.Caller(skip)).TrimRuntime()
	frames := make(Stack, 0, len(calls))
	for _, call := range calls {
		f := call.Frame()
		frames = append(frames, Frame{File: f.File, Line: f.Line, Function: f.Function})
	}
	return frames
}
