// Package errors defines the failure taxonomy of the OCR boundary.
//
// On the Go side failures travel as *Error values; at the boundary every one
// of them collapses to the single FAILURE status.
package errors

import (
	"fmt"
)

// Code classifies a failure.
type Code string

const (
	// CodeConfig means the handle could not be created: unknown profile,
	// missing model directory or dictionary, unloadable backend.
	CodeConfig Code = "CONFIG_INVALID"
	// CodeDecode means the input bytes are not a decodable image.
	CodeDecode Code = "DECODE_FAILED"
	// CodeInference means detection, classification or recognition failed.
	CodeInference Code = "INFERENCE_FAILED"
)

// Sentinels for errors.Is.
var (
	ErrConfig    = &Error{Code: CodeConfig}
	ErrDecode    = &Error{Code: CodeDecode}
	ErrInference = &Error{Code: CodeInference}
)

// Error is a structured OCR failure.
type Error struct {
	Code    Code
	Stage   string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := string(e.Code)
	if e.Stage != "" {
		msg += " [" + e.Stage + "]"
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += fmt.Sprintf(" (caused by: %v)", e.Cause)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error with the same code, so the package sentinels work
// with the standard errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Config reports a handle creation failure.
func Config(cause error, format string, args ...interface{}) *Error {
	return &Error{
		Code:    CodeConfig,
		Stage:   "create",
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Decode reports undecodable input bytes.
func Decode(cause error) *Error {
	return &Error{
		Code:    CodeDecode,
		Stage:   "decode",
		Message: "input is not a supported encoded image",
		Cause:   cause,
	}
}

// Inference reports a failure inside a pipeline stage.
func Inference(stage string, cause error) *Error {
	return &Error{
		Code:    CodeInference,
		Stage:   stage,
		Message: fmt.Sprintf("%s stage failed", stage),
		Cause:   cause,
	}
}

// CodeOf returns the code of err, or "" when err is not an *Error.
func CodeOf(err error) Code {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e.Code
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return ""
		}
		err = u.Unwrap()
	}
	return ""
}
