// Package errs implements the flat error taxonomy shared across the
// harvester: every failure carries a Kind plus the call-site file and line
// of whoever raised it, so operators can triage a schema violation without
// a debugger attached.
package errs

import (
	"fmt"
	"runtime"
)

// Kind distinguishes the flat error taxonomy.
type Kind string

const (
	KeyMissing                Kind = "KeyMissing"
	NotObject                 Kind = "NotObject"
	NotArray                  Kind = "NotArray"
	NotString                 Kind = "NotString"
	NotBool                   Kind = "NotBool"
	NotFloat                  Kind = "NotFloat"
	NotInteger                Kind = "NotInteger"
	ParseInt                  Kind = "ParseInt"
	ParseFloat                Kind = "ParseFloat"
	ParseDate                 Kind = "ParseDate"
	UnknownValue              Kind = "UnknownValue"
	ParameterValuesMissing    Kind = "ParameterValuesMissing"
	ParameterFieldsMissing    Kind = "ParameterFieldsMissing"
	Empty                     Kind = "Empty"
	ParameterNameMissing      Kind = "ParameterNameMissing"
	RequestFailed             Kind = "RequestFailed"
	ServerAPIError            Kind = "ApiError"
	ServerMneError            Kind = "MneError"
	ServerRequestsExceeded    Kind = "RequestsExceeded"
	RateLimit                 Kind = "RateLimit"
	RowCodeMissing            Kind = "RowCodeMissing"
	DatasetMissing            Kind = "DatasetMissing"
	VariantMissing            Kind = "VariantMissing"
	Environment               Kind = "Environment"
	IO                        Kind = "IO"
	Unimplemented             Kind = "Unimplemented"
)

// Located is a Kind paired with a message, the wrapped cause (if any), and
// the file+line of the call that raised it. Each Wrap adds one more
// location to the chain; a function that returns an error unchanged adds
// none, so the chain holds one location per New or Wrap call it passed
// through, not one per function boundary.
type Located struct {
	Kind    Kind
	Message string
	File    string
	Line    int
	Cause   error
}

func (e *Located) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (at %s:%d): %v", e.Kind, e.Message, e.File, e.Line, e.Cause)
	}

	return fmt.Sprintf("%s: %s (at %s:%d)", e.Kind, e.Message, e.File, e.Line)
}

func (e *Located) Unwrap() error {
	return e.Cause
}

// New builds a Located error, capturing the immediate caller's location.
func New(kind Kind, message string) *Located {
	return newAt(kind, message, nil, 2)
}

// Wrap builds a Located error around an existing cause, capturing the
// immediate caller's location.
func Wrap(kind Kind, message string, cause error) *Located {
	return newAt(kind, message, cause, 2)
}

func newAt(kind Kind, message string, cause error, skip int) *Located {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		file, line = "unknown", 0
	}

	return &Located{Kind: kind, Message: message, File: file, Line: line, Cause: cause}
}
