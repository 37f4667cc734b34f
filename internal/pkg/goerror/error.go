package goerror

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates a required file path could not be opened or read.
	ErrNotFound = errors.New("resource not found")

	// ErrEmptyTemplate indicates a template document with zero-length content.
	ErrEmptyTemplate = errors.New("template is empty")
)

// Type classifies errors into high-level buckets used by the application.
type Type int

const (
	// TypeServer represents failures of the process environment (files, SMTP setup).
	TypeServer Type = iota
	// TypeBusiness represents campaign rule violations.
	TypeBusiness
	// TypeValidation represents input validation failures.
	TypeValidation
)

// String returns the string representation of the error type.
func (t Type) String() string {
	switch t {
	case TypeValidation:
		return "ERROR_TYPE_VALIDATION"
	case TypeBusiness:
		return "ERROR_TYPE_BUSINESS"
	case TypeServer:
		return "ERROR_TYPE_SERVER"
	default:
		return "ERROR_TYPE_UNKNOWN"
	}
}

// Code is a stable identifier used for mapping errors to process exit codes.
type Code int

const (
	// CodeInternal represents an internal or unspecified error.
	CodeInternal Code = iota
	// CodeInvalidFormat indicates malformed invocation arguments.
	CodeInvalidFormat
	// CodeInvalidInput indicates invalid campaign input.
	CodeInvalidInput
	// CodeNotFound indicates an unreadable source, template, retry store or ledger path.
	CodeNotFound
	// CodeEmptyTemplate indicates a zero-length template document.
	CodeEmptyTemplate
	// CodeAborted indicates the operator declined the confirmation prompt.
	CodeAborted
)

// String returns the string representation of the error code.
func (c Code) String() string {
	switch c {
	case CodeInvalidFormat:
		return "ERROR_CODE_INVALID_FORMAT"
	case CodeInvalidInput:
		return "ERROR_CODE_INVALID_INPUT"
	case CodeNotFound:
		return "ERROR_CODE_NOT_FOUND"
	case CodeEmptyTemplate:
		return "ERROR_CODE_EMPTY_TEMPLATE"
	case CodeAborted:
		return "ERROR_CODE_ABORTED"
	case CodeInternal:
		return "ERROR_CODE_INTERNAL"
	default:
		return "ERROR_CODE_INTERNAL"
	}
}

// Error is a structured error used across the application.
//
// It can wrap an underlying error while also carrying an operator-facing
// message, a high-level type, and a stable error code.
type Error struct {
	err     error
	msg     string
	errType Type
	code    Code
	fields  map[string]string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.err != nil {
		return e.err.Error()
	}

	if e.msg != "" {
		return e.msg
	}

	if e.errType == TypeValidation {
		return "Validation violation"
	}

	if e.errType == TypeBusiness {
		return "Campaign rule violation"
	}

	if e.errType == TypeServer {
		return "Internal error"
	}

	return "Unknown error"
}

// String returns a verbose representation of the error for debugging/logging.
func (e *Error) String() string {
	return fmt.Sprintf(
		"Error Type: %s, Code: %s, Message: %s, Underlying Error: %v",
		e.errType.String(),
		e.code.String(),
		e.msg,
		e.err,
	)
}

// Msg returns the operator-facing error message, if set.
func (e *Error) Msg() string {
	return e.msg
}

// Type returns the high-level error type.
func (e *Error) Type() Type {
	return e.errType
}

// Code returns the stable error code.
func (e *Error) Code() Code {
	return e.code
}

// Fields returns validation errors (field to message map), if any.
func (e *Error) Fields() map[string]string {
	return e.fields
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.err
}

// ExitCode maps the error code to a process exit code.
func (e *Error) ExitCode() int {
	switch e.code {
	case CodeInvalidFormat, CodeInvalidInput:
		return 2
	case CodeNotFound:
		return 3
	case CodeEmptyTemplate:
		return 4
	case CodeAborted:
		return 5
	case CodeInternal:
		return 1
	default:
		return 1
	}
}

func new(err error, msg string, et Type, code Code) error {
	return &Error{err: err, msg: msg, errType: et, code: code}
}

// NewServer creates a server-type error with the provided error.
func NewServer(err error) error {
	return new(err, "Internal error", TypeServer, CodeInternal)
}

// NewNotFound creates a server-type error for an unreadable path.
func NewNotFound(err error, msg string) error {
	return &Error{err: errors.Join(ErrNotFound, err), msg: msg, errType: TypeServer, code: CodeNotFound}
}

// NewEmptyTemplate creates a business-type error for a zero-length template.
func NewEmptyTemplate(path string) error {
	return &Error{
		err:     ErrEmptyTemplate,
		msg:     fmt.Sprintf("The template file is empty: %s", path),
		errType: TypeBusiness,
		code:    CodeEmptyTemplate,
	}
}

// NewBusiness creates a business-type error with the specified message and code.
func NewBusiness(msg string, code Code) error {
	return new(nil, msg, TypeBusiness, code)
}

// NewInvalidInput creates a validation error for invalid input with a message and underlying error.
func NewInvalidInput(err error, kv ...string) error {
	if err != nil {
		return new(err, "Validation error", TypeValidation, CodeInvalidInput)
	}

	if len(kv)%2 != 0 {
		return new(nil, "Invalid input", TypeValidation, CodeInvalidFormat)
	}

	errCustomValidate := &Error{err: nil, msg: "Validation error", errType: TypeValidation, code: CodeInvalidInput}
	if errCustomValidate.fields == nil {
		errCustomValidate.fields = make(map[string]string)
	}

	for i := 0; i+1 < len(kv); i += 2 {
		errCustomValidate.fields[kv[i]] = kv[i+1]
	}

	return errCustomValidate
}

// NewInvalidFormat creates a validation error for malformed invocation arguments.
func NewInvalidFormat(msgs ...string) error {
	if len(msgs) == 0 {
		return new(nil, "Invalid arguments", TypeValidation, CodeInvalidFormat)
	}
	return new(nil, msgs[0], TypeValidation, CodeInvalidFormat)
}
