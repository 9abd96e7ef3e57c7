package core

import (
	"errors"
	"fmt"
)

// Error codes. Every error of a run maps to one of them, see Code.
const (
	NOERROR     int = 0
	EMISSING    int = 122 // font, file or token missing
	EINVALID    int = 123 // value out of range
	ECONFIG     int = 124 // configuration incomplete or invalid
	EINTERNAL   int = 125 // internal error
	EFATAL      int = 126 // run cannot continue
	EUSERINPUT  int = 127 // recoverable error in the input
	ERESOURCE   int = 128 // resource unusable
	EINTERACTIV int = 129 // interaction aborted by the user
)

var codeTexts = map[int]string{
	NOERROR:     "OK",
	EMISSING:    "not found",
	EINVALID:    "invalid",
	ECONFIG:     "configuration error",
	EINTERNAL:   "internal error",
	EFATAL:      "fatal error",
	EUSERINPUT:  "input error",
	ERESOURCE:   "resource error",
	EINTERACTIV: "interaction aborted",
}

func codeText(code int) string {
	if t, ok := codeTexts[code]; ok {
		return t
	}
	return "undefined error"
}

// AppError is an error with an associated error code and a user-message.
type AppError interface {
	error
	ErrorCode() int
	UserMessage() string
}

// codedError attaches a code and a message for users to an error.
type codedError struct {
	cause error
	code  int
	msg   string
}

var _ AppError = &codedError{}

func (e *codedError) Unwrap() error { return e.cause }

func (e *codedError) Error() string {
	return fmt.Sprintf("[%d] %v", e.code, e.cause)
}

func (e *codedError) ErrorCode() int { return e.code }

func (e *codedError) UserMessage() string { return e.msg }

// Error creates an error with an error code and a user-message.
func Error(code int, format string, v ...interface{}) error {
	return &codedError{
		cause: errors.New(codeText(code)),
		code:  code,
		msg:   fmt.Sprintf(format, v...),
	}
}

// WrapError wraps err, adding an error code and a user message. A nil
// err is replaced by the description of the code.
func WrapError(err error, code int, format string, v ...interface{}) error {
	if err == nil {
		err = errors.New(codeText(code))
	}
	return &codedError{cause: err, code: code, msg: fmt.Sprintf(format, v...)}
}

// Code returns the code of the first AppError in err's chain. Errors
// without a code are internal errors; a nil error has code NOERROR.
func Code(err error) int {
	if err == nil {
		return NOERROR
	}
	var e AppError
	if errors.As(err, &e) {
		return e.ErrorCode()
	}
	return EINTERNAL
}

// UserMessage returns the message for users of the first AppError in err's
// chain, or a description of the error's code. A nil error has no message.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var e AppError
	if errors.As(err, &e) {
		return e.UserMessage()
	}
	return codeText(Code(err))
}
