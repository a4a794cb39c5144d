package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches errors sharing the same code so cloned and wrapped variants
// still compare equal to the predefined sentinels.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios. Client-facing messages are
// localized; the wrapped cause is only ever logged.
var (
	ErrValidation         = New("VALIDATION_ERROR", http.StatusBadRequest, "입력값이 올바르지 않습니다.")
	ErrNotFound           = New("NOT_FOUND", http.StatusNotFound, "해당 신청 내역을 찾을 수 없습니다.")
	ErrUnauthorized       = New("UNAUTHORIZED", http.StatusUnauthorized, "인증이 필요합니다.")
	ErrInvalidCredentials = New("INVALID_CREDENTIALS", http.StatusUnauthorized, "아이디 또는 비밀번호가 올바르지 않습니다.")
	ErrMethodNotAllowed   = New("METHOD_NOT_ALLOWED", http.StatusMethodNotAllowed, "Method not allowed")
	ErrConflict           = New("CONFLICT", http.StatusConflict, "요청을 처리할 수 없습니다. 잠시 후 다시 시도해주세요.")
	ErrInvalidTransition  = New("INVALID_TRANSITION", http.StatusConflict, "현재 상태에서 변경할 수 없는 상태입니다.")
	ErrTooManyRequests    = New("TOO_MANY_REQUESTS", http.StatusTooManyRequests, "요청이 너무 많습니다. 잠시 후 다시 시도해주세요.")
	ErrRemoteUnavailable  = New("REMOTE_UNAVAILABLE", http.StatusInternalServerError, "처리 중 오류가 발생했습니다.")
	ErrInternal           = New("INTERNAL_ERROR", http.StatusInternalServerError, "서버 오류가 발생했습니다.")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

// Remote wraps a failure of an external collaborator (Graph, drive) as
// RemoteUnavailable with a generic client message.
func Remote(err error, message string) *Error {
	if message == "" {
		message = ErrRemoteUnavailable.Message
	}
	return Wrap(err, ErrRemoteUnavailable.Code, ErrRemoteUnavailable.Status, message)
}
