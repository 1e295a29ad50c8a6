package types

import (
	"errors"
	"net/http"
)

type ErrorCode string

const (
	InternalServiceError ErrorCode = "INTERNAL_SERVICE_ERROR"
	NotFound             ErrorCode = "NOT_FOUND"
	BadRequest           ErrorCode = "BAD_REQUEST"
)

func (e ErrorCode) String() string {
	return string(e)
}

// Error is the error shape handed to the HTTP layer. StatusCode is the
// response status, Err the underlying cause.
type Error struct {
	StatusCode int
	ErrorCode  ErrorCode
	Err        error
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewError(statusCode int, errorCode ErrorCode, err error) *Error {
	return &Error{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Err:        err,
	}
}

func NewErrorWithMsg(statusCode int, errorCode ErrorCode, msg string) *Error {
	return NewError(statusCode, errorCode, errors.New(msg))
}

func NewInternalServiceError(err error) *Error {
	return NewError(http.StatusInternalServerError, InternalServiceError, err)
}

func NewNotFoundError(msg string) *Error {
	return NewErrorWithMsg(http.StatusNotFound, NotFound, msg)
}

func NewBadRequestError(msg string) *Error {
	return NewErrorWithMsg(http.StatusBadRequest, BadRequest, msg)
}
