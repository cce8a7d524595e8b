package utils

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorKind classifies failures crossing a service boundary.
type ErrorKind string

const (
	KindInvalidArgument ErrorKind = "invalid_argument"
	KindNotFound        ErrorKind = "not_found"
	KindConflict        ErrorKind = "conflict"
	KindExternalService ErrorKind = "external_service_error"
	KindStore           ErrorKind = "store_error"
)

// AppError is the error every service operation returns.
type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewInvalidArgument(msg string) error {
	return &AppError{Kind: KindInvalidArgument, Message: msg}
}

func NewNotFound(msg string) error {
	return &AppError{Kind: KindNotFound, Message: msg}
}

func NewConflict(msg string) error {
	return &AppError{Kind: KindConflict, Message: msg}
}

// NewExternalServiceError keeps the processor's message; it is shown to the caller.
func NewExternalServiceError(msg string, err error) error {
	return &AppError{Kind: KindExternalService, Message: msg, Err: err}
}

// NewStoreError hides err from the caller; it is only logged.
func NewStoreError(op string, err error) error {
	return &AppError{Kind: KindStore, Message: op, Err: err}
}

// KindOf returns the kind of err, or KindStore for anything unclassified.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindStore
}

// HTTPStatus maps an error kind to its response status. Conflict shares 404
// with NotFound since callers cannot tell a missing parcel from a paid one.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindInvalidArgument:
		return http.StatusBadRequest
	case KindNotFound, KindConflict:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage is the text sent to the client for err.
func PublicMessage(err error) string {
	var appErr *AppError
	if !errors.As(err, &appErr) || appErr.Kind == KindStore {
		return "Internal Server Error"
	}
	return appErr.Message
}

// ErrorHandler is a middleware to catch panics and return structured errors
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				Logger := GetLogger()
				Logger.Error("Unhandled panic", zap.Any("error", err), zap.String("path", c.Request.URL.Path))

				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
			}
		}()
		c.Next()
	}
}
