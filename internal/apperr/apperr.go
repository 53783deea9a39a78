// Package apperr is the error taxonomy shared by the HTTP layer and the
// learner client. Services return wrapped sentinels; From maps them onto a
// status and a stable wire code.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrAlreadyInProgress  = errors.New("an attempt is already in progress")
	ErrAttemptsExhausted  = errors.New("no attempts left")
	ErrAlreadySubmitted   = errors.New("attempt already submitted")
	ErrSubmitInProgress   = errors.New("submit already in progress")
	ErrInvalidAnswerShape = errors.New("invalid answer shape")
	ErrGradeOutOfRange    = errors.New("grade out of range")
	ErrGradingIncomplete  = errors.New("grading incomplete")
	ErrInvalidState       = errors.New("invalid attempt state")
	ErrAssessmentArchived = errors.New("assessment archived")
	ErrInvalidInput       = errors.New("invalid input")
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrNetwork            = errors.New("network failure")
	ErrTimeout            = errors.New("request timed out")
	ErrInternal           = errors.New("internal error")
)

const (
	CodeAlreadyInProgress  = "already_in_progress"
	CodeAttemptsExhausted  = "attempts_exhausted"
	CodeAlreadySubmitted   = "already_submitted"
	CodeSubmitInProgress   = "submit_in_progress"
	CodeInvalidAnswerShape = "invalid_answer_shape"
	CodeGradeOutOfRange    = "grade_out_of_range"
	CodeGradingIncomplete  = "grading_incomplete"
	CodeInvalidState       = "invalid_state"
	CodeAssessmentArchived = "assessment_archived"
	CodeInvalidInput       = "invalid_input"
	CodeNotFound           = "not_found"
	CodeForbidden          = "forbidden"
	CodeUnauthorized       = "unauthorized"
	CodeNetwork            = "network_failure"
	CodeTimeout            = "timeout"
	CodeInternal           = "internal"
)

type kind struct {
	err    error
	status int
	code   string
}

var kinds = []kind{
	{ErrAlreadyInProgress, http.StatusConflict, CodeAlreadyInProgress},
	{ErrAttemptsExhausted, http.StatusForbidden, CodeAttemptsExhausted},
	{ErrAlreadySubmitted, http.StatusConflict, CodeAlreadySubmitted},
	{ErrSubmitInProgress, http.StatusConflict, CodeSubmitInProgress},
	{ErrInvalidAnswerShape, http.StatusUnprocessableEntity, CodeInvalidAnswerShape},
	{ErrGradeOutOfRange, http.StatusBadRequest, CodeGradeOutOfRange},
	{ErrGradingIncomplete, http.StatusBadRequest, CodeGradingIncomplete},
	{ErrInvalidState, http.StatusConflict, CodeInvalidState},
	{ErrAssessmentArchived, http.StatusConflict, CodeAssessmentArchived},
	{ErrInvalidInput, http.StatusBadRequest, CodeInvalidInput},
	{ErrNotFound, http.StatusNotFound, CodeNotFound},
	{ErrForbidden, http.StatusForbidden, CodeForbidden},
	{ErrUnauthorized, http.StatusUnauthorized, CodeUnauthorized},
	{ErrNetwork, 0, CodeNetwork},
	{ErrTimeout, http.StatusGatewayTimeout, CodeTimeout},
}

// Error carries an HTTP status and wire code next to the underlying error.
// Details holds per-question messages for invalid answer shapes.
type Error struct {
	Status  int
	Code    string
	Err     error
	Details map[string]string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// From classifies err. Unknown errors become a 500 with code "internal".
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) && ae.Code != "" {
		return ae
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			out := &Error{Status: k.status, Code: k.code, Err: err}
			var details interface{ Fields() map[string]string }
			if errors.As(err, &details) {
				out.Details = details.Fields()
			}
			return out
		}
	}
	return &Error{Status: http.StatusInternalServerError, Code: CodeInternal, Err: err}
}

// FromCode rebuilds an error received over the wire so errors.Is keeps
// working on the client side.
func FromCode(status int, code, message string) *Error {
	base := ErrInternal
	for _, k := range kinds {
		if k.code == code {
			base = k.err
			break
		}
	}
	if base == ErrInternal && code == "" {
		switch status {
		case http.StatusNotFound:
			base, code = ErrNotFound, CodeNotFound
		case http.StatusForbidden:
			base, code = ErrForbidden, CodeForbidden
		case http.StatusUnauthorized:
			base, code = ErrUnauthorized, CodeUnauthorized
		case http.StatusGatewayTimeout:
			// 网关超时，请求可能已被服务端处理
			base, code = ErrTimeout, CodeTimeout
		case http.StatusBadGateway, http.StatusServiceUnavailable:
			base, code = ErrNetwork, CodeNetwork
		default:
			code = CodeInternal
		}
	}
	err := base
	if message != "" && message != base.Error() {
		err = fmt.Errorf("%w: %s", base, message)
	}
	return &Error{Status: status, Code: code, Err: err}
}

// Retryable reports whether the caller may try the same request again.
func Retryable(err error) bool {
	return errors.Is(err, ErrNetwork) || errors.Is(err, ErrTimeout) || errors.Is(err, ErrSubmitInProgress)
}
