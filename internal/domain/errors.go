package domain

import "net/http"

type ErrorCode string

const (
	ErrorCodeNotFound          ErrorCode = "NOT_FOUND"
	ErrorCodeBadRequest        ErrorCode = "BAD_REQUEST"
	ErrorCodeTeamExists        ErrorCode = "TEAM_EXISTS"
	ErrorCodeSyncInProgress    ErrorCode = "SYNC_IN_PROGRESS"
	ErrorCodeUnauthorized      ErrorCode = "UNAUTHORIZED"
	ErrorCodeInvalidSignature  ErrorCode = "INVALID_SIGNATURE"
	ErrorCodeGitHubUnavailable ErrorCode = "GITHUB_UNAVAILABLE"
)

type DomainError struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
}

func (e *DomainError) Error() string {
	return string(e.Code) + ": " + e.Message
}

func NotFound(msg string) *DomainError {
	return &DomainError{Code: ErrorCodeNotFound, Message: msg, HTTPStatus: http.StatusNotFound}
}

func BadRequest(msg string) *DomainError {
	return &DomainError{Code: ErrorCodeBadRequest, Message: msg, HTTPStatus: http.StatusBadRequest}
}
