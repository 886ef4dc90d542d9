package service

import (
	"context"
	"errors"

	"github.com/okian/pokerleague/internal/adapters/upstream"
	"github.com/okian/pokerleague/internal/domain/types"
)

var (
	// ErrInvalidSelection is a year/season filter the view cannot serve.
	ErrInvalidSelection = errors.New("invalid season selection")

	// ErrInvalidPlayerID is an empty or malformed player id.
	ErrInvalidPlayerID = errors.New("invalid player id")
)

// Error codes carried by section errors and HTTP error bodies.
const (
	CodeConfigMissing = "config_missing"
	CodeNotFound      = "not_found"
	CodeBadRequest    = "bad_request"
	CodeCanceled      = "canceled"
	CodeUpstream      = "upstream_error"
)

// ErrorCode classifies err into one of the Code constants.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, upstream.ErrMissingBaseURL):
		return CodeConfigMissing
	case errors.Is(err, upstream.ErrPlayerNotFound):
		return CodeNotFound
	case errors.Is(err, ErrInvalidSelection), errors.Is(err, ErrInvalidPlayerID):
		return CodeBadRequest
	case errors.Is(err, context.Canceled):
		return CodeCanceled
	default:
		return CodeUpstream
	}
}

// sectionError converts err for inline display; nil stays nil.
func sectionError(err error) *types.SectionError {
	if err == nil {
		return nil
	}
	return &types.SectionError{Code: ErrorCode(err), Message: err.Error()}
}
