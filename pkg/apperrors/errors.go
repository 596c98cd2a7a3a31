package apperrors

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("conflict")
	ErrAccessDenied        = errors.New("access denied")
	ErrVersionNotFound     = errors.New("version not found")
	ErrVersionNotPermitted = errors.New("version not permitted")
	ErrPageOutOfRange      = errors.New("page out of range")
	ErrValidation          = errors.New("validation failed")
	ErrIndexUnavailable    = errors.New("search index unavailable")
)
