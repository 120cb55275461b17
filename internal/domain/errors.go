package domain

import "errors"

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrPreferencesNotFound = errors.New("preferences not found")
	ErrPageNotFound        = errors.New("page not found")
	ErrForbidden           = errors.New("forbidden")
)
