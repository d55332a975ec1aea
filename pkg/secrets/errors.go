package secrets

import "errors"

var (
	ErrNotFound         = errors.New("secrets: not found")
	ErrNoCredential     = errors.New("secrets: no credential configured")
	ErrInvalidReference = errors.New("secrets: invalid reference")
	ErrNoProvider       = errors.New("secrets: no provider configured")
	ErrEmptyValue       = errors.New("secrets: empty value")
	ErrInvalidName      = errors.New("secrets: invalid name")
)
