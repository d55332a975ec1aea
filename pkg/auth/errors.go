package auth

import "errors"

// ErrNotAuthenticated is returned by operations that need a signed-in player.
var ErrNotAuthenticated = errors.New("auth: not authenticated")

// ValidationError is raised before any network call when input is rejected.
type ValidationError struct {
	Field   string
	Key     string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
