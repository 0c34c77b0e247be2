package usecase

import "errors"

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrNotFound            = errors.New("resource not found")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrNotAMember          = errors.New("not a group member")
	ErrProviderUnavailable = errors.New("contest provider unavailable")

	// ErrDependencyUnavailable marks failures of upstream services other
	// than the contest provider, such as token introspection.
	ErrDependencyUnavailable = errors.New("upstream dependency unavailable")
)
