package domain

import "errors"

var (
	// ErrEmptyInput is returned when the username or password is blank.
	ErrEmptyInput = errors.New("username and password are required")
	// ErrUnknownUser is returned when the username is not in the credential source.
	ErrUnknownUser = errors.New("user not found")
	// ErrBadPassword is returned when the password digest does not match the stored hash.
	ErrBadPassword = errors.New("invalid username or password")
	// ErrInvalidIndex is returned when an option index is out of range or the
	// question ID does not belong to the current position.
	ErrInvalidIndex = errors.New("invalid option selection")
	// ErrInvalidCatalog indicates malformed catalog content. Fatal at load time.
	ErrInvalidCatalog = errors.New("invalid catalog")
	// ErrCatalogNotFound indicates the catalog content could not be loaded.
	ErrCatalogNotFound = errors.New("catalog not found")
	// ErrNoActiveSession is returned when a session operation arrives before
	// login or after the session has finished.
	ErrNoActiveSession = errors.New("no active session")
)
