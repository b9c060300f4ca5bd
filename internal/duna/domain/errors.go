package domain

import "errors"

// Exported error variables allow callers to use errors.Is() for error checking.
var (
	ErrInstallationNotFound = errors.New("steam installation not found")
	ErrInvalidPath          = errors.New("path is not a steam installation or userdata directory")
	ErrAccountNotFound      = errors.New("account not found")
	ErrNoTargets            = errors.New("no valid target accounts")
	ErrNoGames              = errors.New("no games selected")
)
