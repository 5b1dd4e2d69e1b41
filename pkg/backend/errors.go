package backend

import "errors"

var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrDNSForbidden   = errors.New("DNS authentication failed")
	ErrDNSUnavailable = errors.New("DNS provider unavailable")
	ErrHostnameInUse  = errors.New("configuration in use by another user")
	ErrLookup         = errors.New("an error occured while searching for existing records")
	ErrPartialCleanup = errors.New("previous registration could not be fully removed")
	ErrRegister       = errors.New("registration failed")
)
