package domain

import "errors"

// ErrInvalidArgument is returned when a caller passes a malformed identity, action or
// non-finite number. State is never mutated when it is returned.
var ErrInvalidArgument = errors.New("invalid argument")

// ErrNotEthernet is returned when an observed frame carries no Ethernet header.
var ErrNotEthernet = errors.New("frame is not ethernet")

// ErrUnknownBackend is returned when the configured store backend is not supported.
var ErrUnknownBackend = errors.New("unknown store backend")
