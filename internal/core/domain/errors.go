package domain

import "errors"

var (
	ErrInvalidVote      = errors.New("invalid vote option")
	ErrStoreUnavailable = errors.New("counter store unavailable")
)
