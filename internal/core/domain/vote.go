package domain

import (
	"time"

	"github.com/google/uuid"
)

// Results is a snapshot of every option's counter. Options without a
// counter are reported as zero.
type Results map[Option]int64

// Tally is the outcome of a single accepted vote.
type Tally struct {
	Option Option
	Total  int64
}

// VoteCast is the event emitted after a vote has been counted.
type VoteCast struct {
	ID     uuid.UUID `json:"id"`
	Option Option    `json:"option"`
	Total  int64     `json:"total"`
	CastAt time.Time `json:"cast_at"`
}
