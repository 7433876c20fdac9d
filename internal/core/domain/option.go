package domain

import "fmt"

// Option is one of the fixed choices a vote can be cast for. Its value is
// also the name of the counter key holding its tally.
type Option string

const (
	OptionDubstep Option = "dubstep"
	OptionRaw     Option = "raw"
)

// Options lists every valid option in display order.
var Options = []Option{OptionDubstep, OptionRaw}

func ParseOption(s string) (Option, error) {
	for _, opt := range Options {
		if string(opt) == s {
			return opt, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidVote, s)
}

func (o Option) String() string {
	return string(o)
}
