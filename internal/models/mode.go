package models

import "fmt"

// SplitMode selects how tax or tip is shared between participants.
type SplitMode string

const (
	// SplitProportional shares the amount by each participant's part of the subtotal.
	SplitProportional SplitMode = "proportional"

	// SplitEven shares the amount equally between all current participants.
	SplitEven SplitMode = "even"
)

// ParseSplitMode converts a user supplied mode name into a SplitMode.
func ParseSplitMode(s string) (SplitMode, error) {
	switch SplitMode(s) {
	case SplitProportional:
		return SplitProportional, nil
	case SplitEven:
		return SplitEven, nil
	}
	return "", fmt.Errorf("unknown split mode %q (want %q or %q)", s, SplitProportional, SplitEven)
}

func (m SplitMode) String() string { return string(m) }
