package jitter

import "fmt"

// Policy selects what a full buffer does with an incoming item.
// Under every policy the producer returns immediately.
type Policy int

const (
	// DropOldest evicts from the head until the new item fits.
	DropOldest Policy = iota
	// DropNewest keeps the buffered items and discards the incoming one.
	DropNewest
)

func (p Policy) String() string {
	switch p {
	case DropOldest:
		return "drop-oldest"
	case DropNewest:
		return "drop-newest"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// ParsePolicy maps a configuration string onto a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", "drop-oldest":
		return DropOldest, nil
	case "drop-newest":
		return DropNewest, nil
	default:
		return DropOldest, fmt.Errorf("unknown overflow policy %q", s)
	}
}
