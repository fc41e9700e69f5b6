package grayscott

import (
	"fmt"
	"strings"
)

// Chemical selects one of the two fields.
type Chemical int

const (
	U Chemical = iota + 1
	V
)

func (c Chemical) String() string {
	switch c {
	case U:
		return "U"
	case V:
		return "V"
	default:
		return fmt.Sprintf("Chemical(%d)", int(c))
	}
}

// ParseChemical accepts "u" or "v" in any case.
func ParseChemical(s string) (Chemical, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "u":
		return U, nil
	case "v":
		return V, nil
	}
	return 0, fmt.Errorf("%w: unknown chemical %q", ErrInvalidArgument, s)
}
