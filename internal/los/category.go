package los

import (
	"fmt"
	"strings"
)

// Category is the kind of unit at either end of a shot.
type Category int

const (
	// Walker is a full-height unit that sees over light woods.
	Walker Category = iota

	// Vehicle is a low-profile ground unit.
	Vehicle

	// Infantry is a low-profile foot unit.
	Infantry
)

// Categories lists every category in declaration order.
var Categories = [...]Category{Walker, Vehicle, Infantry}

func (c Category) String() string {
	switch c {
	case Walker:
		return "walker"
	case Vehicle:
		return "vehicle"
	case Infantry:
		return "infantry"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

// LowProfile reports whether the unit sits low enough for light woods to screen it.
func (c Category) LowProfile() bool {
	switch c {
	case Vehicle, Infantry:
		return true
	default:
		return false
	}
}

// ParseCategory accepts the names printed by String, case-insensitively.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if strings.EqualFold(s, c.String()) {
			return c, nil
		}
	}
	return 0, fmt.Errorf("los: unknown unit category %q", s)
}

// MarshalText lets categories travel as names in JSON.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText is the inverse of MarshalText.
func (c *Category) UnmarshalText(b []byte) error {
	v, err := ParseCategory(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}
