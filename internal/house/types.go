package house

import "fmt"

// Comfort classifies an interior temperature against the comfort band.
type Comfort int

const (
	ComfortUnknown Comfort = iota
	ComfortFine
	ComfortTooHot
	ComfortTooCold
)

func (c Comfort) Valid() bool {
	return c == ComfortFine || c == ComfortTooHot || c == ComfortTooCold
}

func (c Comfort) String() string {
	switch c {
	case ComfortFine:
		return "fine"
	case ComfortTooHot:
		return "too hot"
	case ComfortTooCold:
		return "too cold"
	default:
		return "unknown"
	}
}

// ParseComfort accepts the String form as well as the snake_case form used in
// traces and env vars.
func ParseComfort(s string) (Comfort, error) {
	switch s {
	case "fine":
		return ComfortFine, nil
	case "too hot", "too_hot":
		return ComfortTooHot, nil
	case "too cold", "too_cold":
		return ComfortTooCold, nil
	default:
		return ComfortUnknown, fmt.Errorf("%w: %q", ErrInvalidComfort, s)
	}
}

// HeaterState is the auxiliary heater's state for one step.
type HeaterState int

const (
	HeaterOff HeaterState = iota
	HeaterOn
)

func (h HeaterState) String() string {
	if h == HeaterOn {
		return "on"
	}
	return "off"
}
