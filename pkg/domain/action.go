package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Action is an egress choice: a physical port number or Flood.
// Values follow the OpenFlow 1.3 port numbering.
type Action uint32

const (
	// MaxPort is the highest physical port number (OFPP_MAX).
	MaxPort Action = 0xffffff00

	// Flood sends the frame on every port except the ingress one (OFPP_FLOOD).
	Flood Action = 0xfffffffb

	// ControllerPort sends the frame to the controller (OFPP_CONTROLLER).
	// It is used by switch priming only and is never a learned action.
	ControllerPort Action = 0xfffffffd
)

const floodText = "FLOOD"

// IsFlood reports whether a is the Flood sentinel.
func (a Action) IsFlood() bool { return a == Flood }

// Validate accepts physical ports and Flood.
func (a Action) Validate() error {
	if a == Flood || (a >= 1 && a <= MaxPort) {
		return nil
	}
	return fmt.Errorf("%w: action %d is neither a physical port nor FLOOD", ErrInvalidArgument, uint32(a))
}

func (a Action) String() string {
	if a == Flood {
		return floodText
	}
	return strconv.FormatUint(uint64(a), 10)
}

// ParseAction reads "FLOOD" (any case) or a decimal port number.
func ParseAction(s string) (Action, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, floodText) {
		return Flood, nil
	}
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: action %q: %v", ErrInvalidArgument, s, err)
	}
	a := Action(n)
	if err := a.Validate(); err != nil {
		return 0, err
	}
	return a, nil
}

// MarshalText renders Flood as "FLOOD" and ports as decimal.
func (a Action) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText is the inverse of MarshalText.
func (a *Action) UnmarshalText(text []byte) error {
	parsed, err := ParseAction(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// MarshalJSON always emits a string so that Flood stays readable.
func (a Action) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(a.String())), nil
}

// UnmarshalJSON accepts a port number or a string ("FLOOD", "3").
func (a *Action) UnmarshalJSON(data []byte) error {
	s := string(data)
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = unquoted
	}
	return a.UnmarshalText([]byte(s))
}
