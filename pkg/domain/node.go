package domain

import (
	"fmt"
	"net"
	"strings"
	"unicode"
)

// NodeID identifies a network endpoint. The engine never interprets its structure.
type NodeID string

// Validate rejects identities that cannot be used as table keys.
func (n NodeID) Validate() error {
	if n == "" {
		return fmt.Errorf("%w: empty node id", ErrInvalidArgument)
	}
	if strings.Contains(string(n), KeySeparator) {
		return fmt.Errorf("%w: node id %q contains %q", ErrInvalidArgument, string(n), KeySeparator)
	}
	for _, r := range string(n) {
		if unicode.IsSpace(r) || unicode.IsControl(r) || r == unicode.ReplacementChar {
			return fmt.Errorf("%w: node id %q contains invalid character", ErrInvalidArgument, string(n))
		}
	}
	return nil
}

func (n NodeID) String() string { return string(n) }

// ParseNodeID canonicalises a hardware address (any form net.ParseMAC accepts) into
// lower-case colon notation.
func ParseNodeID(s string) (NodeID, error) {
	hw, err := net.ParseMAC(strings.TrimSpace(s))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	return NodeIDFromHardwareAddr(hw), nil
}

// NodeIDFromHardwareAddr converts a parsed hardware address into a NodeID.
func NodeIDFromHardwareAddr(hw net.HardwareAddr) NodeID {
	return NodeID(hw.String())
}

// PairKey returns the table key for an ordered (src, dst) pair.
func PairKey(src, dst NodeID) string {
	return string(src) + KeySeparator + string(dst)
}

// SplitPairKey is the inverse of PairKey.
func SplitPairKey(key string) (src, dst NodeID, ok bool) {
	s, d, found := strings.Cut(key, KeySeparator)
	if !found {
		return "", "", false
	}
	return NodeID(s), NodeID(d), true
}
