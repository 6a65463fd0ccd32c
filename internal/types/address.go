package types

import (
	"fmt"
	"strings"
)

// Address identifies a holder, vault or pool on a ledger. Canonical form is
// lowercased, 0x-prefixed, 20 bytes of hex.
type Address string

const addressHexLen = 40

// NewAddress parses and canonicalizes an address string.
func NewAddress(s string) (Address, error) {
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return "", fmt.Errorf("address %q is missing the 0x prefix", s)
	}
	body := s[2:]
	if len(body) != addressHexLen {
		return "", fmt.Errorf("address %q has %d hex chars, want %d", s, len(body), addressHexLen)
	}
	for _, c := range body {
		if !isHexChar(c) {
			return "", fmt.Errorf("address %q contains non-hex char %q", s, c)
		}
	}
	return Address("0x" + strings.ToLower(body)), nil
}

func (a Address) String() string {
	return string(a)
}

func isHexChar(c rune) bool {
	switch {
	case c >= '0' && c <= '9':
		return true
	case c >= 'a' && c <= 'f':
		return true
	case c >= 'A' && c <= 'F':
		return true
	default:
		return false
	}
}
