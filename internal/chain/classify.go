package chain

import "strings"

// Classification is the structural family/network hint derived from
// an address string alone.
type Classification struct {
	Family  Family  `json:"family"`
	Network Network `json:"network"`
}

// Classify determines the chain family of a wallet address by its
// format. EVM addresses are 0x plus 40 hex characters; their network
// is decided by the connected chain id, not the text, so it stays
// Unknown here. Stacks addresses carry the network in the prefix:
// SP is mainnet, ST is testnet. Malformed input degrades to Unknown,
// never an error: this is a routing hint, not a validator.
func Classify(address string) Classification {
	switch {
	case isHexAddress(address):
		return Classification{Family: FamilyEVM, Network: NetworkUnknown}
	case strings.HasPrefix(address, "SP"):
		return Classification{Family: FamilyStacks, Network: NetworkMainnet}
	case strings.HasPrefix(address, "ST"):
		return Classification{Family: FamilyStacks, Network: NetworkTestnet}
	default:
		return Classification{Family: FamilyUnknown, Network: NetworkUnknown}
	}
}

func isHexAddress(s string) bool {
	if len(s) != 42 || !strings.HasPrefix(s, "0x") {
		return false
	}
	for _, c := range s[2:] {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

// DisplayAddress shortens an address for UI lists: first six and last
// four characters joined by an ellipsis.
func DisplayAddress(address string) string {
	if len(address) <= 10 {
		return address
	}
	return address[:6] + "..." + address[len(address)-4:]
}
