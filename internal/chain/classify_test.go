package chain

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		address string
		family  Family
		network Network
	}{
		{"evm lowercase", "0xcf0a164b64b92fa6262e312cdb60a12c302e8f1c", FamilyEVM, NetworkUnknown},
		{"evm mixed case", "0xcF0A164b64b92Fa6262e312cDB60a12c302e8F1c", FamilyEVM, NetworkUnknown},
		{"stacks mainnet", "SP2J6ZY48GV1EZ5V2V5RB9MP66SW86PYKKNRV9EJ7", FamilyStacks, NetworkMainnet},
		{"stacks testnet", "ST31DP8F8CF2GXSZBHHHK5J6Y061744E1TP7FRGHT", FamilyStacks, NetworkTestnet},
		{"empty", "", FamilyUnknown, NetworkUnknown},
		{"bare hex no prefix", "cf0a164b64b92fa6262e312cdb60a12c302e8f1c", FamilyUnknown, NetworkUnknown},
		{"short hex", "0xabc", FamilyUnknown, NetworkUnknown},
		{"long hex", "0xcf0a164b64b92fa6262e312cdb60a12c302e8f1c00", FamilyUnknown, NetworkUnknown},
		{"non-hex chars", "0xzf0a164b64b92fa6262e312cdb60a12c302e8f1c", FamilyUnknown, NetworkUnknown},
		{"sp prefix alone still mainnet", "SP", FamilyStacks, NetworkMainnet},
		{"st prefix alone still testnet", "ST", FamilyStacks, NetworkTestnet},
		{"bitcoin-ish", "bc1qar0srrr7xfkvy5l643lydnw9re59gtzzwf5mdq", FamilyUnknown, NetworkUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.address)
			if got.Family != tt.family || got.Network != tt.network {
				t.Errorf("Classify(%q) = {%s %s}, want {%s %s}",
					tt.address, got.Family, got.Network, tt.family, tt.network)
			}
		})
	}
}

func TestDisplayAddress(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"0xcF0A164b64b92Fa6262e312cDB60a12c302e8F1c", "0xcF0A...8F1c"},
		{"SP2J6ZY48GV1EZ5V2V5RB9MP66SW86PYKKNRV9EJ7", "SP2J6Z...9EJ7"},
		{"0xabc", "0xabc"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := DisplayAddress(tt.input); got != tt.expected {
			t.Errorf("DisplayAddress(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
