// Package stacks implements the quest adapter for the Stacks
// deployment of the pulse Clarity contract: read-only calls over the
// node's REST API and writes over an established wallet session.
package stacks

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

// Crockford-style alphabet used by c32check addresses.
const c32Alphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

// Address version bytes. SP addresses decode to version 22, ST
// addresses to version 26; that is where the prefix letters come from.
const (
	versionMainnetP2PKH byte = 22
	versionTestnetP2PKH byte = 26
)

const hash160Len = 20

var c32Values = func() [128]int8 {
	var tbl [128]int8
	for i := range tbl {
		tbl[i] = -1
	}
	for i := 0; i < len(c32Alphabet); i++ {
		tbl[c32Alphabet[i]] = int8(i)
	}
	// Accepted aliases from the c32 spec.
	tbl['O'] = tbl['0']
	tbl['L'] = tbl['1']
	tbl['I'] = tbl['1']
	return tbl
}()

// DecodeAddress parses a c32check Stacks address into its version
// byte and 20-byte hash160, verifying the embedded checksum.
func DecodeAddress(address string) (version byte, hash160 []byte, err error) {
	addr := strings.ToUpper(address)
	if len(addr) < 6 || addr[0] != 'S' {
		return 0, nil, fmt.Errorf("invalid stacks address %q", address)
	}

	v := c32Values[addr[1]&0x7f]
	if addr[1] > 127 || v < 0 {
		return 0, nil, fmt.Errorf("invalid version character %q", addr[1])
	}
	version = byte(v)

	payload, err := c32Decode(addr[2:], hash160Len+4)
	if err != nil {
		return 0, nil, err
	}

	hash160 = payload[:hash160Len]
	want := checksum(version, hash160)
	got := payload[hash160Len:]
	for i := range want {
		if want[i] != got[i] {
			return 0, nil, fmt.Errorf("checksum mismatch for %q", address)
		}
	}
	return version, hash160, nil
}

// EncodeAddress renders a version byte and hash160 back into the
// c32check address string.
func EncodeAddress(version byte, hash160 []byte) (string, error) {
	if len(hash160) != hash160Len {
		return "", fmt.Errorf("hash160 must be %d bytes, got %d", hash160Len, len(hash160))
	}
	if int(version) >= len(c32Alphabet) {
		return "", fmt.Errorf("version %d out of range", version)
	}
	payload := make([]byte, 0, hash160Len+4)
	payload = append(payload, hash160...)
	payload = append(payload, checksum(version, hash160)...)
	return "S" + string(c32Alphabet[version]) + c32Encode(payload), nil
}

// IsMainnetVersion reports whether a decoded version byte belongs to
// a mainnet address.
func IsMainnetVersion(version byte) bool {
	return version == versionMainnetP2PKH || version == 20
}

func checksum(version byte, hash160 []byte) []byte {
	buf := make([]byte, 0, 1+len(hash160))
	buf = append(buf, version)
	buf = append(buf, hash160...)
	first := sha256.Sum256(buf)
	second := sha256.Sum256(first[:])
	return second[:4]
}

// c32Decode interprets a c32 string as a big-endian byte string of
// exactly wantLen bytes. The fixed target length resolves the
// leading-zero ambiguity of base-32 strings: the numeric value is
// left-padded (or has redundant zero bytes stripped) to fit.
func c32Decode(s string, wantLen int) ([]byte, error) {
	var out []byte
	var carry uint32
	carryBits := 0
	for i := len(s) - 1; i >= 0; i-- {
		c := s[i]
		if c > 127 || c32Values[c] < 0 {
			return nil, fmt.Errorf("invalid c32 character %q", c)
		}
		carry |= uint32(c32Values[c]) << carryBits
		carryBits += 5
		for carryBits >= 8 {
			out = append(out, byte(carry))
			carry >>= 8
			carryBits -= 8
		}
	}
	if carryBits > 0 {
		out = append(out, byte(carry))
	}
	// out is little-endian at this point.
	for len(out) > wantLen {
		if out[len(out)-1] != 0 {
			return nil, fmt.Errorf("c32 payload longer than %d bytes", wantLen)
		}
		out = out[:len(out)-1]
	}
	for len(out) < wantLen {
		out = append(out, 0)
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func c32Encode(data []byte) string {
	var sb []byte
	var carry uint32
	carryBits := 0
	for i := len(data) - 1; i >= 0; i-- {
		carry |= uint32(data[i]) << carryBits
		carryBits += 8
		for carryBits >= 5 {
			sb = append(sb, c32Alphabet[carry&0x1f])
			carry >>= 5
			carryBits -= 5
		}
	}
	if carryBits > 0 {
		sb = append(sb, c32Alphabet[carry&0x1f])
	}
	for i, j := 0, len(sb)-1; i < j; i, j = i+1, j-1 {
		sb[i], sb[j] = sb[j], sb[i]
	}
	// Canonical form: no redundant leading zero characters beyond one
	// per leading zero byte of the payload.
	nonzero := 0
	for nonzero < len(sb)-1 && sb[nonzero] == '0' {
		nonzero++
	}
	zeros := 0
	for zeros < len(data) && data[zeros] == 0 {
		zeros++
	}
	trimmed := sb[nonzero:]
	return strings.Repeat("0", zeros) + string(trimmed)
}
