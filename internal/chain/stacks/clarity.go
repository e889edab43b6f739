package stacks

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
)

// Clarity wire type tags (SIP-005).
const (
	tagInt               byte = 0x00
	tagUint              byte = 0x01
	tagBuffer            byte = 0x02
	tagBoolTrue          byte = 0x03
	tagBoolFalse         byte = 0x04
	tagStandardPrincipal byte = 0x05
	tagContractPrincipal byte = 0x06
	tagResponseOk        byte = 0x07
	tagResponseErr       byte = 0x08
	tagOptionalNone      byte = 0x09
	tagOptionalSome      byte = 0x0a
	tagList              byte = 0x0b
	tagTuple             byte = 0x0c
	tagStringASCII       byte = 0x0d
	tagStringUTF8        byte = 0x0e
)

// hexNone is the serialized optional-none value. The node returns it
// for absent map entries.
const hexNone = "0x09"

// ClarityValue is one decoded Clarity value. Only the field matching
// Type is meaningful.
type ClarityValue struct {
	Type      byte
	Uint      uint64
	Int       int64
	Bool      bool
	Principal string
	Contract  string
	Str       string
	Bytes     []byte
	List      []ClarityValue
	Tuple     map[string]ClarityValue
	Inner     *ClarityValue
}

// UintCV hex-encodes a Clarity uint argument.
func UintCV(v uint64) string {
	buf := make([]byte, 17)
	buf[0] = tagUint
	binary.BigEndian.PutUint64(buf[9:], v)
	return "0x" + hex.EncodeToString(buf)
}

// StringASCIICV hex-encodes a Clarity string-ascii argument.
func StringASCIICV(s string) string {
	buf := make([]byte, 5, 5+len(s))
	buf[0] = tagStringASCII
	binary.BigEndian.PutUint32(buf[1:5], uint32(len(s)))
	buf = append(buf, s...)
	return "0x" + hex.EncodeToString(buf)
}

// PrincipalCV hex-encodes a standard principal argument from its
// c32check address form.
func PrincipalCV(address string) (string, error) {
	version, hash160, err := DecodeAddress(address)
	if err != nil {
		return "", err
	}
	buf := make([]byte, 0, 22)
	buf = append(buf, tagStandardPrincipal, version)
	buf = append(buf, hash160...)
	return "0x" + hex.EncodeToString(buf), nil
}

// DecodeHexCV parses one hex-encoded Clarity value as returned by the
// node's call-read endpoint.
func DecodeHexCV(s string) (ClarityValue, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return ClarityValue{}, fmt.Errorf("invalid clarity hex: %w", err)
	}
	cv, rest, err := parseCV(raw)
	if err != nil {
		return ClarityValue{}, err
	}
	if len(rest) != 0 {
		return ClarityValue{}, fmt.Errorf("%d trailing bytes after clarity value", len(rest))
	}
	return cv, nil
}

func parseCV(b []byte) (ClarityValue, []byte, error) {
	if len(b) == 0 {
		return ClarityValue{}, nil, fmt.Errorf("empty clarity value")
	}
	tag, rest := b[0], b[1:]

	switch tag {
	case tagInt, tagUint:
		if len(rest) < 16 {
			return ClarityValue{}, nil, fmt.Errorf("truncated 128-bit integer")
		}
		word := rest[:16]
		cv := ClarityValue{Type: tag}
		if tag == tagUint {
			// Anything that overflows uint64 is out of range for any
			// field this app reads.
			v := new(big.Int).SetBytes(word)
			if !v.IsUint64() {
				return ClarityValue{}, nil, fmt.Errorf("uint value overflows 64 bits")
			}
			cv.Uint = v.Uint64()
		} else {
			v := new(big.Int).SetBytes(word)
			if v.Bit(127) == 1 {
				v.Sub(v, new(big.Int).Lsh(big.NewInt(1), 128))
			}
			if !v.IsInt64() {
				return ClarityValue{}, nil, fmt.Errorf("int value overflows 64 bits")
			}
			cv.Int = v.Int64()
		}
		return cv, rest[16:], nil

	case tagBoolTrue:
		return ClarityValue{Type: tag, Bool: true}, rest, nil
	case tagBoolFalse:
		return ClarityValue{Type: tag, Bool: false}, rest, nil

	case tagBuffer, tagStringASCII, tagStringUTF8:
		if len(rest) < 4 {
			return ClarityValue{}, nil, fmt.Errorf("truncated length prefix")
		}
		n := binary.BigEndian.Uint32(rest[:4])
		rest = rest[4:]
		if uint32(len(rest)) < n {
			return ClarityValue{}, nil, fmt.Errorf("truncated payload: want %d bytes, have %d", n, len(rest))
		}
		cv := ClarityValue{Type: tag}
		if tag == tagBuffer {
			cv.Bytes = append([]byte(nil), rest[:n]...)
		} else {
			cv.Str = string(rest[:n])
		}
		return cv, rest[n:], nil

	case tagStandardPrincipal:
		if len(rest) < 1+hash160Len {
			return ClarityValue{}, nil, fmt.Errorf("truncated principal")
		}
		addr, err := EncodeAddress(rest[0], rest[1:1+hash160Len])
		if err != nil {
			return ClarityValue{}, nil, err
		}
		return ClarityValue{Type: tag, Principal: addr}, rest[1+hash160Len:], nil

	case tagContractPrincipal:
		if len(rest) < 1+hash160Len+1 {
			return ClarityValue{}, nil, fmt.Errorf("truncated contract principal")
		}
		addr, err := EncodeAddress(rest[0], rest[1:1+hash160Len])
		if err != nil {
			return ClarityValue{}, nil, err
		}
		rest = rest[1+hash160Len:]
		nameLen := int(rest[0])
		rest = rest[1:]
		if len(rest) < nameLen {
			return ClarityValue{}, nil, fmt.Errorf("truncated contract name")
		}
		return ClarityValue{
			Type:      tag,
			Principal: addr,
			Contract:  string(rest[:nameLen]),
		}, rest[nameLen:], nil

	case tagResponseOk, tagResponseErr, tagOptionalSome:
		inner, rest, err := parseCV(rest)
		if err != nil {
			return ClarityValue{}, nil, err
		}
		return ClarityValue{Type: tag, Inner: &inner}, rest, nil

	case tagOptionalNone:
		return ClarityValue{Type: tag}, rest, nil

	case tagList:
		if len(rest) < 4 {
			return ClarityValue{}, nil, fmt.Errorf("truncated list length")
		}
		n := binary.BigEndian.Uint32(rest[:4])
		rest = rest[4:]
		cv := ClarityValue{Type: tag}
		for i := uint32(0); i < n; i++ {
			var item ClarityValue
			var err error
			item, rest, err = parseCV(rest)
			if err != nil {
				return ClarityValue{}, nil, err
			}
			cv.List = append(cv.List, item)
		}
		return cv, rest, nil

	case tagTuple:
		if len(rest) < 4 {
			return ClarityValue{}, nil, fmt.Errorf("truncated tuple length")
		}
		n := binary.BigEndian.Uint32(rest[:4])
		rest = rest[4:]
		cv := ClarityValue{Type: tag, Tuple: make(map[string]ClarityValue, n)}
		for i := uint32(0); i < n; i++ {
			if len(rest) < 1 {
				return ClarityValue{}, nil, fmt.Errorf("truncated tuple key")
			}
			keyLen := int(rest[0])
			rest = rest[1:]
			if len(rest) < keyLen {
				return ClarityValue{}, nil, fmt.Errorf("truncated tuple key name")
			}
			key := string(rest[:keyLen])
			rest = rest[keyLen:]
			var val ClarityValue
			var err error
			val, rest, err = parseCV(rest)
			if err != nil {
				return ClarityValue{}, nil, err
			}
			cv.Tuple[key] = val
		}
		return cv, rest, nil

	default:
		return ClarityValue{}, nil, fmt.Errorf("unknown clarity type tag 0x%02x", tag)
	}
}

// ParseStatus tags the outcome of decoding a profile response. The
// node returns either (some <tuple>) or none depending on whether the
// user exists; anything else is malformed and must not leak to
// callers as a half-parsed shape.
type ParseStatus int

const (
	ParseSome ParseStatus = iota
	ParseNone
	ParseMalformed
)

// ProfileTuple is the decoded get-user-profile tuple.
type ProfileTuple struct {
	TotalPoints     uint64
	CurrentStreak   uint64
	LongestStreak   uint64
	LastCheckinDay  uint64
	Level           uint64
	TotalCheckins   uint64
	CompletedQuests uint64
}

// ParseProfileTuple decodes a call-read result into the profile
// tuple. Both response shapes observed in the wild are handled: the
// tuple wrapped in (some ...) and the bare tuple.
func ParseProfileTuple(result string) (ProfileTuple, ParseStatus) {
	cv, err := DecodeHexCV(result)
	if err != nil {
		return ProfileTuple{}, ParseMalformed
	}
	// Unwrap (ok ...) from response-typed read-only functions.
	if cv.Type == tagResponseOk && cv.Inner != nil {
		cv = *cv.Inner
	}
	if cv.Type == tagOptionalNone {
		return ProfileTuple{}, ParseNone
	}
	if cv.Type == tagOptionalSome && cv.Inner != nil {
		cv = *cv.Inner
	}
	if cv.Type != tagTuple {
		return ProfileTuple{}, ParseMalformed
	}

	field := func(name string) uint64 {
		if v, ok := cv.Tuple[name]; ok && v.Type == tagUint {
			return v.Uint
		}
		return 0
	}

	p := ProfileTuple{
		TotalPoints:     field("total-points"),
		CurrentStreak:   field("current-streak"),
		LongestStreak:   field("longest-streak"),
		LastCheckinDay:  field("last-checkin-day"),
		Level:           field("level"),
		TotalCheckins:   field("total-checkins"),
		CompletedQuests: field("completed-quests"),
	}
	if p.Level == 0 {
		p.Level = 1
	}
	return p, ParseSome
}
