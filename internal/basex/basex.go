// Package basex implements the configurable-alphabet base-N encoders used
// to render binary identifiers (such as compact UUIDs) as short printable
// strings. Each alphabet is a fixed table; a small set of whitespace
// characters are ignored on decode. Grounded on base_x.hh from the
// original implementation: same alphabets, same ignored-whitespace set,
// same is_valid semantics.
package basex

import (
	"fmt"
	"math/big"
	"strings"
)

// ignoredChars are skipped silently when decoding, and always considered
// "valid" by IsValid.
const ignoredChars = " \n\r\t"

// Codec is a base-N encoder/decoder bound to a fixed alphabet.
type Codec struct {
	alphabet string
	rev      [256]int8 // -1 = invalid, -2 = ignored
}

// New builds a Codec for the given alphabet. ignoreCase additionally maps
// the opposite-case letter of every alphabet character onto the same
// digit value when decoding (used by base11/base16/base32/base36).
func New(alphabet string, ignoreCase bool) *Codec {
	c := &Codec{alphabet: alphabet}
	for i := range c.rev {
		c.rev[i] = -1
	}
	for _, ch := range ignoredChars {
		c.rev[ch] = -2
	}
	for i, ch := range []byte(alphabet) {
		c.rev[ch] = int8(i)
		if ignoreCase {
			switch {
			case ch >= 'A' && ch <= 'Z':
				c.rev[ch-'A'+'a'] = int8(i)
			case ch >= 'a' && ch <= 'z':
				c.rev[ch-'a'+'A'] = int8(i)
			}
		}
	}
	return c
}

// Base returns the alphabet size.
func (c *Codec) Base() int { return len(c.alphabet) }

// Encode renders binary data as a base-N string. An empty input encodes
// to a single copy of the first alphabet character, matching the
// original's "num == 0" case.
func (c *Codec) Encode(data []byte) string {
	num := new(big.Int).SetBytes(data)
	if num.Sign() == 0 {
		return string(c.alphabet[0])
	}

	base := big.NewInt(int64(c.Base()))
	mod := new(big.Int)
	var out []byte
	for num.Sign() > 0 {
		num.DivMod(num, base, mod)
		out = append(out, c.alphabet[mod.Int64()])
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return string(out)
}

// Decode parses a base-N string back into binary data. Ignored
// whitespace characters are skipped. Returns an error naming the first
// invalid character encountered.
func (c *Codec) Decode(s string) ([]byte, error) {
	num := new(big.Int)
	base := big.NewInt(int64(c.Base()))
	for i, ch := range []byte(s) {
		v := c.rev[ch]
		if v == -1 {
			return nil, fmt.Errorf("basex: invalid character %q at position %d", ch, i)
		}
		if v == -2 {
			continue
		}
		num.Mul(num, base)
		num.Add(num, big.NewInt(int64(v)))
	}
	return num.Bytes(), nil
}

// IsValid reports whether every character in s maps to a digit or is
// ignored whitespace.
func (c *Codec) IsValid(s string) bool {
	for _, ch := range []byte(s) {
		if c.rev[ch] == -1 {
			return false
		}
	}
	return true
}

// Named alphabet instances, one per family spec.md §6 names.
var (
	Base2  = New("01", false)
	Base8  = New("01234567", false)
	Base11 = New("0123456789a", true)
	Base16 = New("0123456789abcdef", true)
	Base32 = New("0123456789ABCDEFGHJKMNPQRSTVWXYZ", true)
	Base36 = New("0123456789abcdefghijklmnopqrstuvwxyz", true)

	Base58GMP     = New("0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuv", false)
	Base58Bitcoin = New("123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz", false)
	Base58Ripple  = New("rpshnaf39wBUDNEGHJKLM4PQRST7VWXYZ2bcdeCg65jkm8oFqi1tuvAxyz", false)
	Base58Flickr  = New("123456789abcdefghijkmnopqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ", false)
	Base58        = Base58Bitcoin

	Base62Inverted = New("0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ", false)
	Base62         = New("0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz", false)

	Base64URLSafe = New("ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_", false)
	Base64        = New("ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/", false)

	Base66 = New("ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_.!~", false)
)

// ByName resolves one of the named alphabet variants used in config and
// cast-tag dispatch (e.g. "base58:bitcoin", "base64:urlsafe").
func ByName(name string) (*Codec, error) {
	switch strings.ToLower(name) {
	case "base2":
		return Base2, nil
	case "base8":
		return Base8, nil
	case "base11":
		return Base11, nil
	case "base16":
		return Base16, nil
	case "base32":
		return Base32, nil
	case "base36":
		return Base36, nil
	case "base58", "base58:bitcoin":
		return Base58Bitcoin, nil
	case "base58:gmp":
		return Base58GMP, nil
	case "base58:ripple":
		return Base58Ripple, nil
	case "base58:flickr":
		return Base58Flickr, nil
	case "base62":
		return Base62, nil
	case "base62:inverted":
		return Base62Inverted, nil
	case "base64":
		return Base64, nil
	case "base64:urlsafe":
		return Base64URLSafe, nil
	case "base66":
		return Base66, nil
	default:
		return nil, fmt.Errorf("basex: unknown alphabet %q", name)
	}
}
