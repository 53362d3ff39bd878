// Package address maps account names to fixed-width state addresses.
//
// An address is the family namespace prefix followed by a truncated hash of
// the account name, both lowercase hex:
//
//	sha512(family)[:PrefixLength] ++ sha512(name)[:SuffixLength]
package address

import (
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"strings"
)

const (
	PrefixLength = 6
	SuffixLength = 64
	Length       = PrefixLength + SuffixLength
)

// NamespacePrefix returns the first PrefixLength hex characters of sha512(family).
func NamespacePrefix(family string) string {
	return hexDigest(family)[:PrefixLength]
}

// Derive builds the address of name under the given namespace prefix.
func Derive(prefix, name string) string {
	if name == "" {
		panic("address: empty account name")
	}
	return prefix + hexDigest(name)[:SuffixLength]
}

func hexDigest(s string) string {
	sum := sha512.Sum512([]byte(s))
	return hex.EncodeToString(sum[:])
}

// Codec binds a transaction family to its namespace.
type Codec struct {
	family string
	prefix string
}

func NewCodec(family string) *Codec {
	return &Codec{family: family, prefix: NamespacePrefix(family)}
}

func (c *Codec) Family() string {
	return c.family
}

func (c *Codec) Prefix() string {
	return c.prefix
}

func (c *Codec) Address(name string) string {
	return Derive(c.prefix, name)
}

// Validate checks that addr is a well-formed address inside this namespace.
func (c *Codec) Validate(addr string) error {
	if len(addr) != Length {
		return fmt.Errorf("address %q has length %d, want %d", addr, len(addr), Length)
	}
	if !strings.HasPrefix(addr, c.prefix) {
		return fmt.Errorf("address %q is outside namespace %s", addr, c.prefix)
	}
	if strings.ToLower(addr) != addr {
		return fmt.Errorf("address %q must be lowercase hex", addr)
	}
	if _, err := hex.DecodeString(addr); err != nil {
		return fmt.Errorf("address %q is not hex: %w", addr, err)
	}
	return nil
}
