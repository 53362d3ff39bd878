// Package signing provides the secp256k1 signer that owns a client's identity.
//
// Signatures are the 64-byte compact R||S form over SHA-256 of the message,
// hex encoded; public keys are 33-byte compressed points, hex encoded.
package signing

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

const (
	PrivateKeySize = 32
	SignatureSize  = 64
)

var ErrUnsupportedKey = errors.New("signing: unsupported private key length")

type Signer struct {
	priv   *secp256k1.PrivateKey
	pubHex string
}

// NewRandomSigner creates a signer with a freshly generated private key.
func NewRandomSigner() (*Signer, error) {
	priv, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, fmt.Errorf("generate private key: %w", err)
	}
	return newSigner(priv), nil
}

// NewSignerFromHex parses a hex encoded 32-byte private key.
func NewSignerFromHex(privHex string) (*Signer, error) {
	raw, err := hex.DecodeString(strings.TrimSpace(privHex))
	if err != nil {
		return nil, fmt.Errorf("decode private key: %w", err)
	}
	if len(raw) != PrivateKeySize {
		return nil, ErrUnsupportedKey
	}
	return newSigner(secp256k1.PrivKeyFromBytes(raw)), nil
}

// LoadSigner reads a hex private key file, as written by SavePrivateKey.
func LoadSigner(path string) (*Signer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return NewSignerFromHex(string(data))
}

func newSigner(priv *secp256k1.PrivateKey) *Signer {
	return &Signer{
		priv:   priv,
		pubHex: hex.EncodeToString(priv.PubKey().SerializeCompressed()),
	}
}

func (s *Signer) PublicKeyHex() string {
	return s.pubHex
}

func (s *Signer) PrivateKeyHex() string {
	return hex.EncodeToString(s.priv.Serialize())
}

// SavePrivateKey writes the private key as hex, readable by the owner only.
func (s *Signer) SavePrivateKey(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(s.PrivateKeyHex()+"\n"), 0o600)
}

// Sign returns the hex compact signature of message.
func (s *Signer) Sign(message []byte) string {
	hash := sha256.Sum256(message)
	// SignCompact prefixes a recovery byte that the platform does not expect.
	compact := ecdsa.SignCompact(s.priv, hash[:], true)
	return hex.EncodeToString(compact[1:])
}

// Verify checks a hex compact signature against a hex compressed public key.
func Verify(pubHex, sigHex string, message []byte) bool {
	pubRaw, err := hex.DecodeString(pubHex)
	if err != nil {
		return false
	}
	pub, err := secp256k1.ParsePubKey(pubRaw)
	if err != nil {
		return false
	}
	sig, err := hex.DecodeString(sigHex)
	if err != nil || len(sig) != SignatureSize {
		return false
	}
	var r, sc secp256k1.ModNScalar
	if overflow := r.SetByteSlice(sig[:32]); overflow {
		return false
	}
	if overflow := sc.SetByteSlice(sig[32:]); overflow {
		return false
	}
	hash := sha256.Sum256(message)
	return ecdsa.NewSignature(&r, &sc).Verify(hash[:], pub)
}
