package wallet

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/mezonai/sawlet/signing"
)

// KeyPath is where the signing key for account name lives under dir.
func KeyPath(dir, name string) string {
	return filepath.Join(dir, name+".priv")
}

// LoadOrCreateSigner returns the key stored for name, creating and saving
// a fresh one on first use.
func LoadOrCreateSigner(dir, name string) (*signing.Signer, bool, error) {
	path := KeyPath(dir, name)
	signer, err := signing.LoadSigner(path)
	if err == nil {
		return signer, false, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, false, fmt.Errorf("load key %s: %w", path, err)
	}

	signer, err = signing.NewRandomSigner()
	if err != nil {
		return nil, false, err
	}
	if err := signer.SavePrivateKey(path); err != nil {
		return nil, false, fmt.Errorf("save key %s: %w", path, err)
	}
	return signer, true, nil
}
