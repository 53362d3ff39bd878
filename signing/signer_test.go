package signing

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAndVerify(t *testing.T) {
	signer, err := NewRandomSigner()
	require.NoError(t, err)

	msg := []byte("transaction header bytes")
	sig := signer.Sign(msg)

	assert.Len(t, sig, SignatureSize*2)
	assert.Len(t, signer.PublicKeyHex(), 66)
	assert.True(t, Verify(signer.PublicKeyHex(), sig, msg))
	assert.False(t, Verify(signer.PublicKeyHex(), sig, []byte("tampered")))

	other, err := NewRandomSigner()
	require.NoError(t, err)
	assert.False(t, Verify(other.PublicKeyHex(), sig, msg))
}

func TestVerifyRejectsGarbage(t *testing.T) {
	signer, err := NewRandomSigner()
	require.NoError(t, err)

	assert.False(t, Verify("zz", signer.Sign([]byte("m")), []byte("m")))
	assert.False(t, Verify(signer.PublicKeyHex(), "abcd", []byte("m")))
	assert.False(t, Verify(signer.PublicKeyHex(), strings.Repeat("ff", SignatureSize), []byte("m")))
}

func TestSignerFromHex(t *testing.T) {
	signer, err := NewRandomSigner()
	require.NoError(t, err)

	same, err := NewSignerFromHex(signer.PrivateKeyHex() + "\n")
	require.NoError(t, err)
	assert.Equal(t, signer.PublicKeyHex(), same.PublicKeyHex())

	_, err = NewSignerFromHex("abcd")
	assert.ErrorIs(t, err, ErrUnsupportedKey)

	_, err = NewSignerFromHex("not-hex")
	assert.Error(t, err)
}

func TestSaveAndLoad(t *testing.T) {
	signer, err := NewRandomSigner()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "keys", "alice.priv")
	require.NoError(t, signer.SavePrivateKey(path))

	loaded, err := LoadSigner(path)
	require.NoError(t, err)
	assert.Equal(t, signer.PublicKeyHex(), loaded.PublicKeyHex())

	msg := []byte("hello")
	assert.True(t, Verify(signer.PublicKeyHex(), loaded.Sign(msg), msg))
}
