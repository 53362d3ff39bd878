package transaction

import (
	"crypto/sha512"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mezonai/sawlet/address"
	"github.com/mezonai/sawlet/signing"
)

func newTestBuilder(t *testing.T) *Builder {
	t.Helper()
	signer, err := signing.NewRandomSigner()
	require.NoError(t, err)
	return NewBuilder(address.NewCodec(FamilyName), FamilyVersion, signer)
}

func TestDeclare(t *testing.T) {
	codec := address.NewCodec(FamilyName)
	alice, bob := codec.Address("alice"), codec.Address("bob")

	in, out := Declare(codec, Create{Name: "alice", Balance: 1})
	assert.Equal(t, []string{alice}, in)
	assert.Equal(t, []string{alice}, out)

	in, out = Declare(codec, Transfer{Sender: alice, Receiver: bob, Amount: 1})
	assert.Equal(t, []string{alice, bob}, in)
	assert.Equal(t, []string{alice, bob}, out)

	in, out = Declare(codec, Query{Name: "alice", Key: KeyBalance})
	assert.Equal(t, []string{alice}, in)
	assert.Empty(t, out)

	in, out = Declare(codec, Purge{Name: "bob"})
	assert.Equal(t, []string{bob}, in)
	assert.Equal(t, []string{bob}, out)
}

func TestBuildTransaction(t *testing.T) {
	b := newTestBuilder(t)
	op := Change{Name: "alice", Amount: 15}

	tx, err := b.Build(op)
	require.NoError(t, err)

	header, err := DecodeTransactionHeader(tx.Header)
	require.NoError(t, err)

	digest := sha512.Sum512(tx.Payload)
	assert.Equal(t, FamilyName, header.FamilyName)
	assert.Equal(t, FamilyVersion, header.FamilyVersion)
	assert.Equal(t, hex.EncodeToString(digest[:]), header.PayloadSha512)
	assert.Equal(t, b.Signer().PublicKeyHex(), header.SignerPublicKey)
	assert.Equal(t, b.Signer().PublicKeyHex(), header.BatcherPublicKey)
	assert.Equal(t, []string{b.Codec().Address("alice")}, header.Inputs)
	assert.Equal(t, []string{b.Codec().Address("alice")}, header.Outputs)
	assert.NotEmpty(t, header.Nonce)
	assert.True(t, signing.Verify(header.SignerPublicKey, tx.HeaderSignature, tx.Header))

	decoded, err := DecodePayload(tx.Payload)
	require.NoError(t, err)
	assert.Equal(t, op, decoded)
}

func TestBuildUsesFreshNonce(t *testing.T) {
	b := newTestBuilder(t)
	op := Query{Name: "alice", Key: KeyBalance}

	tx1, err := b.Build(op)
	require.NoError(t, err)
	tx2, err := b.Build(op)
	require.NoError(t, err)

	assert.NotEqual(t, tx1.HeaderSignature, tx2.HeaderSignature)
}

func TestBuildBatch(t *testing.T) {
	b := newTestBuilder(t)
	tx1, err := b.Build(Create{Name: "alice", Balance: 100})
	require.NoError(t, err)
	tx2, err := b.Build(Create{Name: "bob", Balance: 0})
	require.NoError(t, err)

	batch, err := b.BuildBatch(tx1, tx2)
	require.NoError(t, err)

	header, err := DecodeBatchHeader(batch.Header)
	require.NoError(t, err)
	assert.Equal(t, []string{tx1.HeaderSignature, tx2.HeaderSignature}, header.TransactionIds)
	assert.True(t, signing.Verify(b.Signer().PublicKeyHex(), batch.HeaderSignature, batch.Header))

	body, err := EncodeBatchList(batch)
	require.NoError(t, err)
	list, err := DecodeBatchList(body)
	require.NoError(t, err)
	require.Len(t, list.Batches, 1)
	assert.Equal(t, batch.HeaderSignature, list.Batches[0].HeaderSignature)
	require.Len(t, list.Batches[0].Transactions, 2)

	_, err = b.BuildBatch()
	assert.Error(t, err)
}
