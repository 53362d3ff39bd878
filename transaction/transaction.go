package transaction

import (
	"crypto/sha512"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
	"github.com/hyperledger/sawtooth-sdk-go/protobuf/batch_pb2"
	"github.com/hyperledger/sawtooth-sdk-go/protobuf/transaction_pb2"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/protoadapt"

	"github.com/mezonai/sawlet/address"
	"github.com/mezonai/sawlet/signing"
)

const (
	FamilyName    = "bank"
	FamilyVersion = "1.1"
)

// Builder assembles signed transactions and batches for one signer.
type Builder struct {
	codec   *address.Codec
	version string
	signer  *signing.Signer
	nonce   func() string
}

func NewBuilder(codec *address.Codec, version string, signer *signing.Signer) *Builder {
	return &Builder{
		codec:   codec,
		version: version,
		signer:  signer,
		nonce:   uuid.NewString,
	}
}

func (b *Builder) Signer() *signing.Signer {
	return b.signer
}

func (b *Builder) Codec() *address.Codec {
	return b.codec
}

// Build encodes op, declares its address sets and signs the header.
// The returned transaction's HeaderSignature is its id.
func (b *Builder) Build(op Operation) (*transaction_pb2.Transaction, error) {
	payload, err := EncodePayload(op)
	if err != nil {
		return nil, err
	}
	inputs, outputs := Declare(b.codec, op)
	digest := sha512.Sum512(payload)

	header := &transaction_pb2.TransactionHeader{
		FamilyName:       b.codec.Family(),
		FamilyVersion:    b.version,
		Inputs:           inputs,
		Outputs:          outputs,
		SignerPublicKey:  b.signer.PublicKeyHex(),
		BatcherPublicKey: b.signer.PublicKeyHex(),
		Dependencies:     []string{},
		Nonce:            b.nonce(),
		PayloadSha512:    hex.EncodeToString(digest[:]),
	}
	headerBytes, err := marshal(header)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal transaction header: %w", err)
	}

	return &transaction_pb2.Transaction{
		Header:          headerBytes,
		HeaderSignature: b.signer.Sign(headerBytes),
		Payload:         payload,
	}, nil
}

// BuildBatch wraps txns into one batch signed by the same signer. The batch commits atomically.
func (b *Builder) BuildBatch(txns ...*transaction_pb2.Transaction) (*batch_pb2.Batch, error) {
	if len(txns) == 0 {
		return nil, fmt.Errorf("batch needs at least one transaction")
	}
	ids := make([]string, 0, len(txns))
	for _, tx := range txns {
		ids = append(ids, tx.HeaderSignature)
	}
	header := &batch_pb2.BatchHeader{
		SignerPublicKey: b.signer.PublicKeyHex(),
		TransactionIds:  ids,
	}
	headerBytes, err := marshal(header)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal batch header: %w", err)
	}
	return &batch_pb2.Batch{
		Header:          headerBytes,
		HeaderSignature: b.signer.Sign(headerBytes),
		Transactions:    txns,
	}, nil
}

// EncodeBatchList serializes batches into the body accepted by the batches endpoint.
func EncodeBatchList(batches ...*batch_pb2.Batch) ([]byte, error) {
	return marshal(&batch_pb2.BatchList{Batches: batches})
}

func DecodeTransactionHeader(data []byte) (*transaction_pb2.TransactionHeader, error) {
	header := &transaction_pb2.TransactionHeader{}
	if err := proto.Unmarshal(data, protoadapt.MessageV2Of(header)); err != nil {
		return nil, fmt.Errorf("failed to unmarshal transaction header: %w", err)
	}
	return header, nil
}

func DecodeBatchHeader(data []byte) (*batch_pb2.BatchHeader, error) {
	header := &batch_pb2.BatchHeader{}
	if err := proto.Unmarshal(data, protoadapt.MessageV2Of(header)); err != nil {
		return nil, fmt.Errorf("failed to unmarshal batch header: %w", err)
	}
	return header, nil
}

func DecodeBatchList(data []byte) (*batch_pb2.BatchList, error) {
	list := &batch_pb2.BatchList{}
	if err := proto.Unmarshal(data, protoadapt.MessageV2Of(list)); err != nil {
		return nil, fmt.Errorf("failed to unmarshal batch list: %w", err)
	}
	return list, nil
}

func marshal(m protoadapt.MessageV1) ([]byte, error) {
	return proto.Marshal(protoadapt.MessageV2Of(m))
}
