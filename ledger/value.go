package ledger

import (
	"fmt"
	"math"

	"github.com/holiman/uint256"
)

// ValueSize is the width of a query result: one big-endian 256-bit word.
const ValueSize = 32

// EncodeValue renders a non-negative balance as a query result.
func EncodeValue(v int64) []byte {
	word := uint256.NewInt(uint64(v)).Bytes32()
	return word[:]
}

// DecodeValue parses a query result produced by EncodeValue.
func DecodeValue(data []byte) (int64, error) {
	if len(data) != ValueSize {
		return 0, fmt.Errorf("query result must be %d bytes, got %d", ValueSize, len(data))
	}
	n := new(uint256.Int).SetBytes32(data)
	if !n.IsUint64() || n.Uint64() > math.MaxInt64 {
		return 0, fmt.Errorf("query result %s exceeds the balance range", n.Dec())
	}
	return int64(n.Uint64()), nil
}
