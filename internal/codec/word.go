package codec

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// WordSize is the width of one ABI word in bytes.
const WordSize = common.HashLength

// DecodeUint reads the first ABI word of data as a big-endian unsigned integer.
// Bytes after the first word are ignored.
func DecodeUint(data []byte) (*big.Int, error) {
	if len(data) < WordSize {
		return nil, fmt.Errorf("%w: have %d bytes, need %d", ErrInsufficientData, len(data), WordSize)
	}
	return new(big.Int).SetBytes(data[:WordSize]), nil
}

// EncodeUint returns v as a single 32-byte big-endian word.
func EncodeUint(v *big.Int) []byte {
	if v == nil {
		return make([]byte, WordSize)
	}
	return common.LeftPadBytes(v.Bytes(), WordSize)
}

// HexToBytes decodes hex text with an optional 0x prefix.
func HexToBytes(s string) ([]byte, error) {
	raw := trimHexPrefix(s)
	if len(raw)%2 != 0 {
		return nil, formatErr(s, "odd length", ErrHexFormat)
	}
	out, err := hex.DecodeString(raw)
	if err != nil {
		return nil, formatErr(s, "non-hex character", ErrHexFormat)
	}
	return out, nil
}

func trimHexPrefix(s string) string {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return s[2:]
	}
	return s
}
