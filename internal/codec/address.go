package codec

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Checksum validates raw as a 20-byte hex address (0x prefix optional) and
// returns it as a common.Address, whose Hex form is the EIP-55 checksum.
func Checksum(raw string) (common.Address, error) {
	b, err := HexToBytes(raw)
	if err != nil {
		return common.Address{}, formatErr(raw, "non-hex address", ErrAddressFormat)
	}
	if len(b) != common.AddressLength {
		return common.Address{}, formatErr(raw, "address must be 20 bytes", ErrAddressFormat)
	}
	return common.BytesToAddress(b), nil
}

// ChecksumBytes is Checksum for an already decoded address.
func ChecksumBytes(b []byte) (common.Address, error) {
	if len(b) != common.AddressLength {
		return common.Address{}, formatErr(common.Bytes2Hex(b), "address must be 20 bytes", ErrAddressFormat)
	}
	return common.BytesToAddress(b), nil
}

// FromTopicWord extracts an indexed address argument from a topic word.
func FromTopicWord(word common.Hash) (common.Address, error) {
	pad := WordSize - common.AddressLength
	for _, b := range word[:pad] {
		if b != 0 {
			return common.Address{}, ErrDirtyPadding
		}
	}
	return ChecksumBytes(word[pad:])
}

// ValidateWalletAddress applies the stricter rules used for user input:
// the address must carry a 0x prefix and be exactly 42 characters.
func ValidateWalletAddress(raw string) (common.Address, error) {
	addr := strings.TrimSpace(raw)
	if addr == "" {
		return common.Address{}, formatErr(raw, "wallet address is required", ErrAddressFormat)
	}
	if !strings.HasPrefix(strings.ToLower(addr), "0x") {
		return common.Address{}, formatErr(raw, "address must start with 0x", ErrAddressFormat)
	}
	if len(addr) != 2+2*common.AddressLength {
		return common.Address{}, formatErr(raw, "address must be 42 characters long", ErrAddressFormat)
	}
	return Checksum(addr)
}
