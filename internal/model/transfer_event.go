package model

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// TransferEvent is a decoded Transfer(address,address,uint256) log.
// It is immutable: accessors return copies.
type TransferEvent struct {
	token       common.Address
	from        common.Address
	to          common.Address
	amount      *big.Int
	txHash      common.Hash
	blockNumber uint64
}

// NewTransferEvent builds a TransferEvent. A nil amount is treated as zero.
func NewTransferEvent(token, from, to common.Address, amount *big.Int, txHash common.Hash, blockNumber uint64) TransferEvent {
	a := new(big.Int)
	if amount != nil {
		a.Set(amount)
	}
	return TransferEvent{
		token:       token,
		from:        from,
		to:          to,
		amount:      a,
		txHash:      txHash,
		blockNumber: blockNumber,
	}
}

// Token returns the contract that emitted the log.
func (e TransferEvent) Token() common.Address { return e.token }

// From returns the sender.
func (e TransferEvent) From() common.Address { return e.from }

// To returns the recipient.
func (e TransferEvent) To() common.Address { return e.to }

// TxHash returns the hash of the emitting transaction.
func (e TransferEvent) TxHash() common.Hash { return e.txHash }

// BlockNumber returns the block the log was included in.
func (e TransferEvent) BlockNumber() uint64 { return e.blockNumber }

// Amount returns a copy of the transferred amount.
func (e TransferEvent) Amount() *big.Int {
	if e.amount == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(e.amount)
}

// TransferRecord is the JSON representation of a TransferEvent.
// Amount is a base-10 string so values above 2^53 survive JSON consumers.
type TransferRecord struct {
	Token           string `json:"token"`
	FromAddress     string `json:"from_address"`
	ToAddress       string `json:"to_address"`
	Amount          string `json:"amount"`
	TransactionHash string `json:"transaction_hash"`
	BlockNumber     uint64 `json:"block_number"`
}

// Record returns the JSON representation with checksummed addresses.
func (e TransferEvent) Record() TransferRecord {
	return TransferRecord{
		Token:           e.token.Hex(),
		FromAddress:     e.from.Hex(),
		ToAddress:       e.to.Hex(),
		Amount:          e.Amount().String(),
		TransactionHash: e.txHash.Hex(),
		BlockNumber:     e.blockNumber,
	}
}

// MarshalJSON encodes the event as a TransferRecord.
func (e TransferEvent) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.Record())
}

// UnmarshalJSON decodes a TransferRecord, validating addresses and amount.
func (e *TransferEvent) UnmarshalJSON(data []byte) error {
	var rec TransferRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	amount, ok := new(big.Int).SetString(rec.Amount, 10)
	if !ok || amount.Sign() < 0 {
		return fmt.Errorf("transfer event: invalid amount %q", rec.Amount)
	}
	for _, addr := range []string{rec.Token, rec.FromAddress, rec.ToAddress} {
		if !common.IsHexAddress(addr) {
			return fmt.Errorf("transfer event: invalid address %q", addr)
		}
	}
	*e = NewTransferEvent(
		common.HexToAddress(rec.Token),
		common.HexToAddress(rec.FromAddress),
		common.HexToAddress(rec.ToAddress),
		amount,
		common.HexToHash(rec.TransactionHash),
		rec.BlockNumber,
	)
	return nil
}

// String renders the event for logs.
func (e TransferEvent) String() string {
	return fmt.Sprintf("%s %s -> %s %s (tx %s, block %d)",
		e.token.Hex(), e.from.Hex(), e.to.Hex(), e.Amount(), e.txHash.Hex(), e.blockNumber)
}
