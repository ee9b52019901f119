package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// LogEntry is a raw log as delivered inside a logs subscription notification.
// Address and Data stay textual; validating them is the decoder's job.
type LogEntry struct {
	Address     string        `json:"address"`
	Topics      []common.Hash `json:"topics"`
	Data        string        `json:"data"`
	TxHash      common.Hash   `json:"transactionHash"`
	BlockNumber BlockNumber   `json:"blockNumber"`
}

// Topic0 returns the first topic, or the zero hash when there is none.
func (l LogEntry) Topic0() common.Hash {
	if len(l.Topics) == 0 {
		return common.Hash{}
	}
	return l.Topics[0]
}

// UnmarshalJSON decodes a LogEntry and rejects entries without topics.
func (l *LogEntry) UnmarshalJSON(data []byte) error {
	type Alias LogEntry
	var a Alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	if a.Topics == nil {
		return fmt.Errorf("log entry: missing topics")
	}
	*l = LogEntry(a)
	return nil
}

// BlockNumber accepts either a JSON integer or a 0x-prefixed quantity string.
type BlockNumber uint64

// UnmarshalJSON accepts a JSON integer or a hex quantity string.
func (b *BlockNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var q hexutil.Uint64
		if err := q.UnmarshalJSON(data); err != nil {
			return fmt.Errorf("block number: %w", err)
		}
		*b = BlockNumber(q)
		return nil
	}
	n, err := strconv.ParseUint(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("block number: %w", err)
	}
	*b = BlockNumber(n)
	return nil
}

// MarshalJSON encodes the block number as a hex quantity.
func (b BlockNumber) MarshalJSON() ([]byte, error) {
	return json.Marshal(hexutil.Uint64(b))
}
