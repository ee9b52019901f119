package model

// DecodeError records a log that matched the Transfer filter but was dropped.
type DecodeError struct {
	Subscription string `json:"subscription"`
	BlockNumber  uint64 `json:"block_number"`
	TxHash       string `json:"tx_hash"`
	Address      string `json:"address"`
	Topic0       string `json:"topic0"`
	Topics       int    `json:"topics"`
	Data         string `json:"data"`
	Error        string `json:"error"`
}

// NewDecodeError captures the identifying fields of entry alongside err.
func NewDecodeError(subscription string, entry LogEntry, err error) DecodeError {
	rec := DecodeError{
		Subscription: subscription,
		BlockNumber:  uint64(entry.BlockNumber),
		TxHash:       entry.TxHash.Hex(),
		Address:      entry.Address,
		Topics:       len(entry.Topics),
		Data:         entry.Data,
	}
	if len(entry.Topics) > 0 {
		rec.Topic0 = entry.Topics[0].Hex()
	}
	if err != nil {
		rec.Error = err.Error()
	}
	return rec
}
