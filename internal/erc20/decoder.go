package erc20

import (
	"errors"
	"fmt"

	"transferScope/internal/codec"
	"transferScope/internal/model"
)

// ErrMalformedLog is returned for logs that match the Transfer topic but not its layout.
var ErrMalformedLog = errors.New("malformed transfer log")

// Decode converts a Transfer log into a TransferEvent.
// Topics[0] is assumed to have been checked by the caller.
func Decode(log model.LogEntry) (*model.TransferEvent, error) {
	if len(log.Topics) < 3 {
		return nil, fmt.Errorf("%w: have %d topics, need 3", ErrMalformedLog, len(log.Topics))
	}

	from, err := codec.FromTopicWord(log.Topics[1])
	if err != nil {
		return nil, fmt.Errorf("%w: from: %w", ErrMalformedLog, err)
	}
	to, err := codec.FromTopicWord(log.Topics[2])
	if err != nil {
		return nil, fmt.Errorf("%w: to: %w", ErrMalformedLog, err)
	}

	data, err := codec.HexToBytes(log.Data)
	if err != nil {
		return nil, fmt.Errorf("data: %w", err)
	}
	amount, err := codec.DecodeUint(data)
	if err != nil {
		return nil, err
	}

	token, err := codec.Checksum(log.Address)
	if err != nil {
		return nil, fmt.Errorf("token: %w", err)
	}

	event := model.NewTransferEvent(token, from, to, amount, log.TxHash, uint64(log.BlockNumber))
	return &event, nil
}

// IsRecoverable reports whether a Decode error only concerns the log itself,
// so the log can be dropped and the stream continued.
func IsRecoverable(err error) bool {
	return errors.Is(err, codec.ErrInsufficientData) ||
		errors.Is(err, ErrMalformedLog) ||
		errors.Is(err, codec.ErrAddressFormat)
}

// IsNonStandard reports whether err is one of the expected layout mismatches
// emitted by contracts that reuse the Transfer signature.
func IsNonStandard(err error) bool {
	return errors.Is(err, codec.ErrInsufficientData) || errors.Is(err, ErrMalformedLog)
}
