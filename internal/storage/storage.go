package storage

import "transferScope/internal/model"

// Sink receives decoded transfers and dropped logs.
type Sink interface {
	PutTransfer(event model.TransferEvent) error
	PutDecodeError(rec model.DecodeError) error
	Close() error
}
