package model

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func TestTransferEventJSONStringFields(t *testing.T) {
	amount, _ := new(big.Int).SetString("115792089237316195423570985008687907853269984665640564039457584007913129639935", 10)
	event := NewTransferEvent(
		common.HexToAddress("0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed"),
		common.HexToAddress("0xfb6916095ca1df60bb79ce92ce3ea74c37c5d359"),
		common.HexToAddress("0xdbf03b407c01e7cd3cbea99509d93f8dddc8c6fb"),
		amount,
		common.HexToHash("0x01"),
		99,
	)

	data, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if decoded["amount"] != amount.String() {
		t.Fatalf("amount should be a decimal string: %v", decoded["amount"])
	}
	if decoded["token"] != "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed" {
		t.Fatalf("token should be checksummed: %v", decoded["token"])
	}
	hash, ok := decoded["transaction_hash"].(string)
	if !ok || len(hash) != 66 {
		t.Fatalf("transaction hash should be 0x + 64 hex: %v", decoded["transaction_hash"])
	}

	var back TransferEvent
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal event failed: %v", err)
	}
	if back.Amount().Cmp(amount) != 0 || back.From() != event.From() || back.BlockNumber() != 99 {
		t.Fatalf("decoded event mismatch: %s", back)
	}
}

func TestTransferEventImmutable(t *testing.T) {
	amount := big.NewInt(42)
	event := NewTransferEvent(common.Address{}, common.Address{}, common.Address{}, amount, common.Hash{}, 1)

	amount.SetInt64(7)
	if event.Amount().Int64() != 42 {
		t.Fatalf("constructor should copy amount")
	}

	event.Amount().SetInt64(9)
	if event.Amount().Int64() != 42 {
		t.Fatalf("accessor should return a copy")
	}
}
