package erc20

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	"transferScope/internal/codec"
	"transferScope/internal/model"
)

var (
	testToken = common.HexToAddress("0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed")
	testFrom  = common.HexToAddress("0xfb6916095ca1df60bb79ce92ce3ea74c37c5d359")
	testTo    = common.HexToAddress("0xdbf03b407c01e7cd3cbea99509d93f8dddc8c6fb")
	testTx    = common.HexToHash("0xabababababababababababababababababababababababababababababababab")
)

func TestTransferTopicIsKeccakOfSignature(t *testing.T) {
	if got := crypto.Keccak256Hash([]byte(TransferSignature)); got != TransferTopic {
		t.Fatalf("topic mismatch: %s != %s", got.Hex(), TransferTopic.Hex())
	}
}

func TestReadABI(t *testing.T) {
	parsed, err := ReadABI()
	if err != nil {
		t.Fatalf("abi parse: %v", err)
	}
	if len(parsed.Methods) != 2 {
		t.Fatalf("expected 2 methods, got %d", len(parsed.Methods))
	}

	packed, err := parsed.Pack(MethodBalanceOf, testFrom)
	if err != nil {
		t.Fatalf("pack balanceOf: %v", err)
	}
	// selector 0x70a08231 followed by the padded owner word.
	if hexutil.Encode(packed[:4]) != "0x70a08231" {
		t.Fatalf("selector mismatch: %x", packed[:4])
	}
	if common.BytesToHash(packed[4:]) != topicFromAddress(testFrom) {
		t.Fatalf("owner word mismatch")
	}

	values, err := parsed.Unpack(MethodDecimals, codec.EncodeUint(big.NewInt(6)))
	if err != nil {
		t.Fatalf("unpack decimals: %v", err)
	}
	if d, ok := values[0].(uint8); !ok || d != 6 {
		t.Fatalf("decimals mismatch: %v", values[0])
	}
}

func TestDecodeTransfer(t *testing.T) {
	entry := buildLogEntry(hexutil.Encode(codec.EncodeUint(big.NewInt(42))), TransferTopic, topicFromAddress(testFrom), topicFromAddress(testTo))

	event, err := Decode(entry)
	if err != nil {
		t.Fatalf("decode transfer: %v", err)
	}
	if event.Amount().Cmp(big.NewInt(42)) != 0 {
		t.Fatalf("amount mismatch: %s", event.Amount())
	}
	if event.Token() != testToken || event.From() != testFrom || event.To() != testTo {
		t.Fatalf("address mismatch: %s", event)
	}
	if event.TxHash() != testTx || event.BlockNumber() != 12345 {
		t.Fatalf("tx metadata mismatch: %s", event)
	}
	if event.Record().Token != "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed" {
		t.Fatalf("token should be checksummed: %s", event.Record().Token)
	}
}

func TestDecodeTransferWithoutPrefixAndTail(t *testing.T) {
	word := codec.EncodeUint(big.NewInt(1_000_000))
	data := common.Bytes2Hex(append(word, make([]byte, 32)...))
	entry := buildLogEntry(data, TransferTopic, topicFromAddress(testFrom), topicFromAddress(testTo))

	event, err := Decode(entry)
	if err != nil {
		t.Fatalf("decode transfer: %v", err)
	}
	if event.Amount().Int64() != 1_000_000 {
		t.Fatalf("amount mismatch: %s", event.Amount())
	}
}

func TestDecodeTwoTopicsIsMalformed(t *testing.T) {
	entry := buildLogEntry(hexutil.Encode(codec.EncodeUint(big.NewInt(1))), TransferTopic, topicFromAddress(testFrom))

	event, err := Decode(entry)
	if event != nil {
		t.Fatalf("expected no event")
	}
	if !errors.Is(err, ErrMalformedLog) {
		t.Fatalf("expected ErrMalformedLog, got %v", err)
	}
	if !IsRecoverable(err) || !IsNonStandard(err) {
		t.Fatalf("malformed log should be recoverable")
	}
}

func TestDecodeShortData(t *testing.T) {
	entry := buildLogEntry(hexutil.Encode(make([]byte, 10)), TransferTopic, topicFromAddress(testFrom), topicFromAddress(testTo))

	event, err := Decode(entry)
	if event != nil {
		t.Fatalf("expected no event")
	}
	if !errors.Is(err, codec.ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
	if !IsRecoverable(err) || !IsNonStandard(err) {
		t.Fatalf("insufficient data should be recoverable")
	}
}

func TestDecodeDirtyPadding(t *testing.T) {
	dirty := topicFromAddress(testFrom)
	dirty[3] = 0x01
	entry := buildLogEntry(hexutil.Encode(codec.EncodeUint(big.NewInt(1))), TransferTopic, dirty, topicFromAddress(testTo))

	_, err := Decode(entry)
	if !errors.Is(err, ErrMalformedLog) || !errors.Is(err, codec.ErrDirtyPadding) {
		t.Fatalf("expected dirty padding error, got %v", err)
	}
}

func TestDecodeIntegrityFaults(t *testing.T) {
	badHex := buildLogEntry("0xzz", TransferTopic, topicFromAddress(testFrom), topicFromAddress(testTo))
	_, err := Decode(badHex)
	if !errors.Is(err, codec.ErrHexFormat) {
		t.Fatalf("expected ErrHexFormat, got %v", err)
	}
	if IsNonStandard(err) {
		t.Fatalf("bad hex is an integrity fault, not a layout mismatch")
	}
	if !IsRecoverable(err) {
		t.Fatalf("bad hex should still be recoverable")
	}

	badToken := buildLogEntry(hexutil.Encode(codec.EncodeUint(big.NewInt(1))), TransferTopic, topicFromAddress(testFrom), topicFromAddress(testTo))
	badToken.Address = "0x1234"
	if _, err := Decode(badToken); !errors.Is(err, codec.ErrAddressFormat) {
		t.Fatalf("expected ErrAddressFormat, got %v", err)
	}
}

func TestIsRecoverableRejectsOtherErrors(t *testing.T) {
	if IsRecoverable(errors.New("connection reset")) {
		t.Fatalf("unrelated errors must not be recoverable")
	}
	if IsRecoverable(nil) {
		t.Fatalf("nil is not a recoverable error")
	}
}

func buildLogEntry(data string, topics ...common.Hash) model.LogEntry {
	return model.LogEntry{
		Address:     testToken.Hex(),
		Topics:      topics,
		Data:        data,
		TxHash:      testTx,
		BlockNumber: 12345,
	}
}

func topicFromAddress(addr common.Address) common.Hash {
	return common.BytesToHash(addr.Bytes())
}
