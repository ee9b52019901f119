package erc20

import (
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// TransferSignature is the canonical signature of the only decoded event.
const TransferSignature = "Transfer(address,address,uint256)"

// TransferTopic is keccak256(TransferSignature).
var TransferTopic = common.HexToHash("0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef")

const (
	MethodBalanceOf = "balanceOf"
	MethodDecimals  = "decimals"
)

const readABIJSON = `[
  {"constant": true, "inputs": [{"name": "_owner", "type": "address"}], "name": "balanceOf", "outputs": [{"name": "balance", "type": "uint256"}], "stateMutability": "view", "type": "function"},
  {"constant": true, "inputs": [], "name": "decimals", "outputs": [{"name": "", "type": "uint8"}], "stateMutability": "view", "type": "function"}
]`

var (
	readABI     abi.ABI
	readABIOnce sync.Once
	readABIErr  error
)

// ReadABI returns the parsed balanceOf/decimals ABI.
func ReadABI() (abi.ABI, error) {
	readABIOnce.Do(func() {
		readABI, readABIErr = abi.JSON(strings.NewReader(readABIJSON))
	})
	return readABI, readABIErr
}
