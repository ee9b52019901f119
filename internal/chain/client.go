package chain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"golang.org/x/sync/errgroup"

	"transferScope/internal/codec"
	"transferScope/internal/erc20"
	"transferScope/internal/metrics"
)

// NativeDecimals is the unit exponent of the chain's native currency.
const NativeDecimals = 18

// Backend is the subset of ethclient.Client used for point reads.
type Backend interface {
	ChainID(ctx context.Context) (*big.Int, error)
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// Client issues read-only queries against a node. It is safe for concurrent use.
type Client struct {
	rpcClient *rpc.Client
	backend   Backend
}

// NewClient creates a new chain client from the RPC URL.
func NewClient(ctx context.Context, rpcURL string) (*Client, error) {
	rpcClient, err := rpc.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, &ConnectionError{Op: "dial", Err: err}
	}

	return &Client{
		rpcClient: rpcClient,
		backend:   ethclient.NewClient(rpcClient),
	}, nil
}

// NewClientWithBackend builds a Client over an existing backend.
func NewClientWithBackend(backend Backend) *Client {
	return &Client{backend: backend}
}

// Close closes the underlying RPC client.
func (c *Client) Close() {
	if c.rpcClient != nil {
		c.rpcClient.Close()
	}
}

// ChainID returns the chain ID.
func (c *Client) ChainID(ctx context.Context) (*big.Int, error) {
	id, err := c.backend.ChainID(ctx)
	if err != nil {
		return nil, &ConnectionError{Op: "eth_chainId", Err: err}
	}
	return id, nil
}

// GetBalance returns the native balance of address in whole units.
func (c *Client) GetBalance(ctx context.Context, address string) (_ *big.Rat, err error) {
	defer func() { metrics.ChainQueries.WithLabelValues("balance", metrics.Status(err)).Inc() }()

	account, err := codec.Checksum(address)
	if err != nil {
		return nil, err
	}

	wei, err := c.backend.BalanceAt(ctx, account, nil)
	if err != nil {
		return nil, &ConnectionError{Op: "eth_getBalance", Err: err}
	}
	return ScaleDown(wei, NativeDecimals), nil
}

// GetTokenBalance returns wallet's balance of an ERC20 token in whole token units.
// balanceOf and decimals are read concurrently; both must succeed.
func (c *Client) GetTokenBalance(ctx context.Context, tokenAddress, walletAddress string) (_ *big.Rat, err error) {
	defer func() { metrics.ChainQueries.WithLabelValues("token_balance", metrics.Status(err)).Inc() }()

	token, err := codec.Checksum(tokenAddress)
	if err != nil {
		return nil, err
	}
	wallet, err := codec.Checksum(walletAddress)
	if err != nil {
		return nil, err
	}

	var (
		balance  *big.Int
		decimals uint8
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		values, err := c.callToken(gctx, token, erc20.MethodBalanceOf, wallet)
		if err != nil {
			return err
		}
		v, ok := values[0].(*big.Int)
		if !ok {
			return &ContractCallError{Method: erc20.MethodBalanceOf, Err: fmt.Errorf("unexpected type %T", values[0])}
		}
		balance = v
		return nil
	})
	g.Go(func() error {
		values, err := c.callToken(gctx, token, erc20.MethodDecimals)
		if err != nil {
			return err
		}
		v, ok := values[0].(uint8)
		if !ok {
			return &ContractCallError{Method: erc20.MethodDecimals, Err: fmt.Errorf("unexpected type %T", values[0])}
		}
		decimals = v
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return ScaleDown(balance, decimals), nil
}

func (c *Client) callToken(ctx context.Context, token common.Address, method string, args ...interface{}) ([]interface{}, error) {
	parsed, err := erc20.ReadABI()
	if err != nil {
		return nil, fmt.Errorf("parse erc20 abi: %w", err)
	}
	data, err := parsed.Pack(method, args...)
	if err != nil {
		return nil, &ContractCallError{Method: method, Err: fmt.Errorf("pack: %w", err)}
	}
	msg := ethereum.CallMsg{To: &token, Data: data}
	resp, err := c.backend.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, &ContractCallError{Method: method, Err: err}
	}
	values, err := parsed.Unpack(method, resp)
	if err != nil {
		return nil, &ContractCallError{Method: method, Err: fmt.Errorf("unpack: %w", err)}
	}
	if len(values) == 0 {
		return nil, &ContractCallError{Method: method, Err: fmt.Errorf("empty result")}
	}
	return values, nil
}
