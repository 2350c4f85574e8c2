// Package eth provides the Ethereum ledger client: JSON-RPC transport,
// legacy transaction signing and revert classification.
package eth

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"regexp"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"

	apperr "unigate/pkg/errors"
)

// defaultGasLimit is the gas limit for simple value transfers.
const defaultGasLimit = 21000

// addressRegex validates Ethereum addresses.
var addressRegex = regexp.MustCompile("^0x[0-9a-fA-F]{40}$")

// Client provides Ethereum ledger operations over JSON-RPC. The connection
// is established lazily on first use and retried after transient failures.
type Client struct {
	rpcURL  string
	chainID *big.Int

	mu sync.Mutex
	ec *ethclient.Client
}

// NewClient creates a ledger client. chainID may be nil, in which case it is
// fetched from the node on first connect.
func NewClient(rpcURL string, chainID *big.Int) (*Client, error) {
	if rpcURL == "" {
		return nil, apperr.New("ETH_RPC_URL_REQUIRED", "RPC URL is required", 500)
	}
	return &Client{rpcURL: rpcURL, chainID: chainID}, nil
}

// ChainID returns the configured or detected chain ID.
func (c *Client) ChainID(ctx context.Context) (*big.Int, error) {
	if err := c.connect(ctx); err != nil {
		return nil, err
	}
	return c.chainID, nil
}

// BalanceAt retrieves the latest wei balance of an address.
func (c *Client) BalanceAt(ctx context.Context, address string) (*big.Int, error) {
	if err := ValidateAddress(address); err != nil {
		return nil, err
	}
	if err := c.connect(ctx); err != nil {
		return nil, err
	}

	balance, err := c.ec.BalanceAt(ctx, common.HexToAddress(address), nil)
	if err != nil {
		return nil, Classify(err)
	}
	return balance, nil
}

// GasPrice retrieves the suggested gas price in wei.
func (c *Client) GasPrice(ctx context.Context) (*big.Int, error) {
	if err := c.connect(ctx); err != nil {
		return nil, err
	}

	price, err := c.ec.SuggestGasPrice(ctx)
	if err != nil {
		return nil, Classify(err)
	}
	return price, nil
}

// PendingNonceAt retrieves the next nonce of an address.
func (c *Client) PendingNonceAt(ctx context.Context, address string) (uint64, error) {
	if err := c.connect(ctx); err != nil {
		return 0, err
	}

	nonce, err := c.ec.PendingNonceAt(ctx, common.HexToAddress(address))
	if err != nil {
		return 0, Classify(err)
	}
	return nonce, nil
}

// CallContract executes a read-only contract call. Reverts surface as
// LedgerRejected with the contract's reason.
func (c *Client) CallContract(ctx context.Context, msg ethereum.CallMsg) ([]byte, error) {
	if err := c.connect(ctx); err != nil {
		return nil, err
	}

	out, err := c.ec.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, Classify(err)
	}
	return out, nil
}

// EstimateGas estimates the gas for a call, falling back to simulation via
// the node. Reverts surface as LedgerRejected with the contract's reason.
func (c *Client) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	if err := c.connect(ctx); err != nil {
		return 0, err
	}

	gas, err := c.ec.EstimateGas(ctx, msg)
	if err != nil {
		return 0, Classify(err)
	}
	return gas, nil
}

// SendTransaction broadcasts a signed transaction.
func (c *Client) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	if err := c.connect(ctx); err != nil {
		return err
	}

	if err := c.ec.SendTransaction(ctx, tx); err != nil {
		return Classify(err)
	}
	return nil
}

// SignTx signs tx with key using the EIP-155 signer for the client's chain.
func (c *Client) SignTx(ctx context.Context, tx *types.Transaction, key *ecdsa.PrivateKey) (*types.Transaction, error) {
	chainID, err := c.ChainID(ctx)
	if err != nil {
		return nil, err
	}

	signed, err := types.SignTx(tx, types.NewEIP155Signer(chainID), key)
	if err != nil {
		return nil, apperr.Wrap(err, "signing transaction")
	}
	return signed, nil
}

// Close closes the underlying RPC connection.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ec != nil {
		c.ec.Close()
		c.ec = nil
	}
}

// connect dials the RPC endpoint if not already connected.
func (c *Client) connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ec != nil {
		return nil
	}

	ec, err := ethclient.DialContext(ctx, c.rpcURL)
	if err != nil {
		return apperr.Wrap(apperr.ErrLedgerUnavailable, "dialing %s", c.rpcURL)
	}

	if c.chainID == nil {
		chainID, err := ec.ChainID(ctx)
		if err != nil {
			ec.Close()
			return apperr.Wrap(apperr.ErrLedgerUnavailable, "getting chain ID")
		}
		c.chainID = chainID
	}

	c.ec = ec
	return nil
}

// ValidateAddress checks the 0x-prefixed hex address format.
func ValidateAddress(address string) error {
	if !addressRegex.MatchString(address) {
		return apperr.WithDetails(apperr.ErrInvalidAddress, map[string]string{
			"address": address,
		})
	}
	return nil
}
