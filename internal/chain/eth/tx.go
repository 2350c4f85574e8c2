package eth

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"unigate/internal/metrics"
)

// Transfer builds, signs and broadcasts a single value transfer from the
// key's address. Exactly one transaction is submitted per call; a failed
// submission is never retried. Returns the transaction hash.
func (c *Client) Transfer(ctx context.Context, key *ecdsa.PrivateKey, from, to string, value *big.Int) (string, error) {
	if err := ValidateAddress(to); err != nil {
		return "", err
	}

	nonce, err := c.PendingNonceAt(ctx, from)
	if err != nil {
		return "", err
	}

	gasPrice, err := c.GasPrice(ctx)
	if err != nil {
		return "", err
	}

	toAddr := common.HexToAddress(to)
	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &toAddr,
		Value:    value,
		Gas:      defaultGasLimit,
		GasPrice: gasPrice,
	})

	signed, err := c.SignTx(ctx, tx, key)
	if err != nil {
		return "", err
	}

	start := time.Now()
	if err := c.SendTransaction(ctx, signed); err != nil {
		return "", err
	}
	metrics.Global.RecordSubmission(time.Since(start))

	return signed.Hash().Hex(), nil
}
