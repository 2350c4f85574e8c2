package registry

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"unigate/internal/metrics"
	apperr "unigate/pkg/errors"
)

// AddCampus submits University.addCampus signed by key. Returns the
// transaction hash; contract reverts surface as LedgerRejected with the
// contract's reason.
func (r *Registry) AddCampus(ctx context.Context, key *ecdsa.PrivateKey, name string) (string, error) {
	data, err := r.uniABI.Pack("addCampus", name)
	if err != nil {
		return "", apperr.Wrap(err, "packing addCampus")
	}
	return r.transact(ctx, key, data)
}

// RegisterSubjects submits University.registerSubjects for the key's address.
func (r *Registry) RegisterSubjects(ctx context.Context, key *ecdsa.PrivateKey, subjectIDs []uint64) (string, error) {
	ids := make([]*big.Int, len(subjectIDs))
	for i, id := range subjectIDs {
		ids[i] = new(big.Int).SetUint64(id)
	}

	data, err := r.uniABI.Pack("registerSubjects", ids)
	if err != nil {
		return "", apperr.Wrap(err, "packing registerSubjects")
	}
	return r.transact(ctx, key, data)
}

// AddUser submits University.addUser assigning roles and a career to a
// wallet address.
func (r *Registry) AddUser(ctx context.Context, key *ecdsa.PrivateKey, wallet string, roles []Role, careerID uint64) (string, error) {
	rawRoles := make([]uint8, len(roles))
	for i, role := range roles {
		rawRoles[i] = uint8(role)
	}

	data, err := r.uniABI.Pack("addUser",
		common.HexToAddress(wallet), rawRoles, new(big.Int).SetUint64(careerID))
	if err != nil {
		return "", apperr.Wrap(err, "packing addUser")
	}
	return r.transact(ctx, key, data)
}

// transact signs and submits exactly one legacy transaction carrying data to
// the University contract. The write is simulated first so a revert is
// reported without spending gas; a failed submission is never retried.
func (r *Registry) transact(ctx context.Context, key *ecdsa.PrivateKey, data []byte) (string, error) {
	from := ethcrypto.PubkeyToAddress(key.PublicKey)

	msg := ethereum.CallMsg{From: from, To: &r.university, Data: data}
	if _, err := r.ledger.CallContract(ctx, msg); err != nil {
		return "", err
	}

	gas, err := r.ledger.EstimateGas(ctx, msg)
	if err != nil {
		return "", err
	}

	nonce, err := r.ledger.PendingNonceAt(ctx, from.Hex())
	if err != nil {
		return "", err
	}

	gasPrice, err := r.ledger.GasPrice(ctx)
	if err != nil {
		return "", err
	}

	chainID, err := r.ledger.ChainID(ctx)
	if err != nil {
		return "", err
	}

	to := r.university
	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &to,
		Value:    big.NewInt(0),
		Gas:      gas,
		GasPrice: gasPrice,
		Data:     data,
	})

	signed, err := types.SignTx(tx, types.NewEIP155Signer(chainID), key)
	if err != nil {
		return "", apperr.Wrap(err, "signing transaction")
	}

	start := time.Now()
	if err := r.ledger.SendTransaction(ctx, signed); err != nil {
		return "", err
	}
	metrics.Global.RecordSubmission(time.Since(start))

	return signed.Hash().Hex(), nil
}
