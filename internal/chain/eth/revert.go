package eth

import (
	"encoding/hex"
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/rpc"

	apperr "unigate/pkg/errors"
)

const revertedPrefix = "execution reverted"

// Classify maps a node error to the ledger taxonomy: a contract revert
// becomes LedgerRejected carrying the contract's reason string, anything
// else becomes LedgerUnavailable.
func Classify(err error) error {
	if err == nil {
		return nil
	}

	if reason, ok := RevertReason(err); ok {
		if reason == "" {
			return apperr.ErrLedgerRejected
		}
		return apperr.WithMessage(apperr.ErrLedgerRejected, reason)
	}

	return apperr.Wrap(apperr.ErrLedgerUnavailable, "%s", err.Error())
}

// RevertReason extracts the revert reason from a node error, if the error
// represents a contract revert. Geth attaches the ABI-encoded Error(string)
// payload as error data; other nodes embed the reason in the message.
func RevertReason(err error) (string, bool) {
	var dataErr rpc.DataError
	if errors.As(err, &dataErr) {
		if reason, ok := decodeRevertData(dataErr.ErrorData()); ok {
			return reason, true
		}
	}

	msg := err.Error()
	if idx := strings.Index(msg, revertedPrefix); idx >= 0 {
		reason := strings.TrimPrefix(msg[idx+len(revertedPrefix):], ":")
		return strings.TrimSpace(reason), true
	}

	return "", false
}

// decodeRevertData unpacks an ABI-encoded Error(string) payload.
func decodeRevertData(data any) (string, bool) {
	hexStr, ok := data.(string)
	if !ok {
		return "", false
	}

	raw, err := hex.DecodeString(strings.TrimPrefix(hexStr, "0x"))
	if err != nil || len(raw) < 4 {
		return "", false
	}

	reason, err := abi.UnpackRevert(raw)
	if err != nil {
		return "", false
	}
	return reason, true
}
