package errors_test

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperr "unigate/pkg/errors"
)

func TestError_Message(t *testing.T) {
	err := apperr.New("TEST", "something broke", http.StatusTeapot)
	assert.Equal(t, "something broke", err.Error())
	assert.Equal(t, http.StatusTeapot, apperr.Status(err))
	assert.Equal(t, "TEST", apperr.Code(err))
}

func TestError_DetailsAreSorted(t *testing.T) {
	err := apperr.WithDetails(apperr.ErrBadRequest, map[string]string{
		"b": "2",
		"a": "1",
	})
	assert.Equal(t, "bad request (a: 1) (b: 2)", err.Error())
}

func TestError_IsMatchesByCode(t *testing.T) {
	wrapped := apperr.Wrap(apperr.ErrWalletNotFound, "looking up wallet")
	assert.True(t, stderrors.Is(wrapped, apperr.ErrWalletNotFound))
	assert.False(t, stderrors.Is(wrapped, apperr.ErrUnauthorized))
}

func TestWrap_PreservesStatus(t *testing.T) {
	wrapped := apperr.Wrap(apperr.ErrLedgerUnavailable, "sending transaction")
	assert.Equal(t, http.StatusBadGateway, apperr.Status(wrapped))

	var e *apperr.Error
	require.True(t, stderrors.As(wrapped, &e))
	assert.Equal(t, "LEDGER_UNAVAILABLE", e.Code)
}

func TestWrap_PlainErrorBecomesInternal(t *testing.T) {
	wrapped := apperr.Wrap(fmt.Errorf("disk on fire"), "saving record")
	assert.Equal(t, http.StatusInternalServerError, apperr.Status(wrapped))
	assert.Equal(t, "INTERNAL", apperr.Code(wrapped))
}

func TestWrap_Nil(t *testing.T) {
	assert.NoError(t, apperr.Wrap(nil, "nothing"))
	assert.NoError(t, apperr.WithMessage(nil, "nothing"))
	assert.NoError(t, apperr.WithDetails(nil, nil))
}

func TestWithMessage_KeepsCodeAndStatus(t *testing.T) {
	err := apperr.WithMessage(apperr.ErrLedgerRejected, "Campus name cannot be empty")
	assert.Equal(t, "Campus name cannot be empty", apperr.Public(err))
	assert.Equal(t, http.StatusBadRequest, apperr.Status(err))
	assert.True(t, stderrors.Is(err, apperr.ErrLedgerRejected))
}

func TestPublic_MasksUnknownErrors(t *testing.T) {
	dbErr := fmt.Errorf("sqlite: constraint failed on table wallet")
	assert.Equal(t, "internal server error", apperr.Public(dbErr))
}

func TestStatus_Defaults(t *testing.T) {
	assert.Equal(t, http.StatusOK, apperr.Status(nil))
	assert.Equal(t, http.StatusInternalServerError, apperr.Status(stderrors.New("x")))
}

func TestSentinelContractMessages(t *testing.T) {
	// These exact strings are rendered to API clients.
	assert.Equal(t, "Invalid password", apperr.ErrInvalidCredential.Message)
	assert.Equal(t, "Wallet not found", apperr.ErrWalletNotFound.Message)
	assert.Equal(t, "Password confirmation is required", apperr.ErrPasswordRequired.Message)
	assert.Equal(t, http.StatusBadRequest, apperr.ErrInvalidCredential.Status)
	assert.Equal(t, http.StatusNotFound, apperr.ErrWalletNotFound.Status)
}
