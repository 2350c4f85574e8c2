package api

import (
	"math/big"
	"net/http"

	"github.com/labstack/echo/v4"

	"unigate/internal/chain/eth"
	"unigate/internal/wallet"
	apperr "unigate/pkg/errors"
)

type createWalletRequest struct {
	Phrase   string `json:"phrase"`
	Password string `json:"password"`
}

// createWallet takes custody of a recovery phrase. The confirmation
// password is verified before the phrase is even validated.
func (s *Server) createWallet(c echo.Context) error {
	var req createWalletRequest
	if err := c.Bind(&req); err != nil {
		return apperr.ErrBadRequest
	}

	w, err := s.Gateway.CreateWallet(c.Request().Context(), currentUser(c), req.Phrase, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, echo.Map{"address": w.Address})
}

type walletView struct {
	ID      string `json:"id"`
	Address string `json:"address"`
	Active  bool   `json:"active"`
	UserID  string `json:"userId"`
}

func (s *Server) listWallets(c echo.Context) error {
	wallets, err := s.Store.WalletsByUser(c.Request().Context(), currentUser(c).ID)
	if err != nil {
		return err
	}

	views := make([]walletView, 0, len(wallets))
	for _, w := range wallets {
		views = append(views, walletView{ID: w.ID, Address: w.Address, Active: w.Active, UserID: w.UserID})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": views})
}

type sendTransactionRequest struct {
	Address  string `json:"address"`
	Amount   string `json:"amount"`
	Password string `json:"password"`
}

// sendTransaction signs and submits a value transfer from the caller's
// active wallet. Exactly one transaction per request; submission failures
// are reported, never retried.
func (s *Server) sendTransaction(c echo.Context) error {
	var req sendTransactionRequest
	if err := c.Bind(&req); err != nil {
		return apperr.ErrBadRequest
	}
	if err := eth.ValidateAddress(req.Address); err != nil {
		return err
	}
	amount, ok := new(big.Int).SetString(req.Amount, 10)
	if !ok || amount.Sign() < 0 {
		return apperr.WithMessage(apperr.ErrBadRequest, "invalid amount")
	}

	ctx := c.Request().Context()
	unlocked, err := s.Gateway.Unlock(ctx, currentUser(c), req.Password)
	if err != nil {
		return err
	}
	defer unlocked.Destroy()

	account, err := wallet.DeriveAccount(unlocked.Phrase())
	if err != nil {
		return apperr.Wrap(err, "deriving account")
	}
	defer account.Destroy()

	hash, err := s.Ledger.Transfer(ctx, account.PrivateKey(), account.Address.Hex(), req.Address, amount)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{"data": echo.Map{"hash": hash, "address": req.Address}})
}

// transactionHistory proxies the block explorer's transaction list for a
// wallet address.
func (s *Server) transactionHistory(c echo.Context) error {
	address := c.QueryParam("wallet")
	if address == "" {
		return apperr.WithMessage(apperr.ErrBadRequest, "wallet is required")
	}
	if s.Scan == nil {
		return apperr.ErrLedgerUnavailable
	}

	page := intQueryParam(c, "page")
	offset := intQueryParam(c, "offset")

	txs, err := s.Scan.Transactions(c.Request().Context(), address, page, offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"data": txs})
}
