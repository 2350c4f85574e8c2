// Package gateway implements the password reconfirmation gate and the wallet
// unlock pipeline. Every signing operation passes through Unlock, which
// verifies the caller's password before any wallet material is touched.
package gateway

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"unigate/internal/crypto"
	"unigate/internal/metrics"
	"unigate/internal/store"
	"unigate/internal/wallet"
	apperr "unigate/pkg/errors"
)

// Gateway gates wallet operations behind password reconfirmation.
type Gateway struct {
	store *store.Store
	log   zerolog.Logger
}

// New creates a gateway over the given store.
func New(st *store.Store, log zerolog.Logger) *Gateway {
	return &Gateway{
		store: st,
		log:   log.With().Str("component", "gateway").Logger(),
	}
}

// ConfirmPassword verifies that password matches the user's stored
// credential. The session alone is not sufficient for wallet operations;
// the password must accompany every one of them.
//
// Returns Unauthorized when the user has no credential account,
// PasswordRequired when password is empty, and InvalidCredential on
// mismatch.
func (g *Gateway) ConfirmPassword(ctx context.Context, user *store.User, password string) error {
	if user == nil {
		return apperr.ErrUnauthorized
	}
	if password == "" {
		return apperr.ErrPasswordRequired
	}

	acct, err := g.store.CredentialAccount(ctx, user.ID)
	if err != nil {
		if apperr.Is(err, apperr.ErrNotFound) {
			return apperr.ErrUnauthorized
		}
		return err
	}
	if acct.Password == "" {
		return apperr.ErrUnauthorized
	}

	if bcrypt.CompareHashAndPassword([]byte(acct.Password), []byte(password)) != nil {
		return apperr.ErrInvalidCredential
	}

	return nil
}

// Unlocked is the result of a successful unlock: the wallet's address and
// its decrypted phrase. Callers must Destroy it when done.
type Unlocked struct {
	WalletID string
	Address  string
	phrase   *crypto.SecureBytes
}

// Phrase returns the decrypted mnemonic.
func (u *Unlocked) Phrase() string {
	return u.phrase.String()
}

// Destroy zeros the decrypted phrase.
func (u *Unlocked) Destroy() {
	if u.phrase != nil {
		u.phrase.Destroy()
	}
}

// Unlock runs the full pipeline in order: password gate, active wallet
// lookup, cipher decrypt. Each step must succeed before the next runs; no
// wallet record is read before the password verifies.
//
// A decrypt failure after the gate passed means the stored record and the
// credential disagree, which cannot happen in normal operation; it is
// reported as an internal error and logged without any secret material.
func (g *Gateway) Unlock(ctx context.Context, user *store.User, password string) (u *Unlocked, err error) {
	defer func() {
		metrics.Global.RecordUnlock(err)
	}()

	if err := g.ConfirmPassword(ctx, user, password); err != nil {
		return nil, err
	}

	w, err := g.store.ActiveWallet(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	phrase, err := crypto.Decrypt(w.Phrase, w.Salt, w.IV, password)
	if err != nil {
		g.log.Error().Str("wallet_id", w.ID).Msg("stored wallet record failed to decrypt with a verified password")
		return nil, apperr.ErrInternal
	}

	return &Unlocked{WalletID: w.ID, Address: w.Address, phrase: phrase}, nil
}

// CreateWallet validates and custodies a mnemonic for the user: gate,
// BIP-39 validation, address derivation, encryption under the verified
// password, then persistence. Returns the derived address.
func (g *Gateway) CreateWallet(ctx context.Context, user *store.User, phrase, password string) (*store.Wallet, error) {
	if err := g.ConfirmPassword(ctx, user, password); err != nil {
		return nil, err
	}

	if err := wallet.ValidateMnemonic(phrase); err != nil {
		return nil, err
	}
	normalized := wallet.NormalizeMnemonicInput(phrase)

	acct, err := wallet.DeriveAccount(normalized)
	if err != nil {
		return nil, err
	}
	defer acct.Destroy()

	rec, err := crypto.Encrypt(normalized, password)
	if err != nil {
		return nil, err
	}

	w := &store.Wallet{
		Address: acct.Address.Hex(),
		Phrase:  rec.Ciphertext,
		Salt:    rec.Salt,
		IV:      rec.IV,
		Active:  true,
		UserID:  user.ID,
	}
	if err := g.store.CreateWallet(ctx, w); err != nil {
		return nil, err
	}

	g.log.Info().Str("wallet_id", w.ID).Str("address", w.Address).Msg("wallet custodied")
	return w, nil
}
