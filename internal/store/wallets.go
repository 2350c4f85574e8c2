package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	apperr "unigate/pkg/errors"
)

// Wallet is a custodied wallet record. Phrase, Salt and IV are the
// base64-encoded cipher record; the plaintext mnemonic is never stored.
type Wallet struct {
	ID      string
	Address string
	Phrase  string
	Salt    string
	IV      string
	Active  bool
	UserID  string
}

// CreateWallet inserts a wallet record. A user holds at most one active
// wallet: creating a second active wallet fails with ErrWalletExists.
func (s *Store) CreateWallet(ctx context.Context, w *Wallet) error {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if w.Active {
		var existing int
		err = tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM wallet WHERE user_id = ? AND active = 1`, w.UserID,
		).Scan(&existing)
		if err != nil {
			return err
		}
		if existing > 0 {
			return apperr.ErrWalletExists
		}
	}

	_, err = tx.ExecContext(ctx, `
INSERT INTO wallet(id, address, phrase, salt, iv, active, user_id)
VALUES(?,?,?,?,?,?,?)`,
		w.ID, w.Address, w.Phrase, w.Salt, w.IV, w.Active, w.UserID,
	)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// ActiveWallet fetches the user's active wallet record.
func (s *Store) ActiveWallet(ctx context.Context, userID string) (*Wallet, error) {
	w, err := scanWallet(s.db.QueryRowContext(ctx, `
SELECT id, address, phrase, salt, iv, active, user_id
FROM wallet WHERE user_id = ? AND active = 1`, userID))
	if err == sql.ErrNoRows {
		return nil, apperr.ErrWalletNotFound
	}
	if err != nil {
		return nil, err
	}
	return w, nil
}

// WalletsByUser lists all wallet records of a user, active first.
func (s *Store) WalletsByUser(ctx context.Context, userID string) ([]Wallet, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, address, phrase, salt, iv, active, user_id
FROM wallet WHERE user_id = ? ORDER BY active DESC, id`, userID)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	var wallets []Wallet
	for rows.Next() {
		w, err := scanWallet(rows)
		if err != nil {
			return nil, err
		}
		wallets = append(wallets, *w)
	}
	return wallets, rows.Err()
}

// WalletByAddress fetches a wallet record by its unique address.
func (s *Store) WalletByAddress(ctx context.Context, address string) (*Wallet, error) {
	w, err := scanWallet(s.db.QueryRowContext(ctx, `
SELECT id, address, phrase, salt, iv, active, user_id
FROM wallet WHERE address = ?`, address))
	if err == sql.ErrNoRows {
		return nil, apperr.ErrWalletNotFound
	}
	if err != nil {
		return nil, err
	}
	return w, nil
}

// AllWallets lists every wallet record. Used by the backup exporter.
func (s *Store) AllWallets(ctx context.Context) ([]Wallet, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, address, phrase, salt, iv, active, user_id
FROM wallet ORDER BY user_id, id`)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	var wallets []Wallet
	for rows.Next() {
		w, err := scanWallet(rows)
		if err != nil {
			return nil, err
		}
		wallets = append(wallets, *w)
	}
	return wallets, rows.Err()
}

func scanWallet(row rowScanner) (*Wallet, error) {
	var (
		w      Wallet
		active int
	)
	if err := row.Scan(&w.ID, &w.Address, &w.Phrase, &w.Salt, &w.IV, &active, &w.UserID); err != nil {
		return nil, err
	}
	w.Active = active != 0
	return &w, nil
}
