package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	apperr "unigate/pkg/errors"
)

// ProviderCredential is the provider_id of password accounts. Other
// providers carry no local password and cannot gate wallet operations.
const ProviderCredential = "credential"

// User is a registered identity.
type User struct {
	ID            string
	Name          string
	Email         string
	EmailVerified bool
	Image         string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Session is an authenticated session issued by the external auth provider.
type Session struct {
	ID        string
	Token     string
	ExpiresAt time.Time
	IPAddress string
	UserAgent string
	UserID    string
}

// Account links a user to an auth provider. For the credential provider the
// Password column holds a bcrypt hash.
type Account struct {
	ID         string
	AccountID  string
	ProviderID string
	UserID     string
	Password   string
}

// CreateUser inserts a user. A zero ID is replaced with a random UUID.
func (s *Store) CreateUser(ctx context.Context, u *User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
INSERT INTO user(id, name, email, email_verified, image, created_at, updated_at)
VALUES(?,?,?,?,?,?,?)`,
		u.ID, u.Name, u.Email, u.EmailVerified, nullable(u.Image), now.Unix(), now.Unix(),
	)
	return err
}

// UserByID fetches a user by primary key.
func (s *Store) UserByID(ctx context.Context, id string) (*User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `
SELECT id, name, email, email_verified, image, created_at, updated_at
FROM user WHERE id = ?`, id))
}

// UserByEmail fetches a user by unique email.
func (s *Store) UserByEmail(ctx context.Context, email string) (*User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `
SELECT id, name, email, email_verified, image, created_at, updated_at
FROM user WHERE email = ?`, email))
}

// SearchUsers returns users whose name or email contains the query,
// case-insensitively, up to limit.
func (s *Store) SearchUsers(ctx context.Context, query string, limit int) ([]User, error) {
	if limit <= 0 {
		limit = 50
	}
	pattern := "%" + query + "%"
	rows, err := s.db.QueryContext(ctx, `
SELECT id, name, email, email_verified, image, created_at, updated_at
FROM user WHERE name LIKE ? OR email LIKE ?
ORDER BY name LIMIT ?`, pattern, pattern, limit)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	var users []User
	for rows.Next() {
		u, err := scanUserRow(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// CreateSession inserts a session row.
func (s *Store) CreateSession(ctx context.Context, sess *Session) error {
	if sess.ID == "" {
		sess.ID = uuid.NewString()
	}
	now := time.Now()

	_, err := s.db.ExecContext(ctx, `
INSERT INTO session(id, token, expires_at, ip_address, user_agent, user_id, created_at, updated_at)
VALUES(?,?,?,?,?,?,?,?)`,
		sess.ID, sess.Token, sess.ExpiresAt.Unix(),
		nullable(sess.IPAddress), nullable(sess.UserAgent), sess.UserID,
		now.Unix(), now.Unix(),
	)
	return err
}

// SessionByToken fetches a session by its opaque token. Expiry is not
// checked here; callers compare ExpiresAt against the current time.
func (s *Store) SessionByToken(ctx context.Context, token string) (*Session, error) {
	var (
		sess      Session
		expires   int64
		ipAddress sql.NullString
		userAgent sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
SELECT id, token, expires_at, ip_address, user_agent, user_id
FROM session WHERE token = ?`, token).Scan(
		&sess.ID, &sess.Token, &expires, &ipAddress, &userAgent, &sess.UserID,
	)
	if err == sql.ErrNoRows {
		return nil, apperr.ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}
	sess.ExpiresAt = time.Unix(expires, 0)
	sess.IPAddress = ipAddress.String
	sess.UserAgent = userAgent.String
	return &sess, nil
}

// DeleteSession removes a session by token.
func (s *Store) DeleteSession(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM session WHERE token = ?`, token)
	return err
}

// CreateAccount inserts a provider account row.
func (s *Store) CreateAccount(ctx context.Context, a *Account) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	now := time.Now()

	_, err := s.db.ExecContext(ctx, `
INSERT INTO account(id, account_id, provider_id, user_id, password, created_at, updated_at)
VALUES(?,?,?,?,?,?,?)`,
		a.ID, a.AccountID, a.ProviderID, a.UserID, nullable(a.Password), now.Unix(), now.Unix(),
	)
	return err
}

// CredentialAccount fetches the credential-provider account of a user. The
// returned Password is the stored bcrypt hash.
func (s *Store) CredentialAccount(ctx context.Context, userID string) (*Account, error) {
	var (
		a        Account
		password sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
SELECT id, account_id, provider_id, user_id, password
FROM account WHERE user_id = ? AND provider_id = ?`, userID, ProviderCredential).Scan(
		&a.ID, &a.AccountID, &a.ProviderID, &a.UserID, &password,
	)
	if err == sql.ErrNoRows {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	a.Password = password.String
	return &a, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *Store) scanUser(row rowScanner) (*User, error) {
	u, err := scanUserRow(row)
	if err == sql.ErrNoRows {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func scanUserRow(row rowScanner) (*User, error) {
	var (
		u        User
		image    sql.NullString
		created  int64
		updated  int64
		verified int
	)
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &verified, &image, &created, &updated); err != nil {
		return nil, err
	}
	u.EmailVerified = verified != 0
	u.Image = image.String
	u.CreatedAt = time.Unix(created, 0)
	u.UpdatedAt = time.Unix(updated, 0)
	return &u, nil
}

// nullable maps the empty string to SQL NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
