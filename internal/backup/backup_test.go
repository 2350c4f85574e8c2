package backup

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"unigate/internal/store"
	apperr "unigate/pkg/errors"
)

const testPassphrase = "archive-passphrase"

func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	st, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func seedWallet(t *testing.T, st *store.Store, email, address string, active bool) *store.Wallet {
	t.Helper()
	ctx := context.Background()

	u := &store.User{Name: "Test", Email: email}
	require.NoError(t, st.CreateUser(ctx, u))

	w := &store.Wallet{
		Address: address,
		Phrase:  "b64ciphertext",
		Salt:    "b64salt",
		IV:      "b64iv",
		Active:  active,
		UserID:  u.ID,
	}
	require.NoError(t, st.CreateWallet(ctx, w))
	return w
}

func TestCreateVerifyRestore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	src := newTestStore(t)
	seedWallet(t, src, "a@university.edu", "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266", true)
	seedWallet(t, src, "b@university.edu", "0x70997970C51812dc3A010C7d01b50e0d17dc79C8", true)

	dir := t.TempDir()
	svc := NewService(dir, src)

	archive, path, err := svc.Create(ctx, testPassphrase)
	require.NoError(t, err)
	assert.Equal(t, 2, archive.Manifest.WalletCount)
	assert.Equal(t, 2, archive.Manifest.UserCount)
	assert.Equal(t, "age", archive.Manifest.EncryptionMethod)
	assert.FileExists(t, path)

	manifest, err := svc.Verify(path)
	require.NoError(t, err)
	assert.Equal(t, 2, manifest.WalletCount)

	_, err = svc.VerifyWithDecryption(path, testPassphrase)
	require.NoError(t, err)

	// Restore into an empty database. Users are provisioned separately;
	// wallet rows carry their original ids.
	dst := newTestStore(t)
	seedUsers(t, src, dst)

	restored, err := NewService(dir, dst).Restore(ctx, path, testPassphrase)
	require.NoError(t, err)
	assert.Equal(t, 2, restored)

	wallets, err := dst.AllWallets(ctx)
	require.NoError(t, err)
	require.Len(t, wallets, 2)
	assert.Equal(t, "b64ciphertext", wallets[0].Phrase)
}

// seedUsers copies user rows so restored wallets satisfy the foreign key.
func seedUsers(t *testing.T, src, dst *store.Store) {
	t.Helper()
	ctx := context.Background()

	wallets, err := src.AllWallets(ctx)
	require.NoError(t, err)
	for _, w := range wallets {
		u, err := src.UserByID(ctx, w.UserID)
		require.NoError(t, err)
		require.NoError(t, dst.CreateUser(ctx, u))
	}
}

func TestRestoreSkipsExisting(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := newTestStore(t)
	seedWallet(t, st, "c@university.edu", "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266", true)

	svc := NewService(t.TempDir(), st)
	_, path, err := svc.Create(ctx, testPassphrase)
	require.NoError(t, err)

	// Restoring over the same database is a no-op.
	restored, err := svc.Restore(ctx, path, testPassphrase)
	require.NoError(t, err)
	assert.Zero(t, restored)
}

func TestRestoreWrongPassphrase(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := newTestStore(t)
	seedWallet(t, st, "d@university.edu", "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266", true)

	svc := NewService(t.TempDir(), st)
	_, path, err := svc.Create(ctx, testPassphrase)
	require.NoError(t, err)

	_, err = svc.Restore(ctx, path, "wrong")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.ErrDecryptFailed))
}

func TestVerifyCorruptedArchive(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := newTestStore(t)
	seedWallet(t, st, "e@university.edu", "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266", true)

	svc := NewService(t.TempDir(), st)
	archive, path, err := svc.Create(ctx, testPassphrase)
	require.NoError(t, err)

	archive.EncryptedData[0] ^= 0xff
	data, err := json.MarshalIndent(archive, "", "  ")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, ArchiveFilePermissions))

	_, err = svc.Verify(path)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, ErrArchiveCorrupted))
}

func TestVerifyMissingArchive(t *testing.T) {
	t.Parallel()

	svc := NewService(t.TempDir(), newTestStore(t))
	_, err := svc.Verify(filepath.Join(t.TempDir(), "nope.unigate"))
	require.Error(t, err)
	assert.True(t, apperr.Is(err, ErrArchiveNotFound))
}

func TestList(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := newTestStore(t)
	seedWallet(t, st, "f@university.edu", "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266", true)

	svc := NewService(t.TempDir(), st)
	_, _, err := svc.Create(ctx, testPassphrase)
	require.NoError(t, err)

	archives, err := svc.List()
	require.NoError(t, err)
	require.Len(t, archives, 1)
	assert.Equal(t, ArchiveExtension, filepath.Ext(archives[0]))
}