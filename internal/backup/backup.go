package backup

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"unigate/internal/crypto"
	"unigate/internal/fileutil"
	"unigate/internal/store"
	apperr "unigate/pkg/errors"
)

const (
	// ArchiveExtension is the file extension for archives.
	ArchiveExtension = ".unigate"

	// ArchiveDirPermissions is the permission mode for the archive directory.
	ArchiveDirPermissions = 0o750

	// ArchiveFilePermissions is the permission mode for archive files.
	ArchiveFilePermissions = 0o600
)

// Service exports and restores wallet records.
type Service struct {
	dir string
	st  *store.Store
}

// NewService creates a backup service writing archives under dir.
func NewService(dir string, st *store.Store) *Service {
	return &Service{dir: dir, st: st}
}

// walletExport is one wallet row inside the encrypted payload. Phrases stay
// in their per-wallet encrypted form; the archive adds a second layer.
type walletExport struct {
	ID      string `json:"id"`
	Address string `json:"address"`
	Phrase  string `json:"phrase"`
	Salt    string `json:"salt"`
	IV      string `json:"iv"`
	Active  bool   `json:"active"`
	UserID  string `json:"userId"`
}

// Create exports every wallet record into an age-encrypted archive file and
// returns the archive and its path. The passphrase is independent of any
// user password.
func (s *Service) Create(ctx context.Context, passphrase string) (*Archive, string, error) {
	wallets, err := s.st.AllWallets(ctx)
	if err != nil {
		return nil, "", apperr.Wrap(err, "loading wallets")
	}

	exports := make([]walletExport, 0, len(wallets))
	users := make(map[string]struct{})
	for _, w := range wallets {
		users[w.UserID] = struct{}{}
		exports = append(exports, walletExport{
			ID:      w.ID,
			Address: w.Address,
			Phrase:  w.Phrase,
			Salt:    w.Salt,
			IV:      w.IV,
			Active:  w.Active,
			UserID:  w.UserID,
		})
	}

	payload, err := json.Marshal(exports)
	if err != nil {
		return nil, "", apperr.Wrap(err, "serializing export")
	}

	encrypted, err := crypto.EncryptArchive(payload, passphrase)
	if err != nil {
		return nil, "", err
	}

	archive := NewArchive(NewManifest(len(exports), len(users)), encrypted)

	path, err := s.writeArchive(archive)
	if err != nil {
		return nil, "", err
	}
	return archive, path, nil
}

// Verify checks an archive's integrity without decrypting.
func (s *Service) Verify(path string) (*Manifest, error) {
	archive, err := s.readArchive(path)
	if err != nil {
		return nil, err
	}
	if err := archive.Validate(); err != nil {
		return nil, err
	}
	return &archive.Manifest, nil
}

// VerifyWithDecryption checks integrity and that the passphrase opens the
// archive.
func (s *Service) VerifyWithDecryption(path, passphrase string) (*Manifest, error) {
	archive, err := s.readArchive(path)
	if err != nil {
		return nil, err
	}
	if err := archive.Validate(); err != nil {
		return nil, err
	}
	if _, err := crypto.DecryptArchive(archive.EncryptedData, passphrase); err != nil {
		return nil, err
	}
	return &archive.Manifest, nil
}

// Restore loads wallet records from an archive into the store. Records whose
// address already exists are skipped, so a restore over a live database only
// fills gaps.
func (s *Service) Restore(ctx context.Context, path, passphrase string) (int, error) {
	archive, err := s.readArchive(path)
	if err != nil {
		return 0, err
	}
	if err := archive.Validate(); err != nil {
		return 0, err
	}

	payload, err := crypto.DecryptArchive(archive.EncryptedData, passphrase)
	if err != nil {
		return 0, err
	}
	defer crypto.ZeroBytes(payload)

	var exports []walletExport
	if err := json.Unmarshal(payload, &exports); err != nil {
		return 0, apperr.Wrap(ErrInvalidFormat, "decoding export")
	}

	restored := 0
	for _, e := range exports {
		if _, err := s.st.WalletByAddress(ctx, e.Address); err == nil {
			continue
		} else if !apperr.Is(err, apperr.ErrWalletNotFound) {
			return restored, err
		}

		w := &store.Wallet{
			ID:      e.ID,
			Address: e.Address,
			Phrase:  e.Phrase,
			Salt:    e.Salt,
			IV:      e.IV,
			Active:  e.Active,
			UserID:  e.UserID,
		}
		if err := s.st.CreateWallet(ctx, w); err != nil {
			return restored, apperr.Wrap(err, "restoring wallet %s", e.Address)
		}
		restored++
	}
	return restored, nil
}

// List returns all archive files in the archive directory.
func (s *Service) List() ([]string, error) {
	if err := os.MkdirAll(s.dir, ArchiveDirPermissions); err != nil {
		return nil, apperr.Wrap(err, "creating archive directory")
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, apperr.Wrap(err, "reading archive directory")
	}

	var archives []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if filepath.Ext(entry.Name()) == ArchiveExtension {
			archives = append(archives, entry.Name())
		}
	}
	return archives, nil
}

// ArchivePath returns the path to an archive file by name.
func (s *Service) ArchivePath(filename string) string {
	return filepath.Join(s.dir, filename)
}

func (s *Service) writeArchive(archive *Archive) (string, error) {
	if err := os.MkdirAll(s.dir, ArchiveDirPermissions); err != nil {
		return "", apperr.Wrap(err, "creating archive directory")
	}

	timestamp := time.Now().Format("2006-01-02-150405")
	path := filepath.Join(s.dir, "wallets-"+timestamp+ArchiveExtension)

	data, err := json.MarshalIndent(archive, "", "  ")
	if err != nil {
		return "", apperr.Wrap(err, "serializing archive")
	}
	if err := fileutil.WriteAtomic(path, data, ArchiveFilePermissions); err != nil {
		return "", apperr.Wrap(err, "writing archive file")
	}
	return path, nil
}

func (s *Service) readArchive(path string) (*Archive, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is from user input
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrArchiveNotFound
		}
		return nil, apperr.Wrap(err, "reading archive file")
	}

	var archive Archive
	if err := json.Unmarshal(data, &archive); err != nil {
		return nil, apperr.Wrap(ErrInvalidFormat, "decoding archive")
	}
	return &archive, nil
}
