// Package backup exports the custodied wallet records into an encrypted
// archive and restores them into a fresh database.
package backup

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	apperr "unigate/pkg/errors"
)

var (
	// ErrArchiveNotFound indicates the archive file was not found.
	ErrArchiveNotFound = apperr.New("ARCHIVE_NOT_FOUND", "archive file not found", 404)

	// ErrArchiveCorrupted indicates the archive checksum failed.
	ErrArchiveCorrupted = apperr.New("ARCHIVE_CORRUPTED", "archive corrupted - checksum mismatch", 400)

	// ErrInvalidFormat indicates the archive format is invalid.
	ErrInvalidFormat = apperr.New("ARCHIVE_INVALID", "invalid archive format", 400)
)

// ArchiveVersion is the current archive format version.
const ArchiveVersion = 1

// Archive is a complete wallet-table export.
type Archive struct {
	Version int `json:"version"`

	Manifest Manifest `json:"manifest"`

	// EncryptedData is the age-encrypted wallet export.
	EncryptedData []byte `json:"encrypted_data"`

	// Checksum is the SHA256 hash of EncryptedData.
	Checksum string `json:"checksum"`
}

// Manifest describes an archive without revealing its contents.
type Manifest struct {
	CreatedAt        time.Time `json:"created_at"`
	WalletCount      int       `json:"wallet_count"`
	UserCount        int       `json:"user_count"`
	EncryptionMethod string    `json:"encryption_method"`
}

// NewManifest creates a manifest for an export of walletCount records
// belonging to userCount distinct users.
func NewManifest(walletCount, userCount int) Manifest {
	return Manifest{
		CreatedAt:        time.Now().UTC(),
		WalletCount:      walletCount,
		UserCount:        userCount,
		EncryptionMethod: "age",
	}
}

// CalculateChecksum computes the SHA256 checksum of data.
func CalculateChecksum(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// VerifyChecksum verifies that data matches the expected checksum.
func VerifyChecksum(data []byte, expected string) error {
	if CalculateChecksum(data) != expected {
		return ErrArchiveCorrupted
	}
	return nil
}

// NewArchive wraps encrypted export data with its manifest and checksum.
func NewArchive(manifest Manifest, encryptedData []byte) *Archive {
	return &Archive{
		Version:       ArchiveVersion,
		Manifest:      manifest,
		EncryptedData: encryptedData,
		Checksum:      CalculateChecksum(encryptedData),
	}
}

// Validate checks the archive for consistency.
func (a *Archive) Validate() error {
	if a.Version != ArchiveVersion {
		return apperr.WithMessage(ErrInvalidFormat, "unsupported version")
	}
	if len(a.EncryptedData) == 0 {
		return apperr.WithMessage(ErrInvalidFormat, "no encrypted data")
	}
	return VerifyChecksum(a.EncryptedData, a.Checksum)
}
