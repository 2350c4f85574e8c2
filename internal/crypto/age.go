package crypto

import (
	"bytes"
	"io"

	"filippo.io/age"

	apperr "unigate/pkg/errors"
)

// EncryptArchive encrypts an export blob using age with a passphrase-based
// recipient. Unlike the per-wallet cipher, archives use the age format so
// they can be opened with standard tooling.
func EncryptArchive(plaintext []byte, passphrase string) ([]byte, error) {
	recipient, err := age.NewScryptRecipient(passphrase)
	if err != nil {
		return nil, apperr.Wrap(err, "creating scrypt recipient")
	}

	buf := &bytes.Buffer{}
	w, err := age.Encrypt(buf, recipient)
	if err != nil {
		return nil, apperr.Wrap(err, "initializing encryption")
	}

	if _, err := w.Write(plaintext); err != nil {
		return nil, apperr.Wrap(err, "writing encrypted data")
	}

	if err := w.Close(); err != nil {
		return nil, apperr.Wrap(err, "finalizing encryption")
	}

	return buf.Bytes(), nil
}

// DecryptArchive decrypts an age archive with a passphrase-based identity.
func DecryptArchive(ciphertext []byte, passphrase string) ([]byte, error) {
	identity, err := age.NewScryptIdentity(passphrase)
	if err != nil {
		return nil, apperr.Wrap(err, "creating scrypt identity")
	}

	r, err := age.Decrypt(bytes.NewReader(ciphertext), identity)
	if err != nil {
		return nil, apperr.WithMessage(apperr.ErrDecryptFailed, "wrong passphrase or corrupted archive")
	}

	plaintext, err := io.ReadAll(r)
	if err != nil {
		return nil, apperr.Wrap(err, "reading decrypted data")
	}

	return plaintext, nil
}
