// Package crypto implements the mnemonic cipher: AES-256-CBC encryption of a
// phrase under a PBKDF2 password-derived key, plus secure memory handling for
// the decrypted plaintext.
//
//nolint:revive // Internal package name is intentional
package crypto

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"io"
	"unicode/utf8"

	"golang.org/x/crypto/pbkdf2"

	apperr "unigate/pkg/errors"
)

const (
	// kdfIterations is the PBKDF2 iteration count. Fixed: changing it breaks
	// decryption of every stored record.
	kdfIterations = 10000

	// keyLen is the derived AES-256 key length in bytes.
	keyLen = 32

	// saltLen is the random salt length in bytes, unique per record.
	saltLen = 16

	// ivLen is the CBC initialization vector length in bytes, unique per
	// encryption operation. Equal to the AES block size.
	ivLen = 16
)

// Record holds the output of one encryption operation, base64-encoded for
// storage as opaque text columns.
type Record struct {
	Ciphertext string
	Salt       string
	IV         string
}

// Encrypt encrypts phrase under a key derived from password. A fresh random
// salt and IV are generated on every call; encrypting the same inputs twice
// never produces the same output.
func Encrypt(phrase, password string) (*Record, error) {
	salt := make([]byte, saltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, apperr.Wrap(err, "generating salt")
	}

	iv := make([]byte, ivLen)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return nil, apperr.Wrap(err, "generating iv")
	}

	key := deriveKey(password, salt)
	defer ZeroBytes(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, apperr.Wrap(err, "creating cipher")
	}

	plaintext := pkcs7Pad([]byte(phrase), aes.BlockSize)
	defer ZeroBytes(plaintext)

	ciphertext := make([]byte, len(plaintext))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, plaintext)

	return &Record{
		Ciphertext: base64.StdEncoding.EncodeToString(ciphertext),
		Salt:       base64.StdEncoding.EncodeToString(salt),
		IV:         base64.StdEncoding.EncodeToString(iv),
	}, nil
}

// Decrypt reverses Encrypt using the stored salt and iv. A wrong password
// yields ErrDecryptFailed in virtually every case (the PKCS#7 padding check
// fails); the residual case where a wrong key produces valid padding returns
// garbage that cannot pass downstream mnemonic validation. The returned
// plaintext lives in secure memory; the caller must Destroy it.
func Decrypt(ciphertext, salt, iv, password string) (*SecureBytes, error) {
	ct, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrDecryptFailed, "decoding ciphertext")
	}
	saltBytes, err := base64.StdEncoding.DecodeString(salt)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrDecryptFailed, "decoding salt")
	}
	ivBytes, err := base64.StdEncoding.DecodeString(iv)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrDecryptFailed, "decoding iv")
	}

	if len(ct) == 0 || len(ct)%aes.BlockSize != 0 || len(ivBytes) != ivLen {
		return nil, apperr.ErrDecryptFailed
	}

	key := deriveKey(password, saltBytes)
	defer ZeroBytes(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, apperr.Wrap(err, "creating cipher")
	}

	plaintext := make([]byte, len(ct))
	cipher.NewCBCDecrypter(block, ivBytes).CryptBlocks(plaintext, ct)

	unpadded, err := pkcs7Unpad(plaintext, aes.BlockSize)
	if err != nil {
		ZeroBytes(plaintext)
		return nil, apperr.ErrDecryptFailed
	}

	if !utf8.Valid(unpadded) {
		ZeroBytes(plaintext)
		return nil, apperr.ErrDecryptFailed
	}

	sb, err := SecureBytesFromSlice(unpadded)
	ZeroBytes(plaintext)
	if err != nil {
		return nil, err
	}

	return sb, nil
}

// deriveKey stretches password+salt into an AES-256 key.
func deriveKey(password string, salt []byte) []byte {
	return pbkdf2.Key([]byte(password), salt, kdfIterations, keyLen, sha256.New)
}

// pkcs7Pad appends PKCS#7 padding to fill a whole number of blocks.
func pkcs7Pad(data []byte, blockSize int) []byte {
	padLen := blockSize - len(data)%blockSize
	padded := make([]byte, len(data)+padLen)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(padLen)
	}
	return padded
}

// pkcs7Unpad validates and strips PKCS#7 padding.
func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, apperr.ErrDecryptFailed
	}

	padLen := int(data[len(data)-1])
	if padLen == 0 || padLen > blockSize || padLen > len(data) {
		return nil, apperr.ErrDecryptFailed
	}

	pad := data[len(data)-padLen:]
	if !bytes.Equal(pad, bytes.Repeat([]byte{byte(padLen)}, padLen)) {
		return nil, apperr.ErrDecryptFailed
	}

	return data[:len(data)-padLen], nil
}
