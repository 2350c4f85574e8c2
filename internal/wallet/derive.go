package wallet

import (
	"crypto/ecdsa"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/tyler-smith/go-bip32"

	"unigate/internal/crypto"
	apperr "unigate/pkg/errors"
)

// DerivationPath is the Ethereum account path used for every custodied
// wallet. Index 0 of the standard BIP44 Ethereum account.
const DerivationPath = "m/44'/60'/0'/0/0"

// Account is a signing key pair derived from a mnemonic. The private key is
// held in secure memory; callers must Destroy the account after use.
type Account struct {
	Address common.Address
	key     *ecdsa.PrivateKey
	raw     *crypto.SecureBytes
}

// PrivateKey returns the ECDSA private key for signing.
// Returns nil after Destroy.
func (a *Account) PrivateKey() *ecdsa.PrivateKey {
	return a.key
}

// Destroy zeros the private key material. Safe to call multiple times.
func (a *Account) Destroy() {
	if a.raw != nil {
		a.raw.Destroy()
	}
	if a.key != nil {
		a.key.D.SetInt64(0)
		a.key = nil
	}
}

// DeriveAccount derives the Ethereum account at DerivationPath from a BIP39
// mnemonic. The same phrase always yields the same address.
func DeriveAccount(mnemonic string) (*Account, error) {
	seed, err := MnemonicToSeed(mnemonic, "")
	if err != nil {
		return nil, err
	}
	defer crypto.ZeroBytes(seed)

	key, err := deriveKeyAtPath(seed)
	if err != nil {
		return nil, err
	}

	raw, err := crypto.SecureBytesFromSlice(key.Key)
	crypto.ZeroBytes(key.Key)
	if err != nil {
		return nil, err
	}

	priv, err := ethcrypto.ToECDSA(raw.Bytes())
	if err != nil {
		raw.Destroy()
		return nil, apperr.Wrap(err, "deriving private key")
	}

	return &Account{
		Address: ethcrypto.PubkeyToAddress(priv.PublicKey),
		key:     priv,
		raw:     raw,
	}, nil
}

// deriveKeyAtPath walks m/44'/60'/0'/0/0 from the master key.
func deriveKeyAtPath(seed []byte) (*bip32.Key, error) {
	master, err := bip32.NewMasterKey(seed)
	if err != nil {
		return nil, apperr.Wrap(err, "creating master key")
	}

	steps := []uint32{
		bip32.FirstHardenedChild + 44,
		bip32.FirstHardenedChild + 60,
		bip32.FirstHardenedChild,
		0,
		0,
	}

	key := master
	for _, step := range steps {
		key, err = key.NewChildKey(step)
		if err != nil {
			return nil, apperr.Wrap(err, "deriving child key")
		}
	}

	return key, nil
}
