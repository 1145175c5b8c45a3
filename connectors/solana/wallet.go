// Package solana holds the chain plumbing shared by the Raydium and Jupiter
// connectors: wallet signing, balance reads and transaction submission.
package solana

import (
	commonerrors "github.com/VelaTrade/dex-lib/common/errors"
	"github.com/VelaTrade/dex-lib/common/types"
	sol "github.com/gagliardetto/solana-go"
)

// Wallet wraps a Solana keypair. Immutable after construction; the private
// key never leaves the struct.
type Wallet struct {
	key    sol.PrivateKey
	pubKey sol.PublicKey
}

// NewWallet creates a wallet from credentials. The base58 private key must
// derive the declared wallet address.
func NewWallet(creds types.WalletCredentials) (*Wallet, error) {
	key, err := sol.PrivateKeyFromBase58(creds.PrivateKey())
	if err != nil {
		return nil, commonerrors.Wrap(commonerrors.InvalidCredentials, err, "failed to decode private key")
	}

	declared, err := sol.PublicKeyFromBase58(creds.Address())
	if err != nil {
		return nil, commonerrors.Wrap(commonerrors.InvalidCredentials, err, "failed to parse wallet address")
	}

	if !key.PublicKey().Equals(declared) {
		return nil, commonerrors.New(commonerrors.InvalidCredentials, "private key does not match wallet address")
	}

	return &Wallet{key: key, pubKey: declared}, nil
}

// PublicKey returns the wallet's public key.
func (w *Wallet) PublicKey() sol.PublicKey {
	return w.pubKey
}

// Sign signs every signature slot of the transaction owned by this wallet.
func (w *Wallet) Sign(tx *sol.Transaction) error {
	_, err := tx.Sign(func(key sol.PublicKey) *sol.PrivateKey {
		if key.Equals(w.pubKey) {
			return &w.key
		}
		return nil
	})
	if err != nil {
		return commonerrors.Wrap(commonerrors.InternalError, err, "failed to sign transaction")
	}
	return nil
}
