package signer

import (
	"crypto/ecdsa"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
)

// Signer signs EVM transactions with a wallet's private key and exposes the
// derived address. Implementations are immutable after construction.
type Signer interface {
	// SignTx signs the given transaction with the specified chain ID and
	// returns the signed transaction.
	//
	// Parameters:
	// - transaction: the transaction to be signed.
	// - chainID: the chain ID for the transaction.
	//
	// Returns:
	// - *ethtypes.Transaction: the signed transaction.
	// - error: an error if the signing process fails.
	SignTx(transaction *ethtypes.Transaction, chainID *big.Int) (*ethtypes.Transaction, error)

	// Address returns the signer's address.
	Address() common.Address
}

type signer struct {
	privateKey *ecdsa.PrivateKey
	address    common.Address
}

// NewSignerFromHex creates a signer from a hex-encoded private key. A leading
// 0x prefix is accepted.
//
// Parameters:
// - privateKeyHex: the hex-encoded private key.
//
// Returns:
// - Signer: a new signer instance.
// - error: an error if the private key does not decode.
func NewSignerFromHex(privateKeyHex string) (Signer, error) {
	privKey, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse private key")
	}

	pubKey, ok := privKey.Public().(*ecdsa.PublicKey)
	if !ok {
		return nil, errors.New("cannot assign public key to ECDSA")
	}

	return &signer{
		privateKey: privKey,
		address:    crypto.PubkeyToAddress(*pubKey),
	}, nil
}

// Address returns the signer's address.
func (s *signer) Address() common.Address {
	return s.address
}

// SignTx signs the given transaction with the specified chain ID and returns
// the signed transaction.
func (s *signer) SignTx(tx *ethtypes.Transaction, chainID *big.Int) (*ethtypes.Transaction, error) {
	auth, err := bind.NewKeyedTransactorWithChainID(s.privateKey, chainID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create keyed transactor")
	}

	signedTx, err := auth.Signer(s.address, tx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to sign transaction")
	}

	return signedTx, nil
}
