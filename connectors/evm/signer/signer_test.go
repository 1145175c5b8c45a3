package signer

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Well-known test vector: the first Hardhat development account.
const (
	testPrivateKey  = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	testAddressHex  = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
	testChainIDMain = 1
)

func TestNewSignerFromHexDerivesAddress(t *testing.T) {
	s, err := NewSignerFromHex(testPrivateKey)
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress(testAddressHex), s.Address())
}

func TestNewSignerFromHexAccepts0xPrefix(t *testing.T) {
	s, err := NewSignerFromHex("0x" + testPrivateKey)
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress(testAddressHex), s.Address())
}

func TestNewSignerFromHexRejectsGarbage(t *testing.T) {
	_, err := NewSignerFromHex("not-a-key")
	assert.Error(t, err)
}

func TestSignTxProducesRecoverableSignature(t *testing.T) {
	s, err := NewSignerFromHex(testPrivateKey)
	require.NoError(t, err)

	chainID := big.NewInt(testChainIDMain)
	to := common.HexToAddress("0x0000000000000000000000000000000000000001")
	tx := ethtypes.NewTx(&ethtypes.DynamicFeeTx{
		ChainID:   chainID,
		Nonce:     0,
		GasTipCap: big.NewInt(1),
		GasFeeCap: big.NewInt(100),
		Gas:       21000,
		To:        &to,
		Value:     big.NewInt(1),
	})

	signed, err := s.SignTx(tx, chainID)
	require.NoError(t, err)

	sender, err := ethtypes.Sender(ethtypes.LatestSignerForChainID(chainID), signed)
	require.NoError(t, err)
	assert.Equal(t, s.Address(), sender)
}
