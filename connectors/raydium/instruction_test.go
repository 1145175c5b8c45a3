package raydium

import (
	"encoding/binary"
	"testing"

	sol "github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPool(t *testing.T) *pool {
	t.Helper()
	p, err := parsePoolConfig(testPoolConfig())
	require.NoError(t, err)
	return p
}

func TestBuildSwapInstructionDataLayout(t *testing.T) {
	p := testPool(t)
	owner := sol.NewWallet().PublicKey()

	ix := buildSwapInstruction(p, owner, p.vaultA, p.vaultB, p.vaultA, p.vaultB, 1_000_000, 495_000)

	assert.True(t, ix.ProgramID().Equals(ammProgramID))

	data, err := ix.Data()
	require.NoError(t, err)
	require.Len(t, data, 17)
	assert.Equal(t, swapBaseInInstruction, data[0])
	assert.Equal(t, uint64(1_000_000), binary.LittleEndian.Uint64(data[1:9]))
	assert.Equal(t, uint64(495_000), binary.LittleEndian.Uint64(data[9:17]))
}

func TestBuildSwapInstructionAccountRoles(t *testing.T) {
	p := testPool(t)
	owner := sol.NewWallet().PublicKey()

	ix := buildSwapInstruction(p, owner, p.vaultA, p.vaultB, p.vaultA, p.vaultB, 1, 1)
	accounts := ix.Accounts()
	require.NotEmpty(t, accounts)

	// The token program leads and only the owner signs.
	assert.True(t, accounts[0].PublicKey.Equals(sol.TokenProgramID))
	var signers int
	for _, meta := range accounts {
		if meta.IsSigner {
			signers++
			assert.True(t, meta.PublicKey.Equals(owner))
		}
	}
	assert.Equal(t, 1, signers)
}

func TestBuildDepositInstructionDataLayout(t *testing.T) {
	p := testPool(t)
	owner := sol.NewWallet().PublicKey()

	ix := buildDepositInstruction(p, owner, p.vaultA, p.vaultB, p.lpMint, 10, 20)

	data, err := ix.Data()
	require.NoError(t, err)
	require.Len(t, data, 17)
	assert.Equal(t, depositInstruction, data[0])
	assert.Equal(t, uint64(10), binary.LittleEndian.Uint64(data[1:9]))
	assert.Equal(t, uint64(20), binary.LittleEndian.Uint64(data[9:17]))
}

func TestBuildWithdrawInstructionDataLayout(t *testing.T) {
	p := testPool(t)
	owner := sol.NewWallet().PublicKey()

	ix := buildWithdrawInstruction(p, owner, p.vaultA, p.vaultB, p.lpMint, 12345)

	data, err := ix.Data()
	require.NoError(t, err)
	require.Len(t, data, 9)
	assert.Equal(t, withdrawInstruction, data[0])
	assert.Equal(t, uint64(12345), binary.LittleEndian.Uint64(data[1:9]))
}
