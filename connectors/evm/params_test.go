package evm

import (
	"testing"

	"github.com/VelaTrade/dex-lib/common/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParamsForDefaults(t *testing.T) {
	params, ok := paramsFor(types.Uniswap, &types.ConnectorConfig{})
	require.True(t, ok)

	assert.Equal(t, uint64(1), params.chainID)
	assert.Equal(t, "0x7a250d5630B4cF539739dF2C5dAcb4c659F2488D", params.router)
	assert.Equal(t, "ETH", params.nativeSymbol)
	assert.Equal(t, "0.003", params.feeTier.String())

	params, ok = paramsFor(types.PancakeSwap, &types.ConnectorConfig{})
	require.True(t, ok)

	assert.Equal(t, uint64(56), params.chainID)
	assert.Equal(t, "BNB", params.nativeSymbol)
	assert.Equal(t, "0.0025", params.feeTier.String())
}

func TestParamsForConfigOverrides(t *testing.T) {
	params, ok := paramsFor(types.Uniswap, &types.ConnectorConfig{
		RouterAddress:  "0x1111111111111111111111111111111111111111",
		FactoryAddress: "0x2222222222222222222222222222222222222222",
		WrappedNative:  "0x3333333333333333333333333333333333333333",
	})
	require.True(t, ok)

	assert.Equal(t, "0x1111111111111111111111111111111111111111", params.router)
	assert.Equal(t, "0x2222222222222222222222222222222222222222", params.factory)
	assert.Equal(t, "0x3333333333333333333333333333333333333333", params.wrappedNative)
	// The chain binding itself is not overridable.
	assert.Equal(t, uint64(1), params.chainID)
}

func TestParamsForRejectsNonEVMDexes(t *testing.T) {
	for _, dex := range []types.DEX{types.Raydium, types.Jupiter} {
		_, ok := paramsFor(dex, &types.ConnectorConfig{})
		assert.False(t, ok, "%s must not resolve EVM params", dex)
	}
}
