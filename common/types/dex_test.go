package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDEXRoundTrip(t *testing.T) {
	for _, dex := range AllDEXes {
		parsed, ok := ParseDEX(dex.String())
		require.True(t, ok, "canonical name %q must parse", dex)
		assert.Equal(t, dex, parsed)
	}
}

func TestParseDEXCaseInsensitive(t *testing.T) {
	parsed, ok := ParseDEX("  UniSwap ")
	require.True(t, ok)
	assert.Equal(t, Uniswap, parsed)
}

func TestParseDEXAliases(t *testing.T) {
	tests := []struct {
		alias string
		want  DEX
	}{
		{"pancake", PancakeSwap},
		{"PANCAKE", PancakeSwap},
		{"jup", Jupiter},
		{"Jup", Jupiter},
	}

	for _, tt := range tests {
		parsed, ok := ParseDEX(tt.alias)
		require.True(t, ok, "alias %q must parse", tt.alias)
		assert.Equal(t, tt.want, parsed)
	}
}

func TestParseDEXRejectsUnknown(t *testing.T) {
	for _, name := range []string{"", "sushiswap", "uniswapv3", "ray"} {
		_, ok := ParseDEX(name)
		assert.False(t, ok, "%q must not parse", name)
	}
}

func TestNetworkMappingIsTotal(t *testing.T) {
	want := map[DEX]Network{
		Uniswap:     Ethereum,
		PancakeSwap: BNBChain,
		Raydium:     Solana,
		Jupiter:     Solana,
	}

	for _, dex := range AllDEXes {
		assert.Equal(t, want[dex], dex.Network())
		assert.NotEmpty(t, dex.Network().String())
	}
}

func TestChainIDs(t *testing.T) {
	assert.Equal(t, uint64(1), Uniswap.ChainID())
	assert.Equal(t, uint64(56), PancakeSwap.ChainID())
	assert.Zero(t, Raydium.ChainID())
	assert.Zero(t, Jupiter.ChainID())
}

func TestDEXValid(t *testing.T) {
	for _, dex := range AllDEXes {
		assert.True(t, dex.Valid())
	}
	assert.False(t, DEX("sushiswap").Valid())
}
