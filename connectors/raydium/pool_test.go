package raydium

import (
	"testing"

	"github.com/VelaTrade/dex-lib/common/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Mainnet SOL/USDC pool accounts, used as structurally valid fixtures.
func testPoolConfig() types.PoolConfig {
	return types.PoolConfig{
		PoolID:     "58oQChx4yWmvKdwLLZzBi4ChoCc2fqCUWBkwMihLYQo2",
		Authority:  "5Q544fKrFoe6tsEbD7S8EmxGTJYAKtTVhAW5Q5pge4j1",
		TokenA:     "So11111111111111111111111111111111111111112",
		TokenB:     "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
		VaultA:     "DQyrAcCrDXQ7NeoqGgDCZwBvWDcYmFCjSb9JtteuvPpz",
		VaultB:     "HLmqeL62xR1QoZ1HKKbXRrdN1p3phKpxRMb2VVopvBBz",
		LPMint:     "8HoQnePLqPj4M7PUDzfw8e3Ymdwgc7NUGnaGPr3YQ13n",
		FeeTier:    "0.0025",
		OpenOrders: "HRk9CMrpq7Jn9sh7mzxE8CChHG8dneX9p475QKz4Fsfc",
	}
}

func TestBuildPoolTableKeysAreOrderIndependent(t *testing.T) {
	table, err := buildPoolTable([]types.PoolConfig{testPoolConfig()})
	require.NoError(t, err)
	require.Len(t, table, 1)

	c := &connector{pools: table}

	forward, err := c.poolFor("So11111111111111111111111111111111111111112", "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")
	require.NoError(t, err)

	reversed, err := c.poolFor("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", "So11111111111111111111111111111111111111112")
	require.NoError(t, err)

	assert.Same(t, forward, reversed)
	assert.Equal(t, "0.0025", forward.feeTier.String())
}

func TestPoolForUnknownPair(t *testing.T) {
	c := &connector{pools: map[[2]string]*pool{}}

	_, err := c.poolFor("So11111111111111111111111111111111111111112", "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no configured pool")
}

func TestParsePoolConfigDefaultsFeeTier(t *testing.T) {
	cfg := testPoolConfig()
	cfg.FeeTier = ""

	p, err := parsePoolConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, "0.0025", p.feeTier.String())
}

func TestParsePoolConfigRejectsMalformedAccounts(t *testing.T) {
	cfg := testPoolConfig()
	cfg.VaultA = "not-a-pubkey"

	_, err := parsePoolConfig(cfg)
	assert.Error(t, err)
}
