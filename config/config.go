// Package config loads the dexd service configuration.
package config

import (
	"strings"
	"time"

	"github.com/VelaTrade/dex-lib/common/types"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// WalletConfig holds one network's signing credentials. Private keys arrive
// through the environment in deployments; the file form exists for local runs.
type WalletConfig struct {
	PrivateKey string `mapstructure:"private_key"`
	Address    string `mapstructure:"address"`
}

// PoolConfig mirrors types.PoolConfig in file form.
type PoolConfig struct {
	PoolID     string `mapstructure:"pool_id"`
	Authority  string `mapstructure:"authority"`
	TokenA     string `mapstructure:"token_a"`
	TokenB     string `mapstructure:"token_b"`
	VaultA     string `mapstructure:"vault_a"`
	VaultB     string `mapstructure:"vault_b"`
	LPMint     string `mapstructure:"lp_mint"`
	FeeTier    string `mapstructure:"fee_tier"`
	OpenOrders string `mapstructure:"open_orders"`
}

// ConnectorSettings configures one exchange's connector.
type ConnectorSettings struct {
	RpcUrl         string        `mapstructure:"rpc_url"`
	Timeout        time.Duration `mapstructure:"timeout"`
	TrackedTokens  []string      `mapstructure:"tracked_tokens"`
	RouterAddress  string        `mapstructure:"router_address"`
	FactoryAddress string        `mapstructure:"factory_address"`
	WrappedNative  string        `mapstructure:"wrapped_native"`
	AggregatorUrl  string        `mapstructure:"aggregator_url"`
	Pools          []PoolConfig  `mapstructure:"pools"`
}

// SessionConfig configures the session tracking middleware and recorder.
type SessionConfig struct {
	TrustedProxyHeaders []string `mapstructure:"trusted_proxy_headers"`
	RecorderQueueSize   int      `mapstructure:"recorder_queue_size"`
}

// Config is the full dexd service configuration.
type Config struct {
	ListenAddr  string                       `mapstructure:"listen_addr"`
	DatabaseURL string                       `mapstructure:"database_url"`
	LogLevel    string                       `mapstructure:"log_level"`
	Wallets     map[string]WalletConfig      `mapstructure:"wallets"`
	Connectors  map[string]ConnectorSettings `mapstructure:"connectors"`
	Session     SessionConfig                `mapstructure:"session"`
}

// Load reads configuration from the given file (optional) and the
// environment. Environment variables use the DEXD prefix with underscores,
// e.g. DEXD_LISTEN_ADDR.
//
// Parameters:
// - path: the configuration file path; empty skips file loading.
//
// Returns:
// - *Config: the loaded and validated configuration.
// - error: an error if reading or validation fails.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("log_level", "info")
	// Registered with an empty default so DEXD_DATABASE_URL is picked up.
	v.SetDefault("database_url", "")
	v.SetDefault("session.recorder_queue_size", 1024)
	v.SetDefault("session.trusted_proxy_headers", []string{"CF-Connecting-IP", "X-Real-IP", "X-Forwarded-For"})

	v.SetEnvPrefix("DEXD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrap(err, "failed to read config file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the service has a listen address and a session
// database, and that every configured connector names a supported exchange,
// carries an RPC endpoint and has credentials for its network.
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return errors.New("listen_addr must not be empty")
	}
	if c.DatabaseURL == "" {
		return errors.New("database_url must not be empty; session tracking requires it")
	}

	for name, settings := range c.Connectors {
		dex, ok := types.ParseDEX(name)
		if !ok {
			return errors.Errorf("unknown dex in connectors section: %s", name)
		}
		if settings.RpcUrl == "" {
			return errors.Errorf("connector %s has no rpc_url", dex)
		}
		if _, ok := c.Wallets[dex.Network().String()]; !ok {
			return errors.Errorf("connector %s has no wallet for network %s", dex, dex.Network())
		}
	}
	return nil
}

// ConnectorConfig converts one exchange's settings into the library form.
func (s ConnectorSettings) ConnectorConfig() *types.ConnectorConfig {
	pools := make([]types.PoolConfig, 0, len(s.Pools))
	for _, p := range s.Pools {
		pools = append(pools, types.PoolConfig{
			PoolID:     p.PoolID,
			Authority:  p.Authority,
			TokenA:     p.TokenA,
			TokenB:     p.TokenB,
			VaultA:     p.VaultA,
			VaultB:     p.VaultB,
			LPMint:     p.LPMint,
			FeeTier:    p.FeeTier,
			OpenOrders: p.OpenOrders,
		})
	}

	return &types.ConnectorConfig{
		RpcUrl:         s.RpcUrl,
		Timeout:        s.Timeout,
		TrackedTokens:  s.TrackedTokens,
		RouterAddress:  s.RouterAddress,
		FactoryAddress: s.FactoryAddress,
		WrappedNative:  s.WrappedNative,
		AggregatorUrl:  s.AggregatorUrl,
		Pools:          pools,
	}
}
