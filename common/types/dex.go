package types

import "strings"

// DEX represents a supported decentralized exchange.
type DEX string

const (
	// Uniswap represents the Uniswap V2 exchange on Ethereum mainnet.
	Uniswap DEX = "uniswap"
	// PancakeSwap represents the PancakeSwap V2 exchange on BNB Chain.
	PancakeSwap DEX = "pancakeswap"
	// Raydium represents the Raydium AMM on Solana.
	Raydium DEX = "raydium"
	// Jupiter represents the Jupiter aggregator on Solana.
	Jupiter DEX = "jupiter"
)

// Network represents the blockchain network a DEX settles on.
type Network string

const (
	// Ethereum represents Ethereum mainnet.
	Ethereum Network = "ethereum"
	// BNBChain represents BNB Chain (formerly Binance Smart Chain).
	BNBChain Network = "bnbchain"
	// Solana represents the Solana chain.
	Solana Network = "solana"
)

// AllDEXes lists every supported exchange. The factory is exhaustive over this set.
var AllDEXes = []DEX{Uniswap, PancakeSwap, Raydium, Jupiter}

// String converts DEX to its canonical lowercase name.
func (d DEX) String() string {
	return string(d)
}

// String converts Network to its wire-form tag.
func (n Network) String() string {
	return string(n)
}

// Network returns the blockchain network the DEX settles on.
// The mapping is total and static.
func (d DEX) Network() Network {
	switch d {
	case Uniswap:
		return Ethereum
	case PancakeSwap:
		return BNBChain
	case Raydium, Jupiter:
		return Solana
	default:
		return ""
	}
}

// ChainID returns the EVM chain ID for EVM-settled exchanges and 0 for the rest.
func (d DEX) ChainID() uint64 {
	switch d {
	case Uniswap:
		return 1
	case PancakeSwap:
		return 56
	default:
		return 0
	}
}

// Valid reports whether d is a member of the supported set.
func (d DEX) Valid() bool {
	switch d {
	case Uniswap, PancakeSwap, Raydium, Jupiter:
		return true
	default:
		return false
	}
}

// ParseDEX converts a wire-form name to a DEX value. Matching is
// case-insensitive and accepts the aliases "pancake" and "jup".
func ParseDEX(s string) (DEX, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case Uniswap.String():
		return Uniswap, true
	case PancakeSwap.String(), "pancake":
		return PancakeSwap, true
	case Raydium.String():
		return Raydium, true
	case Jupiter.String(), "jup":
		return Jupiter, true
	default:
		return "", false
	}
}
