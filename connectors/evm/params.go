package evm

import (
	"github.com/VelaTrade/dex-lib/common/types"
	"github.com/shopspring/decimal"
)

// chainParams binds a DEX to its chain and V2 contract deployment.
//
// Fields:
// - dex: the exchange identifier.
// - chainID: the EVM chain ID used for transaction signing.
// - router: the default V2 router contract address.
// - factory: the default V2 pair factory contract address.
// - wrappedNative: the wrapped native token used for multi-hop routes.
// - nativeSymbol: the native currency symbol.
// - feeTier: the pool fee fraction charged by the exchange.
type chainParams struct {
	dex           types.DEX
	chainID       uint64
	router        string
	factory       string
	wrappedNative string
	nativeSymbol  string
	feeTier       decimal.Decimal
}

// nativeDecimals is the decimal count of ETH and BNB alike.
const nativeDecimals = 18

var defaultParams = map[types.DEX]chainParams{
	types.Uniswap: {
		dex:           types.Uniswap,
		chainID:       1,
		router:        "0x7a250d5630B4cF539739dF2C5dAcb4c659F2488D",
		factory:       "0x5C69bEe701ef814a2B6a3EDD4B1652CB9cc5aA6f",
		wrappedNative: "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2",
		nativeSymbol:  "ETH",
		feeTier:       decimal.RequireFromString("0.003"),
	},
	types.PancakeSwap: {
		dex:           types.PancakeSwap,
		chainID:       56,
		router:        "0x10ED43C718714eb63d5aA57B78B54704E256024E",
		factory:       "0xcA143Ce32Fe78f1f7019d7d551a6402fC5350c73",
		wrappedNative: "0xbb4CdB9CBd36B01bD1cBaEBF2De08d9173bc095c",
		nativeSymbol:  "BNB",
		feeTier:       decimal.RequireFromString("0.0025"),
	},
}

// paramsFor resolves the chain parameters for a DEX, letting the connector
// configuration override the default contract addresses.
func paramsFor(dex types.DEX, config *types.ConnectorConfig) (chainParams, bool) {
	params, ok := defaultParams[dex]
	if !ok {
		return chainParams{}, false
	}
	if config.RouterAddress != "" {
		params.router = config.RouterAddress
	}
	if config.FactoryAddress != "" {
		params.factory = config.FactoryAddress
	}
	if config.WrappedNative != "" {
		params.wrappedNative = config.WrappedNative
	}
	return params, true
}
