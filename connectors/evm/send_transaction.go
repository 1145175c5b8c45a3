package evm

import (
	"context"
	"math/big"

	commonerrors "github.com/VelaTrade/dex-lib/common/errors"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/sirupsen/logrus"
)

// baseFeeBufferPercent pads the current base fee so the transaction survives
// a few blocks of base-fee growth.
const baseFeeBufferPercent = 130

// gasFees holds the EIP-1559 fee caps for a transaction.
type gasFees struct {
	maxFeePerGas         *big.Int
	maxPriorityFeePerGas *big.Int
}

// suggestGasFees retrieves EIP-1559 fee caps: the suggested tip plus the
// current base fee buffered to 130%.
func (c *connector) suggestGasFees(ctx context.Context) (*gasFees, error) {
	client := c.getClient()
	if client == nil {
		return nil, commonerrors.New(commonerrors.InternalError, "client not initialized")
	}

	tip, err := client.SuggestGasTipCap(ctx)
	if err != nil {
		c.logger.WithError(err).Error("Failed to get suggested gas tip")
		tip = big.NewInt(1)
	}
	if tip.Sign() == 0 {
		tip = big.NewInt(1)
	}

	header, err := client.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, commonerrors.WrapNetwork(err, "failed to get header by number")
	}
	if header.BaseFee == nil {
		return nil, commonerrors.New(commonerrors.NetworkError, "base fee is nil")
	}

	baseFeeBuf := new(big.Int).Mul(header.BaseFee, big.NewInt(baseFeeBufferPercent))
	baseFeeBuf.Div(baseFeeBuf, big.NewInt(100))
	maxFee := new(big.Int).Add(baseFeeBuf, tip)

	return &gasFees{maxFeePerGas: maxFee, maxPriorityFeePerGas: tip}, nil
}

// submitTransaction estimates gas for a contract call, signs it with the
// connector's wallet and broadcasts it. Cancellation after broadcast does not
// recall the transaction.
func (c *connector) submitTransaction(ctx context.Context, to common.Address, value *big.Int, data []byte) (*ethtypes.Transaction, error) {
	client := c.getClient()
	if client == nil {
		return nil, commonerrors.New(commonerrors.InternalError, "client not initialized")
	}

	gasLimit, err := client.EstimateGas(ctx, ethereum.CallMsg{
		From:  c.wallet,
		To:    &to,
		Value: value,
		Data:  data,
	})
	if err != nil {
		return nil, commonerrors.Wrap(commonerrors.GasEstimationFailed, err, "gas estimation reverted")
	}

	fees, err := c.suggestGasFees(ctx)
	if err != nil {
		return nil, err
	}

	nonce, err := c.nextNonce(ctx)
	if err != nil {
		return nil, err
	}

	tx := ethtypes.NewTx(&ethtypes.DynamicFeeTx{
		ChainID:   new(big.Int).SetUint64(c.params.chainID),
		Nonce:     nonce,
		GasTipCap: fees.maxPriorityFeePerGas,
		GasFeeCap: fees.maxFeePerGas,
		Gas:       gasLimit,
		To:        &to,
		Value:     value,
		Data:      data,
	})

	signedTx, err := c.signer.SignTx(tx, new(big.Int).SetUint64(c.params.chainID))
	if err != nil {
		return nil, commonerrors.Wrap(commonerrors.InternalError, err, "failed to sign transaction")
	}

	if err := client.SendTransaction(ctx, signedTx); err != nil {
		return nil, commonerrors.Wrap(commonerrors.TransactionFailed, err, "node rejected transaction")
	}

	c.logger.WithFields(logrus.Fields{
		"dex":    c.params.dex,
		"txHash": signedTx.Hash().Hex(),
		"nonce":  nonce,
	}).Info("Transaction submitted")

	return signedTx, nil
}

// ensureAllowance submits an approval when the router's current allowance
// cannot cover the amount. The approval rides one nonce ahead of the
// transaction that needs it.
func (c *connector) ensureAllowance(ctx context.Context, token common.Address, amount *big.Int) error {
	router := common.HexToAddress(c.params.router)

	allowance, err := c.erc20Allowance(ctx, token, c.wallet, router)
	if err != nil {
		return err
	}
	if allowance.Cmp(amount) >= 0 {
		return nil
	}

	erc20, _, _, _, err := contractABIs()
	if err != nil {
		return commonerrors.Wrap(commonerrors.InternalError, err, "failed to parse token ABI")
	}

	data, err := erc20.Pack("approve", router, amount)
	if err != nil {
		return commonerrors.Wrap(commonerrors.InternalError, err, "failed to pack approve data")
	}

	approveTx, err := c.submitTransaction(ctx, token, big.NewInt(0), data)
	if err != nil {
		return err
	}

	c.logger.WithFields(logrus.Fields{
		"token":  token.Hex(),
		"txHash": approveTx.Hash().Hex(),
	}).Info("Approval submitted")

	return nil
}
