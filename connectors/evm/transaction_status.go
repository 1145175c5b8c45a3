package evm

import (
	"context"

	commonerrors "github.com/VelaTrade/dex-lib/common/errors"
	"github.com/VelaTrade/dex-lib/common/types"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
)

// GetTransactionStatus performs a single receipt lookup. Polling is the
// caller's responsibility; the connector never loops.
func (c *connector) GetTransactionStatus(ctx context.Context, txHash string) (*types.TransactionStatus, error) {
	if txHash == "" {
		return nil, errors.New("transaction hash is empty")
	}

	client := c.getClient()
	if client == nil {
		return nil, commonerrors.New(commonerrors.InternalError, "client not initialized")
	}

	ctx, cancel := c.callTimeout(ctx)
	defer cancel()

	hash := common.HexToHash(txHash)
	receipt, err := client.TransactionReceipt(ctx, hash)
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			// No receipt: either still in the mempool or unknown to the node.
			_, isPending, err := client.TransactionByHash(ctx, hash)
			if err != nil {
				if errors.Is(err, ethereum.NotFound) {
					return &types.TransactionStatus{State: types.TxUnknown}, nil
				}
				return nil, commonerrors.WrapNetwork(err, "failed to get transaction by hash")
			}
			if isPending {
				return &types.TransactionStatus{State: types.TxPending}, nil
			}
			return &types.TransactionStatus{State: types.TxUnknown}, nil
		}
		return nil, commonerrors.WrapNetwork(err, "failed to get transaction receipt")
	}

	if receipt.Status == ethtypes.ReceiptStatusSuccessful {
		return &types.TransactionStatus{
			State:       types.TxConfirmed,
			BlockNumber: receipt.BlockNumber.Uint64(),
			GasUsed:     receipt.GasUsed,
		}, nil
	}

	return &types.TransactionStatus{
		State:       types.TxFailed,
		BlockNumber: receipt.BlockNumber.Uint64(),
		GasUsed:     receipt.GasUsed,
		Reason:      "transaction reverted",
	}, nil
}
