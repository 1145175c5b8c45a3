package solana

import (
	"context"
	"math/big"
	"sort"

	commonerrors "github.com/VelaTrade/dex-lib/common/errors"
	"github.com/VelaTrade/dex-lib/common/types"
	sol "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Client is a thin wrapper over the Solana RPC client that speaks the
// library's value types and error taxonomy.
type Client struct {
	rpc    *rpc.Client
	logger *logrus.Logger
}

// NewClient creates a Solana RPC client for the given endpoint.
func NewClient(rpcURL string, logger *logrus.Logger) *Client {
	return &Client{
		rpc:    rpc.New(rpcURL),
		logger: logger,
	}
}

// RPC exposes the underlying RPC client for connector-specific calls.
func (c *Client) RPC() *rpc.Client {
	return c.rpc
}

// CheckHealth probes the RPC node.
func (c *Client) CheckHealth(ctx context.Context) error {
	out, err := c.rpc.GetHealth(ctx)
	if err != nil {
		return commonerrors.WrapNetwork(err, "chain RPC did not respond")
	}
	if out != rpc.HealthOk {
		return commonerrors.Newf(commonerrors.NetworkError, "chain RPC unhealthy: %s", out)
	}
	return nil
}

// NativeBalance returns the wallet's SOL balance in lamports.
func (c *Client) NativeBalance(ctx context.Context, owner sol.PublicKey) (*big.Int, error) {
	balance, err := c.rpc.GetBalance(ctx, owner, rpc.CommitmentFinalized)
	if err != nil {
		return nil, commonerrors.WrapNetwork(err, "failed to get native balance")
	}
	return new(big.Int).SetUint64(balance.Value), nil
}

// MintDecimals returns the decimal count of an SPL mint. A mint that does not
// resolve yields TokenNotFound.
func (c *Client) MintDecimals(ctx context.Context, mint sol.PublicKey) (uint8, error) {
	supply, err := c.rpc.GetTokenSupply(ctx, mint, rpc.CommitmentFinalized)
	if err != nil {
		if errors.Is(err, rpc.ErrNotFound) {
			return 0, commonerrors.Newf(commonerrors.TokenNotFound, "mint %s does not resolve", mint)
		}
		return 0, commonerrors.WrapNetwork(err, "failed to get token supply")
	}
	return supply.Value.Decimals, nil
}

// TokenBalance returns the wallet's balance of an SPL token. A wallet with no
// token account for the mint holds zero.
func (c *Client) TokenBalance(ctx context.Context, owner, mint sol.PublicKey) (*types.TokenBalance, error) {
	decimals, err := c.MintDecimals(ctx, mint)
	if err != nil {
		return nil, err
	}

	ata, _, err := sol.FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		return nil, commonerrors.Wrap(commonerrors.InternalError, err, "failed to derive associated token address")
	}

	balance, err := c.rpc.GetTokenAccountBalance(ctx, ata, rpc.CommitmentFinalized)
	if err != nil {
		if errors.Is(err, rpc.ErrNotFound) {
			tb := types.NewTokenBalance(mint.String(), shortMint(mint), decimals, big.NewInt(0))
			return &tb, nil
		}
		return nil, commonerrors.WrapNetwork(err, "failed to get token account balance")
	}

	raw, ok := new(big.Int).SetString(balance.Value.Amount, 10)
	if !ok {
		return nil, commonerrors.New(commonerrors.ContractError, "failed to parse token balance")
	}

	tb := types.NewTokenBalance(mint.String(), shortMint(mint), decimals, raw)
	return &tb, nil
}

// SendTransaction signs and broadcasts a transaction, returning its
// signature. Preflight simulation stays enabled so slippage and balance
// violations surface before the transaction lands.
func (c *Client) SendTransaction(ctx context.Context, wallet *Wallet, tx *sol.Transaction) (sol.Signature, error) {
	if err := wallet.Sign(tx); err != nil {
		return sol.Signature{}, err
	}

	sig, err := c.rpc.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		SkipPreflight:       false,
		PreflightCommitment: rpc.CommitmentConfirmed,
	})
	if err != nil {
		return sol.Signature{}, commonerrors.Wrap(commonerrors.TransactionFailed, err, "node rejected transaction")
	}

	c.logger.WithField("signature", sig.String()).Info("Transaction submitted")
	return sig, nil
}

// LatestBlockhash fetches the blockhash transactions must reference.
func (c *Client) LatestBlockhash(ctx context.Context) (sol.Hash, error) {
	result, err := c.rpc.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return sol.Hash{}, commonerrors.WrapNetwork(err, "failed to get latest blockhash")
	}
	return result.Value.Blockhash, nil
}

// SignatureStatus performs a single status lookup for a transaction
// signature. Polling is the caller's concern.
func (c *Client) SignatureStatus(ctx context.Context, signature string) (*types.TransactionStatus, error) {
	if signature == "" {
		return nil, errors.New("transaction signature is empty")
	}

	sig, err := sol.SignatureFromBase58(signature)
	if err != nil {
		return &types.TransactionStatus{State: types.TxUnknown}, nil
	}

	result, err := c.rpc.GetSignatureStatuses(ctx, true, sig)
	if err != nil {
		return nil, commonerrors.WrapNetwork(err, "failed to get signature status")
	}
	if len(result.Value) == 0 || result.Value[0] == nil {
		return &types.TransactionStatus{State: types.TxUnknown}, nil
	}

	status := result.Value[0]
	if status.Err != nil {
		return &types.TransactionStatus{
			State:       types.TxFailed,
			BlockNumber: status.Slot,
			Reason:      "transaction failed on chain",
		}, nil
	}

	switch status.ConfirmationStatus {
	case rpc.ConfirmationStatusFinalized, rpc.ConfirmationStatusConfirmed:
		return &types.TransactionStatus{
			State:       types.TxConfirmed,
			BlockNumber: status.Slot,
		}, nil
	default:
		return &types.TransactionStatus{State: types.TxPending}, nil
	}
}

// PriorityFeeEstimate synthesizes a priority-fee estimate in lamports per
// compute unit as the median of recent prioritization fees.
func (c *Client) PriorityFeeEstimate(ctx context.Context, accounts []sol.PublicKey) (uint64, error) {
	fees, err := c.rpc.GetRecentPrioritizationFees(ctx, accounts)
	if err != nil {
		return 0, commonerrors.WrapNetwork(err, "failed to get recent prioritization fees")
	}
	if len(fees) == 0 {
		return 0, nil
	}

	values := make([]uint64, 0, len(fees))
	for _, fee := range fees {
		values = append(values, fee.PrioritizationFee)
	}
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })

	return values[len(values)/2], nil
}

// shortMint abbreviates a mint address for use as a display symbol; Solana
// mints do not carry symbols on chain.
func shortMint(mint sol.PublicKey) string {
	s := mint.String()
	if len(s) <= 8 {
		return s
	}
	return s[:4] + ".." + s[len(s)-4:]
}
