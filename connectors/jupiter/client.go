package jupiter

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	commonerrors "github.com/VelaTrade/dex-lib/common/errors"
	bin "github.com/gagliardetto/binary"
	sol "github.com/gagliardetto/solana-go"
)

// defaultAggregatorURL is the public Jupiter v6 API endpoint.
const defaultAggregatorURL = "https://quote-api.jup.ag"

// apiClient talks to the Jupiter v6 quote and swap endpoints.
type apiClient struct {
	base string
	http *http.Client
}

// quoteResponse mirrors the Jupiter v6 quote payload. Raw amounts stay as
// strings until converted through the decimal layer.
type quoteResponse struct {
	InputMint            string          `json:"inputMint"`
	OutputMint           string          `json:"outputMint"`
	InAmount             string          `json:"inAmount"`
	OutAmount            string          `json:"outAmount"`
	OtherAmountThreshold string          `json:"otherAmountThreshold"`
	SlippageBps          int             `json:"slippageBps"`
	PriceImpactPct       string          `json:"priceImpactPct"`
	RoutePlan            []routePlanStep `json:"routePlan"`
}

type routePlanStep struct {
	SwapInfo struct {
		Label      string `json:"label"`
		InputMint  string `json:"inputMint"`
		OutputMint string `json:"outputMint"`
	} `json:"swapInfo"`
}

func newAPIClient(base string, timeout time.Duration) *apiClient {
	if base == "" {
		base = defaultAggregatorURL
	}
	return &apiClient{
		base: base,
		http: &http.Client{Timeout: timeout},
	}
}

// getQuote asks the aggregator for the best route. amount is in the input
// mint's smallest unit.
func (a *apiClient) getQuote(ctx context.Context, inputMint, outputMint string, amount uint64, slippageBps int) (*quoteResponse, error) {
	q := url.Values{}
	q.Set("inputMint", inputMint)
	q.Set("outputMint", outputMint)
	q.Set("amount", fmt.Sprintf("%d", amount))
	q.Set("slippageBps", fmt.Sprintf("%d", slippageBps))
	q.Set("onlyDirectRoutes", "false")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.base+"/v6/quote?"+q.Encode(), nil)
	if err != nil {
		return nil, commonerrors.Wrap(commonerrors.InternalError, err, "failed to build quote request")
	}

	resp, err := a.http.Do(req)
	if err != nil {
		return nil, commonerrors.WrapNetwork(err, "aggregator quote request failed")
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusBadRequest, http.StatusNotFound:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, commonerrors.Newf(commonerrors.PoolNotFound, "aggregator found no route: %s", string(body))
	default:
		return nil, commonerrors.Newf(commonerrors.NetworkError, "aggregator quote status %d", resp.StatusCode)
	}

	var out quoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, commonerrors.WrapNetwork(err, "failed to decode quote response")
	}
	return &out, nil
}

// buildSwapTransaction asks the aggregator for a ready-to-sign transaction
// for a previously fetched quote and decodes it.
func (a *apiClient) buildSwapTransaction(ctx context.Context, owner sol.PublicKey, quote *quoteResponse) (*sol.Transaction, error) {
	payload := map[string]interface{}{
		"userPublicKey":       owner.String(),
		"wrapAndUnwrapSol":    true,
		"asLegacyTransaction": false,
		"quoteResponse":       quote,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, commonerrors.Wrap(commonerrors.InternalError, err, "failed to marshal swap request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.base+"/v6/swap", bytes.NewReader(body))
	if err != nil {
		return nil, commonerrors.Wrap(commonerrors.InternalError, err, "failed to build swap request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.http.Do(req)
	if err != nil {
		return nil, commonerrors.WrapNetwork(err, "aggregator swap request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, commonerrors.Newf(commonerrors.NetworkError, "aggregator swap status %d", resp.StatusCode)
	}

	var sr struct {
		SwapTransaction string `json:"swapTransaction"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, commonerrors.WrapNetwork(err, "failed to decode swap response")
	}

	raw, err := base64.StdEncoding.DecodeString(sr.SwapTransaction)
	if err != nil {
		return nil, commonerrors.Wrap(commonerrors.ContractError, err, "failed to decode swap transaction")
	}

	tx, err := sol.TransactionFromDecoder(bin.NewBinDecoder(raw))
	if err != nil {
		return nil, commonerrors.Wrap(commonerrors.ContractError, err, "failed to unmarshal swap transaction")
	}
	return tx, nil
}
