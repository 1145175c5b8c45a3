package jupiter

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	commonerrors "github.com/VelaTrade/dex-lib/common/errors"
	sol "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	wsolMint = "So11111111111111111111111111111111111111112"
	usdcMint = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
)

func TestGetQuote(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v6/quote", r.URL.Path)
		require.Equal(t, wsolMint, r.URL.Query().Get("inputMint"))
		require.Equal(t, usdcMint, r.URL.Query().Get("outputMint"))
		require.Equal(t, "1000000000", r.URL.Query().Get("amount"))
		require.Equal(t, "50", r.URL.Query().Get("slippageBps"))

		_ = json.NewEncoder(w).Encode(quoteResponse{
			InputMint:            wsolMint,
			OutputMint:           usdcMint,
			InAmount:             "1000000000",
			OutAmount:            "150000000",
			OtherAmountThreshold: "149250000",
			SlippageBps:          50,
		})
	}))
	defer server.Close()

	client := newAPIClient(server.URL, 5*time.Second)

	quote, err := client.getQuote(context.Background(), wsolMint, usdcMint, 1_000_000_000, 50)
	require.NoError(t, err)
	assert.Equal(t, "150000000", quote.OutAmount)
	assert.Equal(t, 50, quote.SlippageBps)
}

func TestGetQuoteNoRoute(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"no route found"}`, http.StatusBadRequest)
	}))
	defer server.Close()

	client := newAPIClient(server.URL, 5*time.Second)

	_, err := client.getQuote(context.Background(), wsolMint, usdcMint, 1, 50)
	require.Error(t, err)
	assert.Equal(t, commonerrors.PoolNotFound, commonerrors.KindOf(err))
}

func TestGetQuoteUpstreamFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := newAPIClient(server.URL, 5*time.Second)

	_, err := client.getQuote(context.Background(), wsolMint, usdcMint, 1, 50)
	require.Error(t, err)
	assert.Equal(t, commonerrors.NetworkError, commonerrors.KindOf(err))
}

func TestBuildSwapTransaction(t *testing.T) {
	owner := sol.NewWallet()

	// Serve a structurally valid transaction the way the aggregator does.
	transfer := system.NewTransferInstruction(1, owner.PublicKey(), owner.PublicKey()).Build()
	tx, err := sol.NewTransaction([]sol.Instruction{transfer}, sol.Hash{}, sol.TransactionPayer(owner.PublicKey()))
	require.NoError(t, err)

	raw, err := tx.MarshalBinary()
	require.NoError(t, err)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v6/swap", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)

		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.Equal(t, owner.PublicKey().String(), payload["userPublicKey"])

		_ = json.NewEncoder(w).Encode(map[string]string{
			"swapTransaction": base64.StdEncoding.EncodeToString(raw),
		})
	}))
	defer server.Close()

	client := newAPIClient(server.URL, 5*time.Second)

	decoded, err := client.buildSwapTransaction(context.Background(), owner.PublicKey(), &quoteResponse{})
	require.NoError(t, err)
	require.Len(t, decoded.Message.Instructions, 1)
	assert.True(t, decoded.Message.AccountKeys[0].Equals(owner.PublicKey()))
}

func TestBuildSwapTransactionRejectsBadBase64(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"swapTransaction": "not base64!!!"})
	}))
	defer server.Close()

	client := newAPIClient(server.URL, 5*time.Second)

	_, err := client.buildSwapTransaction(context.Background(), sol.NewWallet().PublicKey(), &quoteResponse{})
	require.Error(t, err)
	assert.Equal(t, commonerrors.ContractError, commonerrors.KindOf(err))
}
