package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	commonerrors "github.com/VelaTrade/dex-lib/common/errors"
	"github.com/VelaTrade/dex-lib/common/types"
	"github.com/VelaTrade/dex-lib/connectormanager"
	"github.com/VelaTrade/dex-lib/session"
	"github.com/VelaTrade/dex-lib/telemetry"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubRegistry serves a fixed connector set.
type stubRegistry struct {
	connectors map[types.DEX]types.Connector
}

func (s *stubRegistry) Add(context.Context, types.DEX, types.WalletCredentials, *types.ConnectorConfig) error {
	return nil
}
func (s *stubRegistry) Get(dex types.DEX) types.Connector { return s.connectors[dex] }
func (s *stubRegistry) Remove(types.DEX)                  {}
func (s *stubRegistry) Shutdown()                         {}

type stubQuoter struct {
	quote *types.SwapQuote
	err   error
}

func (s stubQuoter) GetSwapQuote(context.Context, string, string, decimal.Decimal, decimal.Decimal) (*types.SwapQuote, error) {
	return s.quote, s.err
}

type stubSwapper struct {
	tx  *types.Transaction
	err error
}

func (s stubSwapper) ExecuteSwap(context.Context, string, string, decimal.Decimal, decimal.Decimal) (*types.Transaction, error) {
	return s.tx, s.err
}

type stubLiquidity struct{}

func (stubLiquidity) AddLiquidity(context.Context, string, string, decimal.Decimal, decimal.Decimal, decimal.Decimal) (*types.Transaction, error) {
	return nil, commonerrors.New(commonerrors.InternalError, "connector must not be reached")
}

func (stubLiquidity) RemoveLiquidity(context.Context, string, string, decimal.Decimal) (*types.Transaction, error) {
	return nil, commonerrors.New(commonerrors.InternalError, "connector must not be reached")
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func newTestServer(t *testing.T, connectors map[types.DEX]types.Connector) (*Server, *telemetry.Metrics) {
	t.Helper()
	metrics := telemetry.NewMetrics()
	tracker := session.NewTracker(nil)
	recorder := session.NewRecorder(tracker, nil, quietLogger(), metrics, 8)
	srv := New(&stubRegistry{connectors: connectors}, nil, tracker, recorder, metrics, quietLogger())
	return srv, metrics
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var body errorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}

func TestUnknownDex(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/dex/sushiswap/connection", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "unknown dex", decodeError(t, w).Error)
}

func TestUnconfiguredDex(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/dex/uniswap/connection", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, decodeError(t, w).Error, "no connector configured")
}

func TestSwapQuoteSuccess(t *testing.T) {
	quote := &types.SwapQuote{
		InputToken:     "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48",
		OutputToken:    "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2",
		ExpectedOutput: decimal.RequireFromString("0.5"),
	}
	connector := connectormanager.NewConnector(
		types.Uniswap, types.Ethereum,
		nil, nil, stubQuoter{quote: quote}, nil, nil, nil, nil, nil,
	)
	srv, metrics := newTestServer(t, map[types.DEX]types.Connector{types.Uniswap: connector})

	body := strings.NewReader(`{"tokenIn":"a","tokenOut":"b","amountIn":"1","slippageTolerance":"0.01"}`)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/dex/uniswap/quote", body))

	require.Equal(t, http.StatusOK, w.Code)

	var got types.SwapQuote
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	assert.Equal(t, quote.OutputToken, got.OutputToken)
	assert.True(t, got.ExpectedOutput.Equal(quote.ExpectedOutput))

	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.ConnectorOps.WithLabelValues("uniswap", "get_swap_quote")))
}

func TestSwapQuoteMalformedBody(t *testing.T) {
	connector := connectormanager.NewConnector(
		types.Uniswap, types.Ethereum,
		nil, nil, stubQuoter{}, nil, nil, nil, nil, nil,
	)
	srv, _ := newTestServer(t, map[types.DEX]types.Connector{types.Uniswap: connector})

	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/dex/uniswap/quote", strings.NewReader("{not json")))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSwapParamPreconditionsAnswerBadRequest(t *testing.T) {
	// Precondition violations on request parameters must never surface as
	// 500; they are rejected before any connector runs.
	failingQuoter := stubQuoter{err: commonerrors.New(commonerrors.InternalError, "connector must not be reached")}
	connector := connectormanager.NewConnector(
		types.Uniswap, types.Ethereum,
		nil, nil, failingQuoter, nil, nil, stubLiquidity{}, nil, nil,
	)
	srv, _ := newTestServer(t, map[types.DEX]types.Connector{types.Uniswap: connector})

	cases := []struct {
		name   string
		method string
		path   string
		body   string
	}{
		{"identical tokens", http.MethodPost, "/api/v1/dex/uniswap/quote",
			`{"tokenIn":"a","tokenOut":"a","amountIn":"1","slippageTolerance":"0.01"}`},
		{"zero amount", http.MethodPost, "/api/v1/dex/uniswap/quote",
			`{"tokenIn":"a","tokenOut":"b","amountIn":"0","slippageTolerance":"0.01"}`},
		{"negative amount", http.MethodPost, "/api/v1/dex/uniswap/swap",
			`{"tokenIn":"a","tokenOut":"b","amountIn":"-1","slippageTolerance":"0.01"}`},
		{"slippage above one", http.MethodPost, "/api/v1/dex/uniswap/swap",
			`{"tokenIn":"a","tokenOut":"b","amountIn":"1","slippageTolerance":"2"}`},
		{"liquidity identical tokens", http.MethodPost, "/api/v1/dex/uniswap/liquidity",
			`{"tokenA":"a","tokenB":"a","amountA":"1","amountB":"1","slippageTolerance":"0"}`},
		{"liquidity zero leg", http.MethodPost, "/api/v1/dex/uniswap/liquidity",
			`{"tokenA":"a","tokenB":"b","amountA":"1","amountB":"0","slippageTolerance":"0"}`},
		{"withdraw zero", http.MethodDelete, "/api/v1/dex/uniswap/liquidity",
			`{"tokenA":"a","tokenB":"b","liquidity":"0"}`},
	}

	for _, tc := range cases {
		w := httptest.NewRecorder()
		srv.Router().ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body)))

		assert.Equal(t, http.StatusBadRequest, w.Code, tc.name)
		assert.NotContains(t, w.Body.String(), "connector must not be reached", tc.name)
	}
}

func TestErrorKindToStatusMapping(t *testing.T) {
	cases := []struct {
		kind   commonerrors.Kind
		status int
	}{
		{commonerrors.PoolNotFound, http.StatusNotFound},
		{commonerrors.InsufficientBalance, http.StatusUnprocessableEntity},
		{commonerrors.NetworkError, http.StatusBadGateway},
		{commonerrors.InternalError, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		connector := connectormanager.NewConnector(
			types.Uniswap, types.Ethereum,
			nil, nil, stubQuoter{err: commonerrors.New(tc.kind, "quote failed")}, nil, nil, nil, nil, nil,
		)
		srv, _ := newTestServer(t, map[types.DEX]types.Connector{types.Uniswap: connector})

		body := strings.NewReader(`{"tokenIn":"a","tokenOut":"b","amountIn":"1","slippageTolerance":"0"}`)
		w := httptest.NewRecorder()
		srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/dex/uniswap/quote", body))

		assert.Equal(t, tc.status, w.Code, tc.kind)
		assert.Equal(t, tc.kind, decodeError(t, w).Kind, tc.kind)
	}
}

func TestMissingCapabilityMapsToNotImplemented(t *testing.T) {
	// A connector with no liquidity capability answers 501, not 500.
	connector := connectormanager.NewConnector(
		types.Jupiter, types.Solana,
		nil, nil, stubQuoter{}, stubSwapper{tx: &types.Transaction{}}, nil, nil, nil, nil,
	)
	srv, _ := newTestServer(t, map[types.DEX]types.Connector{types.Jupiter: connector})

	body := strings.NewReader(`{"tokenA":"a","tokenB":"b","amountA":"1","amountB":"1","slippageTolerance":"0"}`)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/dex/jupiter/liquidity", body))

	assert.Equal(t, http.StatusNotImplemented, w.Code)
	assert.Equal(t, commonerrors.UnsupportedOperation, decodeError(t, w).Kind)
}

func TestExecuteSwapCreated(t *testing.T) {
	connector := connectormanager.NewConnector(
		types.Uniswap, types.Ethereum,
		nil, nil, nil, stubSwapper{tx: types.NewPendingTransaction("0xabc")}, nil, nil, nil, nil,
	)
	srv, _ := newTestServer(t, map[types.DEX]types.Connector{types.Uniswap: connector})

	body := strings.NewReader(`{"tokenIn":"a","tokenOut":"b","amountIn":"1","slippageTolerance":"0.01"}`)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/dex/uniswap/swap", body))

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestErrorMessagesAreScrubbed(t *testing.T) {
	err := commonerrors.New(commonerrors.NetworkError,
		"request to https://rpc.example.com/?apikey=supersecret failed")
	connector := connectormanager.NewConnector(
		types.Uniswap, types.Ethereum,
		nil, nil, stubQuoter{err: err}, nil, nil, nil, nil, nil,
	)
	srv, _ := newTestServer(t, map[types.DEX]types.Connector{types.Uniswap: connector})

	body := strings.NewReader(`{"tokenIn":"a","tokenOut":"b","amountIn":"1","slippageTolerance":"0"}`)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/dex/uniswap/quote", body))

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.NotContains(t, w.Body.String(), "supersecret")
}

func TestRecentSessionsRequireIdentity(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/sessions", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, commonerrors.InvalidCredentials, decodeError(t, w).Kind)
}

func TestRecentSessionsLimitValidation(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	for _, limit := range []string{"0", "-5", "201", "abc"} {
		r := httptest.NewRequest(http.MethodGet, "/api/v1/sessions?limit="+limit, nil)
		r = r.WithContext(session.ContextWithUserID(r.Context(), "user-1"))

		w := httptest.NewRecorder()
		srv.Router().ServeHTTP(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code, limit)
	}
}

func TestMalformedPathNeverReachesHandlers(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "http://example.com", nil)
	r.URL.Path = "/api/v1/dex/uniswap/../../secrets"
	srv.Router().ServeHTTP(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid request path", strings.TrimSpace(w.Body.String()))
}
