package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	commonerrors "github.com/VelaTrade/dex-lib/common/errors"
	"github.com/VelaTrade/dex-lib/common/types"
	"github.com/VelaTrade/dex-lib/session"
	"github.com/VelaTrade/dex-lib/sessiondb"
	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// swapRequest is the body of quote and swap calls. Amounts travel as decimal
// strings.
type swapRequest struct {
	TokenIn           string          `json:"tokenIn"`
	TokenOut          string          `json:"tokenOut"`
	AmountIn          decimal.Decimal `json:"amountIn"`
	SlippageTolerance decimal.Decimal `json:"slippageTolerance"`
}

type addLiquidityRequest struct {
	TokenA            string          `json:"tokenA"`
	TokenB            string          `json:"tokenB"`
	AmountA           decimal.Decimal `json:"amountA"`
	AmountB           decimal.Decimal `json:"amountB"`
	SlippageTolerance decimal.Decimal `json:"slippageTolerance"`
}

type removeLiquidityRequest struct {
	TokenA    string          `json:"tokenA"`
	TokenB    string          `json:"tokenB"`
	Liquidity decimal.Decimal `json:"liquidity"`
}

type errorResponse struct {
	Error string            `json:"error"`
	Kind  commonerrors.Kind `json:"kind"`
}

// validate reports the first precondition the request body violates, or empty.
// Violations answer 400 here; the error taxonomy stays reserved for connector
// failures.
func (r swapRequest) validate() string {
	if r.TokenIn == r.TokenOut {
		return "tokenIn and tokenOut must be distinct"
	}
	if !r.AmountIn.IsPositive() {
		return "amountIn must be positive"
	}
	if !types.ValidSlippage(r.SlippageTolerance) {
		return "slippageTolerance must be in [0, 1]"
	}
	return ""
}

func (r addLiquidityRequest) validate() string {
	if r.TokenA == r.TokenB {
		return "tokenA and tokenB must be distinct"
	}
	if !r.AmountA.IsPositive() || !r.AmountB.IsPositive() {
		return "amountA and amountB must be positive"
	}
	if !types.ValidSlippage(r.SlippageTolerance) {
		return "slippageTolerance must be in [0, 1]"
	}
	return ""
}

func (r removeLiquidityRequest) validate() string {
	if r.TokenA == r.TokenB {
		return "tokenA and tokenB must be distinct"
	}
	if !r.Liquidity.IsPositive() {
		return "liquidity must be positive"
	}
	return ""
}

// connectorFor resolves the exchange from the URL and returns its live
// connector. A nil return means the response has been written.
func (s *Server) connectorFor(w http.ResponseWriter, r *http.Request, operation string) types.Connector {
	dex, ok := types.ParseDEX(chi.URLParam(r, "dex"))
	if !ok {
		s.writeJSON(w, http.StatusNotFound, errorResponse{
			Error: "unknown dex",
			Kind:  commonerrors.UnsupportedOperation,
		})
		return nil
	}

	connector := s.registry.Get(dex)
	if connector == nil {
		s.writeJSON(w, http.StatusNotFound, errorResponse{
			Error: "no connector configured for " + dex.String(),
			Kind:  commonerrors.UnsupportedOperation,
		})
		return nil
	}

	s.metrics.ConnectorOps.WithLabelValues(dex.String(), operation).Inc()
	return connector
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.WithError(err).Error("Failed to encode response")
	}
}

// writeError maps a connector error onto the HTTP surface. Messages pass
// through the scrubber so RPC URLs with embedded keys never leave the server.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	kind := commonerrors.KindOf(err)
	s.writeJSON(w, commonerrors.HTTPStatus(kind), errorResponse{
		Error: commonerrors.ScrubSecrets(err.Error()),
		Kind:  kind,
	})
}

func (s *Server) rejectInvalidParams(w http.ResponseWriter, problem string) {
	s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": problem})
}

func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{
			Error: "malformed request body",
			Kind:  commonerrors.InternalError,
		})
		return false
	}
	return true
}

func (s *Server) handleTestConnection(w http.ResponseWriter, r *http.Request) {
	connector := s.connectorFor(w, r, "test_connection")
	if connector == nil {
		return
	}

	healthy, err := connector.TestConnection(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"healthy": healthy})
}

func (s *Server) handleWalletBalance(w http.ResponseWriter, r *http.Request) {
	connector := s.connectorFor(w, r, "get_wallet_balance")
	if connector == nil {
		return
	}

	balance, err := connector.GetWalletBalance(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, balance)
}

func (s *Server) handleTokenBalance(w http.ResponseWriter, r *http.Request) {
	connector := s.connectorFor(w, r, "get_token_balance")
	if connector == nil {
		return
	}

	balance, err := connector.GetTokenBalance(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, balance)
}

func (s *Server) handleSwapQuote(w http.ResponseWriter, r *http.Request) {
	connector := s.connectorFor(w, r, "get_swap_quote")
	if connector == nil {
		return
	}

	var req swapRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if problem := req.validate(); problem != "" {
		s.rejectInvalidParams(w, problem)
		return
	}

	quote, err := connector.GetSwapQuote(r.Context(), req.TokenIn, req.TokenOut, req.AmountIn, req.SlippageTolerance)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, quote)
}

func (s *Server) handleExecuteSwap(w http.ResponseWriter, r *http.Request) {
	connector := s.connectorFor(w, r, "execute_swap")
	if connector == nil {
		return
	}

	var req swapRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if problem := req.validate(); problem != "" {
		s.rejectInvalidParams(w, problem)
		return
	}

	tx, err := connector.ExecuteSwap(r.Context(), req.TokenIn, req.TokenOut, req.AmountIn, req.SlippageTolerance)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, tx)
}

func (s *Server) handlePoolInfo(w http.ResponseWriter, r *http.Request) {
	connector := s.connectorFor(w, r, "get_pool_info")
	if connector == nil {
		return
	}

	tokenA := r.URL.Query().Get("tokenA")
	tokenB := r.URL.Query().Get("tokenB")

	info, err := connector.GetPoolInfo(r.Context(), tokenA, tokenB)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleAddLiquidity(w http.ResponseWriter, r *http.Request) {
	connector := s.connectorFor(w, r, "add_liquidity")
	if connector == nil {
		return
	}

	var req addLiquidityRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if problem := req.validate(); problem != "" {
		s.rejectInvalidParams(w, problem)
		return
	}

	tx, err := connector.AddLiquidity(r.Context(), req.TokenA, req.TokenB, req.AmountA, req.AmountB, req.SlippageTolerance)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, tx)
}

func (s *Server) handleRemoveLiquidity(w http.ResponseWriter, r *http.Request) {
	connector := s.connectorFor(w, r, "remove_liquidity")
	if connector == nil {
		return
	}

	var req removeLiquidityRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if problem := req.validate(); problem != "" {
		s.rejectInvalidParams(w, problem)
		return
	}

	tx, err := connector.RemoveLiquidity(r.Context(), req.TokenA, req.TokenB, req.Liquidity)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, tx)
}

func (s *Server) handleTransactionStatus(w http.ResponseWriter, r *http.Request) {
	connector := s.connectorFor(w, r, "get_transaction_status")
	if connector == nil {
		return
	}

	status, err := connector.GetTransactionStatus(r.Context(), chi.URLParam(r, "hash"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleGasPrice(w http.ResponseWriter, r *http.Request) {
	connector := s.connectorFor(w, r, "get_gas_price")
	if connector == nil {
		return
	}

	price, err := connector.GetGasPrice(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]decimal.Decimal{"gasPrice": price})
}

// handleRecentSessions returns the authenticated caller's recent sessions.
func (s *Server) handleRecentSessions(w http.ResponseWriter, r *http.Request) {
	userID, ok := session.UserIDFromContext(r.Context())
	if !ok {
		s.writeJSON(w, http.StatusUnauthorized, errorResponse{
			Error: "authentication required",
			Kind:  commonerrors.InvalidCredentials,
		})
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 200 {
			s.writeJSON(w, http.StatusBadRequest, errorResponse{
				Error: "limit must be an integer in [1, 200]",
				Kind:  commonerrors.InternalError,
			})
			return
		}
		limit = parsed
	}

	sessions, err := s.store.RecentSessions(r.Context(), userID, limit)
	if errors.Is(err, sessiondb.ErrSessionNotFound) {
		s.writeJSON(w, http.StatusNotFound, map[string]string{"error": "no sessions recorded"})
		return
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, sessions)
}
