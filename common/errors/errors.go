// Package errors defines the closed failure taxonomy shared by every DEX
// connector and maps it onto the HTTP surface.
package errors

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"
)

// Kind is the failure category of a connector error. The set is closed:
// every error a connector surfaces carries exactly one of these kinds.
type Kind string

const (
	// NetworkError is a transport or RPC failure; retryable at the caller's
	// discretion.
	NetworkError Kind = "NETWORK_ERROR"
	// InvalidCredentials means credentials do not decode or do not match the
	// declared wallet address.
	InvalidCredentials Kind = "INVALID_CREDENTIALS"
	// TransactionFailed is an on-chain revert or node rejection; terminal for
	// that attempt.
	TransactionFailed Kind = "TRANSACTION_FAILED"
	// InsufficientBalance means a pre-flight balance check failed.
	InsufficientBalance Kind = "INSUFFICIENT_BALANCE"
	// TokenNotFound means a token address does not resolve on the chain.
	TokenNotFound Kind = "TOKEN_NOT_FOUND"
	// PoolNotFound means no liquidity pool exists for the token pair.
	PoolNotFound Kind = "POOL_NOT_FOUND"
	// SlippageTooHigh means the simulated output fell below the minimum output.
	SlippageTooHigh Kind = "SLIPPAGE_TOO_HIGH"
	// GasEstimationFailed means EVM gas estimation reverted or Solana fee
	// simulation failed.
	GasEstimationFailed Kind = "GAS_ESTIMATION_FAILED"
	// UnsupportedOperation means the operation has no meaning for this DEX or
	// chain.
	UnsupportedOperation Kind = "UNSUPPORTED_OPERATION"
	// ContractError means a router or pool contract reverted with a decodable
	// reason.
	ContractError Kind = "CONTRACT_ERROR"
	// InternalError is an invariant violation inside a connector; never
	// produced by user input.
	InternalError Kind = "INTERNAL_ERROR"
)

// Error is a categorized connector failure. The message is a short
// human-readable string suitable for logs; stack traces are never exposed.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause for errors.Is / errors.As chains.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a categorized error with the given kind and message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates a categorized error with a formatted message.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap categorizes an underlying error, preserving it as the cause.
func Wrap(kind Kind, err error, message string) *Error {
	return &Error{Kind: kind, Message: message, Cause: err}
}

// Wrapf wraps an underlying cause with a formatted message under the given
// kind.
func Wrapf(kind Kind, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: err}
}

// WrapNetwork wraps a transport failure into NetworkError. The original
// message is preserved but scrubbed of credential-bearing URL query values
// before it can reach a log line or an HTTP response.
func WrapNetwork(err error, message string) *Error {
	if err == nil {
		return New(NetworkError, message)
	}
	return &Error{
		Kind:    NetworkError,
		Message: message,
		Cause:   errors.New(ScrubSecrets(err.Error())),
	}
}

// KindOf extracts the kind from an error chain. Uncategorized errors map to
// InternalError.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return InternalError
}

// Is reports whether any error in the chain carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// HTTPStatus maps a failure kind to the HTTP status class exposed to callers.
func HTTPStatus(kind Kind) int {
	switch kind {
	case InvalidCredentials:
		return http.StatusUnauthorized
	case InsufficientBalance, SlippageTooHigh:
		return http.StatusUnprocessableEntity
	case TokenNotFound, PoolNotFound:
		return http.StatusNotFound
	case UnsupportedOperation:
		return http.StatusNotImplemented
	case NetworkError, GasEstimationFailed, TransactionFailed, ContractError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// ScrubSecrets removes query string values from any URL embedded in a
// message. RPC providers commonly carry API keys in the query, so the whole
// query is dropped rather than filtered.
func ScrubSecrets(message string) string {
	fields := strings.Fields(message)
	for i, f := range fields {
		if !strings.Contains(f, "://") {
			continue
		}
		u, err := url.Parse(strings.Trim(f, `"',;`))
		if err != nil || u.Scheme == "" {
			continue
		}
		if u.RawQuery != "" || u.User != nil {
			u.RawQuery = ""
			u.User = nil
			fields[i] = u.String()
		}
	}
	return strings.Join(fields, " ")
}
