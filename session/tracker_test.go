package session

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractIPAddressHeaderPrecedence(t *testing.T) {
	tracker := NewTracker(nil)

	r := httptest.NewRequest(http.MethodGet, "/api/v1/sessions", nil)
	r.RemoteAddr = "10.0.0.1:55000"
	r.Header.Set("CF-Connecting-IP", "203.0.113.7")
	r.Header.Set("X-Real-IP", "198.51.100.2")
	r.Header.Set("X-Forwarded-For", "192.0.2.9, 198.51.100.2")

	assert.Equal(t, "203.0.113.7", tracker.ExtractIPAddress(r))

	r.Header.Del("CF-Connecting-IP")
	assert.Equal(t, "198.51.100.2", tracker.ExtractIPAddress(r))
}

func TestExtractIPAddressForwardedForFirstHop(t *testing.T) {
	tracker := NewTracker(nil)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-Forwarded-For", " 192.0.2.9 , 198.51.100.2, 10.0.0.1")

	assert.Equal(t, "192.0.2.9", tracker.ExtractIPAddress(r))
}

func TestExtractIPAddressFallsBackToPeer(t *testing.T) {
	tracker := NewTracker(nil)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.1:55000"
	assert.Equal(t, "10.0.0.1", tracker.ExtractIPAddress(r))

	// RemoteAddr without a port comes back untouched.
	r.RemoteAddr = "10.0.0.1"
	assert.Equal(t, "10.0.0.1", tracker.ExtractIPAddress(r))
}

func TestExtractIPAddressCustomHeaders(t *testing.T) {
	tracker := NewTracker([]string{"X-Client-IP"})

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-Client-IP", "192.0.2.33")
	r.Header.Set("CF-Connecting-IP", "203.0.113.7")

	assert.Equal(t, "192.0.2.33", tracker.ExtractIPAddress(r))
}

func TestExtractUserAgent(t *testing.T) {
	tracker := NewTracker(nil)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("User-Agent", "trader-cli/2.1")

	assert.Equal(t, "trader-cli/2.1", tracker.ExtractUserAgent(r))
}
