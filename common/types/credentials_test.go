package types

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "super-secret-private-key"

func TestCredentialsStringRedactsKey(t *testing.T) {
	creds := NewWalletCredentials(testKey, "0xabc")

	assert.NotContains(t, creds.String(), testKey)
	assert.Contains(t, creds.String(), "0xabc")
	assert.NotContains(t, fmt.Sprintf("%v", creds), testKey)
	assert.NotContains(t, fmt.Sprintf("%#v", creds), testKey)
	assert.NotContains(t, fmt.Sprintf("%+v", creds), testKey)
}

func TestCredentialsJSONRedactsKey(t *testing.T) {
	creds := NewWalletCredentials(testKey, "0xabc")

	data, err := json.Marshal(creds)
	require.NoError(t, err)

	assert.NotContains(t, string(data), testKey)

	var decoded map[string]string
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "0xabc", decoded["address"])
	assert.Equal(t, "[REDACTED]", decoded["privateKey"])
}

func TestCredentialsAccessors(t *testing.T) {
	creds := NewWalletCredentials(testKey, "0xabc")

	assert.Equal(t, testKey, creds.PrivateKey())
	assert.Equal(t, "0xabc", creds.Address())
}
