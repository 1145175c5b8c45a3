package types

// redactedPlaceholder replaces the private key in every textual representation
// of wallet credentials.
const redactedPlaceholder = "[REDACTED]"

// WalletCredentials holds the signing material for a user-owned wallet.
// Credentials are supplied at connector construction, held only in memory,
// and immutable afterwards. The private key never appears in logs, error
// messages, or serialized output.
type WalletCredentials struct {
	privateKey string
	address    string
}

// NewWalletCredentials creates wallet credentials from a raw private key and
// its wallet address.
func NewWalletCredentials(privateKey, address string) WalletCredentials {
	return WalletCredentials{
		privateKey: privateKey,
		address:    address,
	}
}

// PrivateKey returns the raw private key. Callers must not retain it beyond
// the duration of a signing call.
func (c WalletCredentials) PrivateKey() string {
	return c.privateKey
}

// Address returns the wallet address.
func (c WalletCredentials) Address() string {
	return c.address
}

// String implements fmt.Stringer with the private key redacted.
func (c WalletCredentials) String() string {
	return "WalletCredentials{address: " + c.address + ", privateKey: " + redactedPlaceholder + "}"
}

// GoString implements fmt.GoStringer so %#v does not leak the private key.
func (c WalletCredentials) GoString() string {
	return c.String()
}

// MarshalJSON serializes only the address; the private key is replaced with
// a fixed placeholder.
func (c WalletCredentials) MarshalJSON() ([]byte, error) {
	return []byte(`{"address":"` + c.address + `","privateKey":"` + redactedPlaceholder + `"}`), nil
}
