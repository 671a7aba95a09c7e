// Package payment verifies callbacks from the MoMo and ZaloPay gateways.
// Each gateway signs a fixed, ordered concatenation of its fields with
// HMAC-SHA256; the field order is the gateway's contract and must match
// byte for byte.
package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Sign returns the lower-case hex HMAC-SHA256 of data under key.
func Sign(key, data string) string {
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}

// verify compares the expected signature with the one provided in
// constant time.  An empty key never verifies.
func verify(key, data, provided string) bool {
	if key == "" || provided == "" {
		return false
	}
	expected := Sign(key, data)
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(strings.TrimSpace(provided))))
}
