package session

import (
	"crypto/sha256"
	"encoding/hex"
)

// DeriveIdentity maps an API key to its stable, opaque client identity.
// The same key always yields the same identity, so usage windows survive
// session turnover, and the raw key never leaves the auth path.
func DeriveIdentity(clientKey string) string {
	sum := sha256.Sum256([]byte(clientKey))
	return hex.EncodeToString(sum[:16])
}
