package common

import (
	"crypto/rand"
)

// GenerateRandByteArray returns size cryptographically secure random bytes.
// A failure of the system CSPRNG is unrecoverable, so it panics instead of
// returning an error.
func GenerateRandByteArray(size int) []byte {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return b
}
