// Package cryptox implements the encryption codec and the deterministic
// lookup hash for stored credential fields.
//
// Encrypted blobs are transport-safe strings: base64url(nonce ‖ ciphertext),
// where the ciphertext carries the AES-GCM authentication tag. The lookup
// hash is a salted SHA-256 digest that lets exact-match search run against
// encrypted records without decrypting them.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/credsec/internal/common"
	"golang.org/x/crypto/pbkdf2"
)

const (
	keyLen    = 32
	kdfRounds = 100000
	nonceSize = 12
)

// Encryptor performs authenticated encryption of opaque string fields.
// The key is derived once from a passphrase and salt; a fresh nonce is
// generated per Encrypt call, so encrypting the same input twice yields
// different blobs.
type Encryptor struct {
	aead cipher.AEAD
}

// NewEncryptor derives an AES-256 key from the passphrase and salt using
// PBKDF2-SHA256 and prepares an AES-GCM cipher around it.
func NewEncryptor(passphrase, salt string) (*Encryptor, error) {
	if passphrase == "" || salt == "" {
		return nil, fmt.Errorf("%w: encryption passphrase and salt must be set", common.ErrorConfiguration)
	}

	key := pbkdf2.Key([]byte(passphrase), []byte(salt), kdfRounds, keyLen, sha256.New)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}

	aead, err := cipher.NewGCMWithNonceSize(block, nonceSize)
	if err != nil {
		return nil, fmt.Errorf("creating aead: %w", err)
	}

	return &Encryptor{aead: aead}, nil
}

// Encrypt seals plaintext under a fresh random nonce and packs
// nonce ‖ ciphertext into a base64url string.
func (e *Encryptor) Encrypt(plaintext string) string {
	nonce := common.GenerateRandByteArray(e.aead.NonceSize())
	sealed := e.aead.Seal(nil, nonce, []byte(plaintext), nil)
	return base64.URLEncoding.EncodeToString(append(nonce, sealed...))
}

// Decrypt unpacks and verifies a blob produced by Encrypt. A malformed,
// truncated, or tampered blob yields an error matching
// common.ErrorAuthentication; partial plaintext is never returned.
func (e *Encryptor) Decrypt(blob string) (string, error) {
	raw, err := base64.URLEncoding.DecodeString(blob)
	if err != nil {
		return "", fmt.Errorf("%w: malformed ciphertext", common.ErrorAuthentication)
	}

	ns := e.aead.NonceSize()
	if len(raw) < ns+e.aead.Overhead() {
		return "", fmt.Errorf("%w: truncated ciphertext", common.ErrorAuthentication)
	}

	plaintext, err := e.aead.Open(nil, raw[:ns], raw[ns:], nil)
	if err != nil {
		return "", fmt.Errorf("%w: integrity check failed", common.ErrorAuthentication)
	}

	return string(plaintext), nil
}

// NormalizeIdentifier applies the canonical form used on both the write and
// the read path before hashing: surrounding whitespace is trimmed and the
// identifier is lower-cased.
func NormalizeIdentifier(identifier string) string {
	return strings.ToLower(strings.TrimSpace(identifier))
}

// LookupHash returns the deterministic hex digest of an identifier,
// SHA-256(normalized ‖ salt). Identical inputs always produce identical
// digests; the salt keeps the digest from being a plain rainbow-table target.
func LookupHash(identifier, salt string) string {
	sum := sha256.Sum256([]byte(NormalizeIdentifier(identifier) + salt))
	return hex.EncodeToString(sum[:])
}
