// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/crypto/pbkdf2"

	"github.com/jeranaias/rbac-console/internal/util"
)

// =============================================================================
// CONSTANTS
// =============================================================================

// SealedPrefix marks sealed content (format: ENC:base64(nonce|ciphertext|tag)).
const SealedPrefix = "ENC:"

// NonceSize is the AES-GCM nonce size (96 bits).
const NonceSize = 12

// KeySize is the AES-256 key size.
const KeySize = 32

// SaltSize is the PBKDF2 salt size.
const SaltSize = 16

// PBKDF2Iterations follows the OWASP 2023 figure for PBKDF2-SHA-256.
const PBKDF2Iterations = 600000

// PassphraseEnv names the variable that switches to passphrase-derived keys.
const PassphraseEnv = "RBAC_SESSION_PASSPHRASE"

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrInvalidCiphertext indicates sealed content is malformed.
	ErrInvalidCiphertext = errors.New("invalid ciphertext format")
	// ErrDecryptionFailed indicates a wrong key or tampered content.
	ErrDecryptionFailed = errors.New("decryption failed: authentication tag mismatch")
	// ErrSealerRequired indicates sealed content was read without a key.
	ErrSealerRequired = errors.New("content is sealed but no key is configured")
)

// =============================================================================
// SEALER
// =============================================================================

// Sealer encrypts and decrypts small blobs with AES-256-GCM.
// A Sealer is safe for concurrent use.
type Sealer struct {
	aead cipher.AEAD
}

// NewSealer builds a sealer from a 32-byte key.
func NewSealer(key []byte) (*Sealer, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("key must be %d bytes, got %d", KeySize, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM cipher: %w", err)
	}
	return &Sealer{aead: gcm}, nil
}

// NewPassphraseSealer derives the key from passphrase and salt.
func NewPassphraseSealer(passphrase string, salt []byte) (*Sealer, error) {
	key := DeriveKey(passphrase, salt)
	defer ZeroBytes(key)
	return NewSealer(key)
}

// DeriveKey derives a key with PBKDF2-SHA-256 (NIST SP 800-132).
func DeriveKey(passphrase string, salt []byte) []byte {
	return pbkdf2.Key([]byte(passphrase), salt, PBKDF2Iterations, KeySize, sha256.New)
}

// Seal returns nonce || ciphertext || tag. Nonces are random per call.
func (s *Sealer) Seal(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, NonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	return s.aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Open reverses Seal.
func (s *Sealer) Open(sealed []byte) ([]byte, error) {
	if len(sealed) < NonceSize+s.aead.Overhead() {
		return nil, ErrInvalidCiphertext
	}
	nonce, body := sealed[:NonceSize], sealed[NonceSize:]
	plaintext, err := s.aead.Open(nil, nonce, body, nil)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	return plaintext, nil
}

// SealText seals plaintext and encodes it with the ENC: prefix.
func (s *Sealer) SealText(plaintext []byte) ([]byte, error) {
	sealed, err := s.Seal(plaintext)
	if err != nil {
		return nil, err
	}
	return []byte(SealedPrefix + base64.StdEncoding.EncodeToString(sealed)), nil
}

// OpenText reverses SealText.
func (s *Sealer) OpenText(text []byte) ([]byte, error) {
	if !IsSealed(text) {
		return nil, ErrInvalidCiphertext
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(string(text), SealedPrefix))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCiphertext, err)
	}
	return s.Open(raw)
}

// IsSealed reports whether content carries the ENC: prefix.
func IsSealed(content []byte) bool {
	return strings.HasPrefix(string(content), SealedPrefix)
}

// =============================================================================
// KEY MATERIAL
// =============================================================================

// LoadOrCreateKey reads the key file at path, creating a random key with
// 0600 permissions when the file is missing.
func LoadOrCreateKey(path string) ([]byte, error) {
	return loadOrCreate(path, KeySize)
}

// LoadOrCreateSalt is LoadOrCreateKey for the PBKDF2 salt.
func LoadOrCreateSalt(path string) ([]byte, error) {
	return loadOrCreate(path, SaltSize)
}

func loadOrCreate(path string, size int) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		if len(data) != size {
			return nil, fmt.Errorf("%s: expected %d bytes, found %d", path, size, len(data))
		}
		return data, nil
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	data = make([]byte, size)
	if _, err := io.ReadFull(rand.Reader, data); err != nil {
		return nil, fmt.Errorf("failed to generate key material: %w", err)
	}
	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return nil, fmt.Errorf("failed to save key material: %w", err)
	}
	return data, nil
}

// SealerForPath returns the sealer for session files next to keyPath: a
// passphrase sealer when RBAC_SESSION_PASSPHRASE is set (salt stored at
// keyPath+".salt"), otherwise a key-file sealer.
func SealerForPath(keyPath string) (*Sealer, error) {
	if passphrase := os.Getenv(PassphraseEnv); passphrase != "" {
		salt, err := LoadOrCreateSalt(keyPath + ".salt")
		if err != nil {
			return nil, err
		}
		return NewPassphraseSealer(passphrase, salt)
	}
	key, err := LoadOrCreateKey(keyPath)
	if err != nil {
		return nil, err
	}
	defer ZeroBytes(key)
	return NewSealer(key)
}

// ZeroBytes wipes key material after use.
func ZeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
