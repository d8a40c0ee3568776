package sessionstore

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
)

const saltLength = 16

// Argon2id parameters for deriving the sealing key from the passphrase.
const (
	keyIterations  = 3
	keyMemory      = 64 * 1024
	keyParallelism = 4
	keyLength      = 32
)

// deriveKey stretches the store passphrase into an AES-256 key using
// Argon2id with the store's persisted salt.
func deriveKey(passphrase, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, keyIterations, keyMemory, keyParallelism, keyLength)
}

// newSalt generates a fresh random salt for a new store.
func newSalt() ([]byte, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("sessionstore: failed to generate salt: %w", err)
	}
	return salt, nil
}

// seal encrypts plaintext using AES-256-GCM.
// The output format is: [12-byte nonce][encrypted data][16-byte auth tag]
func seal(key, plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("sessionstore: failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("sessionstore: failed to create GCM: %w", err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("sessionstore: failed to generate nonce: %w", err)
	}

	// gcm.Seal appends the ciphertext and auth tag to nonce
	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

// open decrypts data produced by seal.
func open(key, sealed []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("sessionstore: failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("sessionstore: failed to create GCM: %w", err)
	}

	nonceSize := gcm.NonceSize()
	if len(sealed) < nonceSize {
		return nil, fmt.Errorf("sessionstore: ciphertext too short")
	}

	nonce, ciphertext := sealed[:nonceSize], sealed[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("sessionstore: decryption failed: %w", err)
	}
	return plaintext, nil
}
