package service

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"paytrust-gateway/pkg/apperror"
)

const gcmTagSize = 16

// AESEncryptionService implements ports.EncryptionService using AES-256-GCM.
// Records are stored as nonceHex:authTagHex:ciphertextHex so each component
// is independently inspectable.
type AESEncryptionService struct {
	key []byte // 32-byte key for AES-256
}

// NewAESEncryptionService creates a new AES-256-GCM encryption service.
// hexKey must be a 64-character hex string (32 bytes decoded).
func NewAESEncryptionService(hexKey string) (*AESEncryptionService, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("decoding AES key: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("AES key must be 32 bytes, got %d", len(key))
	}
	return &AESEncryptionService{key: key}, nil
}

// Encrypt encrypts plaintext with a fresh 12-byte random nonce.
func (s *AESEncryptionService) Encrypt(plaintext string) (string, error) {
	aesGCM, err := s.gcm()
	if err != nil {
		return "", apperror.ErrCrypto(err)
	}

	nonce := make([]byte, aesGCM.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", apperror.ErrCrypto(fmt.Errorf("generating nonce: %w", err))
	}

	sealed := aesGCM.Seal(nil, nonce, []byte(plaintext), nil)
	// Seal appends the 16-byte auth tag to the ciphertext.
	ciphertext, tag := sealed[:len(sealed)-gcmTagSize], sealed[len(sealed)-gcmTagSize:]

	return fmt.Sprintf("%s:%s:%s",
		hex.EncodeToString(nonce),
		hex.EncodeToString(tag),
		hex.EncodeToString(ciphertext),
	), nil
}

// Decrypt decrypts a nonceHex:authTagHex:ciphertextHex record. Any malformed
// or tampered record yields a CryptoError; the cause is never echoed to
// clients.
func (s *AESEncryptionService) Decrypt(record string) (string, error) {
	parts := strings.Split(record, ":")
	if len(parts) != 3 {
		return "", apperror.ErrCrypto(fmt.Errorf("malformed record: expected 3 parts, got %d", len(parts)))
	}

	nonce, err := hex.DecodeString(parts[0])
	if err != nil {
		return "", apperror.ErrCrypto(fmt.Errorf("decoding nonce: %w", err))
	}
	tag, err := hex.DecodeString(parts[1])
	if err != nil {
		return "", apperror.ErrCrypto(fmt.Errorf("decoding auth tag: %w", err))
	}
	ciphertext, err := hex.DecodeString(parts[2])
	if err != nil {
		return "", apperror.ErrCrypto(fmt.Errorf("decoding ciphertext: %w", err))
	}

	aesGCM, err := s.gcm()
	if err != nil {
		return "", apperror.ErrCrypto(err)
	}
	if len(nonce) != aesGCM.NonceSize() {
		return "", apperror.ErrCrypto(fmt.Errorf("nonce must be %d bytes, got %d", aesGCM.NonceSize(), len(nonce)))
	}
	if len(tag) != gcmTagSize {
		return "", apperror.ErrCrypto(fmt.Errorf("auth tag must be %d bytes, got %d", gcmTagSize, len(tag)))
	}

	plaintext, err := aesGCM.Open(nil, nonce, append(ciphertext, tag...), nil)
	if err != nil {
		return "", apperror.ErrCrypto(fmt.Errorf("opening ciphertext: %w", err))
	}

	return string(plaintext), nil
}

func (s *AESEncryptionService) gcm() (cipher.AEAD, error) {
	block, err := aes.NewCipher(s.key)
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}
	return cipher.NewGCM(block)
}
