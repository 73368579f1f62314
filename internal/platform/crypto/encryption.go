package crypto

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
)

// Service seals payslip files with XChaCha20-Poly1305. A Service built from
// an empty key is valid but unconfigured and passes data through.
type Service struct {
	aead cipher.AEAD
}

func New(key string) (*Service, error) {
	if key == "" {
		return &Service{}, nil
	}
	decoded := decodeKey(key)
	if len(decoded) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("DATA_ENCRYPTION_KEY must be %d bytes after decoding", chacha20poly1305.KeySize)
	}
	aead, err := chacha20poly1305.NewX(decoded)
	if err != nil {
		return nil, err
	}
	return &Service{aead: aead}, nil
}

func (s *Service) Configured() bool {
	return s != nil && s.aead != nil
}

func (s *Service) Seal(plain []byte) ([]byte, error) {
	if !s.Configured() {
		return plain, nil
	}
	nonce := make([]byte, s.aead.NonceSize(), s.aead.NonceSize()+len(plain)+s.aead.Overhead())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return s.aead.Seal(nonce, nonce, plain, nil), nil
}

func (s *Service) Open(sealed []byte) ([]byte, error) {
	if !s.Configured() {
		return sealed, nil
	}
	if len(sealed) < s.aead.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}
	nonce, data := sealed[:s.aead.NonceSize()], sealed[s.aead.NonceSize():]
	return s.aead.Open(nil, nonce, data, nil)
}

// decodeKey accepts a hex, base64 or raw key, preferring whichever form
// yields exactly KeySize bytes.
func decodeKey(raw string) []byte {
	if decoded, err := hex.DecodeString(raw); err == nil && len(decoded) == chacha20poly1305.KeySize {
		return decoded
	}
	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.RawStdEncoding, base64.URLEncoding} {
		if decoded, err := enc.DecodeString(raw); err == nil && len(decoded) == chacha20poly1305.KeySize {
			return decoded
		}
	}
	return []byte(raw)
}
