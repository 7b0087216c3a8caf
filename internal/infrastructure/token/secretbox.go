// Package token seals confirmation tokens with NaCl secretbox so the email
// they carry can be recovered only by the holder of the key.
package token

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"golang.org/x/crypto/nacl/secretbox"
)

const nonceSize = 24

var ErrMalformed = errors.New("token: malformed or tampered")

type payload struct {
	Email    string `json:"email"`
	IssuedAt int64  `json:"iat"`
}

// Cipher seals and opens URL-safe tokens of the form
// base64url(nonce || secretbox(payload)).
type Cipher struct {
	key *[32]byte
}

func NewCipher(key [32]byte) *Cipher {
	return &Cipher{key: &key}
}

// NewRandomCipher generates a throwaway key. Tokens do not survive a restart.
func NewRandomCipher() (*Cipher, error) {
	var key [32]byte
	if _, err := io.ReadFull(rand.Reader, key[:]); err != nil {
		return nil, fmt.Errorf("token: generate key: %w", err)
	}
	return NewCipher(key), nil
}

func (c *Cipher) Seal(email string, issuedAt time.Time) (string, error) {
	msg, err := json.Marshal(payload{Email: email, IssuedAt: issuedAt.Unix()})
	if err != nil {
		return "", fmt.Errorf("token: encode payload: %w", err)
	}

	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", fmt.Errorf("token: nonce: %w", err)
	}

	sealed := secretbox.Seal(nonce[:], msg, &nonce, c.key)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

func (c *Cipher) Open(tok string) (string, time.Time, error) {
	raw, err := base64.RawURLEncoding.DecodeString(tok)
	if err != nil || len(raw) < nonceSize+secretbox.Overhead {
		return "", time.Time{}, ErrMalformed
	}

	var nonce [nonceSize]byte
	copy(nonce[:], raw[:nonceSize])

	msg, ok := secretbox.Open(nil, raw[nonceSize:], &nonce, c.key)
	if !ok {
		return "", time.Time{}, ErrMalformed
	}

	var p payload
	if err := json.Unmarshal(msg, &p); err != nil || p.Email == "" {
		return "", time.Time{}, ErrMalformed
	}
	return p.Email, time.Unix(p.IssuedAt, 0).UTC(), nil
}
