package auth

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	linkNonceSize = 16
	linkTagSize   = 16
)

// LinkCodec seals verification identifiers into shareable URL-safe
// tokens and opens them back. Tokens are AES-256-GCM payloads laid out
// as nonce || tag || ciphertext, base64 URL encoded without padding.
type LinkCodec interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(token string) (string, error)
	GenerateVerificationLink(id, baseURL string) (string, error)
	DecryptVerificationRequest(token string) (string, error)
}

// LinkCodecImpl implements LinkCodec over a passphrase-derived key.
type LinkCodecImpl struct {
	aead   cipher.AEAD
	logger Logger
}

// NewLinkCodec derives a 32 byte key from the passphrase digest and
// builds the AEAD. The passphrase itself is never used as key
// material directly.
func NewLinkCodec(passphrase string, logger Logger) (*LinkCodecImpl, error) {
	if passphrase == "" {
		return nil, goerrors.New("link codec passphrase must not be empty", goerrors.CategoryInternal)
	}
	if logger == nil {
		logger = defLogger{}
	}

	key := sha256.Sum256([]byte(passphrase))

	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create link cipher")
	}

	aead, err := cipher.NewGCMWithNonceSize(block, linkNonceSize)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create link AEAD")
	}

	return &LinkCodecImpl{aead: aead, logger: logger}, nil
}

var _ LinkCodec = (*LinkCodecImpl)(nil)

// Encrypt seals the plaintext under a fresh random nonce. Two calls
// with the same input produce different tokens.
func (c *LinkCodecImpl) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, linkNonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to generate link nonce")
	}

	// Seal yields ciphertext || tag; the wire layout wants the tag
	// between nonce and ciphertext.
	sealed := c.aead.Seal(nil, nonce, []byte(plaintext), nil)
	split := len(sealed) - linkTagSize

	payload := make([]byte, 0, linkNonceSize+len(sealed))
	payload = append(payload, nonce...)
	payload = append(payload, sealed[split:]...)
	payload = append(payload, sealed[:split]...)

	return base64.RawURLEncoding.EncodeToString(payload), nil
}

// Decrypt opens a sealed token. Every failure mode reports the same
// ErrLinkTokenInvalid; the sub-cause is logged, never surfaced.
func (c *LinkCodecImpl) Decrypt(token string) (string, error) {
	payload, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(token, "="))
	if err != nil {
		c.logger.Debug("link token rejected: not valid base64")
		return "", ErrLinkTokenInvalid
	}

	if len(payload) < linkNonceSize+linkTagSize {
		c.logger.Debug("link token rejected: payload too short")
		return "", ErrLinkTokenInvalid
	}

	nonce := payload[:linkNonceSize]
	tag := payload[linkNonceSize : linkNonceSize+linkTagSize]
	ciphertext := payload[linkNonceSize+linkTagSize:]

	sealed := make([]byte, 0, len(ciphertext)+linkTagSize)
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)

	plaintext, err := c.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		c.logger.Debug("link token rejected: authentication failed")
		return "", ErrLinkTokenInvalid
	}

	return string(plaintext), nil
}

// GenerateVerificationLink builds the shareable verification URL for
// the given identifier.
func (c *LinkCodecImpl) GenerateVerificationLink(id, baseURL string) (string, error) {
	token, err := c.Encrypt(id)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/verify?verification-request=%s", strings.TrimRight(baseURL, "/"), token), nil
}

// DecryptVerificationRequest recovers the verification identifier from
// a link token.
func (c *LinkCodecImpl) DecryptVerificationRequest(token string) (string, error) {
	return c.Decrypt(token)
}
