package server

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"io"

	"github.com/jrsteele09/go-oidc-core/external"
	"github.com/pkg/errors"
)

// newProtector returns the string-protection callback sealing external token
// claims with AES-GCM under a key derived from the configured secret.
func newProtector(secret string) external.Protector {
	key := sha256.Sum256([]byte(secret))
	return func(value string) (string, error) {
		block, err := aes.NewCipher(key[:])
		if err != nil {
			return "", errors.Wrap(err, "protector NewCipher")
		}
		gcm, err := cipher.NewGCM(block)
		if err != nil {
			return "", errors.Wrap(err, "protector NewGCM")
		}
		nonce := make([]byte, gcm.NonceSize())
		if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
			return "", errors.Wrap(err, "protector nonce")
		}
		sealed := gcm.Seal(nonce, nonce, []byte(value), nil)
		return base64.RawURLEncoding.EncodeToString(sealed), nil
	}
}
