package token

import (
	"crypto/rsa"
	"encoding/base64"
	"math/big"
	"sync"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// RSAParameters holds raw RSA key material, each field base64url-encoded
// without padding. Modulus and Exponent are required; the private fields are
// optional and only needed when the key must sign.
type RSAParameters struct {
	Modulus  string // n
	Exponent string // e
	D        string // private exponent
	P        string // first prime
	Q        string // second prime
	DP       string // d mod (p-1)
	DQ       string // d mod (q-1)
	QInv     string // q^-1 mod p
}

// SecurityKeyBuilder constructs a signing/verification key from raw RSA
// parameters. Each builder instance is owned by a single call; the built key
// must be released with Close once its material is no longer needed.
type SecurityKeyBuilder struct {
	params RSAParameters
}

// NewSecurityKeyBuilder creates a builder over the given parameters.
func NewSecurityKeyBuilder(params RSAParameters) *SecurityKeyBuilder {
	return &SecurityKeyBuilder{params: params}
}

// Build decodes the parameters into a SecurityKey. A key built without
// private material can verify but not sign.
func (b *SecurityKeyBuilder) Build() (*SecurityKey, error) {
	modulus, err := decodeKeyParameter("modulus", b.params.Modulus, true)
	if err != nil {
		return nil, err
	}
	exponent, err := decodeKeyParameter("exponent", b.params.Exponent, true)
	if err != nil {
		return nil, err
	}

	key := &SecurityKey{
		public: &rsa.PublicKey{
			N: modulus,
			E: int(exponent.Int64()),
		},
	}

	if b.params.D == "" {
		return key, nil
	}

	d, err := decodeKeyParameter("private exponent", b.params.D, true)
	if err != nil {
		return nil, err
	}
	p, err := decodeKeyParameter("p", b.params.P, false)
	if err != nil {
		return nil, err
	}
	q, err := decodeKeyParameter("q", b.params.Q, false)
	if err != nil {
		return nil, err
	}

	private := &rsa.PrivateKey{
		PublicKey: *key.public,
		D:         d,
	}
	if p != nil && q != nil {
		private.Primes = []*big.Int{p, q}
		if err := private.Validate(); err != nil {
			return nil, errors.Wrap(err, "SecurityKeyBuilder.Build invalid private key")
		}
		private.Precompute()
	}
	key.private = private
	return key, nil
}

func decodeKeyParameter(name, value string, required bool) (*big.Int, error) {
	if value == "" {
		if required {
			return nil, errors.Errorf("[SecurityKeyBuilder.Build] %s is required", name)
		}
		return nil, nil
	}
	decoded, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil, errors.Wrapf(err, "SecurityKeyBuilder.Build decode %s", name)
	}
	return new(big.Int).SetBytes(decoded), nil
}

// SecurityKey owns RSA key material. It is not safe for concurrent disposal;
// treat each key as owned by a single call and release it with Close.
type SecurityKey struct {
	public  *rsa.PublicKey
	private *rsa.PrivateKey

	once   sync.Once
	closed bool
}

// SigningMethod returns the JWT signing method this key verifies and signs
// with.
func (k *SecurityKey) SigningMethod() jwt.SigningMethod {
	return jwt.SigningMethodRS256
}

// VerificationKey returns the public key.
func (k *SecurityKey) VerificationKey(token *jwt.Token) (any, error) {
	if k.closed {
		return nil, errors.New("security key is closed")
	}
	if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
		return nil, errors.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return k.public, nil
}

// SigningKey returns the private key, or an error for a verify-only or
// closed key.
func (k *SecurityKey) SigningKey() (*rsa.PrivateKey, error) {
	if k.closed {
		return nil, errors.New("security key is closed")
	}
	if k.private == nil {
		return nil, errors.New("security key has no private material")
	}
	return k.private, nil
}

// CanSign reports whether private material is present and the key is open.
func (k *SecurityKey) CanSign() bool {
	return !k.closed && k.private != nil
}

// Close zeroes the private key material. Closing twice is a no-op.
func (k *SecurityKey) Close() {
	k.once.Do(func() {
		if k.private != nil {
			zeroBigInt(k.private.D)
			for _, prime := range k.private.Primes {
				zeroBigInt(prime)
			}
			zeroBigInt(k.private.Precomputed.Dp)
			zeroBigInt(k.private.Precomputed.Dq)
			zeroBigInt(k.private.Precomputed.Qinv)
			k.private = nil
		}
		k.closed = true
	})
}

func zeroBigInt(i *big.Int) {
	if i != nil {
		i.SetInt64(0)
	}
}
