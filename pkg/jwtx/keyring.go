package jwtx

import (
	"crypto"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/Kishorekomminenik/CleanrMLP1-sub001/pkg/cryptox"
	"github.com/golang-jwt/jwt/v5"
)

// Supported signing algorithms.
const (
	AlgorithmEdDSA = "EdDSA"
	AlgorithmES256 = "ES256"
)

var ErrUnsupportedAlgorithm = errors.New("jwtx: unsupported algorithm")

type signingKey struct {
	kid string
	key crypto.Signer
}

// KeyRing holds the process signing keys. Every key signs; verification
// looks the key up by the kid header.
type KeyRing struct {
	alg    string
	method jwt.SigningMethod

	mu      sync.RWMutex
	signers []signingKey
	public  map[string]crypto.PublicKey
}

// NewKeyRing returns an empty ring for alg.
func NewKeyRing(alg string) (*KeyRing, error) {
	method, err := methodFor(alg)
	if err != nil {
		return nil, err
	}
	return &KeyRing{
		alg:    alg,
		method: method,
		public: make(map[string]crypto.PublicKey),
	}, nil
}

// GenerateKeyRing creates a ring with n freshly generated keys. Keys only live
// in memory, so tokens do not survive a restart.
func GenerateKeyRing(alg string, n int) (*KeyRing, error) {
	ring, err := NewKeyRing(alg)
	if err != nil {
		return nil, err
	}

	n = min(max(n, 1), 10)
	for i := range n {
		key, err := generateKey(alg)
		if err != nil {
			return nil, fmt.Errorf("jwtx: generate key %d: %w", i+1, err)
		}
		kid, err := cryptox.GenerateToken(cryptox.TokenSize128)
		if err != nil {
			return nil, err
		}
		if err := ring.Add(kid, key); err != nil {
			return nil, err
		}
	}
	return ring, nil
}

// Add registers key under kid for both signing and verification.
func (k *KeyRing) Add(kid string, key crypto.Signer) error {
	if kid == "" || key == nil {
		return errors.New("jwtx: kid and key are required")
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	if _, dup := k.public[kid]; dup {
		return fmt.Errorf("jwtx: duplicate kid %q", kid)
	}
	k.signers = append(k.signers, signingKey{kid: kid, key: key})
	k.public[kid] = key.Public()
	return nil
}

func (k *KeyRing) Algorithm() string { return k.alg }

// Len is the number of signing keys.
func (k *KeyRing) Len() int {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return len(k.signers)
}

// Sign serializes claims into a compact JWS using a randomly chosen key.
func (k *KeyRing) Sign(claims Claims) (string, error) {
	k.mu.RLock()
	if len(k.signers) == 0 {
		k.mu.RUnlock()
		return "", errors.New("jwtx: no signing keys")
	}
	sk := k.signers[rand.IntN(len(k.signers))]
	k.mu.RUnlock()

	t := jwt.NewWithClaims(k.method, claims)
	t.Header["kid"] = sk.kid
	return t.SignedString(sk.key)
}

func (k *KeyRing) publicKey(kid string) (crypto.PublicKey, bool) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	pub, ok := k.public[kid]
	return pub, ok
}

func methodFor(alg string) (jwt.SigningMethod, error) {
	switch alg {
	case AlgorithmEdDSA:
		return jwt.SigningMethodEdDSA, nil
	case AlgorithmES256:
		return jwt.SigningMethodES256, nil
	default:
		return nil, fmt.Errorf("%w %q (supported: EdDSA, ES256)", ErrUnsupportedAlgorithm, alg)
	}
}

func generateKey(alg string) (crypto.Signer, error) {
	switch alg {
	case AlgorithmEdDSA:
		return cryptox.GenerateEd25519Key()
	case AlgorithmES256:
		return cryptox.GenerateES256Key()
	default:
		return nil, ErrUnsupportedAlgorithm
	}
}
