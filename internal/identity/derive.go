package identity

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/mr-tron/base58/base58"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/hkdf"
)

const (
	hkdfInfoIdentity = "loki/identity/x25519/v1"
	hkdfInfoSigning  = "loki/identity/signing/v1"
	identityIDPrefix = "lk1"
)

// DeriveKeys expands a 32-byte seed into the X25519 identity key pair and an
// Ed25519 signing key.
func DeriveKeys(seed []byte) (*DerivedKeys, error) {
	if len(seed) != SeedSize {
		return nil, fmt.Errorf("%w: got %d bytes", ErrInvalidSeed, len(seed))
	}
	identityScalar, err := hkdfExpand(seed, hkdfInfoIdentity, curve25519.ScalarSize)
	if err != nil {
		return nil, err
	}
	identityPub, err := curve25519.X25519(identityScalar, curve25519.Basepoint)
	if err != nil {
		return nil, err
	}
	signingSeed, err := hkdfExpand(seed, hkdfInfoSigning, ed25519.SeedSize)
	if err != nil {
		return nil, err
	}
	signingPriv := ed25519.NewKeyFromSeed(signingSeed)
	zeroBytes(signingSeed)

	return &DerivedKeys{
		Identity: KeyPair{
			PrivateKey: identityScalar,
			PublicKey:  identityPub,
		},
		SigningPrivateKey: signingPriv,
		SigningPublicKey:  signingPriv.Public().(ed25519.PublicKey),
	}, nil
}

// BuildIdentityID fingerprints an identity public key for display and logs.
func BuildIdentityID(publicKey []byte) (string, error) {
	if len(publicKey) != curve25519.PointSize {
		return "", fmt.Errorf("invalid identity public key size: %d", len(publicKey))
	}
	h := blake2b.Sum256(publicKey)
	return identityIDPrefix + base58.Encode(h[:]), nil
}

func SessionID(publicKey []byte) string {
	return SessionIDPrefix + hex.EncodeToString(publicKey)
}

func hkdfExpand(seed []byte, info string, outLen int) ([]byte, error) {
	reader := hkdf.New(sha256.New, seed, nil, []byte(info))
	out := make([]byte, outLen)
	if _, err := io.ReadFull(reader, out); err != nil {
		return nil, err
	}
	return out, nil
}

func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
