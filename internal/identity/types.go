package identity

import (
	"crypto/ed25519"
	"time"
)

const (
	// SeedSize is the length of the identity seed the recovery phrase encodes.
	SeedSize = 32
	// SessionIDPrefix marks a Curve25519 key in hex-encoded session ids.
	SessionIDPrefix = "05"
)

// KeyPair is the X25519 identity key pair.
type KeyPair struct {
	PrivateKey []byte
	PublicKey  []byte
}

// HexEncodedPublicKey is the session id form handed to the account manager.
func (k KeyPair) HexEncodedPublicKey() string {
	return SessionID(k.PublicKey)
}

type DerivedKeys struct {
	Identity          KeyPair
	SigningPrivateKey ed25519.PrivateKey
	SigningPublicKey  ed25519.PublicKey
}

type Identity struct {
	ID        string
	SessionID string
	PublicKey []byte
	CreatedAt time.Time
}

type keyFile struct {
	Version   uint32    `json:"version"`
	Seed      []byte    `json:"seed"`
	CreatedAt time.Time `json:"created_at"`
}
