package identity

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
	"io"
	"sync"
	"time"

	"loki-messenger/go-backend/internal/mnemonic"
)

type PhraseEncoder interface {
	Encode(key []byte) (mnemonic.Phrase, error)
}

type PhraseDecoder interface {
	Decode(phrase string) ([]byte, error)
}

// Manager owns the local identity key. It replaces the process-wide identity
// singleton: callers construct one and pass it to whoever needs it.
type Manager struct {
	mu       sync.RWMutex
	seed     []byte
	keys     *DerivedKeys
	identity Identity
	random   io.Reader
	now      func() time.Time
	guard    *attemptGuard
}

func NewManager() *Manager {
	return newManager(rand.Reader, time.Now)
}

func newManager(random io.Reader, now func() time.Time) *Manager {
	return &Manager{
		random: random,
		now:    now,
		guard:  newAttemptGuard(now),
	}
}

// GenerateNewIdentityKey replaces the current identity with a fresh one.
func (m *Manager) GenerateNewIdentityKey() (Identity, error) {
	seed := make([]byte, SeedSize)
	if _, err := io.ReadFull(m.random, seed); err != nil {
		return Identity{}, fmt.Errorf("read identity seed: %w", err)
	}
	defer zeroBytes(seed)
	return m.install(seed, m.now().UTC())
}

func (m *Manager) install(seed []byte, createdAt time.Time) (Identity, error) {
	keys, err := DeriveKeys(seed)
	if err != nil {
		return Identity{}, err
	}
	id, err := BuildIdentityID(keys.Identity.PublicKey)
	if err != nil {
		return Identity{}, err
	}
	identity := Identity{
		ID:        id,
		SessionID: SessionID(keys.Identity.PublicKey),
		PublicKey: append([]byte(nil), keys.Identity.PublicKey...),
		CreatedAt: createdAt,
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.seed != nil {
		zeroBytes(m.seed)
	}
	m.seed = append([]byte(nil), seed...)
	m.keys = keys
	m.identity = identity
	return copyIdentity(identity), nil
}

func (m *Manager) HasIdentity() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.keys != nil
}

func (m *Manager) Identity() (Identity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.keys == nil {
		return Identity{}, ErrNoIdentity
	}
	return copyIdentity(m.identity), nil
}

func (m *Manager) IdentityKeyPair() (KeyPair, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.keys == nil {
		return KeyPair{}, ErrNoIdentity
	}
	return KeyPair{
		PrivateKey: append([]byte(nil), m.keys.Identity.PrivateKey...),
		PublicKey:  append([]byte(nil), m.keys.Identity.PublicKey...),
	}, nil
}

func (m *Manager) HexEncodedPublicKey() (string, error) {
	kp, err := m.IdentityKeyPair()
	if err != nil {
		return "", err
	}
	return kp.HexEncodedPublicKey(), nil
}

// PublicKeyPhrase encodes the raw 32-byte identity public key, the phrase
// shown on the onboarding screen.
func (m *Manager) PublicKeyPhrase(enc PhraseEncoder) (mnemonic.Phrase, error) {
	if enc == nil {
		return nil, ErrPhraseCodecRequired
	}
	kp, err := m.IdentityKeyPair()
	if err != nil {
		return nil, err
	}
	return enc.Encode(kp.PublicKey)
}

// RecoveryPhrase encodes the identity seed; RestoreFromPhrase reverses it.
func (m *Manager) RecoveryPhrase(enc PhraseEncoder) (mnemonic.Phrase, error) {
	if enc == nil {
		return nil, ErrPhraseCodecRequired
	}
	m.mu.RLock()
	if m.keys == nil {
		m.mu.RUnlock()
		return nil, ErrNoIdentity
	}
	seed := append([]byte(nil), m.seed...)
	m.mu.RUnlock()
	defer zeroBytes(seed)
	return enc.Encode(seed)
}

func (m *Manager) RestoreFromPhrase(dec PhraseDecoder, phrase string) (Identity, error) {
	if dec == nil {
		return Identity{}, ErrPhraseCodecRequired
	}
	seed, err := dec.Decode(phrase)
	if err != nil {
		return Identity{}, err
	}
	defer zeroBytes(seed)
	if len(seed) != SeedSize {
		return Identity{}, fmt.Errorf("%w: phrase encodes %d bytes", ErrInvalidSeed, len(seed))
	}
	return m.install(seed, m.now().UTC())
}

// Sign signs msg with the Ed25519 key derived from the identity seed.
func (m *Manager) Sign(msg []byte) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.keys == nil {
		return nil, ErrNoIdentity
	}
	return ed25519.Sign(m.keys.SigningPrivateKey, msg), nil
}

func (m *Manager) SigningPublicKey() (ed25519.PublicKey, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.keys == nil {
		return nil, ErrNoIdentity
	}
	return append(ed25519.PublicKey(nil), m.keys.SigningPublicKey...), nil
}

func copyIdentity(in Identity) Identity {
	out := in
	out.PublicKey = append([]byte(nil), in.PublicKey...)
	return out
}
