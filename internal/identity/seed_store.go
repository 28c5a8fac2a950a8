package identity

import (
	"errors"
	"fmt"

	"loki-messenger/go-backend/internal/securestore"
)

const keyFileVersion = 1

// SaveEncrypted writes the identity seed to path under passphrase.
func (m *Manager) SaveEncrypted(path, passphrase string) error {
	passphrase, err := normalizePassphrase(passphrase)
	if err != nil {
		return err
	}
	m.mu.RLock()
	if m.keys == nil {
		m.mu.RUnlock()
		return ErrNoIdentity
	}
	file := keyFile{
		Version:   keyFileVersion,
		Seed:      append([]byte(nil), m.seed...),
		CreatedAt: m.identity.CreatedAt,
	}
	m.mu.RUnlock()
	defer zeroBytes(file.Seed)
	return securestore.WriteEncryptedJSON(path, passphrase, file)
}

// LoadEncrypted restores the identity saved by SaveEncrypted. Wrong
// passphrases lock further attempts with exponential backoff.
func (m *Manager) LoadEncrypted(path, passphrase string) (Identity, error) {
	passphrase, err := normalizePassphrase(passphrase)
	if err != nil {
		return Identity{}, err
	}
	if err := m.guard.check(); err != nil {
		return Identity{}, err
	}
	var file keyFile
	if err := securestore.ReadDecryptedJSON(path, passphrase, &file); err != nil {
		if errors.Is(err, securestore.ErrAuthFailed) {
			m.guard.fail()
			return Identity{}, ErrInvalidPassphrase
		}
		return Identity{}, err
	}
	defer zeroBytes(file.Seed)
	m.guard.reset()
	if file.Version != keyFileVersion {
		return Identity{}, fmt.Errorf("%w: version %d", ErrUnsupportedKeyFile, file.Version)
	}
	return m.install(file.Seed, file.CreatedAt)
}
