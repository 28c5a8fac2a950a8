package account

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"loki-messenger/go-backend/internal/securestore"
)

var (
	ErrInvalidNumber               = errors.New("invalid account number")
	ErrNothingAwaitingVerification = errors.New("no number is awaiting verification")
	ErrAlreadyRegistered           = errors.New("account is already registered")
)

type State struct {
	NumberAwaitingVerification string    `json:"number_awaiting_verification,omitempty"`
	LocalNumber                string    `json:"local_number,omitempty"`
	RegisteredAt               time.Time `json:"registered_at,omitempty"`
}

// Manager tracks local registration. Numbers are hex session ids.
type Manager struct {
	mu     sync.RWMutex
	state  State
	path   string
	secret string
	now    func() time.Time
}

func NewManager() *Manager {
	return &Manager{now: time.Now}
}

// NewPersistentManager keeps state in an encrypted snapshot at path and
// loads any existing snapshot.
func NewPersistentManager(path, secret string) (*Manager, error) {
	m := NewManager()
	if !securestore.IsStorageConfigured(path, secret) {
		return m, nil
	}
	m.path = strings.TrimSpace(path)
	m.secret = strings.TrimSpace(secret)
	var state State
	err := securestore.ReadDecryptedJSON(m.path, m.secret, &state)
	switch {
	case err == nil:
		m.state = state
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("load account state: %w", err)
	}
	return m, nil
}

func (m *Manager) SetNumberAwaitingVerification(number string) error {
	number = strings.TrimSpace(number)
	if number == "" {
		return ErrInvalidNumber
	}
	if _, err := hex.DecodeString(number); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidNumber, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.LocalNumber != "" {
		return ErrAlreadyRegistered
	}
	m.state.NumberAwaitingVerification = number
	return m.persistLocked()
}

// DidRegister promotes the pending number to the local number.
func (m *Manager) DidRegister() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.NumberAwaitingVerification == "" {
		return ErrNothingAwaitingVerification
	}
	prev := m.state
	m.state.LocalNumber = m.state.NumberAwaitingVerification
	m.state.NumberAwaitingVerification = ""
	m.state.RegisteredAt = m.now().UTC()
	if err := m.persistLocked(); err != nil {
		m.state = prev
		return err
	}
	return nil
}

func (m *Manager) IsRegistered() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.LocalNumber != ""
}

func (m *Manager) LocalNumber() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.LocalNumber
}

func (m *Manager) NumberAwaitingVerification() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.NumberAwaitingVerification
}

func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

func (m *Manager) persistLocked() error {
	if m.path == "" {
		return nil
	}
	return securestore.WriteEncryptedJSON(m.path, m.secret, m.state)
}
