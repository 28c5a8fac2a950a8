package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

const (
	MaxNameRunes   = 26
	MaxAvatarBytes = 5 * 1024 * 1024
)

var (
	ErrInvalidProfileName = errors.New("invalid profile name")
	ErrAvatarTooLarge     = errors.New("avatar exceeds maximum size")
)

type Profile struct {
	Name      string
	Avatar    []byte
	UpdatedAt time.Time
}

// Manager holds the local user's profile.
type Manager struct {
	mu    sync.RWMutex
	local Profile
	now   func() time.Time
}

func NewManager() *Manager {
	return &Manager{now: time.Now}
}

// NormalizeProfileName trims and NFC-normalizes name and enforces length and
// character rules.
func NormalizeProfileName(name string) (string, error) {
	name = norm.NFC.String(strings.TrimSpace(name))
	n := utf8.RuneCountInString(name)
	if n == 0 || n > MaxNameRunes {
		return "", fmt.Errorf("%w: length %d", ErrInvalidProfileName, n)
	}
	if strings.IndexFunc(name, unicode.IsControl) >= 0 {
		return "", fmt.Errorf("%w: control characters", ErrInvalidProfileName)
	}
	return name, nil
}

// UpdateLocalProfileName sets the display name. A nil avatar keeps the
// current one.
func (m *Manager) UpdateLocalProfileName(ctx context.Context, name string, avatar []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	name, err := NormalizeProfileName(name)
	if err != nil {
		return err
	}
	if len(avatar) > MaxAvatarBytes {
		return ErrAvatarTooLarge
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.local.Name = name
	if avatar != nil {
		m.local.Avatar = append([]byte(nil), avatar...)
	}
	m.local.UpdatedAt = m.now().UTC()
	return nil
}

func (m *Manager) LocalProfile() Profile {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := m.local
	out.Avatar = append([]byte(nil), m.local.Avatar...)
	return out
}
