// Package daemonservice assembles the identity, account, profile and
// onboarding components behind the daemon's RPC surface.
package daemonservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"loki-messenger/go-backend/internal/account"
	"loki-messenger/go-backend/internal/adapters/rpc"
	"loki-messenger/go-backend/internal/config"
	"loki-messenger/go-backend/internal/identity"
	"loki-messenger/go-backend/internal/mnemonic"
	"loki-messenger/go-backend/internal/onboarding"
	"loki-messenger/go-backend/internal/platform/metrics"
	"loki-messenger/go-backend/internal/profile"
)

var _ rpc.Service = (*Service)(nil)

type Service struct {
	codec      *mnemonic.Codec
	identities *identity.Manager
	accounts   *account.Manager
	profiles   *profile.Manager
	onboarding *onboarding.Service
	storage    config.StorageConfig
	metrics    *metrics.Registry
	logger     *slog.Logger

	persistMu sync.Mutex
}

// New builds the service from cfg. With storage enabled, a previously saved
// identity and account snapshot are loaded from the data dir.
func New(cfg config.Config, reg *metrics.Registry, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}
	wl, err := cfg.Mnemonic.LoadWordlist()
	if err != nil {
		return nil, fmt.Errorf("load wordlist: %w", err)
	}
	s := &Service{
		codec:      mnemonic.NewCodec(wl),
		identities: identity.NewManager(),
		profiles:   profile.NewManager(),
		storage:    cfg.Storage,
		metrics:    reg,
		logger:     logger,
	}

	if cfg.Storage.Enabled() {
		id, err := s.identities.LoadEncrypted(cfg.Storage.IdentityPath(), cfg.Storage.Passphrase)
		switch {
		case err == nil:
			logger.Info("identity loaded", "identity_id", id.ID)
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("load identity: %w", err)
		}
		s.accounts, err = account.NewPersistentManager(cfg.Storage.AccountPath(), cfg.Storage.Passphrase)
		if err != nil {
			return nil, err
		}
	} else {
		logger.Warn("storage passphrase or data dir not set; identity is kept in memory only")
		s.accounts = account.NewManager()
	}

	s.onboarding = onboarding.NewService(s.identities, s.codec, s.accounts, s.profiles, reg, logger)
	return s, nil
}

func (s *Service) Codec() *mnemonic.Codec { return s.codec }

func (s *Service) Onboarding() *onboarding.Service { return s.onboarding }

func (s *Service) EncodeKey(keyHex string) (mnemonic.Phrase, error) {
	phrase, err := s.codec.EncodeHex(keyHex)
	s.metrics.ObserveCodec("encode", err)
	return phrase, err
}

func (s *Service) DecodePhrase(phrase string) (string, error) {
	keyHex, err := s.codec.DecodeHex(phrase)
	s.metrics.ObserveCodec("decode", err)
	return keyHex, err
}

func (s *Service) WordlistInfo() rpc.WordlistInfo {
	wl := s.codec.Wordlist()
	return rpc.WordlistInfo{Name: wl.Name(), Size: wl.Size(), PrefixLength: wl.PrefixLength()}
}

func (s *Service) CreateIdentity() (onboarding.PublicKeyStep, error) {
	step, err := s.onboarding.Begin()
	if err != nil {
		return onboarding.PublicKeyStep{}, err
	}
	if err := s.persistIdentity(); err != nil {
		return onboarding.PublicKeyStep{}, err
	}
	return step, nil
}

func (s *Service) GetIdentity() (identity.Identity, error) {
	return s.identities.Identity()
}

func (s *Service) RestoreIdentity(phrase string) (identity.Identity, error) {
	id, err := s.identities.RestoreFromPhrase(s.codec, phrase)
	s.metrics.ObserveCodec("restore", err)
	if err != nil {
		return identity.Identity{}, err
	}
	s.onboarding.Reset()
	if err := s.persistIdentity(); err != nil {
		return identity.Identity{}, err
	}
	s.logger.Info("identity restored", "identity_id", id.ID)
	return id, nil
}

func (s *Service) Register(ctx context.Context, userName *string) (onboarding.RegistrationResult, error) {
	return s.onboarding.Register(ctx, userName)
}

func (s *Service) persistIdentity() error {
	if !s.storage.Enabled() {
		return nil
	}
	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	if err := s.identities.SaveEncrypted(s.storage.IdentityPath(), s.storage.Passphrase); err != nil {
		return fmt.Errorf("save identity: %w", err)
	}
	return nil
}
