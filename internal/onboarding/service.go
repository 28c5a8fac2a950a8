package onboarding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"loki-messenger/go-backend/internal/identity"
	"loki-messenger/go-backend/internal/mnemonic"
)

const (
	StepBegin    = "begin"
	StepRegister = "register"
)

var (
	ErrNotStarted      = errors.New("onboarding has not been started")
	ErrAlreadyComplete = errors.New("onboarding is already complete")
	ErrIdentityChanged = errors.New("identity changed since onboarding began")
)

// PublicKeyStep is what the public key screen shows.
type PublicKeyStep struct {
	IdentityID          string
	HexEncodedPublicKey string
	Mnemonic            mnemonic.Phrase
}

type RegistrationResult struct {
	SessionID        string
	ProfileNameSaved bool
}

type Service struct {
	identities IdentityGenerator
	encoder    identity.PhraseEncoder
	accounts   AccountRegistrar
	profiles   ProfileUpdater
	observer   Observer
	logger     *slog.Logger

	mu       sync.Mutex
	step     *PublicKeyStep
	done     bool
	listener Listener
}

func NewService(
	identities IdentityGenerator,
	encoder identity.PhraseEncoder,
	accounts AccountRegistrar,
	profiles ProfileUpdater,
	observer Observer,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		identities: identities,
		encoder:    encoder,
		accounts:   accounts,
		profiles:   profiles,
		observer:   observer,
		logger:     logger,
	}
}

func (s *Service) SetListener(l Listener) {
	s.mu.Lock()
	s.listener = l
	s.mu.Unlock()
}

// Begin generates a new identity key and encodes its public key as the
// phrase shown to the user. Calling it again replaces the pending key.
func (s *Service) Begin() (PublicKeyStep, error) {
	step, err := s.begin()
	s.observe(StepBegin, err)
	return step, err
}

func (s *Service) begin() (PublicKeyStep, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return PublicKeyStep{}, ErrAlreadyComplete
	}
	if s.encoder == nil {
		return PublicKeyStep{}, identity.ErrPhraseCodecRequired
	}
	id, err := s.identities.GenerateNewIdentityKey()
	if err != nil {
		return PublicKeyStep{}, fmt.Errorf("generate identity key: %w", err)
	}
	phrase, err := s.encoder.Encode(id.PublicKey)
	if err != nil {
		return PublicKeyStep{}, fmt.Errorf("encode public key: %w", err)
	}
	s.step = &PublicKeyStep{
		IdentityID:          id.ID,
		HexEncodedPublicKey: id.SessionID,
		Mnemonic:            phrase,
	}
	s.logger.Info("onboarding public key generated", "identity_id", id.ID)
	return copyStep(*s.step), nil
}

// Reset drops a pending public key step. A finished registration is kept.
func (s *Service) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.done {
		s.step = nil
	}
}

// CurrentStep returns the pending public key step, if Begin has run.
func (s *Service) CurrentStep() (PublicKeyStep, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.step == nil {
		return PublicKeyStep{}, false
	}
	return copyStep(*s.step), true
}

// Register completes onboarding for the key produced by Begin. A profile
// name that cannot be saved is logged and does not fail registration.
func (s *Service) Register(ctx context.Context, userName *string) (RegistrationResult, error) {
	res, listener, err := s.register(ctx, userName)
	s.observe(StepRegister, err)
	if err != nil {
		return RegistrationResult{}, err
	}
	if listener != nil {
		listener.VerificationDidComplete(res.SessionID)
	}
	return res, nil
}

func (s *Service) register(ctx context.Context, userName *string) (RegistrationResult, Listener, error) {
	if err := ctx.Err(); err != nil {
		return RegistrationResult{}, nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return RegistrationResult{}, nil, ErrAlreadyComplete
	}
	if s.step == nil {
		return RegistrationResult{}, nil, ErrNotStarted
	}
	sessionID := s.step.HexEncodedPublicKey
	current, err := s.identities.Identity()
	if err != nil {
		return RegistrationResult{}, nil, fmt.Errorf("load identity: %w", err)
	}
	if current.SessionID != sessionID {
		s.step = nil
		return RegistrationResult{}, nil, ErrIdentityChanged
	}
	if err := s.accounts.SetNumberAwaitingVerification(sessionID); err != nil {
		return RegistrationResult{}, nil, fmt.Errorf("set number awaiting verification: %w", err)
	}
	if err := s.accounts.DidRegister(); err != nil {
		return RegistrationResult{}, nil, fmt.Errorf("register account: %w", err)
	}

	res := RegistrationResult{SessionID: sessionID}
	if userName != nil && strings.TrimSpace(*userName) != "" && s.profiles != nil {
		if err := s.profiles.UpdateLocalProfileName(ctx, *userName, nil); err != nil {
			s.logger.Warn("couldn't save profile name", "session_id", sessionID, "error", err.Error())
		} else {
			res.ProfileNameSaved = true
		}
	}
	s.done = true
	s.logger.Info("onboarding registration complete", "session_id", sessionID)
	return res, s.listener, nil
}

func (s *Service) observe(step string, err error) {
	if s.observer != nil {
		s.observer.ObserveOnboarding(step, err)
	}
}

func copyStep(in PublicKeyStep) PublicKeyStep {
	in.Mnemonic = append(mnemonic.Phrase(nil), in.Mnemonic...)
	return in
}
