package onboarding

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"loki-messenger/go-backend/internal/account"
	"loki-messenger/go-backend/internal/identity"
	"loki-messenger/go-backend/internal/mnemonic"
	"loki-messenger/go-backend/internal/profile"
)

type recordingListener struct {
	sessionIDs []string
}

func (l *recordingListener) VerificationDidComplete(sessionID string) {
	l.sessionIDs = append(l.sessionIDs, sessionID)
}

type recordingObserver struct {
	steps []string
}

func (o *recordingObserver) ObserveOnboarding(step string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	o.steps = append(o.steps, step+":"+result)
}

type failingAccounts struct{}

func (failingAccounts) SetNumberAwaitingVerification(string) error { return nil }
func (failingAccounts) DidRegister() error                         { return errors.New("disk full") }

type harness struct {
	svc        *Service
	identities *identity.Manager
	accounts *account.Manager
	profiles *profile.Manager
	logs     *bytes.Buffer
	observer *recordingObserver
}

func newHarness(t *testing.T) harness {
	t.Helper()
	logs := &bytes.Buffer{}
	h := harness{
		identities: identity.NewManager(),
		accounts:   account.NewManager(),
		profiles:   profile.NewManager(),
		logs:       logs,
		observer:   &recordingObserver{},
	}
	h.svc = NewService(
		h.identities,
		mnemonic.NewCodec(nil),
		h.accounts,
		h.profiles,
		h.observer,
		slog.New(slog.NewTextHandler(logs, nil)),
	)
	return h
}

func TestBeginEncodesPublicKey(t *testing.T) {
	h := newHarness(t)
	step, err := h.svc.Begin()
	if err != nil {
		t.Fatalf("begin failed: %v", err)
	}
	if !strings.HasPrefix(step.HexEncodedPublicKey, identity.SessionIDPrefix) || len(step.HexEncodedPublicKey) != 66 {
		t.Fatalf("unexpected session id %q", step.HexEncodedPublicKey)
	}
	if len(step.Mnemonic) != 25 {
		t.Fatalf("expected 25 words, got %d", len(step.Mnemonic))
	}
	decoded, err := mnemonic.NewCodec(nil).Decode(step.Mnemonic.String())
	if err != nil {
		t.Fatalf("decode onboarding phrase: %v", err)
	}
	if hex.EncodeToString(decoded) != strings.TrimPrefix(step.HexEncodedPublicKey, identity.SessionIDPrefix) {
		t.Fatal("phrase should encode the identity public key")
	}
	current, ok := h.svc.CurrentStep()
	if !ok || current.HexEncodedPublicKey != step.HexEncodedPublicKey {
		t.Fatalf("current step mismatch: %+v", current)
	}
	current.Mnemonic[0] = "mutated"
	again, _ := h.svc.CurrentStep()
	if again.Mnemonic[0] == "mutated" {
		t.Fatal("CurrentStep must return a copy")
	}
}

func TestRegisterBeforeBegin(t *testing.T) {
	h := newHarness(t)
	if _, err := h.svc.Register(context.Background(), nil); !errors.Is(err, ErrNotStarted) {
		t.Fatalf("expected ErrNotStarted, got %v", err)
	}
	if h.accounts.IsRegistered() {
		t.Fatal("account must not be registered")
	}
}

func TestResetDropsPendingStep(t *testing.T) {
	h := newHarness(t)
	if _, err := h.svc.Begin(); err != nil {
		t.Fatalf("begin failed: %v", err)
	}
	h.svc.Reset()
	if _, ok := h.svc.CurrentStep(); ok {
		t.Fatal("step should be cleared")
	}
	if _, err := h.svc.Register(context.Background(), nil); !errors.Is(err, ErrNotStarted) {
		t.Fatalf("expected ErrNotStarted, got %v", err)
	}
}

func TestRegisterRejectsReplacedIdentity(t *testing.T) {
	h := newHarness(t)
	if _, err := h.svc.Begin(); err != nil {
		t.Fatalf("begin failed: %v", err)
	}
	if _, err := h.identities.GenerateNewIdentityKey(); err != nil {
		t.Fatalf("replace identity: %v", err)
	}
	if _, err := h.svc.Register(context.Background(), nil); !errors.Is(err, ErrIdentityChanged) {
		t.Fatalf("expected ErrIdentityChanged, got %v", err)
	}
	if h.accounts.IsRegistered() {
		t.Fatal("account must not be registered with a stale key")
	}
	if _, ok := h.svc.CurrentStep(); ok {
		t.Fatal("stale step should be dropped")
	}
}

func TestRegisterWithUserName(t *testing.T) {
	h := newHarness(t)
	listener := &recordingListener{}
	h.svc.SetListener(listener)
	step, err := h.svc.Begin()
	if err != nil {
		t.Fatalf("begin failed: %v", err)
	}
	name := "  Alice "
	res, err := h.svc.Register(context.Background(), &name)
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if res.SessionID != step.HexEncodedPublicKey || !res.ProfileNameSaved {
		t.Fatalf("unexpected result %+v", res)
	}
	if h.accounts.LocalNumber() != step.HexEncodedPublicKey {
		t.Fatalf("unexpected local number %q", h.accounts.LocalNumber())
	}
	if h.profiles.LocalProfile().Name != "Alice" {
		t.Fatalf("unexpected profile name %q", h.profiles.LocalProfile().Name)
	}
	if len(listener.sessionIDs) != 1 || listener.sessionIDs[0] != res.SessionID {
		t.Fatalf("listener not notified: %v", listener.sessionIDs)
	}
	if _, err := h.svc.Register(context.Background(), nil); !errors.Is(err, ErrAlreadyComplete) {
		t.Fatalf("expected ErrAlreadyComplete, got %v", err)
	}
	if _, err := h.svc.Begin(); !errors.Is(err, ErrAlreadyComplete) {
		t.Fatalf("expected ErrAlreadyComplete from Begin, got %v", err)
	}
}

func TestRegisterContinuesWhenProfileNameRejected(t *testing.T) {
	h := newHarness(t)
	listener := &recordingListener{}
	h.svc.SetListener(listener)
	if _, err := h.svc.Begin(); err != nil {
		t.Fatalf("begin failed: %v", err)
	}
	name := strings.Repeat("x", profile.MaxNameRunes+1)
	res, err := h.svc.Register(context.Background(), &name)
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if res.ProfileNameSaved {
		t.Fatal("profile name should not have been saved")
	}
	if !h.accounts.IsRegistered() || len(listener.sessionIDs) != 1 {
		t.Fatal("registration should complete despite the profile failure")
	}
	if !strings.Contains(h.logs.String(), "couldn't save profile name") {
		t.Fatalf("expected a warning in logs, got %q", h.logs.String())
	}
}

func TestRegisterSkipsBlankUserName(t *testing.T) {
	h := newHarness(t)
	if _, err := h.svc.Begin(); err != nil {
		t.Fatalf("begin failed: %v", err)
	}
	blank := "   "
	res, err := h.svc.Register(context.Background(), &blank)
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if res.ProfileNameSaved || h.profiles.LocalProfile().Name != "" {
		t.Fatal("blank name should not touch the profile")
	}
}

func TestRegisterAccountFailure(t *testing.T) {
	listener := &recordingListener{}
	svc := NewService(identity.NewManager(), mnemonic.NewCodec(nil), failingAccounts{}, nil, nil,
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	svc.SetListener(listener)
	if _, err := svc.Begin(); err != nil {
		t.Fatalf("begin failed: %v", err)
	}
	if _, err := svc.Register(context.Background(), nil); err == nil {
		t.Fatal("expected registration error")
	}
	if len(listener.sessionIDs) != 0 {
		t.Fatal("listener must not be notified on failure")
	}
}

func TestRegisterHonoursCancelledContext(t *testing.T) {
	h := newHarness(t)
	if _, err := h.svc.Begin(); err != nil {
		t.Fatalf("begin failed: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := h.svc.Register(ctx, nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if h.accounts.IsRegistered() {
		t.Fatal("cancelled registration must not register")
	}
}

func TestDetachedListenerIsNotCalled(t *testing.T) {
	h := newHarness(t)
	listener := &recordingListener{}
	h.svc.SetListener(listener)
	h.svc.SetListener(nil)
	if _, err := h.svc.Begin(); err != nil {
		t.Fatalf("begin failed: %v", err)
	}
	if _, err := h.svc.Register(context.Background(), nil); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if len(listener.sessionIDs) != 0 {
		t.Fatal("detached listener should not be notified")
	}
	want := []string{"begin:ok", "register:ok"}
	if strings.Join(h.observer.steps, ",") != strings.Join(want, ",") {
		t.Fatalf("unexpected observed steps %v", h.observer.steps)
	}
}
