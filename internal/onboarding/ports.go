package onboarding

import (
	"context"

	"loki-messenger/go-backend/internal/identity"
)

type IdentityGenerator interface {
	GenerateNewIdentityKey() (identity.Identity, error)
	Identity() (identity.Identity, error)
}

type AccountRegistrar interface {
	SetNumberAwaitingVerification(number string) error
	DidRegister() error
}

type ProfileUpdater interface {
	UpdateLocalProfileName(ctx context.Context, name string, avatar []byte) error
}

// Listener is told when registration has finished. The service holds a
// non-owning reference; callers detach with SetListener(nil) on teardown.
type Listener interface {
	VerificationDidComplete(sessionID string)
}

// Observer receives step outcomes; *metrics.Registry satisfies it.
type Observer interface {
	ObserveOnboarding(step string, err error)
}
