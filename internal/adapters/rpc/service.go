package rpc

import (
	"context"

	"loki-messenger/go-backend/internal/identity"
	"loki-messenger/go-backend/internal/mnemonic"
	"loki-messenger/go-backend/internal/onboarding"
)

type WordlistInfo struct {
	Name         string `json:"name"`
	Size         int    `json:"size"`
	PrefixLength int    `json:"prefix_length"`
}

// Service is what the daemon exposes over JSON-RPC.
type Service interface {
	EncodeKey(keyHex string) (mnemonic.Phrase, error)
	DecodePhrase(phrase string) (string, error)
	WordlistInfo() WordlistInfo
	CreateIdentity() (onboarding.PublicKeyStep, error)
	GetIdentity() (identity.Identity, error)
	RestoreIdentity(phrase string) (identity.Identity, error)
	Register(ctx context.Context, userName *string) (onboarding.RegistrationResult, error)
}
