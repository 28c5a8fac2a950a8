package rpc

import (
	"errors"

	"loki-messenger/go-backend/internal/identity"
	"loki-messenger/go-backend/internal/mnemonic"
	"loki-messenger/go-backend/internal/onboarding"
)

const (
	codeParseError         = -32700
	codeInvalidRequest     = -32600
	codeMethodNotFound     = -32601
	codeInvalidParams      = -32602
	codeInvalidKeyLength   = -32010
	codeMalformedPhrase    = -32011
	codeUnknownWord        = -32012
	codeAmbiguousPrefix    = -32013
	codeChecksumMismatch   = -32014
	codeNoIdentity         = -32020
	codeInvalidSeed        = -32021
	codeOnboardingState    = -32022
	codeRateLimited        = -32029
	codeServiceError       = -32000
	codeServiceUnavailable = -32099
)

func rpcInvalidParams() *rpcError {
	return &rpcError{Code: codeInvalidParams, Message: "invalid params"}
}

var errorCodes = []struct {
	err  error
	code int
}{
	{mnemonic.ErrInvalidKeyLength, codeInvalidKeyLength},
	{mnemonic.ErrMalformedPhrase, codeMalformedPhrase},
	{mnemonic.ErrUnknownWord, codeUnknownWord},
	{mnemonic.ErrAmbiguousPrefix, codeAmbiguousPrefix},
	{mnemonic.ErrChecksumMismatch, codeChecksumMismatch},
	{identity.ErrNoIdentity, codeNoIdentity},
	{identity.ErrInvalidSeed, codeInvalidSeed},
	{onboarding.ErrNotStarted, codeOnboardingState},
	{onboarding.ErrAlreadyComplete, codeOnboardingState},
	{onboarding.ErrIdentityChanged, codeOnboardingState},
}

func mapServiceError(err error) *rpcError {
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			return &rpcError{Code: ec.code, Message: err.Error()}
		}
	}
	return &rpcError{Code: codeServiceError, Message: err.Error()}
}
