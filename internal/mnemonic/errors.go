package mnemonic

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidKeyLength = errors.New("key length must be a positive multiple of 4")
	ErrMalformedPhrase  = errors.New("malformed mnemonic phrase")
	ErrUnknownWord      = errors.New("unknown mnemonic word")
	ErrAmbiguousPrefix  = errors.New("ambiguous mnemonic word prefix")
	ErrChecksumMismatch = errors.New("mnemonic checksum mismatch")
	ErrInvalidWordlist  = errors.New("invalid wordlist")
)

// WordError names the offending token of a phrase or wordlist.
type WordError struct {
	Err      error
	Token    string
	Position int
}

func (e *WordError) Error() string {
	return fmt.Sprintf("%v: %q at position %d", e.Err, e.Token, e.Position)
}

func (e *WordError) Unwrap() error {
	return e.Err
}

func wordError(err error, token string, position int) error {
	return &WordError{Err: err, Token: token, Position: position}
}
