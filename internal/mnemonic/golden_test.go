package mnemonic

import (
	"bytes"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Regenerate with: go test ./internal/mnemonic -run Golden -update
func newGolden(t *testing.T) *goldie.Goldie {
	t.Helper()
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func sequentialKey() []byte {
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	return key
}

func TestGoldenZeroKey(t *testing.T) {
	codec := NewCodec(nil)
	zero := make([]byte, 32)
	phrase, err := codec.Encode(zero)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	newGolden(t).Assert(t, "english_zero_key", []byte(phrase.String()+"\n"))

	decoded, err := codec.Decode(phrase.String())
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if !bytes.Equal(decoded, zero) {
		t.Fatalf("expected all-zero key, got %x", decoded)
	}
}

func TestGoldenSequentialKeyPerBuiltin(t *testing.T) {
	for _, name := range BuiltinNames() {
		t.Run(name, func(t *testing.T) {
			wl, err := BuiltinWordlist(name)
			if err != nil {
				t.Fatalf("load %s: %v", name, err)
			}
			phrase, err := NewCodec(wl).Encode(sequentialKey())
			if err != nil {
				t.Fatalf("encode failed: %v", err)
			}
			newGolden(t).Assert(t, name+"_sequential_key", []byte(phrase.String()+"\n"))
		})
	}
}
