package mnemonic

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func syntheticWords(n int) []string {
	words := make([]string, n)
	for i := range words {
		words[i] = string([]byte{'a' + byte(i/676%26), 'a' + byte(i/26%26), 'a' + byte(i%26)}) + "word"
	}
	return words
}

func TestBuiltinWordlists(t *testing.T) {
	for _, name := range BuiltinNames() {
		wl, err := BuiltinWordlist(name)
		if err != nil {
			t.Fatalf("builtin %s: %v", name, err)
		}
		if wl.Size() != 2048 || wl.PrefixLength() != 4 || wl.Name() != name {
			t.Fatalf("builtin %s: size=%d prefix=%d name=%q", name, wl.Size(), wl.PrefixLength(), wl.Name())
		}
	}
	def, err := BuiltinWordlist("  ")
	if err != nil {
		t.Fatalf("default builtin: %v", err)
	}
	if def != English() {
		t.Fatal("blank name should resolve to the cached english list")
	}
	if w, _ := def.Word(0); w != "abandon" {
		t.Fatalf("unexpected first word %q", w)
	}
	if _, err := BuiltinWordlist("klingon"); !errors.Is(err, ErrInvalidWordlist) {
		t.Fatalf("expected ErrInvalidWordlist, got %v", err)
	}
}

func TestEnglishNeedsFourPrefixRunes(t *testing.T) {
	if _, err := English().WithPrefixLength(3); !errors.Is(err, ErrAmbiguousPrefix) {
		t.Fatalf("expected ErrAmbiguousPrefix, got %v", err)
	}
	same, err := English().WithPrefixLength(4)
	if err != nil || same != English() {
		t.Fatalf("same prefix length should return the list itself, err=%v", err)
	}
}

func TestParseWordlistFourThousandWords(t *testing.T) {
	words := syntheticWords(4096)
	raw := "\n" + strings.Join(words, "\n\n") + "\n   \n"
	wl, err := ParseWordlist(strings.NewReader(raw), "synthetic", DefaultPrefixLength)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if wl.Size() != 4096 {
		t.Fatalf("expected 4096 words, got %d", wl.Size())
	}
	codec := NewCodec(wl)
	phrase, err := codec.Encode(sequentialKey())
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	want := "ajwword alcword alfword bxkword cbcword cbjword dkyword drcword drnword eymword fhcword fhrword " +
		"akmword avpword awiword byaword clpword cmmword dloword ebpword ecqword ezcword frpword fsuword avpword"
	if phrase.String() != want {
		t.Fatalf("unexpected phrase %q", phrase.String())
	}
	got, err := codec.Decode("ajw alc alf bxk cbc cbj dky drc drn eym fhc fhr akm avp awi bya clp cmm dlo ebp ecq ezc frp fsu avp")
	if err != nil {
		t.Fatalf("decode by prefix failed: %v", err)
	}
	if !bytes.Equal(got, sequentialKey()) {
		t.Fatalf("unexpected key %x", got)
	}
}

func TestLoadWordlistFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.txt")
	if err := os.WriteFile(path, []byte(strings.Join(syntheticWords(1626), "\n")), 0o600); err != nil {
		t.Fatalf("write wordlist: %v", err)
	}
	wl, err := LoadWordlistFile(path, 3)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if wl.Size() != MinWordlistSize {
		t.Fatalf("unexpected size %d", wl.Size())
	}
	if _, err := LoadWordlistFile(filepath.Join(t.TempDir(), "missing.txt"), 3); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestNewWordlistValidation(t *testing.T) {
	tooSmall := syntheticWords(MinWordlistSize - 1)
	if _, err := NewWordlist("small", tooSmall, 3); !errors.Is(err, ErrInvalidWordlist) {
		t.Fatalf("expected size rejection, got %v", err)
	}

	dup := syntheticWords(2000)
	dup[10] = dup[11]
	if _, err := NewWordlist("dup", dup, 3); !errors.Is(err, ErrInvalidWordlist) {
		t.Fatalf("expected duplicate rejection, got %v", err)
	}

	upper := syntheticWords(2000)
	upper[5] = "Aafword"
	if _, err := NewWordlist("upper", upper, 3); !errors.Is(err, ErrInvalidWordlist) {
		t.Fatalf("expected case rejection, got %v", err)
	}

	spaced := syntheticWords(2000)
	spaced[7] = "aah word"
	if _, err := NewWordlist("spaced", spaced, 3); !errors.Is(err, ErrInvalidWordlist) {
		t.Fatalf("expected whitespace rejection, got %v", err)
	}

	collide := syntheticWords(2000)
	collide[1] = "aaaother"
	if _, err := NewWordlist("collide", collide, 3); !errors.Is(err, ErrAmbiguousPrefix) {
		t.Fatalf("expected prefix collision, got %v", err)
	}

	if _, err := NewWordlist("zero", syntheticWords(2000), 0); !errors.Is(err, ErrInvalidWordlist) {
		t.Fatalf("expected prefix length rejection, got %v", err)
	}
}

func TestWordlistAccessors(t *testing.T) {
	wl := English()
	if i, ok := wl.Index("zoo"); !ok || i != 2047 {
		t.Fatalf("expected zoo at 2047, got %d %v", i, ok)
	}
	if _, ok := wl.Word(2048); ok {
		t.Fatal("out of range word lookup should fail")
	}
	words := wl.Words()
	words[0] = "mutated"
	if w, _ := wl.Word(0); w != "abandon" {
		t.Fatal("Words must return a copy")
	}
}

func TestWordPrefixCountsRunes(t *testing.T) {
	if got := wordPrefix("žluťoučký", 3); got != "žlu" {
		t.Fatalf("unexpected prefix %q", got)
	}
	if got := wordPrefix("ab", 4); got != "ab" {
		t.Fatalf("short word prefix should be the word, got %q", got)
	}
}
