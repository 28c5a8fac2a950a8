package mnemonic

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/tyler-smith/go-bip39/wordlists"
)

const (
	// MinWordlistSize is the smallest N with N^3 >= 2^32, so one word triple
	// can carry any 32-bit group.
	MinWordlistSize = 1626
	// MaxWordlistSize keeps index arithmetic inside uint64.
	MaxWordlistSize     = 1 << 16
	DefaultPrefixLength = 3
	// DefaultWordlistName is the 2048-word BIP-39 English list, which needs a
	// prefix length of 4. Deployments that want the 4096-word layout load it
	// with LoadWordlistFile and DefaultPrefixLength.
	DefaultWordlistName = "english"
)

// Wordlist is an ordered, immutable vocabulary. Word order is part of the
// encoding and must never change between versions.
type Wordlist struct {
	name         string
	words        []string
	prefixLength int
	byWord       map[string]int
	byPrefix     map[string]int
}

type builtinSource struct {
	words        []string
	prefixLength int
}

var (
	builtinSources = map[string]builtinSource{
		"english": {words: wordlists.English, prefixLength: 4},
		"czech":   {words: wordlists.Czech, prefixLength: 4},
		"italian": {words: wordlists.Italian, prefixLength: 4},
	}
	builtinMu    sync.Mutex
	builtinCache = map[string]*Wordlist{}
)

// NewWordlist validates words and builds the lookup indexes.
func NewWordlist(name string, words []string, prefixLength int) (*Wordlist, error) {
	if prefixLength <= 0 {
		return nil, fmt.Errorf("%w: prefix length must be positive, got %d", ErrInvalidWordlist, prefixLength)
	}
	if len(words) < MinWordlistSize || len(words) > MaxWordlistSize {
		return nil, fmt.Errorf("%w: size %d outside [%d, %d]", ErrInvalidWordlist, len(words), MinWordlistSize, MaxWordlistSize)
	}
	wl := &Wordlist{
		name:         strings.TrimSpace(name),
		words:        make([]string, len(words)),
		prefixLength: prefixLength,
		byWord:       make(map[string]int, len(words)),
		byPrefix:     make(map[string]int, len(words)),
	}
	for i, raw := range words {
		word := normalizeToken(raw)
		if word == "" || word != raw || strings.IndexFunc(word, unicode.IsSpace) >= 0 {
			return nil, wordError(ErrInvalidWordlist, raw, i)
		}
		if _, dup := wl.byWord[word]; dup {
			return nil, fmt.Errorf("%w: duplicate word %q", ErrInvalidWordlist, word)
		}
		prefix := wordPrefix(word, prefixLength)
		if other, dup := wl.byPrefix[prefix]; dup {
			return nil, fmt.Errorf("%w: %q and %q share prefix %q", ErrAmbiguousPrefix, wl.words[other], word, prefix)
		}
		wl.words[i] = word
		wl.byWord[word] = i
		wl.byPrefix[prefix] = i
	}
	return wl, nil
}

// ParseWordlist reads one word per line. Blank lines are skipped.
func ParseWordlist(r io.Reader, name string, prefixLength int) (*Wordlist, error) {
	words := make([]string, 0, 2048)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		words = append(words, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read wordlist %s: %w", name, err)
	}
	return NewWordlist(name, words, prefixLength)
}

func LoadWordlistFile(path string, prefixLength int) (*Wordlist, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseWordlist(f, path, prefixLength)
}

// BuiltinWordlist returns a cached BIP-39 list by name.
func BuiltinWordlist(name string) (*Wordlist, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = DefaultWordlistName
	}
	src, ok := builtinSources[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown builtin %q", ErrInvalidWordlist, name)
	}
	builtinMu.Lock()
	defer builtinMu.Unlock()
	if wl, ok := builtinCache[name]; ok {
		return wl, nil
	}
	wl, err := NewWordlist(name, src.words, src.prefixLength)
	if err != nil {
		return nil, err
	}
	builtinCache[name] = wl
	return wl, nil
}

func BuiltinNames() []string {
	names := make([]string, 0, len(builtinSources))
	for name := range builtinSources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// English is the default list. It panics only if the embedded list is corrupt.
func English() *Wordlist {
	wl, err := BuiltinWordlist(DefaultWordlistName)
	if err != nil {
		panic(err)
	}
	return wl
}

// WithPrefixLength returns a copy of the list that uses n prefix runes.
func (w *Wordlist) WithPrefixLength(n int) (*Wordlist, error) {
	if n == w.prefixLength {
		return w, nil
	}
	return NewWordlist(w.name, w.words, n)
}

func (w *Wordlist) Name() string      { return w.name }
func (w *Wordlist) Size() int         { return len(w.words) }
func (w *Wordlist) PrefixLength() int { return w.prefixLength }

func (w *Wordlist) Word(i int) (string, bool) {
	if i < 0 || i >= len(w.words) {
		return "", false
	}
	return w.words[i], true
}

func (w *Wordlist) Index(word string) (int, bool) {
	i, ok := w.byWord[word]
	return i, ok
}

func (w *Wordlist) Words() []string {
	return append([]string(nil), w.words...)
}

// resolve maps a normalized token to its word index. A token must be a whole
// word or a leading substring of exactly one word.
func (w *Wordlist) resolve(token string, position int) (int, error) {
	if i, ok := w.byWord[token]; ok {
		return i, nil
	}
	// Prefixes are unique, so at most one word can start with a token this long.
	if utf8.RuneCountInString(token) >= w.prefixLength {
		if i, ok := w.byPrefix[wordPrefix(token, w.prefixLength)]; ok && strings.HasPrefix(w.words[i], token) {
			return i, nil
		}
		return 0, wordError(ErrUnknownWord, token, position)
	}
	match := -1
	for i, word := range w.words {
		if !strings.HasPrefix(word, token) {
			continue
		}
		if match >= 0 {
			return 0, wordError(ErrAmbiguousPrefix, token, position)
		}
		match = i
	}
	if match < 0 {
		return 0, wordError(ErrUnknownWord, token, position)
	}
	return match, nil
}

// wordPrefix returns the first n runes of word, or all of it when shorter.
func wordPrefix(word string, n int) string {
	count := 0
	for i := range word {
		if count == n {
			return word[:i]
		}
		count++
	}
	return word
}
