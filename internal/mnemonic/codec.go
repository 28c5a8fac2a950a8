package mnemonic

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"hash/crc32"
	"math"
	"strings"
)

const groupBytes = 4

// Phrase is an encoded key: content words followed by one checksum word.
type Phrase []string

func (p Phrase) String() string {
	return strings.Join(p, " ")
}

func (p Phrase) ContentWords() []string {
	if len(p) == 0 {
		return nil
	}
	return append([]string(nil), p[:len(p)-1]...)
}

func (p Phrase) ChecksumWord() string {
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1]
}

// Codec converts key bytes to phrases and back. It holds no mutable state.
type Codec struct {
	wordlist *Wordlist
}

// NewCodec uses the English list when wl is nil.
func NewCodec(wl *Wordlist) *Codec {
	if wl == nil {
		wl = English()
	}
	return &Codec{wordlist: wl}
}

func (c *Codec) Wordlist() *Wordlist {
	return c.wordlist
}

// Encode splits key into little-endian 32-bit groups and emits three words
// per group plus a checksum word.
func (c *Codec) Encode(key []byte) (Phrase, error) {
	if len(key) == 0 || len(key)%groupBytes != 0 {
		return nil, fmt.Errorf("%w: got %d bytes", ErrInvalidKeyLength, len(key))
	}
	n := uint32(c.wordlist.Size())
	words := make([]string, 0, len(key)/groupBytes*3+1)
	for i := 0; i < len(key); i += groupBytes {
		v := binary.LittleEndian.Uint32(key[i : i+groupBytes])
		w1 := v % n
		w2 := (v/n + w1) % n
		w3 := (v/n/n + w2) % n
		words = append(words, c.wordlist.words[w1], c.wordlist.words[w2], c.wordlist.words[w3])
	}
	words = append(words, words[checksumIndex(words, c.wordlist.prefixLength)])
	return Phrase(words), nil
}

// EncodeHex accepts the hex form used at identity call sites.
func (c *Codec) EncodeHex(keyHex string) (Phrase, error) {
	key, err := hex.DecodeString(strings.TrimSpace(keyHex))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKeyLength, err)
	}
	return c.Encode(key)
}

// Decode parses a whitespace-separated phrase. Unique word prefixes are
// accepted in place of full words.
func (c *Codec) Decode(phrase string) ([]byte, error) {
	return c.DecodeWords(SplitPhrase(phrase))
}

func (c *Codec) DecodeHex(phrase string) (string, error) {
	key, err := c.Decode(phrase)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(key), nil
}

func (c *Codec) DecodeWords(tokens []string) ([]byte, error) {
	if len(tokens) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 words, got %d", ErrMalformedPhrase, len(tokens))
	}
	indices := make([]int, len(tokens))
	for i, raw := range tokens {
		token := normalizeToken(raw)
		if token == "" {
			return nil, wordError(ErrUnknownWord, raw, i)
		}
		idx, err := c.wordlist.resolve(token, i)
		if err != nil {
			return nil, err
		}
		indices[i] = idx
	}

	content := indices[:len(indices)-1]
	if len(content)%3 != 0 {
		return nil, fmt.Errorf("%w: %d content words is not a multiple of 3", ErrMalformedPhrase, len(content))
	}

	words := make([]string, len(content))
	for i, idx := range content {
		words[i] = c.wordlist.words[idx]
	}
	prefixLen := c.wordlist.prefixLength
	expected := words[checksumIndex(words, prefixLen)]
	claimed := c.wordlist.words[indices[len(indices)-1]]
	if wordPrefix(expected, prefixLen) != wordPrefix(claimed, prefixLen) {
		return nil, ErrChecksumMismatch
	}

	n := uint64(c.wordlist.Size())
	out := make([]byte, len(content)/3*groupBytes)
	for g := 0; g < len(content)/3; g++ {
		i1 := uint64(content[3*g])
		i2 := uint64(content[3*g+1])
		i3 := uint64(content[3*g+2])
		v := i1 + n*((i2+n-i1)%n) + n*n*((i3+n-i2)%n)
		if v > math.MaxUint32 {
			return nil, fmt.Errorf("%w: word group %d does not encode a 32-bit value", ErrMalformedPhrase, g)
		}
		binary.LittleEndian.PutUint32(out[g*groupBytes:], uint32(v))
	}
	return out, nil
}

// Verify reports whether phrase decodes cleanly.
func (c *Codec) Verify(phrase string) error {
	_, err := c.Decode(phrase)
	return err
}

// checksumIndex hashes the concatenated word prefixes with CRC32 (IEEE) and
// picks a position among words.
func checksumIndex(words []string, prefixLen int) int {
	var b strings.Builder
	for _, w := range words {
		b.WriteString(wordPrefix(w, prefixLen))
	}
	return int(crc32.ChecksumIEEE([]byte(b.String())) % uint32(len(words)))
}
