package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"loki-messenger/go-backend/internal/config"
	"loki-messenger/go-backend/internal/identity"
	"loki-messenger/go-backend/internal/mnemonic"
)

const (
	exitOK            = 0
	exitInvalidInput  = 10
	exitPhraseFailed  = 20
	exitStorageFailed = 30
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type cli struct {
	stdout io.Writer
	stderr io.Writer
}

func run(args []string, stdout, stderr io.Writer) int {
	c := cli{stdout: stdout, stderr: stderr}
	if len(args) < 1 {
		c.printUsage()
		return exitInvalidInput
	}
	switch args[0] {
	case "encode":
		return c.runEncode(args[1:])
	case "decode":
		return c.runDecode(args[1:])
	case "new-identity":
		return c.runNewIdentity(args[1:])
	case "restore":
		return c.runRestore(args[1:])
	case "wordlist":
		return c.runWordlist(args[1:])
	default:
		c.printUsage()
		return exitInvalidInput
	}
}

// wordlistFlags registers the flags every subcommand uses to pick a wordlist.
type wordlistFlags struct {
	configPath *string
	name       *string
	file       *string
	prefix     *int
}

func addWordlistFlags(fs *flag.FlagSet) wordlistFlags {
	return wordlistFlags{
		configPath: fs.String("config", "", "path to config.yaml (optional)"),
		name:       fs.String("wordlist", "", "builtin wordlist name (english, czech, italian)"),
		file:       fs.String("wordlist-file", "", "newline separated wordlist file"),
		prefix:     fs.Int("prefix", 0, "unique prefix length; 0 keeps the wordlist default"),
	}
}

func (f wordlistFlags) codec() (*mnemonic.Codec, config.Config, error) {
	cfg, err := config.LoadFromPath(*f.configPath)
	if err != nil {
		return nil, config.Config{}, err
	}
	if *f.name != "" {
		cfg.Mnemonic.Wordlist = *f.name
		cfg.Mnemonic.WordlistPath = ""
	}
	if *f.file != "" {
		cfg.Mnemonic.WordlistPath = *f.file
	}
	if *f.prefix != 0 {
		cfg.Mnemonic.PrefixLength = *f.prefix
	}
	wl, err := cfg.Mnemonic.LoadWordlist()
	if err != nil {
		return nil, config.Config{}, err
	}
	return mnemonic.NewCodec(wl), cfg, nil
}

func (c cli) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	return fs
}

func (c cli) runEncode(args []string) int {
	fs := c.newFlagSet("encode")
	keyHex := fs.String("hex", "", "hex encoded key (multiple of 4 bytes)")
	wf := addWordlistFlags(fs)
	if err := fs.Parse(args); err != nil {
		return exitInvalidInput
	}
	codec, _, err := wf.codec()
	if err != nil {
		return c.fail(err)
	}
	phrase, err := codec.EncodeHex(strings.TrimSpace(*keyHex))
	if err != nil {
		return c.fail(err)
	}
	return c.printJSON(map[string]any{"phrase": phrase.String(), "words": len(phrase)})
}

func (c cli) runDecode(args []string) int {
	fs := c.newFlagSet("decode")
	phrase := fs.String("phrase", "", "mnemonic phrase")
	wf := addWordlistFlags(fs)
	if err := fs.Parse(args); err != nil {
		return exitInvalidInput
	}
	codec, _, err := wf.codec()
	if err != nil {
		return c.fail(err)
	}
	keyHex, err := codec.DecodeHex(*phrase)
	if err != nil {
		return c.fail(err)
	}
	return c.printJSON(map[string]string{"key_hex": keyHex})
}

func (c cli) runNewIdentity(args []string) int {
	fs := c.newFlagSet("new-identity")
	out := fs.String("out", "", "write the encrypted identity to this file")
	passphrase := fs.String("passphrase", "", "passphrase for -out (default LOKI_STORAGE_PASSPHRASE)")
	wf := addWordlistFlags(fs)
	if err := fs.Parse(args); err != nil {
		return exitInvalidInput
	}
	codec, cfg, err := wf.codec()
	if err != nil {
		return c.fail(err)
	}
	mgr := identity.NewManager()
	id, err := mgr.GenerateNewIdentityKey()
	if err != nil {
		return c.fail(err)
	}
	recovery, err := mgr.RecoveryPhrase(codec)
	if err != nil {
		return c.fail(err)
	}
	if code := c.save(mgr, *out, *passphrase, cfg); code != exitOK {
		return code
	}
	return c.printJSON(map[string]any{
		"identity_id":     id.ID,
		"session_id":      id.SessionID,
		"recovery_phrase": recovery.String(),
		"saved":           *out != "",
	})
}

func (c cli) runRestore(args []string) int {
	fs := c.newFlagSet("restore")
	phrase := fs.String("phrase", "", "recovery phrase")
	out := fs.String("out", "", "write the encrypted identity to this file")
	passphrase := fs.String("passphrase", "", "passphrase for -out (default LOKI_STORAGE_PASSPHRASE)")
	wf := addWordlistFlags(fs)
	if err := fs.Parse(args); err != nil {
		return exitInvalidInput
	}
	codec, cfg, err := wf.codec()
	if err != nil {
		return c.fail(err)
	}
	mgr := identity.NewManager()
	id, err := mgr.RestoreFromPhrase(codec, *phrase)
	if err != nil {
		return c.fail(err)
	}
	if code := c.save(mgr, *out, *passphrase, cfg); code != exitOK {
		return code
	}
	return c.printJSON(map[string]any{
		"identity_id": id.ID,
		"session_id":  id.SessionID,
		"saved":       *out != "",
	})
}

func (c cli) runWordlist(args []string) int {
	fs := c.newFlagSet("wordlist")
	wf := addWordlistFlags(fs)
	if err := fs.Parse(args); err != nil {
		return exitInvalidInput
	}
	codec, _, err := wf.codec()
	if err != nil {
		return c.fail(err)
	}
	wl := codec.Wordlist()
	return c.printJSON(map[string]any{
		"name":          wl.Name(),
		"size":          wl.Size(),
		"prefix_length": wl.PrefixLength(),
		"builtins":      mnemonic.BuiltinNames(),
	})
}

func (c cli) save(mgr *identity.Manager, path, passphrase string, cfg config.Config) int {
	if path == "" {
		return exitOK
	}
	if passphrase == "" {
		passphrase = cfg.Storage.Passphrase
	}
	if err := mgr.SaveEncrypted(path, passphrase); err != nil {
		if errors.Is(err, identity.ErrPassphraseRequired) {
			return c.writeErr(err, exitInvalidInput)
		}
		return c.writeErr(err, exitStorageFailed)
	}
	return exitOK
}

func exitCodeFor(err error) int {
	switch {
	case errors.Is(err, mnemonic.ErrMalformedPhrase),
		errors.Is(err, mnemonic.ErrUnknownWord),
		errors.Is(err, mnemonic.ErrAmbiguousPrefix),
		errors.Is(err, mnemonic.ErrChecksumMismatch),
		errors.Is(err, identity.ErrInvalidSeed):
		return exitPhraseFailed
	case errors.Is(err, os.ErrNotExist), errors.Is(err, os.ErrPermission):
		return exitStorageFailed
	default:
		return exitInvalidInput
	}
}

func (c cli) fail(err error) int {
	return c.writeErr(err, exitCodeFor(err))
}

func (c cli) writeErr(err error, code int) int {
	_, _ = fmt.Fprintln(c.stderr, err.Error())
	return code
}

func (c cli) printJSON(v any) int {
	enc := json.NewEncoder(c.stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return exitStorageFailed
	}
	return exitOK
}

func (c cli) printUsage() {
	for _, line := range []string{
		"seedctl <command> [flags]",
		"commands:",
		"  encode        -hex <key>",
		"  decode        -phrase \"<words>\"",
		"  new-identity  [-out file -passphrase p]",
		"  restore       -phrase \"<words>\" [-out file -passphrase p]",
		"  wordlist      [-wordlist name | -wordlist-file path] [-prefix n]",
		"every command accepts -config, -wordlist, -wordlist-file and -prefix",
	} {
		_, _ = fmt.Fprintln(c.stdout, line)
	}
}
