// Package config loads daemon and CLI settings from yaml with environment
// overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"loki-messenger/go-backend/internal/mnemonic"
)

const (
	identityFileName = "identity.enc"
	accountFileName  = "account.enc"
)

type Config struct {
	RPC      RPCConfig
	Storage  StorageConfig
	Mnemonic MnemonicConfig
	LogLevel string
}

type RPCConfig struct {
	Addr              string
	Token             string
	RateLimitRPS      float64
	RateLimitBurst    int
	ReadHeaderTimeout time.Duration
}

type StorageConfig struct {
	DataDir    string
	Passphrase string
}

type MnemonicConfig struct {
	Wordlist     string
	WordlistPath string
	// PrefixLength of 0 keeps the wordlist's own prefix length.
	PrefixLength int
}

// fileConfig mirrors the yaml layout; pointers distinguish unset from zero.
type fileConfig struct {
	RPC struct {
		Addr              string        `yaml:"addr"`
		Token             string        `yaml:"token"`
		RateLimitRPS      *float64      `yaml:"rateLimitRps"`
		RateLimitBurst    *int          `yaml:"rateLimitBurst"`
		ReadHeaderTimeout time.Duration `yaml:"readHeaderTimeout"`
	} `yaml:"rpc"`
	Storage struct {
		DataDir    string `yaml:"dataDir"`
		Passphrase string `yaml:"passphrase"`
	} `yaml:"storage"`
	Mnemonic struct {
		Wordlist     string `yaml:"wordlist"`
		WordlistPath string `yaml:"wordlistPath"`
		PrefixLength *int   `yaml:"prefixLength"`
	} `yaml:"mnemonic"`
	LogLevel string `yaml:"logLevel"`
}

func Default() Config {
	return Config{
		RPC: RPCConfig{
			Addr:              "127.0.0.1:8787",
			RateLimitRPS:      5,
			RateLimitBurst:    10,
			ReadHeaderTimeout: 5 * time.Second,
		},
		Mnemonic: MnemonicConfig{Wordlist: mnemonic.DefaultWordlistName},
		LogLevel: "info",
	}
}

// LoadFromPath reads configPath, or the first default candidate that
// exists, merges it over Default and applies environment overrides. An
// explicit path that cannot be read or parsed is an error; missing default
// candidates are not.
func LoadFromPath(configPath string) (Config, error) {
	cfg := Default()

	candidates := []string{"go-backend/configs/config.yaml", "configs/config.yaml"}
	explicit := strings.TrimSpace(configPath) != ""
	if explicit {
		candidates = []string{configPath}
	}

	for _, path := range candidates {
		data, err := os.ReadFile(path)
		if err != nil {
			if !explicit && errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		var parsed fileConfig
		if err := yaml.Unmarshal(data, &parsed); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
		merge(&cfg, parsed)
		break
	}

	ApplyEnvOverrides(&cfg)
	return cfg, nil
}

func merge(dst *Config, src fileConfig) {
	if src.RPC.Addr != "" {
		dst.RPC.Addr = src.RPC.Addr
	}
	if src.RPC.Token != "" {
		dst.RPC.Token = src.RPC.Token
	}
	if src.RPC.RateLimitRPS != nil {
		dst.RPC.RateLimitRPS = *src.RPC.RateLimitRPS
	}
	if src.RPC.RateLimitBurst != nil {
		dst.RPC.RateLimitBurst = *src.RPC.RateLimitBurst
	}
	if src.RPC.ReadHeaderTimeout != 0 {
		dst.RPC.ReadHeaderTimeout = src.RPC.ReadHeaderTimeout
	}
	if src.Storage.DataDir != "" {
		dst.Storage.DataDir = src.Storage.DataDir
	}
	if src.Storage.Passphrase != "" {
		dst.Storage.Passphrase = src.Storage.Passphrase
	}
	if src.Mnemonic.Wordlist != "" {
		dst.Mnemonic.Wordlist = src.Mnemonic.Wordlist
	}
	if src.Mnemonic.WordlistPath != "" {
		dst.Mnemonic.WordlistPath = src.Mnemonic.WordlistPath
	}
	if src.Mnemonic.PrefixLength != nil {
		dst.Mnemonic.PrefixLength = *src.Mnemonic.PrefixLength
	}
	if src.LogLevel != "" {
		dst.LogLevel = src.LogLevel
	}
}

// ApplyEnvOverrides applies LOKI_* variables. Unparseable numbers are
// ignored.
func ApplyEnvOverrides(cfg *Config) {
	setString(&cfg.RPC.Addr, "LOKI_RPC_ADDR")
	setString(&cfg.RPC.Token, "LOKI_RPC_TOKEN")
	setString(&cfg.Storage.DataDir, "LOKI_DATA_DIR")
	setString(&cfg.Storage.Passphrase, "LOKI_STORAGE_PASSPHRASE")
	setString(&cfg.Mnemonic.Wordlist, "LOKI_WORDLIST")
	setString(&cfg.Mnemonic.WordlistPath, "LOKI_WORDLIST_PATH")
	setString(&cfg.LogLevel, "LOKI_LOG_LEVEL")

	if raw := env("LOKI_PREFIX_LENGTH"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			cfg.Mnemonic.PrefixLength = v
		}
	}
	if raw := env("LOKI_RPC_RATE_LIMIT_RPS"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			cfg.RPC.RateLimitRPS = v
		}
	}
	if raw := env("LOKI_RPC_RATE_LIMIT_BURST"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			cfg.RPC.RateLimitBurst = v
		}
	}
}

func env(name string) string {
	return strings.TrimSpace(os.Getenv(name))
}

func setString(dst *string, name string) {
	if v := env(name); v != "" {
		*dst = v
	}
}

// LoadWordlist resolves the configured wordlist: a file when WordlistPath is
// set, otherwise a built-in list by name.
func (c MnemonicConfig) LoadWordlist() (*mnemonic.Wordlist, error) {
	if path := strings.TrimSpace(c.WordlistPath); path != "" {
		prefix := c.PrefixLength
		if prefix == 0 {
			prefix = mnemonic.DefaultPrefixLength
		}
		return mnemonic.LoadWordlistFile(path, prefix)
	}
	wl, err := mnemonic.BuiltinWordlist(c.Wordlist)
	if err != nil {
		return nil, err
	}
	if c.PrefixLength == 0 {
		return wl, nil
	}
	return wl.WithPrefixLength(c.PrefixLength)
}

func (s StorageConfig) Enabled() bool {
	return strings.TrimSpace(s.DataDir) != "" && s.Passphrase != ""
}

func (s StorageConfig) IdentityPath() string {
	return filepath.Join(s.DataDir, identityFileName)
}

func (s StorageConfig) AccountPath() string {
	return filepath.Join(s.DataDir, accountFileName)
}
