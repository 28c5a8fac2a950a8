package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
)

func runCLI(t *testing.T, args ...string) (int, map[string]any, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	var out map[string]any
	if code == exitOK {
		if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
			t.Fatalf("decode stdout %q: %v", stdout.String(), err)
		}
	}
	return code, out, stderr.String()
}

func TestEncodeDecode(t *testing.T) {
	code, out, stderr := runCLI(t, "encode", "-hex", "deadbeef")
	if code != exitOK || out["phrase"] != "rookie reopen comfort reopen" {
		t.Fatalf("encode: code=%d out=%v stderr=%s", code, out, stderr)
	}
	code, out, stderr = runCLI(t, "decode", "-phrase", "rookie reopen comfort reopen")
	if code != exitOK || out["key_hex"] != "deadbeef" {
		t.Fatalf("decode: code=%d out=%v stderr=%s", code, out, stderr)
	}
}

func TestExitCodes(t *testing.T) {
	cases := []struct {
		args []string
		want int
	}{
		{nil, exitInvalidInput},
		{[]string{"bogus"}, exitInvalidInput},
		{[]string{"encode", "-hex", "abc"}, exitInvalidInput},
		{[]string{"encode", "-nope"}, exitInvalidInput},
		{[]string{"encode", "-hex", "deadbeef", "-wordlist", "klingon"}, exitInvalidInput},
		{[]string{"decode", "-phrase", "rookie reopen comfort zoo"}, exitPhraseFailed},
		{[]string{"decode", "-phrase", "abandon"}, exitPhraseFailed},
		{[]string{"restore", "-phrase", "rookie reopen comfort reopen"}, exitPhraseFailed},
		{[]string{"new-identity", "-out", filepath.Join(t.TempDir(), "id.enc")}, exitInvalidInput},
	}
	t.Setenv("LOKI_STORAGE_PASSPHRASE", "")
	for _, tc := range cases {
		var stdout, stderr bytes.Buffer
		if got := run(tc.args, &stdout, &stderr); got != tc.want {
			t.Fatalf("%v: exit %d, want %d (stderr %q)", tc.args, got, tc.want, stderr.String())
		}
	}
}

func TestNewIdentityAndRestore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "identity.enc")
	code, created, stderr := runCLI(t, "new-identity", "-out", path, "-passphrase", "pw")
	if code != exitOK || created["saved"] != true {
		t.Fatalf("new-identity: code=%d out=%v stderr=%s", code, created, stderr)
	}
	phrase, _ := created["recovery_phrase"].(string)
	if len(strings.Fields(phrase)) != 25 {
		t.Fatalf("unexpected recovery phrase %q", phrase)
	}
	code, restored, stderr := runCLI(t, "restore", "-phrase", strings.ToUpper(phrase))
	if code != exitOK {
		t.Fatalf("restore: code=%d stderr=%s", code, stderr)
	}
	if restored["session_id"] != created["session_id"] || restored["identity_id"] != created["identity_id"] {
		t.Fatalf("restored identity mismatch: %v vs %v", restored, created)
	}
}

func TestWordlistInfo(t *testing.T) {
	code, out, stderr := runCLI(t, "wordlist", "-wordlist", "italian", "-prefix", "5")
	if code != exitOK || out["name"] != "italian" || out["prefix_length"] != float64(5) || out["size"] != float64(2048) {
		t.Fatalf("wordlist: code=%d out=%v stderr=%s", code, out, stderr)
	}
}
