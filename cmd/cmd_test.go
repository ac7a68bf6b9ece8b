package cmd

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"
)

func writePEMKey(t *testing.T, dir string, block *pem.Block) string {
	t.Helper()
	path := filepath.Join(dir, "key.pem")
	if err := os.WriteFile(path, pem.EncodeToMemory(block), 0o600); err != nil {
		t.Fatalf("write key: %v", err)
	}
	return path
}

func TestLoadPrivateKey_NilPEMGuard(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notakey.pem")
	if err := os.WriteFile(path, []byte("not a pem file"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := loadPrivateKey(path); err == nil {
		t.Fatal("expected error for a file with no PEM block")
	}
}

func TestLoadPrivateKey_MissingFile(t *testing.T) {
	if _, err := loadPrivateKey(filepath.Join(t.TempDir(), "missing.pem")); err == nil {
		t.Fatal("expected error for a missing file")
	}
}

func TestLoadPrivateKey_PKCS1RSA(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	path := writePEMKey(t, t.TempDir(), &pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
	signer, err := loadPrivateKey(path)
	if err != nil {
		t.Fatalf("loadPrivateKey: %v", err)
	}
	if _, ok := signer.Public().(*rsa.PublicKey); !ok {
		t.Fatalf("unexpected public key type %T", signer.Public())
	}
}

func TestLoadPrivateKey_PKCS8ECDSA(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	path := writePEMKey(t, t.TempDir(), &pem.Block{Type: "PRIVATE KEY", Bytes: der})
	signer, err := loadPrivateKey(path)
	if err != nil {
		t.Fatalf("loadPrivateKey: %v", err)
	}
	if _, ok := signer.Public().(*ecdsa.PublicKey); !ok {
		t.Fatalf("unexpected public key type %T", signer.Public())
	}
}

func TestLoadPrivateKey_RejectsInvalidPKCS8DER(t *testing.T) {
	// A PKCS#8 blob that fails to parse at all should also error out.
	path := writePEMKey(t, t.TempDir(), &pem.Block{Type: "PRIVATE KEY", Bytes: []byte("not valid der")})
	if _, err := loadPrivateKey(path); err == nil {
		t.Fatal("expected error for invalid PKCS#8 DER")
	}
}

func flagNames(commandName string, names ...string) map[string]bool {
	found := make(map[string]bool)
	for _, n := range names {
		if LookupFlag(commandName, n) != nil {
			found[n] = true
		}
	}
	return found
}

func TestInspectCmd_FlagNames(t *testing.T) {
	want := []string{"password", "keyfile", "json"}
	got := flagNames("inspect", want...)
	for _, w := range want {
		if !got[w] {
			t.Errorf("inspect command missing flag %q", w)
		}
	}
}

func TestExportCmd_FlagNames(t *testing.T) {
	want := []string{"password", "keyfile", "out"}
	got := flagNames("export", want...)
	for _, w := range want {
		if !got[w] {
			t.Errorf("export command missing flag %q", w)
		}
	}
}

func TestFetchCmd_FlagNames(t *testing.T) {
	want := []string{"out", "backup-url"}
	got := flagNames("fetch", want...)
	for _, w := range want {
		if !got[w] {
			t.Errorf("fetch command missing flag %q", w)
		}
	}
	// The old I2P-specific flags must not resurface on the new command.
	for _, stale := range []string{"newsurl", "newsurls", "samaddr", "trustedcerts", "skipverify"} {
		if LookupFlag("fetch", stale) != nil {
			t.Errorf("fetch command unexpectedly still has stale flag %q", stale)
		}
	}
}

func TestServeCmd_FlagNames(t *testing.T) {
	want := []string{"password", "keyfile", "host", "port", "statsfile"}
	got := flagNames("serve", want...)
	for _, w := range want {
		if !got[w] {
			t.Errorf("serve command missing flag %q", w)
		}
	}
	for _, stale := range []string{"i2p", "samaddr", "newsdir"} {
		if LookupFlag("serve", stale) != nil {
			t.Errorf("serve command unexpectedly still has stale flag %q", stale)
		}
	}
}

func TestSignCmd_FlagNames(t *testing.T) {
	want := []string{"signerid", "signingkey"}
	got := flagNames("sign", want...)
	for _, w := range want {
		if !got[w] {
			t.Errorf("sign command missing flag %q", w)
		}
	}
	if LookupFlag("sign", "builddir") != nil {
		t.Error("sign command unexpectedly still has stale flag \"builddir\"")
	}
}

func TestSignCmd_SignerIDDefaultIsEmpty(t *testing.T) {
	f := LookupFlag("sign", "signerid")
	if f == nil {
		t.Fatal("sign command missing flag \"signerid\"")
	}
	if f.DefValue != "" {
		t.Errorf("signerid default = %q, want empty (no leftover I2P default)", f.DefValue)
	}
}

func TestLookupFlag_UnknownCommand(t *testing.T) {
	if f := LookupFlag("nonexistent", "password"); f != nil {
		t.Errorf("expected nil flag for unknown command, got %v", f)
	}
}
