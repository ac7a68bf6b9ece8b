package vaultsign

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"os"
	"path/filepath"
	"testing"
)

func generateRSATestKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate RSA key: %v", err)
	}
	return key
}

func TestSignVerifyRoundTripRSA(t *testing.T) {
	key := generateRSATestKey(t)
	data := []byte("<KeePassFile>...</KeePassFile>")

	sig, err := Sign(data, "alice@example.com", key)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if sig.Type != SigTypeRSAWithSHA512 {
		t.Fatalf("Type = %d, want SigTypeRSAWithSHA512", sig.Type)
	}
	if err := Verify(data, sig, &key.PublicKey); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}

func TestSignVerifyRoundTripECDSA(t *testing.T) {
	for _, curve := range []elliptic.Curve{elliptic.P256(), elliptic.P384(), elliptic.P521()} {
		key, err := ecdsa.GenerateKey(curve, rand.Reader)
		if err != nil {
			t.Fatalf("generate ECDSA key: %v", err)
		}
		data := []byte("snapshot bytes")

		sig, err := Sign(data, "bob@example.com", key)
		if err != nil {
			t.Fatalf("Sign: %v", err)
		}
		if err := Verify(data, sig, &key.PublicKey); err != nil {
			t.Fatalf("Verify(%s): %v", curve.Params().Name, err)
		}
	}
}

func TestSignVerifyRoundTripEd25519(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate Ed25519 key: %v", err)
	}
	data := []byte("snapshot bytes")

	sig, err := Sign(data, "carol@example.com", priv)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if sig.Type != SigTypeEd25519 {
		t.Fatalf("Type = %d, want SigTypeEd25519", sig.Type)
	}
	if err := Verify(data, sig, pub); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}

func TestVerifyRejectsTamperedData(t *testing.T) {
	key := generateRSATestKey(t)
	data := []byte("original content")

	sig, err := Sign(data, "alice@example.com", key)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	tampered := []byte("tampered content")
	if err := Verify(tampered, sig, &key.PublicKey); err == nil {
		t.Fatal("Verify with tampered data: got nil error, want failure")
	}
}

func TestMarshalUnmarshalSignatureRoundTrip(t *testing.T) {
	sig := &Signature{
		Type:     SigTypeEd25519,
		SignerID: "dave@example.com",
		Bytes:    []byte{1, 2, 3, 4, 5},
	}
	b, err := sig.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}
	got, err := UnmarshalSignature(b)
	if err != nil {
		t.Fatalf("UnmarshalSignature: %v", err)
	}
	if got.Type != sig.Type || got.SignerID != sig.SignerID || string(got.Bytes) != string(sig.Bytes) {
		t.Fatalf("round trip = %+v, want %+v", got, sig)
	}
}

func TestUnmarshalSignatureRejectsBadMagic(t *testing.T) {
	if _, err := UnmarshalSignature([]byte("not a signature file at all")); err == nil {
		t.Fatal("UnmarshalSignature with bad magic: got nil error, want failure")
	}
}

func TestSignFileVerifyFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "export.xml")
	if err := os.WriteFile(path, []byte("<KeePassFile/>"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	key := generateRSATestKey(t)
	sigPath, err := SignFile(path, "alice@example.com", key)
	if err != nil {
		t.Fatalf("SignFile: %v", err)
	}
	if sigPath != path+".sig" {
		t.Fatalf("sigPath = %q, want %q", sigPath, path+".sig")
	}
	if _, err := os.Stat(sigPath); err != nil {
		t.Fatalf("expected signature file to exist: %v", err)
	}

	if err := VerifyFile(path, sigPath, &key.PublicKey); err != nil {
		t.Fatalf("VerifyFile: %v", err)
	}
}

func TestSignRejectsUnsupportedKeyType(t *testing.T) {
	if _, err := Sign([]byte("data"), "eve@example.com", nil); err == nil {
		t.Fatal("Sign with nil key: got nil error, want failure")
	}
}
