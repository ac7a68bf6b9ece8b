// Package vaultsign produces and verifies detached signatures over exported
// vault snapshots. The signature algorithm is picked automatically from the
// concrete type of the signing key; the result is written as a standalone
// "<file>.sig" rather than wrapped into a container with the signed content.
package vaultsign

import (
	"bytes"
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/go-i2p/kdbxgo/dbcrypto"
	"github.com/go-i2p/kdbxgo/model"
	"github.com/go-i2p/kdbxgo/xmlkdbx"
)

// SigType identifies the signature algorithm a Signature was produced with.
type SigType uint16

const (
	SigTypeRSAWithSHA512 SigType = iota + 1
	SigTypeECDSAWithSHA256
	SigTypeECDSAWithSHA384
	SigTypeECDSAWithSHA512
	SigTypeEd25519
)

var fileMagic = [4]byte{'V', 'S', 'I', 'G'}

// Signature is a detached signature over an exported vault snapshot.
type Signature struct {
	Type     SigType
	SignerID string
	Bytes    []byte
}

// sigTypeForKey returns the SigType that matches the concrete type of key.
// RSA defaults to SHA-512; ECDSA picks the hash matching the curve's
// security level; Ed25519 signs the raw message (no prehash), matching
// crypto/ed25519's pure-Ed25519 Sign.
func sigTypeForKey(key crypto.Signer) (SigType, error) {
	switch k := key.(type) {
	case *rsa.PrivateKey:
		return SigTypeRSAWithSHA512, nil
	case *ecdsa.PrivateKey:
		switch k.Curve.Params().Name {
		case "P-256":
			return SigTypeECDSAWithSHA256, nil
		case "P-384":
			return SigTypeECDSAWithSHA384, nil
		case "P-521":
			return SigTypeECDSAWithSHA512, nil
		default:
			return 0, fmt.Errorf("vaultsign: unsupported ECDSA curve %s", k.Curve.Params().Name)
		}
	case ed25519.PrivateKey:
		return SigTypeEd25519, nil
	default:
		return 0, fmt.Errorf("vaultsign: unsupported key type %T", key)
	}
}

// digestFor hashes data the way sigType requires before signing/verifying.
// Ed25519 returns data unchanged since it hashes internally.
func digestFor(sigType SigType, data []byte) ([]byte, crypto.Hash, error) {
	switch sigType {
	case SigTypeRSAWithSHA512, SigTypeECDSAWithSHA512:
		sum := sha512.Sum512(data)
		return sum[:], crypto.SHA512, nil
	case SigTypeECDSAWithSHA256:
		sum := sha256.Sum256(data)
		return sum[:], crypto.SHA256, nil
	case SigTypeECDSAWithSHA384:
		sum := sha512.Sum384(data)
		return sum[:], crypto.SHA384, nil
	case SigTypeEd25519:
		return data, 0, nil
	default:
		return nil, 0, fmt.Errorf("vaultsign: unknown signature type %d", sigType)
	}
}

// Sign signs data and identifies the signer as signerID.
func Sign(data []byte, signerID string, key crypto.Signer) (*Signature, error) {
	sigType, err := sigTypeForKey(key)
	if err != nil {
		return nil, err
	}
	digest, hash, err := digestFor(sigType, data)
	if err != nil {
		return nil, err
	}

	var sig []byte
	if sigType == SigTypeEd25519 {
		priv, ok := key.(ed25519.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("vaultsign: key reports Ed25519 but is %T", key)
		}
		sig = ed25519.Sign(priv, digest)
	} else {
		sig, err = key.Sign(rand.Reader, digest, hash)
		if err != nil {
			return nil, fmt.Errorf("vaultsign: sign: %w", err)
		}
	}
	return &Signature{Type: sigType, SignerID: signerID, Bytes: sig}, nil
}

// Verify checks sig against data using pub.
func Verify(data []byte, sig *Signature, pub crypto.PublicKey) error {
	digest, hash, err := digestFor(sig.Type, data)
	if err != nil {
		return err
	}
	switch key := pub.(type) {
	case *rsa.PublicKey:
		if err := rsa.VerifyPKCS1v15(key, hash, digest, sig.Bytes); err != nil {
			return fmt.Errorf("vaultsign: rsa verify: %w", err)
		}
		return nil
	case *ecdsa.PublicKey:
		if !ecdsa.VerifyASN1(key, digest, sig.Bytes) {
			return fmt.Errorf("vaultsign: ecdsa signature verification failed")
		}
		return nil
	case ed25519.PublicKey:
		if !ed25519.Verify(key, digest, sig.Bytes) {
			return fmt.Errorf("vaultsign: ed25519 signature verification failed")
		}
		return nil
	default:
		return fmt.Errorf("vaultsign: unsupported public key type %T", pub)
	}
}

// MarshalBinary encodes a Signature as a magic prefix, the sig type, a
// length-prefixed signer id, and the raw signature bytes.
func (s *Signature) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(fileMagic[:])
	if err := binary.Write(&buf, binary.BigEndian, uint16(s.Type)); err != nil {
		return nil, err
	}
	idBytes := []byte(s.SignerID)
	if err := binary.Write(&buf, binary.BigEndian, uint32(len(idBytes))); err != nil {
		return nil, err
	}
	buf.Write(idBytes)
	buf.Write(s.Bytes)
	return buf.Bytes(), nil
}

// UnmarshalSignature decodes a Signature previously produced by
// Signature.MarshalBinary.
func UnmarshalSignature(data []byte) (*Signature, error) {
	if len(data) < len(fileMagic)+2+4 || !bytes.Equal(data[:len(fileMagic)], fileMagic[:]) {
		return nil, fmt.Errorf("vaultsign: not a signature file")
	}
	r := bytes.NewReader(data[len(fileMagic):])

	var sigType uint16
	if err := binary.Read(r, binary.BigEndian, &sigType); err != nil {
		return nil, fmt.Errorf("vaultsign: read sig type: %w", err)
	}
	var idLen uint32
	if err := binary.Read(r, binary.BigEndian, &idLen); err != nil {
		return nil, fmt.Errorf("vaultsign: read signer id length: %w", err)
	}
	idBytes := make([]byte, idLen)
	if _, err := io.ReadFull(r, idBytes); err != nil {
		return nil, fmt.Errorf("vaultsign: read signer id: %w", err)
	}
	sigBytes, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("vaultsign: read signature bytes: %w", err)
	}
	return &Signature{Type: SigType(sigType), SignerID: string(idBytes), Bytes: sigBytes}, nil
}

// SignFile reads the file at path, signs its contents, and writes the
// detached signature to path+".sig", returning that output path.
func SignFile(path, signerID string, key crypto.Signer) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("vaultsign: read %s: %w", path, err)
	}
	sig, err := Sign(data, signerID, key)
	if err != nil {
		return "", err
	}
	b, err := sig.MarshalBinary()
	if err != nil {
		return "", err
	}
	outPath := path + ".sig"
	if err := os.WriteFile(outPath, b, 0o644); err != nil {
		return "", fmt.Errorf("vaultsign: write %s: %w", outPath, err)
	}
	return outPath, nil
}

// ExportPlaintext renders db as a KDBX XML document with every protected
// string field written in the clear, the same shape Write produces inside a
// real .kdbx container but with no inner-stream encryption applied. The
// result is meant to be signed (by Sign/SignFile) as a portable attestation
// of a vault's contents at a point in time, not written back as a .kdbx
// file: it carries secrets in the clear.
func ExportPlaintext(db *model.Database) ([]byte, error) {
	clone := *db
	clone.Root = declassifyGroup(db.Root)

	cipher, err := dbcrypto.NewInnerCipher(make([]byte, 32))
	if err != nil {
		return nil, fmt.Errorf("vaultsign: export plaintext: %w", err)
	}

	var buf bytes.Buffer
	if err := xmlkdbx.Write(&buf, &clone, nil, cipher); err != nil {
		return nil, fmt.Errorf("vaultsign: export plaintext: %w", err)
	}
	return buf.Bytes(), nil
}

// declassifyGroup returns a deep copy of g with every entry's protected
// string fields marked unprotected, so the writer emits their values as
// plain text instead of running them through the inner stream cipher.
func declassifyGroup(g model.Group) model.Group {
	out := g
	out.Entries = make([]model.Entry, len(g.Entries))
	for i, e := range g.Entries {
		out.Entries[i] = declassifyEntry(e)
	}
	out.Groups = make([]model.Group, len(g.Groups))
	for i, sub := range g.Groups {
		out.Groups[i] = declassifyGroup(sub)
	}
	return out
}

func declassifyEntry(e model.Entry) model.Entry {
	out := e
	var strs model.StringsMap
	for _, f := range e.Strings.Fields() {
		strs.Set(f.Key, f.Value, false)
	}
	out.Strings = strs
	if len(e.History) > 0 {
		out.History = make([]model.Entry, len(e.History))
		for i, h := range e.History {
			out.History[i] = declassifyEntry(h)
		}
	}
	return out
}

// VerifyFile reads the file at path and the detached signature at
// sigPath, verifying the signature against pub.
func VerifyFile(path, sigPath string, pub crypto.PublicKey) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("vaultsign: read %s: %w", path, err)
	}
	sigBytes, err := os.ReadFile(sigPath)
	if err != nil {
		return fmt.Errorf("vaultsign: read %s: %w", sigPath, err)
	}
	sig, err := UnmarshalSignature(sigBytes)
	if err != nil {
		return err
	}
	return Verify(data, sig, pub)
}
