// Package kdbx wires the header, payload, xmlkdbx, dbcrypto, and keyfile
// packages together into the two operations a caller actually wants: Open a
// KDBX 3.1 file into a model.Database, and Save a model.Database back to a
// KDBX 3.1 file. Durable codec choices (compression, rounds, version) travel
// on model.Database.Settings; random header material (seeds, IV, protected
// stream key) lives only for the duration of one Open/Save call and is
// regenerated fresh on every save.
package kdbx

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-i2p/kdbxgo/dbcrypto"
	"github.com/go-i2p/kdbxgo/header"
	"github.com/go-i2p/kdbxgo/keyfile"
	"github.com/go-i2p/kdbxgo/model"
	"github.com/go-i2p/kdbxgo/payload"
	"github.com/go-i2p/kdbxgo/secret"
	"github.com/go-i2p/kdbxgo/xmlkdbx"
)

// CompositeKey is the credential a database is opened or saved with: a
// password, a key file, or both, already folded down to the 32-byte value
// the key-derivation transform consumes. It holds that value in a
// zeroing secret.Bytes rather than a plain slice.
type CompositeKey struct {
	bytes *secret.Bytes
}

// CompositeKeyFromPassword builds a CompositeKey from a password alone.
func CompositeKeyFromPassword(password string) *CompositeKey {
	return &CompositeKey{bytes: secret.New(dbcrypto.CompositeKeyFromPassword(password))}
}

// CompositeKeyFromKeyFile builds a CompositeKey from a key file alone.
func CompositeKeyFromKeyFile(kf *keyfile.KeyFile) *CompositeKey {
	return &CompositeKey{bytes: secret.New(dbcrypto.CompositeKeyFromKeyFile(kf.Key.Expose()))}
}

// CompositeKeyFromBoth builds a CompositeKey requiring both a password and a
// key file.
func CompositeKeyFromBoth(password string, kf *keyfile.KeyFile) *CompositeKey {
	return &CompositeKey{bytes: secret.New(dbcrypto.CompositeKeyFromBoth(password, kf.Key.Expose()))}
}

// Clear zeroes the composite key's bytes. Callers should defer this after a
// successful or failed Open/Save.
func (k *CompositeKey) Clear() {
	if k != nil {
		k.bytes.Clear()
	}
}

// Open decrypts and parses a KDBX 3.1 file from r under key, returning the
// reconstructed Database.
func Open(r io.Reader, key *CompositeKey) (*model.Database, error) {
	h, headerBytes, err := header.Read(r)
	if err != nil {
		return nil, fmt.Errorf("kdbx: read header: %w", err)
	}

	transformed, err := dbcrypto.TransformKey(key.bytes.Expose(), h.TransformSeed, h.TransformRounds)
	if err != nil {
		return nil, fmt.Errorf("kdbx: transform key: %w", err)
	}
	masterKey := dbcrypto.MasterKey(h.MasterSeed, transformed)

	ciphertext, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("kdbx: read ciphertext: %w", err)
	}
	plaintext, err := dbcrypto.Decrypt(masterKey, h.MasterIV, ciphertext)
	if err != nil {
		return nil, InvalidCredentials{}
	}
	if len(plaintext) < len(h.StreamStartBytes) {
		return nil, InvalidCredentials{}
	}
	if !bytes.Equal(plaintext[:len(h.StreamStartBytes)], h.StreamStartBytes) {
		return nil, InvalidCredentials{}
	}

	blockStream := plaintext[len(h.StreamStartBytes):]
	raw, err := payload.ReadBlocks(bytes.NewReader(blockStream))
	if err != nil {
		return nil, fmt.Errorf("kdbx: read payload blocks: %w", err)
	}
	if h.Compression == header.CompressionGZip {
		raw, err = payload.Decompress(raw)
		if err != nil {
			return nil, fmt.Errorf("kdbx: decompress payload: %w", err)
		}
	}

	innerCipher, err := dbcrypto.NewInnerCipher(dbcrypto.StreamKey(h.ProtectedStreamKey))
	if err != nil {
		return nil, fmt.Errorf("kdbx: build inner cipher: %w", err)
	}

	db, xmlHeaderHash, err := xmlkdbx.Read(bytes.NewReader(raw), innerCipher)
	if err != nil {
		return nil, fmt.Errorf("kdbx: parse xml: %w", err)
	}

	if xmlHeaderHash != nil {
		want := dbcrypto.Hash(headerBytes)
		if !bytes.Equal(xmlHeaderHash, want[:]) {
			return nil, InvalidHeaderHash{}
		}
	}

	db.Settings = model.Settings{
		Compression:     model.Compression(h.Compression),
		MasterCipher:    model.MasterCipher(h.MasterCipher),
		StreamCipher:    model.StreamCipher(h.StreamCipher),
		TransformRounds: h.TransformRounds,
		Version:         model.Version{Major: h.Version.Major, Minor: h.Version.Minor},
	}

	return db, nil
}

// Save encrypts and serializes db as a KDBX 3.1 file to w under key,
// honoring db.Settings for the compression, cipher, transform-round, and
// version choices (falling back to the defaults for a zero-value Settings).
// Fresh random seeds are generated for this call.
func Save(db *model.Database, w io.Writer, key *CompositeKey) error {
	settings := db.Settings
	if settings.TransformRounds == 0 {
		settings = model.DefaultSettings()
	}

	h := header.New()
	h.Compression = header.Compression(settings.Compression)
	h.TransformRounds = settings.TransformRounds
	if settings.Version.Major != 0 {
		h.Version = header.Version{Major: settings.Version.Major, Minor: settings.Version.Minor}
	}

	masterSeed, err := dbcrypto.RandomBytes(32)
	if err != nil {
		return fmt.Errorf("kdbx: generate master seed: %w", err)
	}
	transformSeed, err := dbcrypto.RandomBytes(32)
	if err != nil {
		return fmt.Errorf("kdbx: generate transform seed: %w", err)
	}
	masterIV, err := dbcrypto.RandomBytes(16)
	if err != nil {
		return fmt.Errorf("kdbx: generate master iv: %w", err)
	}
	protectedStreamKey, err := dbcrypto.RandomBytes(32)
	if err != nil {
		return fmt.Errorf("kdbx: generate protected stream key: %w", err)
	}
	streamStartBytes, err := dbcrypto.RandomBytes(32)
	if err != nil {
		return fmt.Errorf("kdbx: generate stream start bytes: %w", err)
	}

	h.MasterSeed = masterSeed
	h.TransformSeed = transformSeed
	h.MasterIV = masterIV
	h.ProtectedStreamKey = protectedStreamKey
	h.StreamStartBytes = streamStartBytes

	var headerBuf bytes.Buffer
	headerBytes, err := header.Write(&headerBuf, h)
	if err != nil {
		return fmt.Errorf("kdbx: write header: %w", err)
	}
	headerHash := dbcrypto.Hash(headerBytes)

	innerCipher, err := dbcrypto.NewInnerCipher(dbcrypto.StreamKey(h.ProtectedStreamKey))
	if err != nil {
		return fmt.Errorf("kdbx: build inner cipher: %w", err)
	}

	var xmlBuf bytes.Buffer
	if err := xmlkdbx.Write(&xmlBuf, db, headerHash[:], innerCipher); err != nil {
		return fmt.Errorf("kdbx: write xml: %w", err)
	}

	xmlData := xmlBuf.Bytes()
	if h.Compression == header.CompressionGZip {
		xmlData, err = payload.Compress(xmlData)
		if err != nil {
			return fmt.Errorf("kdbx: compress payload: %w", err)
		}
	}

	// Emit exactly one data block (id=0) holding the full XML payload,
	// followed by the terminator (id=1), matching what KeePass 2 itself
	// writes; passing the whole payload's length as the block size keeps
	// WriteBlocks from splitting it, even though readers tolerate chunked
	// streams from other writers.
	blockSize := len(xmlData)
	if blockSize == 0 {
		blockSize = 1
	}
	var blockBuf bytes.Buffer
	if err := payload.WriteBlocks(&blockBuf, xmlData, blockSize); err != nil {
		return fmt.Errorf("kdbx: write payload blocks: %w", err)
	}

	plaintext := append(append([]byte{}, h.StreamStartBytes...), blockBuf.Bytes()...)

	transformed, err := dbcrypto.TransformKey(key.bytes.Expose(), h.TransformSeed, h.TransformRounds)
	if err != nil {
		return fmt.Errorf("kdbx: transform key: %w", err)
	}
	masterKey := dbcrypto.MasterKey(h.MasterSeed, transformed)

	ciphertext, err := dbcrypto.Encrypt(masterKey, h.MasterIV, plaintext)
	if err != nil {
		return fmt.Errorf("kdbx: encrypt payload: %w", err)
	}

	if _, err := w.Write(headerBytes); err != nil {
		return fmt.Errorf("kdbx: write header bytes: %w", err)
	}
	if _, err := w.Write(ciphertext); err != nil {
		return fmt.Errorf("kdbx: write ciphertext: %w", err)
	}
	return nil
}
