// Package dbcrypto implements the cryptographic primitives a KDBX container
// is built from: AES-256-CBC payload encryption, the rounds-based AES-ECB
// key transform, SHA-256 hashing, the Salsa20 inner stream cipher, and CSPRNG
// seed generation.
package dbcrypto

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"fmt"
)

// ErrInvalidPadding is returned by Decrypt when the final PKCS#7 padding
// block does not decode to a valid padding length.
var ErrInvalidPadding = fmt.Errorf("dbcrypto: invalid PKCS#7 padding")

// Encrypt AES-256-CBC-encrypts plaintext under key and iv, applying PKCS#7
// padding. key must be 32 bytes and iv must be 16 bytes.
func Encrypt(key, iv, plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("dbcrypto: new cipher: %w", err)
	}
	padded := pkcs7Pad(plaintext, block.BlockSize())
	out := make([]byte, len(padded))
	cbc := cipher.NewCBCEncrypter(block, iv)
	cbc.CryptBlocks(out, padded)
	return out, nil
}

// Decrypt is the inverse of Encrypt: it AES-256-CBC-decrypts ciphertext and
// strips PKCS#7 padding. Returns ErrInvalidPadding if ciphertext is not a
// multiple of the block size or the padding bytes are malformed.
func Decrypt(key, iv, ciphertext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("dbcrypto: new cipher: %w", err)
	}
	if len(ciphertext) == 0 || len(ciphertext)%block.BlockSize() != 0 {
		return nil, ErrInvalidPadding
	}
	out := make([]byte, len(ciphertext))
	cbc := cipher.NewCBCDecrypter(block, iv)
	cbc.CryptBlocks(out, ciphertext)
	return pkcs7Unpad(out, block.BlockSize())
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	padLen := blockSize - len(data)%blockSize
	padded := make([]byte, len(data)+padLen)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(padLen)
	}
	return padded
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 {
		return nil, ErrInvalidPadding
	}
	padLen := int(data[len(data)-1])
	if padLen == 0 || padLen > blockSize || padLen > len(data) {
		return nil, ErrInvalidPadding
	}
	if !bytes.Equal(data[len(data)-padLen:], bytes.Repeat([]byte{byte(padLen)}, padLen)) {
		return nil, ErrInvalidPadding
	}
	return data[:len(data)-padLen], nil
}

// ecbEncryptBlock encrypts exactly one block-size chunk of data in place
// using raw ECB mode (no padding, no chaining). Used only by the rounds
// transform in kdf.go, which calls this once per round per 16-byte half.
func ecbEncryptBlock(block cipher.Block, dst, src []byte) {
	block.Encrypt(dst, src)
}
