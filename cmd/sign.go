package cmd

import (
	"crypto"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"log"
	"os"

	"github.com/go-i2p/kdbxgo/vaultsign"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// signCmd represents the sign command
var signCmd = &cobra.Command{
	Use:   "sign <file>",
	Short: "Sign a file (typically an exported plaintext snapshot) with a local key",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		viper.Unmarshal(c)
		path := args[0]

		key, err := loadPrivateKey(c.SigningKey)
		if err != nil {
			log.Fatalf("sign: %v", err)
		}
		outPath, err := vaultsign.SignFile(path, c.SignerId, key)
		if err != nil {
			log.Fatalf("sign: %v", err)
		}
		fmt.Printf("wrote %s\n", outPath)
	},
}

func init() {
	rootCmd.AddCommand(signCmd)

	signCmd.Flags().String("signerid", "", "ID to record alongside the signature")
	signCmd.Flags().String("signingkey", "signing_key.pem", "Path to a PEM-encoded signing key")

	viper.BindPFlags(signCmd.Flags())
}

// loadPrivateKey reads a PEM-encoded private key from path and returns it as
// a crypto.Signer. Supported formats and types:
//   - PKCS#1 RSA ("RSA PRIVATE KEY", openssl genrsa)
//   - PKCS#8 RSA ("PRIVATE KEY", openssl genpkey -algorithm RSA)
//   - PKCS#8 ECDSA on P-256, P-384, or P-521
//   - PKCS#8 Ed25519
//
// The returned value is one of *rsa.PrivateKey, *ecdsa.PrivateKey, or
// ed25519.PrivateKey, all of which implement crypto.Signer and are accepted
// by vaultsign.Sign/SignFile.
func loadPrivateKey(path string) (crypto.Signer, error) {
	privPem, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// pem.Decode returns (nil, rest) when the input contains no PEM block
	// (e.g. empty file, DER-encoded key, wrong file path).
	privDer, _ := pem.Decode(privPem)
	if privDer == nil {
		return nil, fmt.Errorf("loadPrivateKey: no PEM block found in %s", path)
	}

	// Fast path: classic PKCS#1 RSAPrivateKey encoding (openssl genrsa).
	if key, err := x509.ParsePKCS1PrivateKey(privDer.Bytes); err == nil {
		return key, nil
	}

	// PKCS#8: covers RSA, ECDSA (P-256/384/521), and Ed25519.
	parsed, err := x509.ParsePKCS8PrivateKey(privDer.Bytes)
	if err != nil {
		return nil, fmt.Errorf("loadPrivateKey: %s is not a valid PKCS#1 or PKCS#8 private key: %w", path, err)
	}
	key, ok := parsed.(crypto.Signer)
	if !ok {
		return nil, fmt.Errorf("loadPrivateKey: %s contains %T which does not implement crypto.Signer", path, parsed)
	}
	return key, nil
}
