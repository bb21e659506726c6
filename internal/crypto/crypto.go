// Package crypto provides the RSA-2048 keypair generation and PKCS#1 v1.5
// signing/verification over SHA-256 that the wallet and transaction model
// depend on. Keys are carried as lowercase-hex-encoded DER throughout the
// rest of the system; this package is the only place that touches DER or
// PKCS#1 directly.
package crypto

import (
	stdcrypto "crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/hex"
	"fmt"
)

// KeyBits is the RSA modulus size mandated for every node keypair.
const KeyBits = 2048

// KeyPair holds a freshly generated RSA keypair, hex-encoded as the rest
// of the system expects to carry it.
type KeyPair struct {
	PublicKeyHex  string
	PrivateKeyHex string
}

// GenerateKeyPair creates a new RSA-2048 keypair and hex-encodes both
// halves as DER.
func GenerateKeyPair() (KeyPair, error) {
	priv, err := rsa.GenerateKey(rand.Reader, KeyBits)
	if err != nil {
		return KeyPair{}, fmt.Errorf("crypto: generate key: %w", err)
	}

	pubDER, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	if err != nil {
		return KeyPair{}, fmt.Errorf("crypto: marshal public key: %w", err)
	}
	privDER, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return KeyPair{}, fmt.Errorf("crypto: marshal private key: %w", err)
	}

	return KeyPair{
		PublicKeyHex:  hex.EncodeToString(pubDER),
		PrivateKeyHex: hex.EncodeToString(privDER),
	}, nil
}

// Sign signs SHA-256(id) with the given hex-encoded DER private key,
// returning the signature as lowercase hex. id is the transaction ID, as
// a UTF-8 string, per spec.
func Sign(idHex string, privateKeyHex string) (string, error) {
	priv, err := parsePrivateKey(privateKeyHex)
	if err != nil {
		return "", err
	}

	digest := sha256.Sum256([]byte(idHex))
	sig, err := rsa.SignPKCS1v15(rand.Reader, priv, stdcrypto.SHA256, digest[:])
	if err != nil {
		return "", fmt.Errorf("crypto: sign: %w", err)
	}
	return hex.EncodeToString(sig), nil
}

// Verify checks that signatureHex is a valid PKCS#1 v1.5 signature over
// SHA-256(id) by the holder of publicKeyHex. Parse or verification
// failures both return false, never an error: per spec, a failure to
// parse a key or verify a signature is a validation failure, not a
// crash.
func Verify(idHex string, signatureHex string, publicKeyHex string) bool {
	pub, err := parsePublicKey(publicKeyHex)
	if err != nil {
		return false
	}

	sig, err := hex.DecodeString(signatureHex)
	if err != nil {
		return false
	}

	digest := sha256.Sum256([]byte(idHex))
	return rsa.VerifyPKCS1v15(pub, stdcrypto.SHA256, digest[:], sig) == nil
}

func parsePrivateKey(privateKeyHex string) (*rsa.PrivateKey, error) {
	der, err := hex.DecodeString(privateKeyHex)
	if err != nil {
		return nil, fmt.Errorf("crypto: decode private key hex: %w", err)
	}
	key, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, fmt.Errorf("crypto: parse private key: %w", err)
	}
	rsaKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("crypto: private key is not RSA")
	}
	return rsaKey, nil
}

func parsePublicKey(publicKeyHex string) (*rsa.PublicKey, error) {
	der, err := hex.DecodeString(publicKeyHex)
	if err != nil {
		return nil, fmt.Errorf("crypto: decode public key hex: %w", err)
	}
	key, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, fmt.Errorf("crypto: parse public key: %w", err)
	}
	rsaKey, ok := key.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("crypto: public key is not RSA")
	}
	return rsaKey, nil
}
