package keyseal

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
)

const Algorithm = "secp256k1-ecdh+aes-256-gcm"

var ErrInvalidEnvelope = errors.New("invalid sealed envelope")

type KeyPair struct {
	PrivateKey string `json:"privateKey"`
	PublicKey  string `json:"publicKey"`
}

// Envelope is a sealed secret. Binary fields are base64; the ephemeral key
// is a compressed secp256k1 point in hex.
type Envelope struct {
	Algorithm          string `json:"algorithm"`
	EphemeralPublicKey string `json:"ephemeralPublicKey"`
	Nonce              string `json:"nonce"`
	Ciphertext         string `json:"ciphertext"`
	AssociatedData     string `json:"associatedData,omitempty"`
}

// GenerateKeyPair returns a fresh secp256k1 pair as hex strings.
func GenerateKeyPair() (KeyPair, error) {
	privateKey, err := btcec.NewPrivateKey()
	if err != nil {
		return KeyPair{}, err
	}
	return KeyPair{
		PrivateKey: hex.EncodeToString(privateKey.Serialize()),
		PublicKey:  hex.EncodeToString(privateKey.PubKey().SerializeCompressed()),
	}, nil
}

// ParsePublicKey parses a compressed or uncompressed secp256k1 public key in hex.
func ParsePublicKey(publicKeyHex string) (*btcec.PublicKey, error) {
	decoded, err := parseHexString(publicKeyHex)
	if err != nil {
		return nil, fmt.Errorf("invalid recipient public key: %w", err)
	}
	publicKey, err := btcec.ParsePubKey(decoded)
	if err != nil {
		return nil, fmt.Errorf("invalid recipient public key: %w", err)
	}
	return publicKey, nil
}

// Seal encrypts plaintext so only the holder of the recipient's private key
// can read it. associatedData is authenticated but not encrypted.
func Seal(recipientPublicKeyHex string, plaintext []byte, associatedData string) (Envelope, error) {
	if len(plaintext) == 0 {
		return Envelope{}, fmt.Errorf("plaintext is required")
	}
	recipient, err := ParsePublicKey(recipientPublicKeyHex)
	if err != nil {
		return Envelope{}, err
	}

	ephemeral, err := btcec.NewPrivateKey()
	if err != nil {
		return Envelope{}, err
	}
	gcm, err := newGCM(btcec.GenerateSharedSecret(ephemeral, recipient))
	if err != nil {
		return Envelope{}, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return Envelope{}, err
	}

	envelope := Envelope{
		Algorithm:          Algorithm,
		EphemeralPublicKey: hex.EncodeToString(ephemeral.PubKey().SerializeCompressed()),
		Nonce:              base64.StdEncoding.EncodeToString(nonce),
		Ciphertext:         base64.StdEncoding.EncodeToString(gcm.Seal(nil, nonce, plaintext, []byte(associatedData))),
	}
	if associatedData != "" {
		envelope.AssociatedData = base64.StdEncoding.EncodeToString([]byte(associatedData))
	}
	return envelope, nil
}

// Open decrypts an envelope produced by Seal.
func Open(recipientPrivateKeyHex string, envelope Envelope) ([]byte, error) {
	if envelope.Algorithm != Algorithm {
		return nil, fmt.Errorf("%w: unsupported algorithm %q", ErrInvalidEnvelope, envelope.Algorithm)
	}

	privateKeyBytes, err := parseHexString(recipientPrivateKeyHex)
	if err != nil {
		return nil, fmt.Errorf("invalid recipient private key: %w", err)
	}
	privateKey, _ := btcec.PrivKeyFromBytes(privateKeyBytes)

	ephemeralBytes, err := parseHexString(envelope.EphemeralPublicKey)
	if err != nil {
		return nil, fmt.Errorf("%w: ephemeral key: %w", ErrInvalidEnvelope, err)
	}
	ephemeral, err := btcec.ParsePubKey(ephemeralBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: ephemeral key: %w", ErrInvalidEnvelope, err)
	}

	nonce, err := base64.StdEncoding.DecodeString(envelope.Nonce)
	if err != nil {
		return nil, fmt.Errorf("%w: nonce: %w", ErrInvalidEnvelope, err)
	}
	ciphertext, err := base64.StdEncoding.DecodeString(envelope.Ciphertext)
	if err != nil {
		return nil, fmt.Errorf("%w: ciphertext: %w", ErrInvalidEnvelope, err)
	}
	var associatedData []byte
	if envelope.AssociatedData != "" {
		associatedData, err = base64.StdEncoding.DecodeString(envelope.AssociatedData)
		if err != nil {
			return nil, fmt.Errorf("%w: associated data: %w", ErrInvalidEnvelope, err)
		}
	}

	gcm, err := newGCM(btcec.GenerateSharedSecret(privateKey, ephemeral))
	if err != nil {
		return nil, err
	}
	if len(nonce) != gcm.NonceSize() {
		return nil, fmt.Errorf("%w: nonce must be %d bytes", ErrInvalidEnvelope, gcm.NonceSize())
	}

	plaintext, err := gcm.Open(nil, nonce, ciphertext, associatedData)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidEnvelope, err)
	}
	return plaintext, nil
}

func newGCM(sharedSecret []byte) (cipher.AEAD, error) {
	digest := sha256.Sum256(sharedSecret)
	block, err := aes.NewCipher(digest[:])
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

func parseHexString(value string) ([]byte, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(value), "0x")
	if trimmed == "" {
		return nil, fmt.Errorf("hex string is required")
	}
	return hex.DecodeString(trimmed)
}
