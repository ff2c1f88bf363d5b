package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/crypto/scrypt"
)

// ErrAuthentication is returned when a credentials file cannot be decrypted,
// almost always because the passphrase is wrong or the file was altered.
var ErrAuthentication = errors.New("credentials authentication failed")

// payloadVersion identifies the on-disk format. Bump it when the payload
// layout or the derivation parameters change.
const payloadVersion = 1

// Credentials holds the provider API keys kept in the encrypted file.
// Empty fields mean the provider falls back to its configured or env key.
type Credentials struct {
	FREDAPIKey string `json:"fred_api_key,omitempty"`
	BLSAPIKey  string `json:"bls_api_key,omitempty"`
	ECOSAPIKey string `json:"ecos_api_key,omitempty"`
}

// Params defines the scrypt key derivation parameters.
type Params struct {
	N      int // CPU/memory cost, power of two
	R      int // block size
	P      int // parallelization
	KeyLen int // derived key length, 32 for AES-256
}

// DefaultParams returns the derivation parameters used for new files.
func DefaultParams() Params {
	return Params{
		N:      32768,
		R:      8,
		P:      1,
		KeyLen: 32,
	}
}

// EncryptedPayload is the versioned JSON document written to disk.
// Salt and nonce are generated fresh per Save; the GCM tag rides at the
// end of the ciphertext.
type EncryptedPayload struct {
	Version    uint8  `json:"version"`
	ScryptN    int    `json:"scrypt_n"`
	ScryptR    int    `json:"scrypt_r"`
	ScryptP    int    `json:"scrypt_p"`
	Salt       []byte `json:"salt"`
	Nonce      []byte `json:"nonce"`
	Ciphertext []byte `json:"ciphertext"`
	Timestamp  int64  `json:"timestamp"`
}

// Save encrypts the credentials with the passphrase and writes them to path.
// The file is created with owner-only permissions.
func Save(path string, creds *Credentials, passphrase []byte) error {
	if creds == nil {
		return errors.New("credentials cannot be nil")
	}
	if len(passphrase) == 0 {
		return errors.New("passphrase cannot be empty")
	}

	plaintext, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("failed to encode credentials: %w", err)
	}

	payload, err := encrypt(plaintext, passphrase, DefaultParams())
	zero(plaintext)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create credentials directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write credentials file: %w", err)
	}
	return nil
}

// Load reads and decrypts a credentials file written by Save. A wrong
// passphrase or a tampered file yields ErrAuthentication.
func Load(path string, passphrase []byte) (*Credentials, error) {
	if len(passphrase) == 0 {
		return nil, errors.New("passphrase cannot be empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}

	var payload EncryptedPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse credentials file: %w", err)
	}

	plaintext, err := decrypt(&payload, passphrase)
	if err != nil {
		return nil, err
	}
	defer zero(plaintext)

	var creds Credentials
	if err := json.Unmarshal(plaintext, &creds); err != nil {
		return nil, fmt.Errorf("failed to decode credentials: %w", err)
	}
	return &creds, nil
}

func encrypt(plaintext, passphrase []byte, params Params) (*EncryptedPayload, error) {
	if len(plaintext) == 0 {
		return nil, errors.New("plaintext cannot be empty")
	}

	salt := make([]byte, 32)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	key, err := scrypt.Key(passphrase, salt, params.N, params.R, params.P, params.KeyLen)
	if err != nil {
		return nil, fmt.Errorf("key derivation failed: %w", err)
	}
	defer zero(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	return &EncryptedPayload{
		Version:    payloadVersion,
		ScryptN:    params.N,
		ScryptR:    params.R,
		ScryptP:    params.P,
		Salt:       salt,
		Nonce:      nonce,
		Ciphertext: gcm.Seal(nil, nonce, plaintext, nil),
		Timestamp:  time.Now().Unix(),
	}, nil
}

func decrypt(payload *EncryptedPayload, passphrase []byte) ([]byte, error) {
	if payload.Version != payloadVersion {
		return nil, fmt.Errorf("unsupported credentials file version: %d", payload.Version)
	}
	if err := validateParams(payload); err != nil {
		return nil, err
	}

	key, err := scrypt.Key(passphrase, payload.Salt, payload.ScryptN, payload.ScryptR, payload.ScryptP, 32)
	if err != nil {
		return nil, fmt.Errorf("key derivation failed: %w", err)
	}
	defer zero(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	plaintext, err := gcm.Open(nil, payload.Nonce, payload.Ciphertext, nil)
	if err != nil {
		return nil, ErrAuthentication
	}
	return plaintext, nil
}

// validateParams bounds the stored derivation parameters so a crafted file
// cannot demand an absurd amount of memory.
func validateParams(payload *EncryptedPayload) error {
	if payload.ScryptN < 1024 || payload.ScryptN > 1<<20 {
		return fmt.Errorf("scrypt N out of range: %d", payload.ScryptN)
	}
	if payload.ScryptR < 1 || payload.ScryptR > 32 {
		return fmt.Errorf("scrypt r out of range: %d", payload.ScryptR)
	}
	if payload.ScryptP < 1 || payload.ScryptP > 4 {
		return fmt.Errorf("scrypt p out of range: %d", payload.ScryptP)
	}
	if len(payload.Salt) < 16 {
		return errors.New("salt too short")
	}
	if len(payload.Nonce) != 12 {
		return errors.New("nonce must be 12 bytes")
	}
	return nil
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
