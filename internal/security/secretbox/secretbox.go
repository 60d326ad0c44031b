// Package secretbox cifra secretos de configuración con AES-256-GCM usando
// una clave maestra tomada del entorno. Los valores cifrados viajan como
// base64(nonce)|base64(ciphertext), aptos para un YAML versionado.
package secretbox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

const (
	masterKeyEnvVar = "SECRETBOX_MASTER_KEY"
	nonceSize       = 12 // AES-GCM, 96 bits
	keySize         = 32 // AES-256
	sep             = "|"
)

var (
	mu        sync.Mutex
	masterKey []byte
	keyOnce   sync.Once
	keyErr    error
)

// loadKey carga la clave maestra (base64, 32 bytes) una sola vez.
func loadKey() error {
	keyOnce.Do(func() {
		raw := strings.TrimSpace(os.Getenv(masterKeyEnvVar))
		if raw == "" {
			keyErr = fmt.Errorf("%s no seteada; genere una con: openssl rand -base64 32", masterKeyEnvVar)
			return
		}
		k, err := base64.StdEncoding.DecodeString(raw)
		if err != nil {
			keyErr = fmt.Errorf("decode %s: %w", masterKeyEnvVar, err)
			return
		}
		if len(k) != keySize {
			keyErr = fmt.Errorf("%s debe decodificar a %d bytes, obtuvo %d", masterKeyEnvVar, keySize, len(k))
			return
		}
		mu.Lock()
		masterKey = k
		mu.Unlock()
	})
	return keyErr
}

func gcm() (cipher.AEAD, error) {
	if err := loadKey(); err != nil {
		return nil, err
	}
	mu.Lock()
	key := make([]byte, len(masterKey))
	copy(key, masterKey)
	mu.Unlock()

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("aes.NewCipher: %w", err)
	}
	return cipher.NewGCM(block)
}

// Encrypt cifra plainText y devuelve base64(nonce)|base64(ciphertext).
func Encrypt(plainText string) (string, error) {
	aead, err := gcm()
	if err != nil {
		return "", err
	}

	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("nonce random: %w", err)
	}

	ct := aead.Seal(nil, nonce, []byte(plainText), nil)
	return base64.StdEncoding.EncodeToString(nonce) + sep + base64.StdEncoding.EncodeToString(ct), nil
}

// Decrypt recibe base64(nonce)|base64(ciphertext) y devuelve el texto plano.
func Decrypt(cipherText string) (string, error) {
	parts := strings.Split(cipherText, sep)
	if len(parts) != 2 {
		return "", errors.New("formato inválido: esperado base64(nonce)|base64(ciphertext)")
	}
	nonce, err := base64.StdEncoding.DecodeString(parts[0])
	if err != nil {
		return "", fmt.Errorf("decode nonce: %w", err)
	}
	ct, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return "", fmt.Errorf("decode ciphertext: %w", err)
	}
	if len(nonce) != nonceSize {
		return "", fmt.Errorf("nonce inválido: esperado %d bytes, obtuvo %d", nonceSize, len(nonce))
	}

	aead, err := gcm()
	if err != nil {
		return "", err
	}
	pt, err := aead.Open(nil, nonce, ct, nil)
	if err != nil {
		return "", fmt.Errorf("gcm auth/decrypt: %w", err)
	}
	return string(pt), nil
}

// UnsafeResetForTests borra el estado interno. Usar sólo en tests.
func UnsafeResetForTests() {
	mu.Lock()
	masterKey = nil
	mu.Unlock()
	keyOnce = sync.Once{}
	keyErr = nil
}
