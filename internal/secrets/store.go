// Package secrets keeps LLM provider API keys in a per-user file (0600).
// Keys are sealed with AES-GCM under a key derived from a random per-store
// salt and the local account; this keeps them out of plain-text config but
// is not a keychain.
package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"
)

const (
	fileName    = "keys.json"
	fileVersion = 2
	saltSize    = 16
)

var (
	// ErrKeyNotFound is returned when no key is stored for a provider.
	ErrKeyNotFound = errors.New("key not found")
	// ErrUnsupportedFile is returned for key files written in another format.
	ErrUnsupportedFile = errors.New("unsupported key file")
)

type sealedKey struct {
	Sealed  string    `json:"sealed"` // base64(nonce || ciphertext)
	SavedAt time.Time `json:"saved_at"`
}

type keyFile struct {
	Version int                  `json:"version"`
	Salt    string               `json:"salt"`
	Keys    map[string]sealedKey `json:"keys"`
}

// Entry describes one saved key without revealing it.
type Entry struct {
	Provider string
	SavedAt  time.Time
}

// Store keeps provider API keys in Dir.
type Store struct {
	Dir string
}

// Default returns the store under the user config dir.
func Default() (Store, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return Store{}, err
	}
	return Store{Dir: filepath.Join(dir, "lifeops")}, nil
}

// Set seals key for provider, replacing any previous one.
func (s Store) Set(provider, key string) error {
	if provider = norm(provider); provider == "" {
		return fmt.Errorf("provider required")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("key required")
	}
	kf, err := s.read()
	if err != nil {
		return err
	}
	if kf.Salt == "" {
		salt := make([]byte, saltSize)
		if _, err := io.ReadFull(rand.Reader, salt); err != nil {
			return fmt.Errorf("generate salt: %w", err)
		}
		kf.Salt = base64.StdEncoding.EncodeToString(salt)
	}
	gcm, err := kf.aead()
	if err != nil {
		return err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return err
	}
	sealed := gcm.Seal(nonce, nonce, []byte(key), []byte(provider))
	kf.Keys[provider] = sealedKey{
		Sealed:  base64.StdEncoding.EncodeToString(sealed),
		SavedAt: time.Now().UTC().Truncate(time.Second),
	}
	return s.write(kf)
}

// Get returns the key saved for provider or ErrKeyNotFound.
func (s Store) Get(provider string) (string, error) {
	if provider = norm(provider); provider == "" {
		return "", fmt.Errorf("provider required")
	}
	kf, err := s.read()
	if err != nil {
		return "", err
	}
	entry, ok := kf.Keys[provider]
	if !ok {
		return "", ErrKeyNotFound
	}
	raw, err := base64.StdEncoding.DecodeString(entry.Sealed)
	if err != nil {
		return "", fmt.Errorf("decode %s key: %w", provider, err)
	}
	gcm, err := kf.aead()
	if err != nil {
		return "", err
	}
	if len(raw) < gcm.NonceSize() {
		return "", fmt.Errorf("decrypt %s key: ciphertext too short", provider)
	}
	pt, err := gcm.Open(nil, raw[:gcm.NonceSize()], raw[gcm.NonceSize():], []byte(provider))
	if err != nil {
		return "", fmt.Errorf("decrypt %s key: %w", provider, err)
	}
	return string(pt), nil
}

// Delete removes the key saved for provider.
func (s Store) Delete(provider string) error {
	if provider = norm(provider); provider == "" {
		return fmt.Errorf("provider required")
	}
	kf, err := s.read()
	if err != nil {
		return err
	}
	if _, ok := kf.Keys[provider]; !ok {
		return ErrKeyNotFound
	}
	delete(kf.Keys, provider)
	return s.write(kf)
}

// List returns the saved providers, sorted by name.
func (s Store) List() ([]Entry, error) {
	kf, err := s.read()
	if err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(kf.Keys))
	for p, k := range kf.Keys {
		out = append(out, Entry{Provider: p, SavedAt: k.SavedAt})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Provider < out[j].Provider })
	return out, nil
}

func (s Store) path() (string, error) {
	if s.Dir == "" {
		return "", fmt.Errorf("secrets dir not set")
	}
	return filepath.Join(s.Dir, fileName), nil
}

// read loads the key file; a missing file is an empty store.
func (s Store) read() (keyFile, error) {
	kf := keyFile{Version: fileVersion, Keys: map[string]sealedKey{}}
	path, err := s.path()
	if err != nil {
		return kf, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return kf, nil
	}
	if err != nil {
		return kf, err
	}
	var head struct {
		Version int `json:"version"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return kf, fmt.Errorf("parse %s: %w", path, err)
	}
	if head.Version != fileVersion {
		return kf, fmt.Errorf("%s: version %d: %w", path, head.Version, ErrUnsupportedFile)
	}
	if err := json.Unmarshal(data, &kf); err != nil {
		return kf, fmt.Errorf("parse %s: %w", path, err)
	}
	if kf.Keys == nil {
		kf.Keys = map[string]sealedKey{}
	}
	return kf, nil
}

func (s Store) write(kf keyFile) error {
	path, err := s.path()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.Dir, 0o700); err != nil {
		return err
	}
	kf.Version = fileVersion
	data, err := json.MarshalIndent(kf, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func (kf keyFile) aead() (cipher.AEAD, error) {
	salt, err := base64.StdEncoding.DecodeString(kf.Salt)
	if err != nil || len(salt) != saltSize {
		return nil, fmt.Errorf("bad salt: %w", ErrUnsupportedFile)
	}
	h := sha256.New()
	h.Write(salt)
	fmt.Fprintf(h, "lifeops/%s/%s", runtime.GOOS, os.Getenv("USER"))
	block, err := aes.NewCipher(h.Sum(nil))
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

func norm(s string) string {
	return strings.TrimSpace(strings.ToLower(s))
}
