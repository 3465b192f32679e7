package parquet

import (
	"crypto/aes"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"

	pq "github.com/apache/arrow/go/v11/parquet"
)

// Errors returned by key management.
var (
	// ErrInvalidKey indicates key material that is not a valid AES key.
	ErrInvalidKey = errors.New("invalid encryption key")

	// ErrUnknownKey indicates a key name that was never registered.
	ErrUnknownKey = errors.New("unknown encryption key")
)

// KeyRing holds named AES keys for footer encryption.
//
// Keys are registered under a name; the name is written into the file footer
// as key metadata and resolved through the ring on read. A KeyRing is safe
// for concurrent use.
type KeyRing struct {
	mu   sync.RWMutex
	keys map[string][]byte
}

// NewKeyRing returns an empty key ring.
func NewKeyRing() *KeyRing {
	return &KeyRing{keys: make(map[string][]byte)}
}

// Register stores secret under name. The secret is either 16, 24 or 32 raw
// bytes, or base64 text decoding to one of those lengths. Registering a name
// twice replaces the earlier key.
func (k *KeyRing) Register(name string, secret []byte) error {
	if name == "" {
		return fmt.Errorf("%w: empty key name", ErrInvalidKey)
	}

	key, err := parseKey(secret)
	if err != nil {
		return err
	}

	k.mu.Lock()
	defer k.mu.Unlock()
	if old, ok := k.keys[name]; ok {
		wipe(old)
	}
	k.keys[name] = key
	return nil
}

// Lookup returns a copy of the key registered under name.
func (k *KeyRing) Lookup(name string) ([]byte, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	key, ok := k.keys[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKey, name)
	}
	return append([]byte(nil), key...), nil
}

// Names returns the registered key names.
func (k *KeyRing) Names() []string {
	k.mu.RLock()
	defer k.mu.RUnlock()
	names := make([]string, 0, len(k.keys))
	for name := range k.keys {
		names = append(names, name)
	}
	return names
}

// Retriever returns a decryption key retriever over the registered keys.
// The retriever is a snapshot; keys registered later are not visible to it.
func (k *KeyRing) Retriever() pq.DecryptionKeyRetriever {
	k.mu.RLock()
	defer k.mu.RUnlock()
	r := make(keyRetriever, len(k.keys))
	for name, key := range k.keys {
		r[name] = string(key)
	}
	return r
}

// keyRetriever resolves footer key metadata, which holds the key name.
type keyRetriever map[string]string

func (r keyRetriever) GetKey(keyMetadata []byte) string {
	return r[string(keyMetadata)]
}

// Wipe zeroes and forgets every key. The ring stays usable.
func (k *KeyRing) Wipe() {
	k.mu.Lock()
	defer k.mu.Unlock()
	for name, key := range k.keys {
		wipe(key)
		delete(k.keys, name)
	}
}

// parseKey accepts raw or base64 key material and validates it as an AES key.
//
// Padded base64 text is decoded first: the standard encoding of a 16-byte
// key is 24 characters long and would otherwise pass as a raw AES-192 key.
func parseKey(secret []byte) ([]byte, error) {
	text := strings.TrimSpace(string(secret))
	if strings.HasSuffix(text, "=") {
		if key, ok := decodeKey(text, base64.StdEncoding, base64.URLEncoding); ok {
			return checkKey(key)
		}
	}

	if validKeyLen(len(secret)) {
		return checkKey(append([]byte(nil), secret...))
	}

	if key, ok := decodeKey(text, base64.StdEncoding, base64.RawStdEncoding, base64.URLEncoding, base64.RawURLEncoding); ok {
		return checkKey(key)
	}
	return nil, fmt.Errorf("%w: key must be 16, 24, or 32 bytes, got %d", ErrInvalidKey, len(secret))
}

// decodeKey returns the first decoding of text that has a valid key length.
func decodeKey(text string, encodings ...*base64.Encoding) ([]byte, bool) {
	for _, enc := range encodings {
		decoded, err := enc.DecodeString(text)
		if err == nil && validKeyLen(len(decoded)) {
			return decoded, true
		}
	}
	return nil, false
}

func validKeyLen(n int) bool {
	return n == 16 || n == 24 || n == 32
}

func checkKey(key []byte) ([]byte, error) {
	if _, err := aes.NewCipher(key); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return key, nil
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
