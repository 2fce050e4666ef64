// Package credentials provides secure API key storage for the newscast CLI.
// Keys are stored in the system keyring:
// - macOS: Keychain
// - Windows: Credential Manager
// - Linux: Secret Service (libsecret)
//
// For CI and automation, NEWSCAST_<VENDOR>_API_KEY environment variables
// take precedence over the keyring (e.g. NEWSCAST_ELEVENLABS_API_KEY).
package credentials

import (
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/zalando/go-keyring"
	"golang.org/x/term"

	apperrors "github.com/nexcaster/newscast-cli/pkg/errors"
)

// keyringService is the service name used for keyring entries.
const keyringService = "newscast"

// Store manages vendor API key storage.
type Store struct{}

// NewStore creates a new credential store backed by the system keyring.
func NewStore() *Store {
	return &Store{}
}

// envVar returns the environment variable name for a vendor key.
func envVar(vendor string) string {
	return "NEWSCAST_" + strings.ToUpper(vendor) + "_API_KEY"
}

// Get returns the API key for a vendor. The environment variable takes
// precedence over the keyring.
func (s *Store) Get(vendor string) (string, error) {
	if key := os.Getenv(envVar(vendor)); key != "" {
		return key, nil
	}

	key, err := keyring.Get(keyringService, vendor)
	if err != nil {
		if err == keyring.ErrNotFound {
			return "", fmt.Errorf("%w for vendor %q (set %s or run: newscast config set-key %s)",
				apperrors.ErrNoCredentials, vendor, envVar(vendor), vendor)
		}
		return "", fmt.Errorf("reading keyring: %w", err)
	}

	return key, nil
}

// Set stores the API key for a vendor in the system keyring.
func (s *Store) Set(vendor, key string) error {
	if key == "" {
		return fmt.Errorf("api key must not be empty")
	}
	if err := keyring.Set(keyringService, vendor, key); err != nil {
		return fmt.Errorf("writing keyring: %w", err)
	}
	return nil
}

// Delete removes the stored API key for a vendor.
func (s *Store) Delete(vendor string) error {
	if err := keyring.Delete(keyringService, vendor); err != nil {
		if err == keyring.ErrNotFound {
			return nil // Already deleted.
		}
		return fmt.Errorf("deleting keyring entry: %w", err)
	}
	return nil
}

// PromptAndSet reads an API key from the terminal without echo and stores it.
func (s *Store) PromptAndSet(vendor string) error {
	fmt.Fprintf(os.Stderr, "API key for %s: ", vendor)
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return fmt.Errorf("reading key: %w", err)
	}

	return s.Set(vendor, strings.TrimSpace(string(raw)))
}

// Mask returns a masked version of a key for display.
func Mask(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", len(key)-8) + key[len(key)-4:]
}
