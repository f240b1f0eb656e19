package commands

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"

	"github.com/allisson/go-pwdhash"
)

// RunHashAdminKey generates an admin API key and its Argon2id hash. The hash
// goes into SECURITY_ADMIN_API_KEY_HASH; the plain key goes to the operator
// and is never stored. When key is empty a random 32-byte key is generated.
func RunHashAdminKey(writer io.Writer, key string) error {
	if key == "" {
		randomBytes := make([]byte, 32)
		if _, err := rand.Read(randomBytes); err != nil {
			return fmt.Errorf("failed to generate random key: %w", err)
		}
		key = base64.URLEncoding.EncodeToString(randomBytes)
	}

	hasher, err := pwdhash.New(pwdhash.WithPolicy(pwdhash.PolicyModerate))
	if err != nil {
		return fmt.Errorf("failed to create hasher: %w", err)
	}

	hash, err := hasher.Hash([]byte(key))
	if err != nil {
		return fmt.Errorf("failed to hash key: %w", err)
	}

	_, _ = fmt.Fprintf(writer, "Admin API Key (save it now, it is not stored):\n%s\n\n", key)
	_, _ = fmt.Fprintf(writer, "SECURITY_ADMIN_API_KEY_HASH:\n%s\n", hash)
	return nil
}
