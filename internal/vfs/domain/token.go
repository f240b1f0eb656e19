package domain

import (
	"time"

	"github.com/google/uuid"
)

// Token is a signed, time-limited capability credential. It authorizes the
// permissions it carries for every path under its scope. Tokens are immutable
// once issued; they are invalidated only by expiry or explicit revocation.
type Token struct {
	ID          uuid.UUID
	PathScope   string
	Permissions []Permission
	IssuedAt    time.Time
	ExpiresAt   time.Time

	// Signature is the HMAC computed over the canonical serialization of the
	// other fields. A token whose signature does not verify is worthless
	// regardless of the claims it carries.
	Signature []byte
}

// HasPermission reports whether the token carries the given permission.
func (t *Token) HasPermission(perm Permission) bool {
	for _, p := range t.Permissions {
		if p == perm {
			return true
		}
	}
	return false
}

// IsExpired reports whether the token has expired at the given instant.
func (t *Token) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// CoversPath reports whether the token's scope is a segment-prefix of path.
// Matching is by whole path segments: a scope of "/proc" covers "/proc" and
// "/proc/llama3" but not "/process".
func (t *Token) CoversPath(path string) bool {
	return IsPathPrefix(t.PathScope, path)
}

// IsPathPrefix reports whether prefix is a whole-segment prefix of path.
func IsPathPrefix(prefix, path string) bool {
	prefixSegs := SplitPath(prefix)
	pathSegs := SplitPath(path)
	if len(prefixSegs) > len(pathSegs) {
		return false
	}
	for i, seg := range prefixSegs {
		if pathSegs[i] != seg {
			return false
		}
	}
	return true
}

// SplitPath splits a slash-separated path into its non-empty segments.
// "/", "" and "//" all yield an empty slice.
func SplitPath(path string) []string {
	segs := make([]string, 0, 8)
	start := -1
	for i := 0; i < len(path); i++ {
		if path[i] == '/' {
			if start >= 0 {
				segs = append(segs, path[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		segs = append(segs, path[start:])
	}
	return segs
}
