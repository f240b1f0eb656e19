// Package service provides technical services for the virtual filesystem
// core: capability token signing and encoding, mount resolution, and audit
// record signing.
package service

import (
	"github.com/gnos-os/gnos/internal/vfs/domain"
)

// TokenSigner computes and verifies the HMAC signature over a capability
// token's canonical serialization. Implementations must derive the signing
// key from the process secret rather than using it directly, and must verify
// in constant time.
type TokenSigner interface {
	// Sign returns the signature over the token's claims.
	Sign(token *domain.Token) ([]byte, error)

	// Verify checks the token's Signature against its own claims.
	// Returns domain.ErrInvalidSignature on mismatch.
	Verify(token *domain.Token) error
}

// TokenCodec converts tokens to and from their external string encoding
// "gnos.<base64url(payload)>.<base64url(signature)>". The encoded string is
// the only artifact that crosses the process boundary to represent a
// capability.
type TokenCodec interface {
	// Encode serializes a signed token to its external form.
	Encode(token *domain.Token) (string, error)

	// Decode parses an external token string. Structural problems yield
	// domain.ErrMalformedToken; Decode performs no signature verification.
	Decode(encoded string) (*domain.Token, error)
}

// AuditSigner computes and verifies the HMAC signature over an audit
// record's canonical serialization, making tampering with stored records
// detectable.
type AuditSigner interface {
	// Sign returns the signature over the record's content.
	Sign(record *domain.AuditRecord) ([]byte, error)

	// Verify checks the record's Signature against its content.
	// Returns domain.ErrRecordTampered on mismatch.
	Verify(record *domain.AuditRecord) error
}
