package service

import (
	"encoding/base64"
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	apperrors "github.com/gnos-os/gnos/internal/errors"
	"github.com/gnos-os/gnos/internal/vfs/domain"
)

// tokenPrefix marks the external encoding of a capability token.
const tokenPrefix = "gnos."

// gnosTokenCodec implements the "gnos.<payload>.<signature>" external
// encoding with URL-safe unpadded base64, mirroring the canonical
// serialization used for signing so a decoded token re-signs to the same
// bytes.
type gnosTokenCodec struct{}

// NewTokenCodec creates the TokenCodec for the gnos external token format.
func NewTokenCodec() TokenCodec {
	return &gnosTokenCodec{}
}

// Encode serializes a signed token to its external string form.
func (c *gnosTokenCodec) Encode(token *domain.Token) (string, error) {
	canonical, err := canonicalTokenBytes(token)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(tokenPrefix)
	b.WriteString(base64.RawURLEncoding.EncodeToString(canonical))
	b.WriteByte('.')
	b.WriteString(base64.RawURLEncoding.EncodeToString(token.Signature))
	return b.String(), nil
}

// Decode parses an external token string back into a token with its
// signature attached. No signature verification happens here; callers must
// verify through the TokenSigner before trusting any claim.
func (c *gnosTokenCodec) Decode(encoded string) (*domain.Token, error) {
	if !strings.HasPrefix(encoded, tokenPrefix) {
		return nil, apperrors.Wrap(domain.ErrMalformedToken, "missing gnos prefix")
	}

	rest := encoded[len(tokenPrefix):]
	payloadPart, sigPart, found := strings.Cut(rest, ".")
	if !found || payloadPart == "" || sigPart == "" {
		return nil, apperrors.Wrap(domain.ErrMalformedToken, "expected payload and signature sections")
	}

	payloadBytes, err := base64.RawURLEncoding.DecodeString(payloadPart)
	if err != nil {
		return nil, apperrors.Wrap(domain.ErrMalformedToken, "payload is not valid base64url")
	}

	signature, err := base64.RawURLEncoding.DecodeString(sigPart)
	if err != nil {
		return nil, apperrors.Wrap(domain.ErrMalformedToken, "signature is not valid base64url")
	}

	var payload tokenPayload
	if err := json.Unmarshal(payloadBytes, &payload); err != nil {
		return nil, apperrors.Wrap(domain.ErrMalformedToken, "payload is not valid JSON")
	}

	token, err := tokenFromPayload(&payload)
	if err != nil {
		return nil, err
	}
	token.Signature = signature

	return token, nil
}

// parseTokenID parses the token id claim, mapping parse failures to the
// malformed token error.
func parseTokenID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, apperrors.Wrap(domain.ErrMalformedToken, "token id is not a valid UUID")
	}
	return id, nil
}
