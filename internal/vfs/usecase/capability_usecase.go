package usecase

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gnos-os/gnos/internal/config"
	apperrors "github.com/gnos-os/gnos/internal/errors"
	"github.com/gnos-os/gnos/internal/vfs/domain"
	vfsService "github.com/gnos-os/gnos/internal/vfs/service"
)

// capabilityUseCase implements CapabilityUseCase. It holds the revocation set
// and delegates signing and encoding to the token services.
type capabilityUseCase struct {
	config *config.Config
	signer vfsService.TokenSigner
	codec  vfsService.TokenCodec

	mu      sync.RWMutex
	revoked map[uuid.UUID]struct{}

	// now is the clock used for issuance and expiry checks; overridable in
	// tests to simulate clock advance.
	now func() time.Time
}

// Issue creates, signs, and encodes a fresh capability token.
//
// This method:
// 1. Normalizes and validates the path scope
// 2. Applies the configured default permission set when none is given
// 3. Clamps the TTL to the configured maximum lifetime
// 4. Signs the canonical serialization of the claims
// 5. Returns the token together with its external string encoding
//
// Timestamps are truncated to whole seconds so the canonical serialization
// round-trips exactly through the external encoding.
func (c *capabilityUseCase) Issue(
	ctx context.Context,
	input *domain.IssueTokenInput,
) (*domain.IssueTokenOutput, error) {
	scope, err := normalizeScope(input.PathScope)
	if err != nil {
		return nil, err
	}

	perms := input.Permissions
	if len(perms) == 0 {
		perms, err = domain.ParsePermissions(c.config.DefaultPermissions)
		if err != nil {
			return nil, apperrors.Wrap(err, "invalid default permission configuration")
		}
	}

	ttl := input.TTL
	if ttl <= 0 {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "ttl must be positive")
	}
	if ttl > c.config.MaxTokenTTL {
		ttl = c.config.MaxTokenTTL
	}

	issuedAt := c.now().UTC().Truncate(time.Second)
	token := &domain.Token{
		ID:          uuid.Must(uuid.NewV7()),
		PathScope:   scope,
		Permissions: perms,
		IssuedAt:    issuedAt,
		ExpiresAt:   issuedAt.Add(ttl).Truncate(time.Second),
	}

	signature, err := c.signer.Sign(token)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to sign token")
	}
	token.Signature = signature

	encoded, err := c.codec.Encode(token)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to encode token")
	}

	return &domain.IssueTokenOutput{Token: token, Encoded: encoded}, nil
}

// Authorize validates an encoded token against a path and a requested
// permission. The five checks run in a fixed order and the first failure
// wins:
//
//  1. signature verifies against the token's own claims -> ErrInvalidSignature
//  2. token id not revoked -> ErrTokenRevoked
//  3. not expired -> ErrTokenExpired
//  4. scope covers path -> ErrInsufficientScope
//  5. permission present -> ErrInsufficientPermission
//
// A token string that cannot be decoded fails check 1: claims that cannot be
// verified are treated the same as claims that verify to nothing.
//
// The decoded token is returned alongside the error whenever decoding
// succeeded, so callers can attribute the attempt in audit records. Client
// supplied claims are never trusted before the signature verifies.
func (c *capabilityUseCase) Authorize(
	ctx context.Context,
	encodedToken string,
	path string,
	perm domain.Permission,
) (*domain.Token, error) {
	if encodedToken == "" {
		return nil, apperrors.Wrap(domain.ErrInvalidSignature, "no token presented")
	}

	token, err := c.codec.Decode(encodedToken)
	if err != nil {
		return nil, apperrors.Wrap(domain.ErrInvalidSignature, err.Error())
	}

	// Check 1: signature
	if err := c.signer.Verify(token); err != nil {
		return token, err
	}

	// Check 2: revocation
	c.mu.RLock()
	_, revoked := c.revoked[token.ID]
	c.mu.RUnlock()
	if revoked {
		return token, domain.ErrTokenRevoked
	}

	// Check 3: expiry
	if token.IsExpired(c.now().UTC()) {
		return token, domain.ErrTokenExpired
	}

	// Check 4: path scope
	if !token.CoversPath(path) {
		return token, domain.ErrInsufficientScope
	}

	// Check 5: permission
	if !token.HasPermission(perm) {
		return token, domain.ErrInsufficientPermission
	}

	return token, nil
}

// Revoke inserts a token id into the revocation set. The insert is
// idempotent and takes effect on the next Authorize call, independent of the
// token's expiry.
func (c *capabilityUseCase) Revoke(ctx context.Context, tokenID uuid.UUID) error {
	c.mu.Lock()
	c.revoked[tokenID] = struct{}{}
	c.mu.Unlock()
	return nil
}

// normalizeScope canonicalizes a path scope to "/seg1/seg2" form. The root
// scope "/" is allowed and covers every path.
func normalizeScope(scope string) (string, error) {
	if scope == "" {
		return "", apperrors.Wrap(apperrors.ErrInvalidInput, "path scope cannot be empty")
	}
	segments := domain.SplitPath(scope)
	if len(segments) == 0 {
		return "/", nil
	}
	return "/" + strings.Join(segments, "/"), nil
}

// NewCapabilityUseCase creates a CapabilityUseCase with an empty revocation set.
func NewCapabilityUseCase(
	cfg *config.Config,
	signer vfsService.TokenSigner,
	codec vfsService.TokenCodec,
) CapabilityUseCase {
	return &capabilityUseCase{
		config:  cfg,
		signer:  signer,
		codec:   codec,
		revoked: make(map[uuid.UUID]struct{}),
		now:     time.Now,
	}
}
