package domain

import (
	"github.com/gnos-os/gnos/internal/errors"
)

// Authorization errors. The five-step authorize check reports the first
// failing step; all of these are terminal for the operation and no driver is
// invoked after one is returned.
var (
	// ErrInvalidSignature indicates the token's signature does not verify
	// against its own claims, or the token could not be parsed at all.
	ErrInvalidSignature = errors.Wrap(errors.ErrUnauthorized, "invalid token signature")

	// ErrTokenRevoked indicates the token id is in the revocation set.
	ErrTokenRevoked = errors.Wrap(errors.ErrUnauthorized, "token revoked")

	// ErrTokenExpired indicates the token's expiry has passed.
	ErrTokenExpired = errors.Wrap(errors.ErrUnauthorized, "token expired")

	// ErrInsufficientScope indicates the token's path scope does not cover the
	// requested path.
	ErrInsufficientScope = errors.Wrap(errors.ErrForbidden, "insufficient scope")

	// ErrInsufficientPermission indicates the token does not carry the
	// requested permission.
	ErrInsufficientPermission = errors.Wrap(errors.ErrForbidden, "insufficient permission")
)

// Resolution errors.
var (
	// ErrNoMount indicates no registered mount prefix covers the path.
	ErrNoMount = errors.Wrap(errors.ErrNotFound, "no mount covers path")

	// ErrDuplicateMount indicates a mount registration with an already
	// registered prefix.
	ErrDuplicateMount = errors.Wrap(errors.ErrConflict, "mount prefix already registered")

	// ErrMountNotFound indicates an unregister of an unknown prefix.
	ErrMountNotFound = errors.Wrap(errors.ErrNotFound, "mount prefix not registered")
)

// Driver errors. Drivers wrap these to classify failures; the core surfaces
// them to callers unmodified in kind and never retries.
var (
	// ErrDriverNotSupported indicates the operation is meaningless for the backend.
	ErrDriverNotSupported = errors.Wrap(errors.ErrNotSupported, "driver")

	// ErrDriverUnavailable indicates the backend is temporarily unreachable.
	ErrDriverUnavailable = errors.Wrap(errors.ErrUnavailable, "driver")

	// ErrDriverTimeout indicates the backend call exceeded its deadline.
	ErrDriverTimeout = errors.Wrap(errors.ErrTimeout, "driver")

	// ErrDriverInvalidInput indicates the backend rejected the request payload.
	ErrDriverInvalidInput = errors.Wrap(errors.ErrInvalidInput, "driver")
)

// Handle and token encoding errors.
var (
	// ErrHandleNotFound indicates use of a released or unknown handle.
	ErrHandleNotFound = errors.Wrap(errors.ErrNotFound, "handle not found")

	// ErrMalformedToken indicates a token string that does not follow the
	// external "gnos.<payload>.<signature>" encoding.
	ErrMalformedToken = errors.Wrap(errors.ErrInvalidInput, "malformed token")

	// ErrRecordTampered indicates an audit record whose signature no longer
	// verifies against its content.
	ErrRecordTampered = errors.Wrap(errors.ErrInvalidInput, "audit record signature mismatch")
)
