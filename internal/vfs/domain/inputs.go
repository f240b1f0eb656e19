package domain

import (
	"time"
)

// IssueTokenInput contains the parameters for issuing a capability token.
type IssueTokenInput struct {
	// PathScope is the path prefix the token will cover.
	PathScope string

	// Permissions is the permission set to grant. When empty, the engine
	// applies the configured default permission set.
	Permissions []Permission

	// TTL is the requested lifetime. Requests above the configured maximum
	// are clamped, never rejected.
	TTL time.Duration
}

// IssueTokenOutput carries a freshly issued token together with its external
// string encoding, the only form that crosses the process boundary.
type IssueTokenOutput struct {
	Token   *Token
	Encoded string
}
