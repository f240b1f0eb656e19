// Package domain defines the virtual filesystem domain models: capability
// tokens, mount entries, handles, audit records, and the driver contract.
package domain

import (
	"fmt"
	"strings"
)

// Permission defines the operations a capability token may authorize.
type Permission string

const (
	// ReadPermission allows reading file content.
	ReadPermission Permission = "read"

	// WritePermission allows creating, writing, or removing files.
	WritePermission Permission = "write"

	// ListPermission allows listing directory entries.
	ListPermission Permission = "list"
)

// ParsePermission converts a string to a Permission.
// Returns an error for unknown values.
func ParsePermission(s string) (Permission, error) {
	switch Permission(s) {
	case ReadPermission, WritePermission, ListPermission:
		return Permission(s), nil
	default:
		return "", fmt.Errorf("invalid permission: %q (valid options: read, write, list)", s)
	}
}

// ParsePermissions converts a comma-separated permission list to a slice.
// Whitespace around entries is ignored; duplicates are collapsed.
func ParsePermissions(s string) ([]Permission, error) {
	parts := strings.Split(s, ",")
	seen := make(map[Permission]bool, len(parts))
	perms := make([]Permission, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		perm, err := ParsePermission(trimmed)
		if err != nil {
			return nil, err
		}
		if !seen[perm] {
			seen[perm] = true
			perms = append(perms, perm)
		}
	}
	if len(perms) == 0 {
		return nil, fmt.Errorf("permission list is empty")
	}
	return perms, nil
}
