package dto

import (
	"time"

	"github.com/gnos-os/gnos/internal/vfs/domain"
)

// IssueTokenResponse contains a freshly issued capability token.
// SECURITY: the encoded token is only returned once and must be saved by the
// caller; the server never stores it.
type IssueTokenResponse struct {
	ID          string    `json:"id"`
	Token       string    `json:"token"`
	PathScope   string    `json:"path_scope"`
	Permissions []string  `json:"permissions"`
	IssuedAt    time.Time `json:"issued_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// NewIssueTokenResponse converts an issue output to an API response.
func NewIssueTokenResponse(output *domain.IssueTokenOutput) IssueTokenResponse {
	perms := make([]string, 0, len(output.Token.Permissions))
	for _, perm := range output.Token.Permissions {
		perms = append(perms, string(perm))
	}
	return IssueTokenResponse{
		ID:          output.Token.ID.String(),
		Token:       output.Encoded,
		PathScope:   output.Token.PathScope,
		Permissions: perms,
		IssuedAt:    output.Token.IssuedAt,
		ExpiresAt:   output.Token.ExpiresAt,
	}
}

// MountResponse represents a mount table entry in API responses.
type MountResponse struct {
	Prefix     string `json:"prefix"`
	DriverName string `json:"driver_name"`
}

// NewMountResponses converts mount table entries to API responses.
func NewMountResponses(mounts []domain.MountInfo) []MountResponse {
	responses := make([]MountResponse, 0, len(mounts))
	for _, mount := range mounts {
		responses = append(responses, MountResponse{
			Prefix:     mount.Prefix,
			DriverName: mount.DriverName,
		})
	}
	return responses
}

// AuditRecordResponse represents an audit record in API responses.
type AuditRecordResponse struct {
	Sequence  uint64    `json:"sequence"`
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Path      string    `json:"path"`
	Operation string    `json:"operation"`
	TokenID   *string   `json:"token_id,omitempty"`
	Outcome   string    `json:"outcome"`
	Reason    string    `json:"reason,omitempty"`
	LatencyMs float64   `json:"latency_ms"`
}

// NewAuditRecordResponse converts an audit record to an API response. The
// record's signature stays server-side.
func NewAuditRecordResponse(record *domain.AuditRecord) AuditRecordResponse {
	response := AuditRecordResponse{
		Sequence:  record.Sequence,
		ID:        record.ID.String(),
		Timestamp: record.Timestamp,
		Path:      record.Path,
		Operation: record.Operation,
		Outcome:   string(record.Outcome),
		Reason:    record.Reason,
		LatencyMs: float64(record.Latency.Microseconds()) / 1000,
	}
	if record.TokenID != nil {
		tokenID := record.TokenID.String()
		response.TokenID = &tokenID
	}
	return response
}

// AuditRecordListResponse is the paginated audit record listing.
type AuditRecordListResponse struct {
	Records []AuditRecordResponse `json:"records"`
	Offset  int                   `json:"offset"`
	Limit   int                   `json:"limit"`
}
