package domain

import (
	"time"

	"github.com/google/uuid"
)

// Outcome classifies the result of a dispatched operation.
type Outcome string

const (
	// OutcomeAllowed means the operation was authorized and the driver call succeeded.
	OutcomeAllowed Outcome = "allowed"

	// OutcomeDenied means authorization or resolution rejected the operation
	// before any driver was invoked.
	OutcomeDenied Outcome = "denied"

	// OutcomeDriverError means the operation was authorized but the driver call failed.
	OutcomeDriverError Outcome = "driver_error"

	// OutcomeTimeout means the driver call was abandoned after exceeding its deadline.
	OutcomeTimeout Outcome = "timeout"
)

// AuditRecord is an immutable, sequence-numbered log entry for one
// operation's outcome. Exactly one record is written per operation,
// unconditionally, including on failure at any step. Sequence numbers are
// assigned atomically when the authorization check begins and are strictly
// increasing across the process.
type AuditRecord struct {
	Sequence  uint64
	ID        uuid.UUID
	Timestamp time.Time
	Path      string
	Operation string

	// TokenID is nil when no token was presented with the operation.
	TokenID *uuid.UUID

	Outcome Outcome

	// Reason carries the denial or driver error detail; empty when allowed.
	Reason string

	Latency time.Duration

	// Signature is the HMAC over the canonical serialization of the record,
	// written by the audit use case so tampering with stored records is
	// detectable.
	Signature []byte
}
