package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	apperrors "github.com/gnos-os/gnos/internal/errors"
	"github.com/gnos-os/gnos/internal/vfs/domain"
)

type auditSigner struct {
	signingKey []byte
}

// NewAuditSigner creates an HMAC-based audit record signer. The signing key
// is derived from the process secret with HKDF-SHA256 under a label distinct
// from the token signing key, so neither signature can stand in for the
// other.
func NewAuditSigner(secretKey []byte) (AuditSigner, error) {
	key, err := deriveKey(secretKey, "audit-record-signing-v1")
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to derive audit signing key")
	}
	return &auditSigner{signingKey: key}, nil
}

// canonicalizeRecord converts an audit record to its canonical byte
// representation for signing. Variable-length fields are length-prefixed to
// prevent ambiguity between adjacent fields.
func (a *auditSigner) canonicalizeRecord(record *domain.AuditRecord) []byte {
	buf := make([]byte, 0, 256)

	buf = binary.BigEndian.AppendUint64(buf, record.Sequence)
	buf = append(buf, record.ID[:]...)
	buf = binary.BigEndian.AppendUint64(buf, uint64(record.Timestamp.UnixNano()))
	buf = appendLengthPrefixed(buf, []byte(record.Path))
	buf = appendLengthPrefixed(buf, []byte(record.Operation))

	// Absent token id serializes as the zero UUID, distinct from any real
	// UUIDv7 the engine issues.
	if record.TokenID != nil {
		buf = append(buf, record.TokenID[:]...)
	} else {
		var zero [16]byte
		buf = append(buf, zero[:]...)
	}

	buf = appendLengthPrefixed(buf, []byte(string(record.Outcome)))
	buf = appendLengthPrefixed(buf, []byte(record.Reason))
	buf = binary.BigEndian.AppendUint64(buf, uint64(record.Latency))

	return buf
}

// appendLengthPrefixed adds a 4-byte big-endian length prefix followed by data.
func appendLengthPrefixed(buf []byte, data []byte) []byte {
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(data)))
	return append(buf, data...)
}

// Sign generates the HMAC-SHA256 signature for the audit record.
func (a *auditSigner) Sign(record *domain.AuditRecord) ([]byte, error) {
	mac := hmac.New(sha256.New, a.signingKey)
	mac.Write(a.canonicalizeRecord(record))
	return mac.Sum(nil), nil
}

// Verify checks if the audit record signature is valid.
// Returns nil if valid, domain.ErrRecordTampered if tampered or invalid.
func (a *auditSigner) Verify(record *domain.AuditRecord) error {
	expected, err := a.Sign(record)
	if err != nil {
		return fmt.Errorf("failed to compute expected signature: %w", err)
	}

	if !hmac.Equal(record.Signature, expected) {
		return domain.ErrRecordTampered
	}
	return nil
}
