// Package repository implements audit record persistence. The in-memory
// store backs single-process deployments and retains only the most recent
// maxRecords entries; the PostgreSQL and MySQL stores keep the full trail
// across restarts.
package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/gnos-os/gnos/internal/vfs/domain"
)

// MemoryAuditLogRepository keeps audit records in memory, bounded to a
// maximum count. When the bound is reached the oldest records are evicted,
// so the store always holds the most recent window of the trail.
type MemoryAuditLogRepository struct {
	mu         sync.RWMutex
	records    []*domain.AuditRecord
	maxRecords int
}

// Create appends a record, evicting from the front when over capacity.
func (m *MemoryAuditLogRepository) Create(ctx context.Context, record *domain.AuditRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records = append(m.records, record)
	if m.maxRecords > 0 && len(m.records) > m.maxRecords {
		overflow := len(m.records) - m.maxRecords
		m.records = append([]*domain.AuditRecord(nil), m.records[overflow:]...)
	}
	return nil
}

// List returns records ordered by sequence descending with pagination.
func (m *MemoryAuditLogRepository) List(
	ctx context.Context,
	offset, limit int,
) ([]*domain.AuditRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ordered := make([]*domain.AuditRecord, len(m.records))
	copy(ordered, m.records)
	// Records arrive concurrently, so arrival order can differ from sequence
	// order. Sort on read rather than on every write.
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Sequence > ordered[j].Sequence
	})

	if offset >= len(ordered) {
		return []*domain.AuditRecord{}, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(ordered) {
		end = len(ordered)
	}
	return ordered[offset:end], nil
}

// NewMemoryAuditLogRepository creates an in-memory audit store. A maxRecords
// of zero means unbounded.
func NewMemoryAuditLogRepository(maxRecords int) *MemoryAuditLogRepository {
	return &MemoryAuditLogRepository{maxRecords: maxRecords}
}
