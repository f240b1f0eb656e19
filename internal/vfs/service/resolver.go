package service

import (
	"sort"
	"strings"
	"sync"

	apperrors "github.com/gnos-os/gnos/internal/errors"
	"github.com/gnos-os/gnos/internal/vfs/domain"
)

// MountTable maps path prefixes to the drivers owning them and resolves
// request paths by longest-segment-prefix match. Resolution is read-mostly:
// concurrent resolves proceed under a shared lock and never observe a
// partially applied register or unregister.
type MountTable struct {
	mu     sync.RWMutex
	mounts map[string]domain.Driver

	// prefixes holds the registered prefixes ordered by segment count
	// descending, so the first segment-prefix match is the longest one.
	prefixes []string
}

// NewMountTable creates an empty mount table.
func NewMountTable() *MountTable {
	return &MountTable{
		mounts: make(map[string]domain.Driver),
	}
}

// Register binds a driver to a path prefix. Registering an identical prefix
// twice fails with domain.ErrDuplicateMount; nested prefixes with different
// exact values are permitted.
func (t *MountTable) Register(prefix string, driver domain.Driver) error {
	if driver == nil {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "driver cannot be nil")
	}
	normalized := normalizePrefix(prefix)

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.mounts[normalized]; exists {
		return apperrors.Wrap(domain.ErrDuplicateMount, normalized)
	}

	t.mounts[normalized] = driver
	t.rebuildPrefixes()
	return nil
}

// Unregister removes the mount at the exact prefix. Handles already opened
// under the removed driver are unaffected; only future resolves stop seeing
// it.
func (t *MountTable) Unregister(prefix string) error {
	normalized := normalizePrefix(prefix)

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.mounts[normalized]; !exists {
		return apperrors.Wrap(domain.ErrMountNotFound, normalized)
	}

	delete(t.mounts, normalized)
	t.rebuildPrefixes()
	return nil
}

// Resolve finds the mount whose prefix is the longest segment-prefix of path
// and returns its driver together with the remainder path relative to the
// mount, without a leading slash. Fails with domain.ErrNoMount when no
// registered prefix covers the path.
func (t *MountTable) Resolve(path string) (domain.Driver, string, error) {
	segments := domain.SplitPath(path)

	t.mu.RLock()
	defer t.mu.RUnlock()

	for _, prefix := range t.prefixes {
		prefixSegments := domain.SplitPath(prefix)
		if !segmentsHavePrefix(segments, prefixSegments) {
			continue
		}
		remainder := strings.Join(segments[len(prefixSegments):], "/")
		return t.mounts[prefix], remainder, nil
	}

	return nil, "", apperrors.Wrap(domain.ErrNoMount, path)
}

// List returns the registered mounts sorted by prefix.
func (t *MountTable) List() []domain.MountInfo {
	t.mu.RLock()
	defer t.mu.RUnlock()

	infos := make([]domain.MountInfo, 0, len(t.mounts))
	for prefix, driver := range t.mounts {
		infos = append(infos, domain.MountInfo{
			Prefix:     prefix,
			DriverName: driver.Name(),
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Prefix < infos[j].Prefix })
	return infos
}

// rebuildPrefixes refreshes the longest-first prefix ordering.
// Callers must hold the write lock.
func (t *MountTable) rebuildPrefixes() {
	prefixes := make([]string, 0, len(t.mounts))
	for prefix := range t.mounts {
		prefixes = append(prefixes, prefix)
	}
	sort.Slice(prefixes, func(i, j int) bool {
		li := len(domain.SplitPath(prefixes[i]))
		lj := len(domain.SplitPath(prefixes[j]))
		if li != lj {
			return li > lj
		}
		return prefixes[i] < prefixes[j]
	})
	t.prefixes = prefixes
}

// segmentsHavePrefix reports whether path segments start with all prefix segments.
func segmentsHavePrefix(segments, prefix []string) bool {
	if len(prefix) > len(segments) {
		return false
	}
	for i, seg := range prefix {
		if segments[i] != seg {
			return false
		}
	}
	return true
}

// normalizePrefix canonicalizes a mount prefix to "/seg1/seg2" form.
// The root mount normalizes to "/".
func normalizePrefix(prefix string) string {
	segments := domain.SplitPath(prefix)
	if len(segments) == 0 {
		return "/"
	}
	return "/" + strings.Join(segments, "/")
}
