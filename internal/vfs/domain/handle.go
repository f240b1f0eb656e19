package domain

import (
	"time"

	"github.com/google/uuid"
)

// HandleStatus tracks the per-handle state machine:
// Opened -> {Reading, Writing}* -> Released (terminal).
// A handle only exists after both authorization and the driver's Open
// succeeded; once released it is never reusable.
type HandleStatus uint8

const (
	// HandleOpened means the handle is live and accepts reads/writes.
	HandleOpened HandleStatus = iota

	// HandleReleased is terminal; further use yields ErrHandleNotFound.
	HandleReleased
)

// Handle represents an open file session. It bridges caller operations to the
// driver-owned state: the core owns the handle lifecycle, the driver owns
// everything behind State.
type Handle struct {
	ID        uuid.UUID
	Path      string
	Remainder string
	Mode      OpenMode
	OpenedAt  time.Time

	// TokenID is the capability token presented at open time. Reads and
	// writes against the handle are audited under this token.
	TokenID uuid.UUID

	// Driver is the driver that owns the handle's namespace, pinned at open
	// time so in-flight sessions survive a concurrent unmount.
	Driver Driver

	// State is the opaque driver-owned session state from Driver.Open.
	State DriverState
}
