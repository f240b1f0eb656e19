package usecase

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/gnos-os/gnos/internal/errors"
	"github.com/gnos-os/gnos/internal/vfs/domain"
)

// dispatcherUseCase implements Dispatcher. It owns the handle table and runs
// every operation through the same authorize -> resolve -> dispatch -> audit
// sequence. Nothing here serializes operations globally: the handle table
// lock is held only for map access, never across a driver call, so one slow
// backend cannot block unrelated paths.
type dispatcherUseCase struct {
	capability CapabilityUseCase
	resolver   Resolver
	audit      AuditLogUseCase
	logger     *slog.Logger

	// callTimeout bounds every driver call. A driver that exceeds it is
	// abandoned and the operation is audited with a timeout outcome.
	callTimeout time.Duration

	mu      sync.RWMutex
	handles map[uuid.UUID]*openHandle
}

// openHandle pairs a handle with its lifecycle guard. The released flag makes
// Release idempotent-exactly-once: the first caller wins, every later use of
// the handle is a HandleNotFound.
type openHandle struct {
	mu       sync.Mutex
	released bool
	handle   *domain.Handle
}

// Lookup resolves a path and returns its node view. Lookup and GetAttr carry
// no token by design: the kernel callback surface cannot attach credentials
// to attribute queries, so metadata resolution is unauthenticated while all
// data access stays behind capability checks. The operation is still audited.
func (d *dispatcherUseCase) Lookup(ctx context.Context, path string) (*domain.VirtualNode, error) {
	return d.statNode(ctx, path, "lookup")
}

// GetAttr returns the attributes of the node at path.
func (d *dispatcherUseCase) GetAttr(ctx context.Context, path string) (*domain.VirtualNode, error) {
	return d.statNode(ctx, path, "getattr")
}

func (d *dispatcherUseCase) statNode(
	ctx context.Context,
	path string,
	operation string,
) (*domain.VirtualNode, error) {
	seq := d.audit.Begin()
	start := time.Now()

	driver, remainder, err := d.resolver.Resolve(path)
	if err != nil {
		d.record(ctx, seq, start, path, operation, nil, err)
		return nil, err
	}

	node, err := func() (*domain.VirtualNode, error) {
		dctx, cancel := d.driverContext(ctx)
		defer cancel()
		node, err := driver.GetAttr(dctx, remainder)
		return node, d.mapDriverErr(dctx, err)
	}()
	if err != nil {
		d.record(ctx, seq, start, path, operation, nil, err)
		return nil, err
	}

	node.DriverName = driver.Name()
	d.record(ctx, seq, start, path, operation, nil, nil)
	return node, nil
}

// Open runs the canonical sequence for starting a file session: authorize
// the permission implied by mode, resolve the path, call the driver's Open,
// and register the handle. The handle only exists if every step succeeded.
func (d *dispatcherUseCase) Open(
	ctx context.Context,
	path string,
	mode domain.OpenMode,
	encodedToken string,
) (uuid.UUID, error) {
	return d.openHandle(ctx, path, mode, encodedToken, "open")
}

// Create is Open with create intent; it requires write permission regardless
// of the read/write bits in mode.
func (d *dispatcherUseCase) Create(
	ctx context.Context,
	path string,
	mode domain.OpenMode,
	encodedToken string,
) (uuid.UUID, error) {
	return d.openHandle(ctx, path, mode|domain.OpenCreate|domain.OpenWrite, encodedToken, "create")
}

func (d *dispatcherUseCase) openHandle(
	ctx context.Context,
	path string,
	mode domain.OpenMode,
	encodedToken string,
	operation string,
) (uuid.UUID, error) {
	seq := d.audit.Begin()
	start := time.Now()

	token, err := d.capability.Authorize(ctx, encodedToken, path, mode.RequiredPermission())
	if err != nil {
		d.record(ctx, seq, start, path, operation, tokenID(token), err)
		return uuid.Nil, err
	}

	driver, remainder, err := d.resolver.Resolve(path)
	if err != nil {
		d.record(ctx, seq, start, path, operation, tokenID(token), err)
		return uuid.Nil, err
	}

	state, err := func() (domain.DriverState, error) {
		dctx, cancel := d.driverContext(ctx)
		defer cancel()
		state, err := driver.Open(dctx, remainder, mode)
		return state, d.mapDriverErr(dctx, err)
	}()
	if err != nil {
		d.record(ctx, seq, start, path, operation, tokenID(token), err)
		return uuid.Nil, err
	}

	handle := &domain.Handle{
		ID:        uuid.Must(uuid.NewV7()),
		Path:      path,
		Remainder: remainder,
		Mode:      mode,
		OpenedAt:  time.Now().UTC(),
		TokenID:   token.ID,
		Driver:    driver,
		State:     state,
	}

	d.mu.Lock()
	d.handles[handle.ID] = &openHandle{handle: handle}
	d.mu.Unlock()

	d.record(ctx, seq, start, path, operation, tokenID(token), nil)
	return handle.ID, nil
}

// Read fetches the handle's content from its driver and returns the
// [offset, offset+length) window. Drivers return whole payloads; windowing is
// the dispatcher's job so every backend stays offset-agnostic.
func (d *dispatcherUseCase) Read(
	ctx context.Context,
	handleID uuid.UUID,
	offset int64,
	length int,
) ([]byte, error) {
	seq := d.audit.Begin()
	start := time.Now()

	h, err := d.liveHandle(handleID)
	if err != nil {
		d.record(ctx, seq, start, "", "read", nil, err)
		return nil, err
	}

	handle := h.handle
	if !handle.Mode.CanRead() {
		err := apperrors.Wrap(domain.ErrInsufficientPermission, "handle not opened for reading")
		d.record(ctx, seq, start, handle.Path, "read", &handle.TokenID, err)
		return nil, err
	}

	data, err := func() ([]byte, error) {
		dctx, cancel := d.driverContext(ctx)
		defer cancel()
		data, err := handle.Driver.Read(dctx, handle.Remainder)
		return data, d.mapDriverErr(dctx, err)
	}()
	d.record(ctx, seq, start, handle.Path, "read", &handle.TokenID, err)
	if err != nil {
		return nil, err
	}

	// The window comes straight from the kernel callback, so both bounds are
	// untrusted. Anything outside the payload degrades to an empty read.
	if length <= 0 || offset < 0 || offset >= int64(len(data)) {
		return []byte{}, nil
	}
	end := offset + int64(length)
	if end > int64(len(data)) {
		end = int64(len(data))
	}
	return data[offset:end], nil
}

// Write sends data to the handle's driver. The offset parameter is part of
// the callback surface but drivers are message-oriented: each write is a
// self-contained payload and ordering between concurrent writes is the
// driver's concern.
func (d *dispatcherUseCase) Write(
	ctx context.Context,
	handleID uuid.UUID,
	offset int64,
	data []byte,
) (int, error) {
	seq := d.audit.Begin()
	start := time.Now()

	h, err := d.liveHandle(handleID)
	if err != nil {
		d.record(ctx, seq, start, "", "write", nil, err)
		return 0, err
	}

	handle := h.handle
	if !handle.Mode.CanWrite() {
		err := apperrors.Wrap(domain.ErrInsufficientPermission, "handle not opened for writing")
		d.record(ctx, seq, start, handle.Path, "write", &handle.TokenID, err)
		return 0, err
	}

	written, err := func() (int, error) {
		dctx, cancel := d.driverContext(ctx)
		defer cancel()
		written, err := handle.Driver.Write(dctx, handle.Remainder, data)
		return written, d.mapDriverErr(dctx, err)
	}()
	d.record(ctx, seq, start, handle.Path, "write", &handle.TokenID, err)
	if err != nil {
		return 0, err
	}
	return written, nil
}

// Release ends a file session. The first release wins; any later operation
// against the handle, including a second release, is a HandleNotFound.
func (d *dispatcherUseCase) Release(ctx context.Context, handleID uuid.UUID) error {
	seq := d.audit.Begin()
	start := time.Now()

	d.mu.RLock()
	h, ok := d.handles[handleID]
	d.mu.RUnlock()
	if !ok {
		d.record(ctx, seq, start, "", "release", nil, domain.ErrHandleNotFound)
		return domain.ErrHandleNotFound
	}

	h.mu.Lock()
	if h.released {
		h.mu.Unlock()
		d.record(ctx, seq, start, h.handle.Path, "release", &h.handle.TokenID, domain.ErrHandleNotFound)
		return domain.ErrHandleNotFound
	}
	h.released = true
	h.mu.Unlock()

	d.mu.Lock()
	delete(d.handles, handleID)
	d.mu.Unlock()

	handle := h.handle
	err := func() error {
		dctx, cancel := d.driverContext(ctx)
		defer cancel()
		return d.mapDriverErr(dctx, handle.Driver.Release(dctx, handle.State))
	}()
	d.record(ctx, seq, start, handle.Path, "release", &handle.TokenID, err)
	return err
}

// ReadDir authorizes list permission, resolves, and forwards the remainder
// unchanged: an empty remainder lists the mount root, anything else is the
// driver's own sub-namespace to interpret.
func (d *dispatcherUseCase) ReadDir(
	ctx context.Context,
	path string,
	encodedToken string,
) ([]domain.DirEntry, error) {
	seq := d.audit.Begin()
	start := time.Now()

	token, err := d.capability.Authorize(ctx, encodedToken, path, domain.ListPermission)
	if err != nil {
		d.record(ctx, seq, start, path, "readdir", tokenID(token), err)
		return nil, err
	}

	driver, remainder, err := d.resolver.Resolve(path)
	if err != nil {
		d.record(ctx, seq, start, path, "readdir", tokenID(token), err)
		return nil, err
	}

	entries, err := func() ([]domain.DirEntry, error) {
		dctx, cancel := d.driverContext(ctx)
		defer cancel()
		entries, err := driver.ReadDir(dctx, remainder)
		return entries, d.mapDriverErr(dctx, err)
	}()
	d.record(ctx, seq, start, path, "readdir", tokenID(token), err)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Unlink authorizes write permission and removes the resource. Removal is an
// optional driver capability: backends that cannot delete yield NotSupported.
func (d *dispatcherUseCase) Unlink(ctx context.Context, path string, encodedToken string) error {
	seq := d.audit.Begin()
	start := time.Now()

	token, err := d.capability.Authorize(ctx, encodedToken, path, domain.WritePermission)
	if err != nil {
		d.record(ctx, seq, start, path, "unlink", tokenID(token), err)
		return err
	}

	driver, remainder, err := d.resolver.Resolve(path)
	if err != nil {
		d.record(ctx, seq, start, path, "unlink", tokenID(token), err)
		return err
	}

	remover, ok := driver.(domain.Remover)
	if !ok {
		err := apperrors.Wrap(domain.ErrDriverNotSupported, "backend cannot unlink")
		d.record(ctx, seq, start, path, "unlink", tokenID(token), err)
		return err
	}

	err = func() error {
		dctx, cancel := d.driverContext(ctx)
		defer cancel()
		return d.mapDriverErr(dctx, remover.Remove(dctx, remainder))
	}()
	d.record(ctx, seq, start, path, "unlink", tokenID(token), err)
	return err
}

// liveHandle fetches a handle that has not been released.
func (d *dispatcherUseCase) liveHandle(handleID uuid.UUID) (*openHandle, error) {
	d.mu.RLock()
	h, ok := d.handles[handleID]
	d.mu.RUnlock()
	if !ok {
		return nil, domain.ErrHandleNotFound
	}

	h.mu.Lock()
	released := h.released
	h.mu.Unlock()
	if released {
		return nil, domain.ErrHandleNotFound
	}
	return h, nil
}

// driverContext derives the bounded context every driver call runs under.
func (d *dispatcherUseCase) driverContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if d.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d.callTimeout)
}

// mapDriverErr classifies a driver call failure: deadline expiry becomes the
// timeout driver error, everything else propagates unmodified in kind.
func (d *dispatcherUseCase) mapDriverErr(dctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(dctx.Err(), context.DeadlineExceeded) {
		return apperrors.Wrap(domain.ErrDriverTimeout, err.Error())
	}
	return err
}

// record writes exactly one audit record for an operation. Audit completeness
// is unconditional: recording survives caller cancellation, and a failing
// audit store is logged but never fails the operation it describes.
func (d *dispatcherUseCase) record(
	ctx context.Context,
	sequence uint64,
	start time.Time,
	path string,
	operation string,
	tokenID *uuid.UUID,
	opErr error,
) {
	record := &domain.AuditRecord{
		Sequence:  sequence,
		Path:      path,
		Operation: operation,
		TokenID:   tokenID,
		Outcome:   outcomeFor(opErr),
		Latency:   time.Since(start),
	}
	if opErr != nil {
		record.Reason = opErr.Error()
	}

	if err := d.audit.Record(context.WithoutCancel(ctx), record); err != nil {
		d.logger.Error("failed to record audit entry",
			slog.Uint64("sequence", sequence),
			slog.String("operation", operation),
			slog.String("path", path),
			slog.Any("error", err),
		)
	}
}

// outcomeFor maps an operation error to its audit outcome.
func outcomeFor(err error) domain.Outcome {
	switch {
	case err == nil:
		return domain.OutcomeAllowed
	case apperrors.Is(err, apperrors.ErrTimeout):
		return domain.OutcomeTimeout
	case apperrors.Is(err, apperrors.ErrUnauthorized),
		apperrors.Is(err, apperrors.ErrForbidden),
		apperrors.Is(err, domain.ErrNoMount),
		apperrors.Is(err, domain.ErrHandleNotFound):
		return domain.OutcomeDenied
	default:
		return domain.OutcomeDriverError
	}
}

// tokenID extracts the id for audit attribution from a possibly nil token.
func tokenID(token *domain.Token) *uuid.UUID {
	if token == nil {
		return nil
	}
	id := token.ID
	return &id
}

// NewDispatcherUseCase creates the operation dispatcher.
func NewDispatcherUseCase(
	capability CapabilityUseCase,
	resolver Resolver,
	audit AuditLogUseCase,
	logger *slog.Logger,
	callTimeout time.Duration,
) Dispatcher {
	return &dispatcherUseCase{
		capability:  capability,
		resolver:    resolver,
		audit:       audit,
		logger:      logger,
		callTimeout: callTimeout,
		handles:     make(map[uuid.UUID]*openHandle),
	}
}
