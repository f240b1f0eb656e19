package usecase

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/gnos-os/gnos/internal/errors"
	"github.com/gnos-os/gnos/internal/vfs/domain"
	vfsService "github.com/gnos-os/gnos/internal/vfs/service"
)

// mockDriver is a mock implementation of domain.Driver for dispatcher tests.
type mockDriver struct {
	mock.Mock
	name string
}

func (m *mockDriver) Name() string {
	if m.name != "" {
		return m.name
	}
	return "mock"
}

func (m *mockDriver) Read(ctx context.Context, remainder string) ([]byte, error) {
	args := m.Called(ctx, remainder)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *mockDriver) Write(ctx context.Context, remainder string, data []byte) (int, error) {
	args := m.Called(ctx, remainder, data)
	return args.Int(0), args.Error(1)
}

func (m *mockDriver) ReadDir(ctx context.Context, remainder string) ([]domain.DirEntry, error) {
	args := m.Called(ctx, remainder)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DirEntry), args.Error(1)
}

func (m *mockDriver) GetAttr(ctx context.Context, remainder string) (*domain.VirtualNode, error) {
	args := m.Called(ctx, remainder)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.VirtualNode), args.Error(1)
}

func (m *mockDriver) Open(ctx context.Context, remainder string, mode domain.OpenMode) (domain.DriverState, error) {
	args := m.Called(ctx, remainder, mode)
	return args.Get(0), args.Error(1)
}

func (m *mockDriver) Release(ctx context.Context, state domain.DriverState) error {
	args := m.Called(ctx, state)
	return args.Error(0)
}

// mockRemoverDriver adds the optional Remove capability.
type mockRemoverDriver struct {
	mockDriver
}

func (m *mockRemoverDriver) Remove(ctx context.Context, remainder string) error {
	args := m.Called(ctx, remainder)
	return args.Error(0)
}

// captureAuditRepo stores every accepted record in memory so tests can assert
// on audit completeness and outcomes.
type captureAuditRepo struct {
	mu      sync.Mutex
	records []*domain.AuditRecord
}

func (r *captureAuditRepo) Create(ctx context.Context, record *domain.AuditRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, record)
	return nil
}

func (r *captureAuditRepo) List(ctx context.Context, offset, limit int) ([]*domain.AuditRecord, error) {
	return nil, nil
}

func (r *captureAuditRepo) all() []*domain.AuditRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.AuditRecord, len(r.records))
	copy(out, r.records)
	return out
}

func (r *captureAuditRepo) last() *domain.AuditRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.records) == 0 {
		return nil
	}
	return r.records[len(r.records)-1]
}

// dispatcherFixture wires a dispatcher with real capability, resolver, and
// audit components and a mocked driver behind /proc.
type dispatcherFixture struct {
	dispatcher Dispatcher
	capability CapabilityUseCase
	table      *vfsService.MountTable
	audit      *captureAuditRepo
}

func newDispatcherFixture(t *testing.T, driver domain.Driver, callTimeout time.Duration) *dispatcherFixture {
	t.Helper()

	capability := newTestCapabilityUseCase(t)

	table := vfsService.NewMountTable()
	if driver != nil {
		require.NoError(t, table.Register("/proc", driver))
	}

	auditRepo := &captureAuditRepo{}
	auditUseCase := NewAuditLogUseCase(auditRepo, newTestAuditSigner(t))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	dispatcher := NewDispatcherUseCase(capability, table, auditUseCase, logger, callTimeout)

	return &dispatcherFixture{
		dispatcher: dispatcher,
		capability: capability,
		table:      table,
		audit:      auditRepo,
	}
}

func (f *dispatcherFixture) issueToken(t *testing.T, scope string, perms ...domain.Permission) string {
	t.Helper()
	output, err := f.capability.Issue(context.Background(), &domain.IssueTokenInput{
		PathScope:   scope,
		Permissions: perms,
		TTL:         time.Hour,
	})
	require.NoError(t, err)
	return output.Encoded
}

func TestDispatcherUseCase_Lookup(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_LookupResolvesNode", func(t *testing.T) {
		driver := &mockDriver{name: "model"}
		driver.On("GetAttr", mock.Anything, "llama3").
			Return(&domain.VirtualNode{Kind: domain.DirectoryNode, Mode: 0o555}, nil).
			Once()

		fixture := newDispatcherFixture(t, driver, 0)

		node, err := fixture.dispatcher.Lookup(ctx, "/proc/llama3")

		require.NoError(t, err)
		assert.Equal(t, domain.DirectoryNode, node.Kind)
		assert.Equal(t, "model", node.DriverName)
		driver.AssertExpectations(t)

		record := fixture.audit.last()
		require.NotNil(t, record)
		assert.Equal(t, "lookup", record.Operation)
		assert.Equal(t, domain.OutcomeAllowed, record.Outcome)
		assert.Nil(t, record.TokenID, "metadata operations carry no token")
	})

	t.Run("Error_NoMountCoversPath", func(t *testing.T) {
		fixture := newDispatcherFixture(t, nil, 0)

		_, err := fixture.dispatcher.Lookup(ctx, "/nowhere/file")

		assert.ErrorIs(t, err, domain.ErrNoMount)

		record := fixture.audit.last()
		require.NotNil(t, record)
		assert.Equal(t, domain.OutcomeDenied, record.Outcome)
		assert.NotEmpty(t, record.Reason)
	})
}

func TestDispatcherUseCase_HandleLifecycle(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_OpenReadRelease", func(t *testing.T) {
		driver := &mockDriver{}
		driver.On("Open", mock.Anything, "llama3/completion", domain.OpenRead).
			Return("session-1", nil).
			Once()
		driver.On("Read", mock.Anything, "llama3/completion").
			Return([]byte("hello world"), nil).
			Once()
		driver.On("Release", mock.Anything, "session-1").
			Return(nil).
			Once()

		fixture := newDispatcherFixture(t, driver, 0)
		token := fixture.issueToken(t, "/proc", domain.ReadPermission)

		handleID, err := fixture.dispatcher.Open(ctx, "/proc/llama3/completion", domain.OpenRead, token)
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, handleID)

		data, err := fixture.dispatcher.Read(ctx, handleID, 0, 1024)
		require.NoError(t, err)
		assert.Equal(t, []byte("hello world"), data)

		require.NoError(t, fixture.dispatcher.Release(ctx, handleID))
		driver.AssertExpectations(t)
	})

	t.Run("Success_ReadWindowing", func(t *testing.T) {
		driver := &mockDriver{}
		driver.On("Open", mock.Anything, "file", domain.OpenRead).Return(nil, nil).Once()
		driver.On("Read", mock.Anything, "file").Return([]byte("hello world"), nil)

		fixture := newDispatcherFixture(t, driver, 0)
		token := fixture.issueToken(t, "/proc", domain.ReadPermission)

		handleID, err := fixture.dispatcher.Open(ctx, "/proc/file", domain.OpenRead, token)
		require.NoError(t, err)

		data, err := fixture.dispatcher.Read(ctx, handleID, 6, 5)
		require.NoError(t, err)
		assert.Equal(t, []byte("world"), data)

		// Length past the end is clipped.
		data, err = fixture.dispatcher.Read(ctx, handleID, 6, 1000)
		require.NoError(t, err)
		assert.Equal(t, []byte("world"), data)

		// Offset at or past the end yields an empty read.
		data, err = fixture.dispatcher.Read(ctx, handleID, 11, 10)
		require.NoError(t, err)
		assert.Empty(t, data)

		data, err = fixture.dispatcher.Read(ctx, handleID, 100, 10)
		require.NoError(t, err)
		assert.Empty(t, data)

		// Negative or zero length yields an empty read rather than a panic.
		data, err = fixture.dispatcher.Read(ctx, handleID, 2, -1)
		require.NoError(t, err)
		assert.Empty(t, data)

		data, err = fixture.dispatcher.Read(ctx, handleID, 0, 0)
		require.NoError(t, err)
		assert.Empty(t, data)
	})

	t.Run("Success_WriteThroughHandle", func(t *testing.T) {
		driver := &mockDriver{}
		driver.On("Open", mock.Anything, "llama3/prompt", domain.OpenWrite).Return(nil, nil).Once()
		driver.On("Write", mock.Anything, "llama3/prompt", []byte("summarize this")).
			Return(14, nil).
			Once()

		fixture := newDispatcherFixture(t, driver, 0)
		token := fixture.issueToken(t, "/proc", domain.WritePermission)

		handleID, err := fixture.dispatcher.Open(ctx, "/proc/llama3/prompt", domain.OpenWrite, token)
		require.NoError(t, err)

		written, err := fixture.dispatcher.Write(ctx, handleID, 0, []byte("summarize this"))
		require.NoError(t, err)
		assert.Equal(t, 14, written)
		driver.AssertExpectations(t)
	})

	t.Run("Success_CreateForcesWriteIntent", func(t *testing.T) {
		driver := &mockDriver{}
		driver.On("Open", mock.Anything, "newfile", domain.OpenRead|domain.OpenWrite|domain.OpenCreate).
			Return(nil, nil).
			Once()

		fixture := newDispatcherFixture(t, driver, 0)
		token := fixture.issueToken(t, "/proc", domain.WritePermission)

		_, err := fixture.dispatcher.Create(ctx, "/proc/newfile", domain.OpenRead, token)

		require.NoError(t, err)
		driver.AssertExpectations(t)

		record := fixture.audit.last()
		require.NotNil(t, record)
		assert.Equal(t, "create", record.Operation)
	})

	t.Run("Error_UseAfterRelease", func(t *testing.T) {
		driver := &mockDriver{}
		driver.On("Open", mock.Anything, "file", domain.OpenRead).Return(nil, nil).Once()
		driver.On("Release", mock.Anything, nil).Return(nil).Once()

		fixture := newDispatcherFixture(t, driver, 0)
		token := fixture.issueToken(t, "/proc", domain.ReadPermission)

		handleID, err := fixture.dispatcher.Open(ctx, "/proc/file", domain.OpenRead, token)
		require.NoError(t, err)
		require.NoError(t, fixture.dispatcher.Release(ctx, handleID))

		_, err = fixture.dispatcher.Read(ctx, handleID, 0, 10)
		assert.ErrorIs(t, err, domain.ErrHandleNotFound)

		err = fixture.dispatcher.Release(ctx, handleID)
		assert.ErrorIs(t, err, domain.ErrHandleNotFound, "release is exactly-once")

		// The driver saw exactly one Release.
		driver.AssertExpectations(t)
	})

	t.Run("Error_UnknownHandle", func(t *testing.T) {
		fixture := newDispatcherFixture(t, &mockDriver{}, 0)

		_, err := fixture.dispatcher.Read(ctx, uuid.Must(uuid.NewV7()), 0, 10)
		assert.ErrorIs(t, err, domain.ErrHandleNotFound)

		record := fixture.audit.last()
		require.NotNil(t, record)
		assert.Equal(t, domain.OutcomeDenied, record.Outcome)
	})

	t.Run("Error_ReadOnReadOnlyHandleAfterModeCheck", func(t *testing.T) {
		driver := &mockDriver{}
		driver.On("Open", mock.Anything, "file", domain.OpenRead).Return(nil, nil).Once()

		fixture := newDispatcherFixture(t, driver, 0)
		token := fixture.issueToken(t, "/proc", domain.ReadPermission)

		handleID, err := fixture.dispatcher.Open(ctx, "/proc/file", domain.OpenRead, token)
		require.NoError(t, err)

		// Write on a read-only handle fails before any driver call.
		_, err = fixture.dispatcher.Write(ctx, handleID, 0, []byte("data"))
		assert.ErrorIs(t, err, domain.ErrInsufficientPermission)
		driver.AssertExpectations(t)
	})
}

func TestDispatcherUseCase_AuthorizationGate(t *testing.T) {
	ctx := context.Background()

	t.Run("Error_DeniedOperationNeverReachesDriver", func(t *testing.T) {
		// No expectations registered: any driver call fails the test.
		driver := &mockDriver{}
		fixture := newDispatcherFixture(t, driver, 0)
		token := fixture.issueToken(t, "/proc", domain.ReadPermission)

		_, err := fixture.dispatcher.Open(ctx, "/proc/file", domain.OpenWrite, token)
		assert.ErrorIs(t, err, domain.ErrInsufficientPermission)

		_, err = fixture.dispatcher.ReadDir(ctx, "/proc", token)
		assert.ErrorIs(t, err, domain.ErrInsufficientPermission)

		err = fixture.dispatcher.Unlink(ctx, "/proc/file", token)
		assert.ErrorIs(t, err, domain.ErrInsufficientPermission)

		driver.AssertExpectations(t)

		for _, record := range fixture.audit.all() {
			assert.Equal(t, domain.OutcomeDenied, record.Outcome)
			assert.NotNil(t, record.TokenID, "decoded token ids are attributed even on denial")
		}
	})

	t.Run("Error_MissingToken", func(t *testing.T) {
		driver := &mockDriver{}
		fixture := newDispatcherFixture(t, driver, 0)

		_, err := fixture.dispatcher.Open(ctx, "/proc/file", domain.OpenRead, "")

		assert.ErrorIs(t, err, domain.ErrInvalidSignature)
		driver.AssertExpectations(t)

		record := fixture.audit.last()
		require.NotNil(t, record)
		assert.Equal(t, domain.OutcomeDenied, record.Outcome)
		assert.Nil(t, record.TokenID)
	})

	t.Run("Error_ScopedTokenOutsidePath", func(t *testing.T) {
		driver := &mockDriver{}
		fixture := newDispatcherFixture(t, driver, 0)
		token := fixture.issueToken(t, "/proc/llama3", domain.ReadPermission)

		_, err := fixture.dispatcher.Open(ctx, "/proc/other", domain.OpenRead, token)

		assert.ErrorIs(t, err, domain.ErrInsufficientScope)
		driver.AssertExpectations(t)
	})
}

func TestDispatcherUseCase_ReadDir(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_ListEntries", func(t *testing.T) {
		driver := &mockDriver{}
		driver.On("ReadDir", mock.Anything, "").
			Return([]domain.DirEntry{
				{Name: "llama3", Kind: domain.DirectoryNode},
				{Name: "mistral", Kind: domain.DirectoryNode},
			}, nil).
			Once()

		fixture := newDispatcherFixture(t, driver, 0)
		token := fixture.issueToken(t, "/proc", domain.ListPermission)

		entries, err := fixture.dispatcher.ReadDir(ctx, "/proc", token)

		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "llama3", entries[0].Name)
		driver.AssertExpectations(t)

		record := fixture.audit.last()
		require.NotNil(t, record)
		assert.Equal(t, "readdir", record.Operation)
		assert.Equal(t, domain.OutcomeAllowed, record.Outcome)
	})
}

func TestDispatcherUseCase_Unlink(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_RemoverDriver", func(t *testing.T) {
		driver := &mockRemoverDriver{}
		driver.On("Remove", mock.Anything, "object").Return(nil).Once()

		fixture := newDispatcherFixture(t, driver, 0)
		token := fixture.issueToken(t, "/proc", domain.WritePermission)

		err := fixture.dispatcher.Unlink(ctx, "/proc/object", token)

		require.NoError(t, err)
		driver.AssertExpectations(t)
	})

	t.Run("Error_DriverCannotUnlink", func(t *testing.T) {
		driver := &mockDriver{}
		fixture := newDispatcherFixture(t, driver, 0)
		token := fixture.issueToken(t, "/proc", domain.WritePermission)

		err := fixture.dispatcher.Unlink(ctx, "/proc/file", token)

		assert.ErrorIs(t, err, apperrors.ErrNotSupported)
		driver.AssertExpectations(t)
	})
}

func TestDispatcherUseCase_DriverTimeout(t *testing.T) {
	ctx := context.Background()

	driver := &mockDriver{}
	driver.On("Open", mock.Anything, "slow", domain.OpenRead).Return(nil, nil).Once()
	driver.On("Read", mock.Anything, "slow").
		Run(func(args mock.Arguments) {
			dctx := args.Get(0).(context.Context)
			<-dctx.Done()
		}).
		Return(nil, context.DeadlineExceeded).
		Once()

	fixture := newDispatcherFixture(t, driver, 20*time.Millisecond)
	token := fixture.issueToken(t, "/proc", domain.ReadPermission)

	handleID, err := fixture.dispatcher.Open(ctx, "/proc/slow", domain.OpenRead, token)
	require.NoError(t, err)

	_, err = fixture.dispatcher.Read(ctx, handleID, 0, 10)

	assert.ErrorIs(t, err, apperrors.ErrTimeout)
	driver.AssertExpectations(t)

	record := fixture.audit.last()
	require.NotNil(t, record)
	assert.Equal(t, domain.OutcomeTimeout, record.Outcome)
}

func TestDispatcherUseCase_AuditCompleteness(t *testing.T) {
	ctx := context.Background()

	driver := &mockDriver{}
	driver.On("GetAttr", mock.Anything, "file").
		Return(&domain.VirtualNode{Kind: domain.FileNode, Mode: 0o444}, nil)
	driver.On("Open", mock.Anything, "file", domain.OpenRead).Return(nil, nil)
	driver.On("Read", mock.Anything, "file").Return([]byte("x"), nil)
	driver.On("Release", mock.Anything, nil).Return(nil)

	fixture := newDispatcherFixture(t, driver, 0)
	token := fixture.issueToken(t, "/proc", domain.ReadPermission)

	// Mixed allowed and denied operations; every one must be audited.
	_, _ = fixture.dispatcher.Lookup(ctx, "/proc/file")
	_, _ = fixture.dispatcher.GetAttr(ctx, "/proc/file")
	handleID, err := fixture.dispatcher.Open(ctx, "/proc/file", domain.OpenRead, token)
	require.NoError(t, err)
	_, _ = fixture.dispatcher.Read(ctx, handleID, 0, 1)
	_, _ = fixture.dispatcher.Write(ctx, handleID, 0, []byte("denied"))
	_ = fixture.dispatcher.Release(ctx, handleID)
	_, _ = fixture.dispatcher.ReadDir(ctx, "/proc", "")

	records := fixture.audit.all()
	require.Len(t, records, 7)

	// Sequence numbers are unique and strictly increasing in issue order.
	seen := make(map[uint64]bool, len(records))
	for _, record := range records {
		assert.False(t, seen[record.Sequence], "duplicate sequence %d", record.Sequence)
		seen[record.Sequence] = true
		assert.False(t, record.Timestamp.IsZero())
		assert.NotEmpty(t, record.Signature)
	}
}
