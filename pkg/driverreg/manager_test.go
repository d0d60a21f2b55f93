package driverreg

import (
	"database/sql/driver"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubDriver is a minimal driver.Driver for registry tests.
type stubDriver struct {
	name string
}

func (d *stubDriver) Open(string) (driver.Conn, error) {
	return nil, errors.New("stub driver cannot open connections")
}

// otherDriver has a distinct dynamic type, giving it a different identity.
type otherDriver struct{}

func (d *otherDriver) Open(string) (driver.Conn, error) {
	return nil, errors.New("stub driver cannot open connections")
}

func TestAcquireExistingDriverIsNoOp(t *testing.T) {
	reg := NewRegistry()
	preexisting := Registration{Prefix: "db2://", Scope: "other-worker", Driver: &stubDriver{name: "resident"}}
	require.NoError(t, reg.Register(preexisting))

	m := NewManager(reg)
	h, err := m.Acquire(&stubDriver{name: "mine"}, "db2://", "db2://host:50000/sample", "worker-1")
	require.NoError(t, err)

	assert.False(t, h.Registered())
	assert.Len(t, reg.Snapshot(), 1)

	// Releasing a no-op handle must not mutate the registry.
	h.Release()
	assert.Equal(t, []Registration{preexisting}, reg.Snapshot())
}

func TestAcquireInstallsExactlyOneShim(t *testing.T) {
	reg := NewRegistry()
	m := NewManager(reg)

	h, err := m.Acquire(&stubDriver{}, "ora://", "ora://host:1521/orcl", "worker-1")
	require.NoError(t, err)
	assert.True(t, h.Registered())

	entries := reg.Snapshot()
	require.Len(t, entries, 1)
	shim, ok := entries[0].Driver.(*Shim)
	require.True(t, ok, "registered entry must be the shim, not the bare driver")
	assert.IsType(t, &stubDriver{}, shim.Unwrap())

	// The shim now resolves the connection string.
	d, found := reg.Lookup("ora://host:1521/orcl")
	require.True(t, found)
	assert.Same(t, shim, d)
}

func TestReleaseRemovesOnlyOwnShim(t *testing.T) {
	reg := NewRegistry()
	unrelated := Registration{Prefix: "pg://", Scope: "elsewhere", Driver: &otherDriver{}}
	require.NoError(t, reg.Register(unrelated))

	m := NewManager(reg)
	h, err := m.Acquire(&stubDriver{}, "ora://", "ora://host/orcl", "worker-1")
	require.NoError(t, err)
	require.Len(t, reg.Snapshot(), 2)

	h.Release()
	assert.Equal(t, []Registration{unrelated}, reg.Snapshot())
	assert.False(t, h.Registered())
}

func TestReleaseIsIdempotent(t *testing.T) {
	reg := NewRegistry()
	m := NewManager(reg)
	h, err := m.Acquire(&stubDriver{}, "ora://", "ora://host/orcl", "worker-1")
	require.NoError(t, err)

	h.Release()
	h.Release()
	h.Release()
	assert.Empty(t, reg.Snapshot())
}

func TestAcquireSweepsStaleSameScopeEntries(t *testing.T) {
	reg := NewRegistry()
	m := NewManager(reg)

	// A previous invocation under the same scope left its shim behind.
	stale, err := m.Acquire(&stubDriver{}, "ora://", "ora://old-host/orcl", "worker-1")
	require.NoError(t, err)
	require.True(t, stale.Registered())

	// Same driver identity and scope, different connection string.
	h, err := m.Acquire(&stubDriver{}, "ora2://", "ora2://new-host/orcl", "worker-1")
	require.NoError(t, err)

	entries := reg.Snapshot()
	require.Len(t, entries, 1, "stale registration must be swept")
	assert.Equal(t, "ora2://", entries[0].Prefix)

	h.Release()
	assert.Empty(t, reg.Snapshot())
}

func TestAcquireSweepSkipsOtherScopes(t *testing.T) {
	reg := NewRegistry()
	m := NewManager(reg)

	other, err := m.Acquire(&stubDriver{}, "ora://", "ora://a/orcl", "worker-2")
	require.NoError(t, err)
	require.True(t, other.Registered())

	_, err = m.Acquire(&stubDriver{}, "ora2://", "ora2://b/orcl", "worker-1")
	require.NoError(t, err)

	assert.Len(t, reg.Snapshot(), 2, "another scope's registration must survive the sweep")
}

func TestAcquireSweepSkipsOtherDriverIdentity(t *testing.T) {
	reg := NewRegistry()
	m := NewManager(reg)

	_, err := m.Acquire(&otherDriver{}, "pg://", "pg://a/db", "worker-1")
	require.NoError(t, err)
	_, err = m.Acquire(&stubDriver{}, "ora://", "ora://b/orcl", "worker-1")
	require.NoError(t, err)

	assert.Len(t, reg.Snapshot(), 2)
}

func TestResolveReturnsResidentDriver(t *testing.T) {
	reg := NewRegistry()
	resident := &stubDriver{name: "resident"}
	require.NoError(t, reg.Register(Registration{Prefix: "db2://", Scope: "other", Driver: resident}))

	m := NewManager(reg)
	h, err := m.Acquire(&stubDriver{name: "mine"}, "db2://", "db2://host/sample", "worker-1")
	require.NoError(t, err)
	require.False(t, h.Registered())

	// The no-op-handle path must reuse the resident driver for connections.
	d, found := m.Resolve("db2://host/sample")
	require.True(t, found)
	assert.Same(t, resident, d)
}

func TestResolveReturnsOwnShim(t *testing.T) {
	reg := NewRegistry()
	m := NewManager(reg)

	_, err := m.Acquire(&stubDriver{}, "ora://", "ora://host/orcl", "worker-1")
	require.NoError(t, err)

	d, found := m.Resolve("ora://host/orcl")
	require.True(t, found)
	assert.IsType(t, &Shim{}, d)
}

func TestZeroHandleIsSafe(t *testing.T) {
	var h Handle
	assert.False(t, h.Registered())
	assert.NotPanics(t, func() { h.Release() })
}

func TestDeregisterTwiceTolerated(t *testing.T) {
	reg := NewRegistry()
	entry := Registration{Prefix: "x://", Scope: "s", Driver: &stubDriver{}}
	require.NoError(t, reg.Register(entry))

	assert.True(t, reg.Deregister(entry))
	assert.False(t, reg.Deregister(entry))
}

func TestDriverKeyUnwrapsShims(t *testing.T) {
	d := &stubDriver{}
	assert.Equal(t, driverKey(d), driverKey(NewShim(d)))
	assert.Equal(t, driverKey(d), driverKey(NewShim(NewShim(d))))
	assert.NotEqual(t, driverKey(d), driverKey(&otherDriver{}))
}
