package wlansta

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-wlansta/config"
	"github.com/dep2p/go-wlansta/internal/core/reorder"
	"github.com/dep2p/go-wlansta/pkg/types"
)

func startCore(t *testing.T, opts ...Option) *Core {
	t.Helper()
	c, err := New(opts...)
	require.NoError(t, err)
	require.NoError(t, c.Start(context.Background()))
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestNew_Defaults(t *testing.T) {
	c := startCore(t)

	_, err := uuid.Parse(c.ID())
	assert.NoError(t, err)
	assert.Equal(t, config.DefaultTableConfig().Size, c.Table().Size())
	assert.NotNil(t, c.Keys())
	assert.NotNil(t, c.Domain())
}

func TestNew_InvalidOption(t *testing.T) {
	_, err := New(WithTableSize(0))
	assert.Error(t, err)

	_, err = New(WithPreset("mesh"))
	assert.Error(t, err)

	_, err = New(WithConfig(nil))
	assert.Error(t, err)
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Table.Size = -1
	_, err := New(WithConfig(cfg))
	assert.Error(t, err)
}

func TestLifecycle(t *testing.T) {
	c, err := New(WithTableSize(4))
	require.NoError(t, err)

	require.NoError(t, c.Start(context.Background()))
	assert.ErrorIs(t, c.Start(context.Background()), ErrAlreadyStarted)

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	assert.ErrorIs(t, c.Start(context.Background()), ErrClosed)
}

func TestClose_WithoutStart(t *testing.T) {
	c, err := New()
	require.NoError(t, err)
	assert.NoError(t, c.Close())
}

func TestQuiesce_Lifecycle(t *testing.T) {
	c, err := New(WithTableSize(4))
	require.NoError(t, err)
	ctx := context.Background()

	assert.ErrorIs(t, c.Quiesce(ctx), ErrNotStarted)

	require.NoError(t, c.Start(ctx))
	assert.NoError(t, c.Quiesce(ctx))

	require.NoError(t, c.Close())
	assert.ErrorIs(t, c.Quiesce(ctx), ErrClosed)
}

func TestEndToEnd(t *testing.T) {
	mock := clock.NewMock()
	reg := prometheus.NewRegistry()
	flushed := make(chan types.TID, 1)

	c := startCore(t,
		WithPreset("ibss"),
		WithTableSize(8),
		WithClock(mock),
		WithRegisterer(reg),
		WithFlushFunc(func(rx *reorder.Context) {
			select {
			case flushed <- rx.TID():
			default:
			}
		}),
	)
	table := c.Table()

	peer := types.MACAddr{0x02, 0xaa, 0xbb, 0xcc, 0xdd, 0x01}
	st, err := table.Alloc(peer, 3, 1)
	require.NoError(t, err)
	require.NoError(t, table.AllocTID(st, 6, 0))

	k, err := c.Keys().Alloc(types.CipherSuiteCCMP, 0, peer, true, bytes.Repeat([]byte{1}, 16))
	require.NoError(t, err)
	require.NoError(t, st.SetKey(k))

	_, err = c.Keys().Alloc(types.CipherSuite(99), 0, peer, true, nil)
	assert.ErrorIs(t, err, ErrInvalidCipher)

	g := table.Enter()
	got := table.LookupByMAC(peer)
	require.NotNil(t, got)
	assert.Same(t, k, got.Key())
	rx := got.TID(6)
	require.NotNil(t, rx)
	rx.Lock()
	rx.ArmFlush(0)
	rx.Unlock()
	g.Exit()

	mock.Add(time.Second)
	select {
	case tid := <-flushed:
		assert.Equal(t, types.TID(6), tid)
	case <-time.After(time.Second):
		t.Fatal("flush callback not called")
	}

	stats := c.Stats()
	assert.Equal(t, 1, stats.Stations)
	assert.Equal(t, 1, stats.Resources.Stations)
	assert.Equal(t, 1, stats.Resources.ReorderContexts)
	assert.Equal(t, 1, stats.Resources.Keys)

	table.Remove(3)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, c.Quiesce(ctx))

	stats = c.Stats()
	assert.Equal(t, 0, stats.Stations)
	assert.Equal(t, 0, stats.Resources.Stations)
	assert.Equal(t, 0, stats.Resources.ReorderContexts)
	assert.Equal(t, 0, stats.Resources.Keys)
	assert.True(t, k.Wiped())

	expected := `
# HELP wlansta_invalid_cipher_total Key allocations rejected for an unknown cipher suite.
# TYPE wlansta_invalid_cipher_total counter
wlansta_invalid_cipher_total 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "wlansta_invalid_cipher_total"))
}

func TestVersionInfo(t *testing.T) {
	assert.Contains(t, VersionInfo(), Version)
}
