package server_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamNilotpal/ignitekv/internal/client"
	"github.com/iamNilotpal/ignitekv/internal/engine"
	"github.com/iamNilotpal/ignitekv/internal/pool"
	"github.com/iamNilotpal/ignitekv/internal/server"
	"github.com/iamNilotpal/ignitekv/pkg/logger"
	"github.com/iamNilotpal/ignitekv/pkg/options"
)

func TestExistingEngineKindReportsNoneOnEmptyRoot(t *testing.T) {
	root := t.TempDir()

	_, ok := server.ExistingEngineKind(root)
	assert.False(t, ok)
}

func TestExistingEngineKindDetectsKVSMarker(t *testing.T) {
	root := t.TempDir()
	opts := options.NewDefaultOptions()

	eng, err := engine.Open(context.Background(), root, &engine.Config{Options: &opts, Logger: logger.NewNop()})
	require.NoError(t, err)
	defer eng.Close()

	kind, ok := server.ExistingEngineKind(root)
	require.True(t, ok)
	assert.Equal(t, "kvs", kind)
}

func startTestServer(t *testing.T) (addr string, stop func()) {
	t.Helper()

	dir := t.TempDir()
	opts := options.NewDefaultOptions()

	eng, err := engine.Open(context.Background(), dir, &engine.Config{Options: &opts, Logger: logger.NewNop()})
	require.NoError(t, err)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr = listener.Addr().String()
	require.NoError(t, listener.Close())

	workers := pool.New(2, logger.NewNop())
	srv := server.New(logger.NewNop(), eng, workers)

	ctx, cancel := context.WithCancel(context.Background())
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Run(ctx, addr)
	}()

	// Give the listener a moment to bind before clients connect.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if conn, err := net.Dial("tcp", addr); err == nil {
			conn.Close()
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	return addr, func() {
		cancel()
		workers.Shutdown()
		eng.Close()
		<-serverErr
	}
}

func TestServerClientSetGetRemove(t *testing.T) {
	addr, stop := startTestServer(t)
	defer stop()

	c, err := client.Connect(addr)
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Set("foo", "bar"))

	value, found, err := c.Get("foo")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "bar", value)

	_, found, err = c.Get("missing")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.Remove("foo"))

	err = c.Remove("foo")
	require.Error(t, err)
	assert.ErrorIs(t, err, client.ErrKeyNotFound)
}

func TestMultipleClientsConcurrent(t *testing.T) {
	addr, stop := startTestServer(t)
	defer stop()

	const clients = 5
	done := make(chan error, clients)

	for i := 0; i < clients; i++ {
		i := i
		go func() {
			c, err := client.Connect(addr)
			if err != nil {
				done <- err
				return
			}
			defer c.Close()

			key := "client-key"
			value := string(rune('a' + i))
			if err := c.Set(key, value); err != nil {
				done <- err
				return
			}
			if _, _, err := c.Get(key); err != nil {
				done <- err
				return
			}
			done <- nil
		}()
	}

	for i := 0; i < clients; i++ {
		require.NoError(t, <-done)
	}
}
