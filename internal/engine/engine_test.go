package engine_test

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamNilotpal/ignitekv/internal/engine"
	kverrors "github.com/iamNilotpal/ignitekv/pkg/errors"
	"github.com/iamNilotpal/ignitekv/pkg/logger"
	"github.com/iamNilotpal/ignitekv/pkg/options"
)

func openTestEngine(t *testing.T, dir string, threshold int64) *engine.Engine {
	t.Helper()
	opts := options.NewDefaultOptions()
	opts.CompactionThreshold = threshold

	eng, err := engine.Open(context.Background(), dir, &engine.Config{
		Options: &opts,
		Logger:  logger.NewNop(),
	})
	require.NoError(t, err)
	return eng
}

func TestSetGetReopenPersists(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	eng := openTestEngine(t, dir, options.DefaultCompactionThreshold)
	require.NoError(t, eng.Set(ctx, "foo", "bar"))
	require.NoError(t, eng.Close())

	reopened := openTestEngine(t, dir, options.DefaultCompactionThreshold)
	defer reopened.Close()

	value, found, err := reopened.Get(ctx, "foo")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "bar", value)
}

func TestOverwriteThenReopenReturnsLatestValue(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	eng := openTestEngine(t, dir, options.DefaultCompactionThreshold)
	require.NoError(t, eng.Set(ctx, "foo", "first"))
	require.NoError(t, eng.Set(ctx, "foo", "second"))
	require.NoError(t, eng.Close())

	reopened := openTestEngine(t, dir, options.DefaultCompactionThreshold)
	defer reopened.Close()

	value, found, err := reopened.Get(ctx, "foo")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "second", value)
}

func TestRemoveThenGetReportsNotFound(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	eng := openTestEngine(t, dir, options.DefaultCompactionThreshold)
	defer eng.Close()

	require.NoError(t, eng.Set(ctx, "foo", "bar"))
	require.NoError(t, eng.Remove(ctx, "foo"))

	_, found, err := eng.Get(ctx, "foo")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSetRejectsEmptyKey(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	eng := openTestEngine(t, dir, options.DefaultCompactionThreshold)
	defer eng.Close()

	err := eng.Set(ctx, "", "value")
	require.Error(t, err)
	assert.True(t, kverrors.IsValidationError(err))
}

func TestRemoveUnknownKeyReturnsKeyNotFound(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	eng := openTestEngine(t, dir, options.DefaultCompactionThreshold)
	defer eng.Close()

	err := eng.Remove(ctx, "missing")
	require.Error(t, err)
	assert.True(t, kverrors.IsKeyNotFound(err))
}

func TestOpenOnNonDirectoryFails(t *testing.T) {
	dir := t.TempDir()
	file := dir + "/not-a-dir"
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	opts := options.NewDefaultOptions()
	_, err := engine.Open(context.Background(), file, &engine.Config{Options: &opts, Logger: logger.NewNop()})
	require.Error(t, err)
	assert.True(t, kverrors.IsNotADirectory(err))
}

// TestCompactionBoundsDiskUsage repeatedly sets the same small set of keys
// past a tiny compaction threshold and checks that every key is still
// readable with its latest value afterward and that compaction has left
// at most two segment files behind (spec.md §8's compaction/bounded-space
// scenario).
func TestCompactionBoundsDiskUsage(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	eng := openTestEngine(t, dir, 256)
	defer eng.Close()

	const iterations = 2000
	for i := 0; i < iterations; i++ {
		key := fmt.Sprintf("key-%d", i%10)
		value := fmt.Sprintf("value-%d", i)
		require.NoError(t, eng.Set(ctx, key, value))
	}

	for i := 0; i < 10; i++ {
		key := fmt.Sprintf("key-%d", i)
		value, found, err := eng.Get(ctx, key)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, fmt.Sprintf("value-%d", iterations-10+i), value)
	}

	// Only the last compaction target and the active segment remain.
	segments, err := os.ReadDir(dir + "/.kvs")
	require.NoError(t, err)
	assert.LessOrEqual(t, len(segments), 2)
}

func TestConcurrentSetsAreLinearizable(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	eng := openTestEngine(t, dir, options.DefaultCompactionThreshold)
	defer eng.Close()

	const workers = 8
	done := make(chan struct{}, workers)
	for w := 0; w < workers; w++ {
		w := w
		go func() {
			defer func() { done <- struct{}{} }()
			for i := 0; i < 50; i++ {
				key := fmt.Sprintf("worker-%d", w)
				value := fmt.Sprintf("%d", i)
				_ = eng.Set(ctx, key, value)
			}
		}()
	}
	for w := 0; w < workers; w++ {
		<-done
	}

	for w := 0; w < workers; w++ {
		key := fmt.Sprintf("worker-%d", w)
		value, found, err := eng.Get(ctx, key)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "49", value)
	}
}
