package ignite_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamNilotpal/ignitekv/pkg/ignite"
	"github.com/iamNilotpal/ignitekv/pkg/options"
)

func TestInstanceSetGetRemove(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	inst, err := ignite.NewInstance(ctx, "ignite-test", options.WithDataDir(dir))
	require.NoError(t, err)
	defer inst.Close()

	require.NoError(t, inst.Set(ctx, "foo", "bar"))

	value, found, err := inst.Get(ctx, "foo")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "bar", value)

	require.NoError(t, inst.Remove(ctx, "foo"))

	_, found, err = inst.Get(ctx, "foo")
	require.NoError(t, err)
	assert.False(t, found)
}
