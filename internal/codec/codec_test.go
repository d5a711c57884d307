package codec_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamNilotpal/ignitekv/internal/codec"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	enc := codec.NewEncoder(&buf)

	require.NoError(t, enc.Encode(codec.NewSet("foo", "bar")))

	dec := codec.NewDecoder(&buf)
	cmd, err := dec.Decode()
	require.NoError(t, err)

	assert.Equal(t, "foo", cmd.Key)
	require.NotNil(t, cmd.Value)
	assert.Equal(t, "bar", *cmd.Value)
	assert.False(t, cmd.IsRemove())
}

func TestRemoveCommandHasNoValue(t *testing.T) {
	cmd := codec.NewRemove("foo")
	assert.True(t, cmd.IsRemove())
	assert.Nil(t, cmd.Value)
}

func TestDecodeSequentialRecordsTracksOffsets(t *testing.T) {
	var buf bytes.Buffer
	enc := codec.NewEncoder(&buf)
	require.NoError(t, enc.Encode(codec.NewSet("a", "1")))
	require.NoError(t, enc.Encode(codec.NewSet("bb", "22")))
	require.NoError(t, enc.Encode(codec.NewRemove("a")))

	dec := codec.NewDecoder(&buf)

	var prevOffset int64
	var offsets []int64
	for {
		_, err := dec.Decode()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)

		offset := dec.InputOffset()
		assert.Greater(t, offset, prevOffset)
		offsets = append(offsets, offset)
		prevOffset = offset
	}

	assert.Len(t, offsets, 3)
}

func TestDecodeAtReadsExactRecordBoundedByOffsetAndSize(t *testing.T) {
	var buf bytes.Buffer
	enc := codec.NewEncoder(&buf)
	require.NoError(t, enc.Encode(codec.NewSet("a", "1")))

	firstLen := int64(buf.Len())
	require.NoError(t, enc.Encode(codec.NewSet("bb", "22")))

	full := buf.Bytes()
	r := bytes.NewReader(full)

	cmd, err := codec.DecodeAt(r, 0, firstLen)
	require.NoError(t, err)
	assert.Equal(t, "a", cmd.Key)
	require.NotNil(t, cmd.Value)
	assert.Equal(t, "1", *cmd.Value)

	cmd2, err := codec.DecodeAt(r, firstLen, int64(len(full))-firstLen)
	require.NoError(t, err)
	assert.Equal(t, "bb", cmd2.Key)
}
