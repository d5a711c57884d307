package wire_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamNilotpal/ignitekv/internal/wire"
)

func TestCommandRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	enc := wire.NewEncoder(&buf)

	require.NoError(t, enc.EncodeCommand(wire.NewSetCommand("k", "v")))
	require.NoError(t, enc.EncodeCommand(wire.NewGetCommand("k")))
	require.NoError(t, enc.EncodeCommand(wire.NewRemoveCommand("k")))

	dec := wire.NewDecoder(&buf)

	set, err := dec.DecodeCommand()
	require.NoError(t, err)
	assert.Equal(t, wire.CommandSet, set.Kind)
	assert.Equal(t, "v", set.Value)

	get, err := dec.DecodeCommand()
	require.NoError(t, err)
	assert.Equal(t, wire.CommandGet, get.Kind)

	rm, err := dec.DecodeCommand()
	require.NoError(t, err)
	assert.Equal(t, wire.CommandRemove, rm.Kind)
}

func TestResponseRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	enc := wire.NewEncoder(&buf)

	require.NoError(t, enc.EncodeResponse(wire.NewValueResponse("hi")))
	require.NoError(t, enc.EncodeResponse(wire.NewEmptyResponse()))
	require.NoError(t, enc.EncodeResponse(wire.NewErrorResponse(wire.ErrorKeyNotFound)))

	dec := wire.NewDecoder(&buf)

	value, err := dec.DecodeResponse()
	require.NoError(t, err)
	assert.Equal(t, wire.ResponseValue, value.Kind)
	assert.Equal(t, "hi", value.Value)

	empty, err := dec.DecodeResponse()
	require.NoError(t, err)
	assert.Equal(t, wire.ResponseEmpty, empty.Kind)

	errResp, err := dec.DecodeResponse()
	require.NoError(t, err)
	assert.Equal(t, wire.ResponseError, errResp.Kind)
	assert.Equal(t, wire.ErrorKeyNotFound, errResp.Code)
}
