// Package wire defines the network protocol spoken between internal/client
// and internal/server: a tagged-union Command the client sends and a
// tagged-union Response the server sends back, one JSON object per
// direction per round trip. Grounded on
// original_source/src/network/data.rs's NetworkCommand/NetworkResponse,
// carried over field-for-field (the "k"/"v" tags match internal/codec.Command
// deliberately, since both are the same wire idea applied to two different
// transports).
package wire

import (
	"encoding/json"
	"fmt"
	"io"
)

// CommandKind tags which operation a Command requests.
type CommandKind string

const (
	CommandGet    CommandKind = "get"
	CommandSet    CommandKind = "set"
	CommandRemove CommandKind = "remove"
)

// Command is one client request.
type Command struct {
	Kind  CommandKind `json:"kind"`
	Key   string      `json:"k"`
	Value string      `json:"v,omitempty"`
}

// NewGetCommand builds a Get request.
func NewGetCommand(key string) Command {
	return Command{Kind: CommandGet, Key: key}
}

// NewSetCommand builds a Set request.
func NewSetCommand(key, value string) Command {
	return Command{Kind: CommandSet, Key: key, Value: value}
}

// NewRemoveCommand builds a Remove request.
func NewRemoveCommand(key string) Command {
	return Command{Kind: CommandRemove, Key: key}
}

// ErrorCode enumerates the server's error responses. Named identically to
// original_source/src/network/data.rs's ErrorType.
type ErrorCode string

const (
	// ErrorCommandDeserialisation means the server could not parse the
	// request as a Command at all.
	ErrorCommandDeserialisation ErrorCode = "command_deserialisation"

	// ErrorKeyNotFound means a Remove targeted an absent key.
	ErrorKeyNotFound ErrorCode = "key_not_found"

	// ErrorUnknown covers every other engine failure.
	ErrorUnknown ErrorCode = "unknown"
)

// ResponseKind tags which Response variant is populated.
type ResponseKind string

const (
	ResponseError ResponseKind = "error"
	ResponseEmpty ResponseKind = "empty"
	ResponseValue ResponseKind = "value"
)

// Response is one server reply.
type Response struct {
	Kind  ResponseKind `json:"kind"`
	Code  ErrorCode    `json:"code,omitempty"`
	Value string       `json:"v,omitempty"`
}

// NewErrorResponse builds an error Response.
func NewErrorResponse(code ErrorCode) Response {
	return Response{Kind: ResponseError, Code: code}
}

// NewEmptyResponse builds a valueless success Response (Set/Remove, or Get
// on a missing key).
func NewEmptyResponse() Response {
	return Response{Kind: ResponseEmpty}
}

// NewValueResponse builds a Get success Response.
func NewValueResponse(value string) Response {
	return Response{Kind: ResponseValue, Value: value}
}

// Encoder writes Commands or Responses back to back with no extra framing,
// mirroring internal/codec.Encoder.
type Encoder struct {
	enc *json.Encoder
}

// NewEncoder wraps w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{enc: json.NewEncoder(w)}
}

// EncodeCommand writes one Command.
func (e *Encoder) EncodeCommand(cmd Command) error {
	if err := e.enc.Encode(cmd); err != nil {
		return fmt.Errorf("wire: encode command: %w", err)
	}
	return nil
}

// EncodeResponse writes one Response.
func (e *Encoder) EncodeResponse(resp Response) error {
	if err := e.enc.Encode(resp); err != nil {
		return fmt.Errorf("wire: encode response: %w", err)
	}
	return nil
}

// Decoder decodes a stream of back-to-back Commands/Responses.
type Decoder struct {
	dec *json.Decoder
}

// NewDecoder wraps r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{dec: json.NewDecoder(r)}
}

// DecodeCommand reads the next Command. Any decode error (including a clean
// io.EOF) is returned as-is; callers distinguish "connection closed" from
// "malformed command" the same way internal/codec callers do.
func (d *Decoder) DecodeCommand() (Command, error) {
	var cmd Command
	if err := d.dec.Decode(&cmd); err != nil {
		return Command{}, err
	}
	return cmd, nil
}

// DecodeResponse reads the next Response.
func (d *Decoder) DecodeResponse() (Response, error) {
	var resp Response
	if err := d.dec.Decode(&resp); err != nil {
		return Response{}, err
	}
	return resp, nil
}
