// Package codec implements the self-delimiting record format shared by the
// on-disk segment log and (via internal/wire) the network protocol: JSON
// objects written back to back with no length-prefix framing, decoded one
// at a time off a streaming json.Decoder, whose InputOffset gives the
// absolute offset just past the most recently decoded record, so the caller
// can compute each record's size from consecutive offsets.
//
// This is the reference encoding original_source/src/store.rs names
// (serde_json) and spec.md §4.2 recommends directly.
package codec

import (
	"encoding/json"
	"fmt"
	"io"
)

// Command is a single log record: a put when Value is non-nil, a tombstone
// (Remove) when it is nil. Field names match the on-disk/wire convention
// original_source/src/store.rs's Command{k,v} uses.
type Command struct {
	Key   string  `json:"k"`
	Value *string `json:"v,omitempty"`
}

// NewSet builds a put record.
func NewSet(key, value string) Command {
	return Command{Key: key, Value: &value}
}

// NewRemove builds a tombstone record.
func NewRemove(key string) Command {
	return Command{Key: key}
}

// IsRemove reports whether this record is a tombstone.
func (c Command) IsRemove() bool {
	return c.Value == nil
}

// Encoder writes Commands back to back with no framing beyond JSON's own
// self-delimiting object syntax.
type Encoder struct {
	w io.Writer
}

// NewEncoder wraps w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Encode writes one Command. Callers that need exact byte accounting should
// measure bytes written to w themselves (e.g. via an offset-tracking
// writer) rather than relying on a return value here, since json.Marshal
// plus a single Write call is the whole of the encoding step.
func (e *Encoder) Encode(cmd Command) error {
	b, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("codec: marshal command: %w", err)
	}
	if _, err := e.w.Write(b); err != nil {
		return fmt.Errorf("codec: write command: %w", err)
	}
	return nil
}

// Decoder decodes a stream of back-to-back Commands, reporting the absolute
// byte offset immediately past each one via InputOffset.
type Decoder struct {
	dec *json.Decoder
}

// NewDecoder wraps r. The returned Decoder tracks its own running offset
// independent of r's position, so r need not support Seek.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{dec: json.NewDecoder(r)}
}

// Decode reads the next Command. io.EOF is returned unwrapped when the
// stream is exhausted between records (a clean end); any other decode
// error indicates a malformed or truncated record and should be treated as
// CorruptLog by the caller.
func (d *Decoder) Decode() (Command, error) {
	var cmd Command
	if err := d.dec.Decode(&cmd); err != nil {
		if err == io.EOF {
			return Command{}, io.EOF
		}
		return Command{}, fmt.Errorf("codec: decode command: %w", err)
	}
	return cmd, nil
}

// InputOffset returns the absolute byte offset immediately past the most
// recently decoded record — the mechanical equivalent of serde_json's
// Deserializer::byte_offset(), and the value spec.md §4.2 requires the
// decoder expose after each record.
func (d *Decoder) InputOffset() int64 {
	return d.dec.InputOffset()
}

// DecodeAt performs a bounded single-record read of exactly size bytes
// starting at offset within r, the "bounded read" §4.1 requires for the
// engine's Get path (so a corrupt trailing byte beyond the indexed record
// can never be interpreted as part of it).
func DecodeAt(r io.ReaderAt, offset, size int64) (Command, error) {
	buf := make([]byte, size)
	if _, err := r.ReadAt(buf, offset); err != nil {
		return Command{}, fmt.Errorf("codec: bounded read at offset %d size %d: %w", offset, size, err)
	}

	var cmd Command
	if err := json.Unmarshal(buf, &cmd); err != nil {
		return Command{}, fmt.Errorf("codec: unmarshal bounded record: %w", err)
	}
	return cmd, nil
}
