// Package client implements a thin TCP client over internal/wire, one
// request-response round trip per call. Grounded on
// original_source/src/network/client.rs's KvsClient, including its
// response-to-error translation table (ResponseDeserialisation/
// UnexpectedResponse/KeyNotFound/NoResponse).
package client

import (
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/iamNilotpal/ignitekv/internal/wire"
)

// Sentinel errors mirroring original_source/src/network/client.rs's Error
// enum, including its exact Display text so a CLI that just prints the
// error (cmd/client's get/set/rm) reads the same on both sides.
var (
	ErrResponseDeserialisation = errors.New("Failed to deserialise response")
	ErrUnexpectedResponse      = errors.New("Unexpected response")
	ErrKeyNotFound             = errors.New("Key not found")
	ErrNoResponse              = errors.New("No response from server")
)

// Client is a connection to one ignitekv server. Each exported method
// performs exactly one command/response round trip, so a Client is not
// safe for concurrent use by multiple goroutines without external
// synchronization — exactly the guarantee KvsClient offers its callers.
type Client struct {
	conn net.Conn
	enc  *wire.Encoder
	dec  *wire.Decoder
}

// Connect dials addr and returns a ready-to-use Client.
func Connect(addr string) (*Client, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn, enc: wire.NewEncoder(conn), dec: wire.NewDecoder(conn)}, nil
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Get fetches key's value. found is false, with a nil error, when the key
// does not exist.
func (c *Client) Get(key string) (value string, found bool, err error) {
	resp, err := c.roundTrip(wire.NewGetCommand(key))
	if err != nil {
		return "", false, err
	}

	switch resp.Kind {
	case wire.ResponseValue:
		return resp.Value, true, nil
	case wire.ResponseEmpty:
		return "", false, nil
	case wire.ResponseError:
		return "", false, errorFromCode(resp.Code)
	default:
		return "", false, ErrUnexpectedResponse
	}
}

// Set stores key=value.
func (c *Client) Set(key, value string) error {
	resp, err := c.roundTrip(wire.NewSetCommand(key, value))
	if err != nil {
		return err
	}

	switch resp.Kind {
	case wire.ResponseEmpty:
		return nil
	case wire.ResponseError:
		return errorFromCode(resp.Code)
	default:
		return ErrUnexpectedResponse
	}
}

// Remove deletes key. Returns ErrKeyNotFound if key does not exist.
func (c *Client) Remove(key string) error {
	resp, err := c.roundTrip(wire.NewRemoveCommand(key))
	if err != nil {
		return err
	}

	switch resp.Kind {
	case wire.ResponseEmpty:
		return nil
	case wire.ResponseError:
		if resp.Code == wire.ErrorKeyNotFound {
			return ErrKeyNotFound
		}
		return errorFromCode(resp.Code)
	default:
		return ErrUnexpectedResponse
	}
}

func (c *Client) roundTrip(cmd wire.Command) (wire.Response, error) {
	if err := c.enc.EncodeCommand(cmd); err != nil {
		return wire.Response{}, err
	}

	resp, err := c.dec.DecodeResponse()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return wire.Response{}, ErrNoResponse
		}
		return wire.Response{}, fmt.Errorf("%w: %v", ErrResponseDeserialisation, err)
	}
	return resp, nil
}

func errorFromCode(code wire.ErrorCode) error {
	switch code {
	case wire.ErrorKeyNotFound:
		return ErrKeyNotFound
	case wire.ErrorCommandDeserialisation:
		return fmt.Errorf("client: server rejected command: %s", code)
	default:
		return fmt.Errorf("client: server error: %s", code)
	}
}
