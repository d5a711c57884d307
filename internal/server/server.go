// Package server implements the TCP front end: a bind-and-accept loop that
// hands each connection to internal/pool, a per-connection decode-dispatch-
// encode loop against internal/wire, and a dispatch table translating
// engine.KV results into wire.Response values. Grounded on
// original_source/src/network/server.rs's KvsServer (run/handle_req/
// handle_command) and EngineType/existing_engine, translated from its
// thread-per-connection-via-ThreadPool model into Go's net.Listener +
// internal/pool + errgroup shutdown coordination.
package server

import (
	"context"
	"errors"
	"io"
	"net"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/iamNilotpal/ignitekv/internal/engine"
	"github.com/iamNilotpal/ignitekv/internal/pool"
	"github.com/iamNilotpal/ignitekv/internal/sled"
	"github.com/iamNilotpal/ignitekv/internal/storage"
	"github.com/iamNilotpal/ignitekv/internal/wire"
	kverrors "github.com/iamNilotpal/ignitekv/pkg/errors"
	"github.com/iamNilotpal/ignitekv/pkg/filesys"
)

// Server listens for KVS commands over TCP and dispatches them to a
// shared engine.KV.
type Server struct {
	log    *zap.SugaredLogger
	engine engine.KV
	pool   *pool.Pool
}

// New constructs a Server over the given engine and worker pool.
func New(log *zap.SugaredLogger, kv engine.KV, workers *pool.Pool) *Server {
	return &Server{log: log, engine: kv, pool: workers}
}

// Run binds addr and serves connections until ctx is cancelled. It returns
// once the listener has been closed and every in-flight handler has had a
// chance to be cancelled via ctx; it does not wait for handlers still
// running a blocking engine call.
func (s *Server) Run(ctx context.Context, addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.log.Infow("server listening", "addr", addr)

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		<-gctx.Done()
		return listener.Close()
	})

	group.Go(func() error {
		for {
			conn, err := listener.Accept()
			if err != nil {
				select {
				case <-gctx.Done():
					return nil
				default:
					s.log.Errorw("accept failed", "error", err)
					continue
				}
			}

			s.pool.Spawn(func() {
				if err := s.handleConnection(gctx, conn); err != nil {
					s.log.Errorw("error handling request", "remote", conn.RemoteAddr(), "error", err)
				}
			})
		}
	})

	return group.Wait()
}

// handleConnection decodes every Command on conn in order, dispatches each
// to the engine, and writes back one Response per Command, flushing after
// every write — mirroring handle_req's per-command serde_json round trip.
// A decode failure reports CommandDeserialisation and closes the
// connection, since the byte stream can no longer be trusted to resync.
func (s *Server) handleConnection(ctx context.Context, conn net.Conn) error {
	defer conn.Close()

	dec := wire.NewDecoder(conn)
	enc := wire.NewEncoder(conn)

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		cmd, err := dec.DecodeCommand()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
				return nil
			}
			_ = enc.EncodeResponse(wire.NewErrorResponse(wire.ErrorCommandDeserialisation))
			return err
		}

		resp := s.dispatch(ctx, cmd)
		if err := enc.EncodeResponse(resp); err != nil {
			return err
		}
	}
}

// dispatch maps one wire.Command onto the engine and builds the
// corresponding wire.Response, the Go analogue of handle_command's match
// over NetworkCommand.
func (s *Server) dispatch(ctx context.Context, cmd wire.Command) wire.Response {
	switch cmd.Kind {
	case wire.CommandGet:
		value, found, err := s.engine.Get(ctx, cmd.Key)
		if err != nil {
			s.logEngineError("get", cmd.Key, err)
			return wire.NewErrorResponse(wire.ErrorUnknown)
		}
		if !found {
			return wire.NewEmptyResponse()
		}
		return wire.NewValueResponse(value)

	case wire.CommandSet:
		if err := s.engine.Set(ctx, cmd.Key, cmd.Value); err != nil {
			s.logEngineError("set", cmd.Key, err)
			return wire.NewErrorResponse(wire.ErrorUnknown)
		}
		return wire.NewEmptyResponse()

	case wire.CommandRemove:
		err := s.engine.Remove(ctx, cmd.Key)
		if err == nil {
			return wire.NewEmptyResponse()
		}
		if kverrors.IsKeyNotFound(err) {
			return wire.NewErrorResponse(wire.ErrorKeyNotFound)
		}
		s.logEngineError("remove", cmd.Key, err)
		return wire.NewErrorResponse(wire.ErrorUnknown)

	default:
		return wire.NewErrorResponse(wire.ErrorCommandDeserialisation)
	}
}

// logEngineError reports an engine failure with whatever structured context
// its concrete error type carries, so an operator reading logs gets the
// segment/offset/path, index key/operation, or validation field behind the
// generic wire.ErrorUnknown the client sees.
func (s *Server) logEngineError(op, key string, err error) {
	fields := []any{
		"op", op,
		"key", key,
		"code", kverrors.GetErrorCode(err),
	}

	switch {
	case kverrors.IsStorageError(err):
		if se, ok := kverrors.AsStorageError(err); ok {
			fields = append(fields, "segment", se.SegmentId(), "offset", se.Offset(), "path", se.Path())
		}
	case kverrors.IsIndexError(err):
		if ie, ok := kverrors.AsIndexError(err); ok {
			fields = append(fields, "indexKey", ie.Key(), "indexOperation", ie.Operation())
		}
	case kverrors.IsValidationError(err):
		if ve, ok := kverrors.AsValidationError(err); ok {
			fields = append(fields, "field", ve.Field(), "rule", ve.Rule())
		}
	}

	if details := kverrors.GetErrorDetails(err); len(details) > 0 {
		fields = append(fields, "details", details)
	}

	s.log.Errorw("engine operation failed", append(fields, "error", err)...)
}

// ExistingEngineKind reports which engine (if any) has existing on-disk
// data under root, mirroring existing_engine's ".kvs"/".sled" marker-
// directory probe. It returns ok=false when root holds neither marker.
func ExistingEngineKind(root string) (kind string, ok bool) {
	if exists, _ := filesys.Exists(filepath.Join(root, storage.Dir)); exists {
		return "kvs", true
	}
	if exists, _ := filesys.Exists(filepath.Join(root, sled.Dir)); exists {
		return "sled", true
	}
	return "", false
}
