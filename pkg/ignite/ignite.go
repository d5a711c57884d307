// Package ignite provides a high-performance key/value data store designed
// for fast read and write operations, inspired by Bitcask. It combines an
// in-memory hash table (index) with an append-only log structure on disk
// to achieve high throughput, and is the embeddable front door to
// internal/engine for callers that want the store in-process rather than
// over internal/server's TCP protocol.
package ignite

import (
	"context"

	"github.com/iamNilotpal/ignitekv/internal/engine"
	"github.com/iamNilotpal/ignitekv/pkg/logger"
	"github.com/iamNilotpal/ignitekv/pkg/options"
)

// Instance represents an instance of the ignitekv store. It encapsulates
// the core engine responsible for data handling and the configuration
// options for this specific database instance.
//
// Instance is the primary entry point for interacting with the store
// in-process, providing methods for setting, getting, and deleting
// key-value pairs.
type Instance struct {
	engine  *engine.Engine   // The underlying database engine handling read/write operations.
	options *options.Options // Configuration options applied to this DB instance.
}

// NewInstance creates and opens a new Instance rooted at the directory
// named by options.WithDataDir (the current directory if unset).
func NewInstance(ctx context.Context, service string, opts ...options.OptionFunc) (*Instance, error) {
	// Initialize a logger for the given service.
	log := logger.New(service, false)

	// Initialize default options.
	defaultOpts := options.NewDefaultOptions()

	// Apply any provided functional options to override defaults.
	for _, opt := range opts {
		opt(&defaultOpts)
	}

	// Create a new internal engine with the initialized logger.
	eng, err := engine.Open(ctx, defaultOpts.DataDir, &engine.Config{Logger: log, Options: &defaultOpts})
	if err != nil {
		return nil, err
	}

	return &Instance{engine: eng, options: &defaultOpts}, nil
}

// Set stores a key-value pair in the database. If the key already exists,
// its value will be updated. The operation is durable and will be flushed
// to the append-only log before returning.
func (i *Instance) Set(ctx context.Context, key, value string) error {
	return i.engine.Set(ctx, key, value)
}

// Get retrieves the value associated with the given key. found is false,
// with a nil error, when the key does not exist.
func (i *Instance) Get(ctx context.Context, key string) (value string, found bool, err error) {
	return i.engine.Get(ctx, key)
}

// Remove removes a key-value pair from the database. The write is a
// tombstone record; the space it occupies is reclaimed on the next
// compaction.
func (i *Instance) Remove(ctx context.Context, key string) error {
	return i.engine.Remove(ctx, key)
}

// Close gracefully shuts down the Instance, flushing any pending writes and
// closing every open segment handle.
func (i *Instance) Close() error {
	return i.engine.Close()
}
