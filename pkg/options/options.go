// Package options provides data structures and functions for configuring
// ignitekv. It defines the parameters that control the engine's on-disk
// behavior (data directory, compaction threshold), the worker pool's size,
// and the server/client's network address and engine selection.
package options

import "strings"

// EngineKind names which engine.KV implementation backs the store.
type EngineKind string

const (
	// EngineKVS is the native Bitcask-style log engine this module implements.
	EngineKVS EngineKind = "kvs"

	// EngineSled is the alternative engine capability; its internals are
	// out of scope (spec.md §1), so internal/sled ships only a stub.
	EngineSled EngineKind = "sled"
)

// Options defines the configuration parameters for an ignitekv instance.
type Options struct {
	// DataDir is the root directory passed to engine.Open. The engine
	// creates and uses a ".kvs" subdirectory of this path.
	//
	// Default: "."
	DataDir string `json:"dataDir"`

	// CompactionThreshold is the cumulative uncompacted-byte ceiling that
	// triggers inline compaction (spec.md §4.3.3).
	//
	// Default: 1 MiB
	CompactionThreshold int64 `json:"compactionThreshold"`

	// PoolSize is the number of worker goroutines the network server's
	// worker pool runs.
	//
	// Default: 4
	PoolSize int `json:"poolSize"`

	// Addr is the TCP address the server listens on / the client connects
	// to.
	//
	// Default: "127.0.0.1:4000"
	Addr string `json:"addr"`

	// Engine selects which engine.KV implementation backs the server.
	//
	// Default: EngineKVS
	Engine EngineKind `json:"engine"`
}

// OptionFunc is a function type that modifies an Options value in place.
type OptionFunc func(*Options)

// WithDefaultOptions resets every field to its documented default.
func WithDefaultOptions() OptionFunc {
	return func(o *Options) {
		*o = NewDefaultOptions()
	}
}

// WithDataDir sets the root data directory. Empty/whitespace-only values are
// ignored, leaving the previous value in place.
func WithDataDir(directory string) OptionFunc {
	return func(o *Options) {
		directory = strings.TrimSpace(directory)
		if directory != "" {
			o.DataDir = directory
		}
	}
}

// WithCompactionThreshold sets the uncompacted-byte ceiling that triggers
// compaction. Non-positive values are ignored.
func WithCompactionThreshold(bytes int64) OptionFunc {
	return func(o *Options) {
		if bytes > 0 {
			o.CompactionThreshold = bytes
		}
	}
}

// WithPoolSize sets the worker pool's goroutine count. Non-positive values
// are ignored.
func WithPoolSize(n int) OptionFunc {
	return func(o *Options) {
		if n > 0 {
			o.PoolSize = n
		}
	}
}

// WithAddr sets the server/client network address. Empty/whitespace-only
// values are ignored.
func WithAddr(addr string) OptionFunc {
	return func(o *Options) {
		addr = strings.TrimSpace(addr)
		if addr != "" {
			o.Addr = addr
		}
	}
}

// WithEngine selects the engine implementation.
func WithEngine(kind EngineKind) OptionFunc {
	return func(o *Options) {
		if kind == EngineKVS || kind == EngineSled {
			o.Engine = kind
		}
	}
}
