package options

const (
	// DefaultDataDir is the root directory used when none is specified; the
	// engine creates and uses a ".kvs" subdirectory of it.
	DefaultDataDir = "."

	// DefaultCompactionThreshold is the uncompacted-byte ceiling recommended
	// by spec.md §4.3.3 (1 MiB).
	DefaultCompactionThreshold int64 = 1024 * 1024

	// DefaultPoolSize is the worker pool's default goroutine count.
	DefaultPoolSize = 4

	// DefaultAddr is the server/client default network address.
	DefaultAddr = "127.0.0.1:4000"
)

// defaultOptions holds the baseline configuration every Options value
// starts from before functional overrides are applied.
var defaultOptions = Options{
	DataDir:             DefaultDataDir,
	CompactionThreshold: DefaultCompactionThreshold,
	PoolSize:            DefaultPoolSize,
	Addr:                DefaultAddr,
	Engine:              EngineKVS,
}

// NewDefaultOptions returns a copy of the baseline configuration.
func NewDefaultOptions() Options {
	return defaultOptions
}
