// Command server runs the ignitekv TCP server: it binds an address, opens
// the selected storage engine rooted at the current working directory, and
// dispatches client commands through a fixed-size worker pool. Flags and
// subcommand shape follow original_source/src/bin/kvs-server.rs, rebuilt on
// cobra/pflag the way the teacher's own CLI surface would have been had it
// shipped one.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iamNilotpal/ignitekv/internal/engine"
	"github.com/iamNilotpal/ignitekv/internal/pool"
	"github.com/iamNilotpal/ignitekv/internal/server"
	"github.com/iamNilotpal/ignitekv/internal/sled"
	kverrors "github.com/iamNilotpal/ignitekv/pkg/errors"
	"github.com/iamNilotpal/ignitekv/pkg/logger"
	"github.com/iamNilotpal/ignitekv/pkg/options"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		addr       string
		engineFlag string
		poolSize   int
		threshold  int64
		dev        bool
	)

	cmd := &cobra.Command{
		Use:   "ignitekv-server",
		Short: "Run the ignitekv key/value TCP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), addr, engineFlag, poolSize, threshold, dev)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", options.DefaultAddr, "IP:PORT to listen on")
	cmd.Flags().StringVar(&engineFlag, "engine", "", "storage engine to use (kvs|sled); detected from existing data if omitted")
	cmd.Flags().IntVar(&poolSize, "pool-size", options.DefaultPoolSize, "worker pool goroutine count")
	cmd.Flags().Int64Var(&threshold, "compaction-threshold", options.DefaultCompactionThreshold, "uncompacted-byte ceiling that triggers compaction")
	cmd.Flags().BoolVar(&dev, "dev", false, "use development (console) logging instead of production JSON logging")

	return cmd
}

func runServer(ctx context.Context, addr, engineFlag string, poolSize int, threshold int64, dev bool) error {
	log := logger.New("ignitekv-server", dev)
	defer log.Sync() //nolint:errcheck

	root, err := os.Getwd()
	if err != nil {
		return err
	}

	kind, err := resolveEngineKind(root, engineFlag)
	if err != nil {
		return err
	}

	opts := options.NewDefaultOptions()
	for _, opt := range []options.OptionFunc{
		options.WithDataDir(root),
		options.WithAddr(addr),
		options.WithPoolSize(poolSize),
		options.WithCompactionThreshold(threshold),
		options.WithEngine(kind),
	} {
		opt(&opts)
	}

	kv, err := openEngine(ctx, root, kind, &opts, log)
	if err != nil {
		return err
	}
	defer kv.Close()

	workers := pool.New(opts.PoolSize, log)
	defer workers.Shutdown()

	srv := server.New(log, kv, workers)

	runCtx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log.Infow("starting ignitekv server", "addr", opts.Addr, "engine", kind)
	return srv.Run(runCtx, opts.Addr)
}

func resolveEngineKind(root, flagValue string) (options.EngineKind, error) {
	existingKind, existingOK := server.ExistingEngineKind(root)

	if flagValue == "" {
		if existingOK {
			return options.EngineKind(existingKind), nil
		}
		return options.EngineKVS, nil
	}

	requested := options.EngineKind(flagValue)
	if requested != options.EngineKVS && requested != options.EngineSled {
		return "", kverrors.NewFieldFormatError("engine", flagValue, fmt.Sprintf("%q or %q", options.EngineKVS, options.EngineSled))
	}
	if existingOK && string(requested) != existingKind {
		return "", fmt.Errorf("chosen engine %q does not match existing data (%q)", requested, existingKind)
	}
	return requested, nil
}

// openEngine opens either the native or stub engine depending on kind. Both
// satisfy engine.KV, so the rest of main doesn't need to branch on it again.
func openEngine(ctx context.Context, root string, kind options.EngineKind, opts *options.Options, log *zap.SugaredLogger) (engine.KV, error) {
	if kind == options.EngineSled {
		return sled.Open(ctx, root)
	}
	return engine.Open(ctx, root, &engine.Config{Options: opts, Logger: log})
}
