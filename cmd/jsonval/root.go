package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/aretw0/jsonval"
	"github.com/aretw0/jsonval/internal/config"
	"github.com/aretw0/jsonval/internal/logging"
	"github.com/aretw0/jsonval/pkg/adapters/file"
	"github.com/aretw0/jsonval/pkg/adapters/memory"
	"github.com/aretw0/jsonval/pkg/adapters/redis"
	"github.com/aretw0/jsonval/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "jsonval",
	Short: "jsonval validates JSON documents against JSON Schema",
	Long: `jsonval checks JSON and YAML instances against JSON Schema (draft v4) and reports
every finding with a level, the instance pointer and the schema location.

It also runs as an HTTP service or an MCP server, optionally sharing a schema
registry stored on disk or in Redis.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// exitError carries a process exit code through cobra.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return "exit status " + strconv.Itoa(e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var ee *exitError
		if errors.As(err, &ee) {
			if ee.err != nil {
				fmt.Fprintln(os.Stderr, ee.err)
			}
			os.Exit(ee.code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}

func init() {
	// Persistent flags (available to all commands)
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Configuration file (YAML or JSON)")
	flags.String("log-level", "", "Process log level: debug, info, warn, error")
	flags.String("log-format", "", "Process log format: text or json")
	flags.String("schema-dir", "", "Directory of schemas served as file:// references")
	flags.String("redis-addr", "", "Redis address of the shared schema registry")
	flags.String("redis-prefix", "", "Key prefix of the shared schema registry")
	flags.Int("cache-size", 0, "Number of analyzed schema fragments to cache (0 disables)")
}

// app is what every command builds from flags and configuration.
type app struct {
	cfg       config.Config
	logger    *slog.Logger
	store     ports.SchemaStore
	resolvers ports.Chain
	registry  *prometheus.Registry
}

// loadConfig reads --config and applies the persistent flags over it.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}

	overrides := map[string]*string{
		"log-level":    &cfg.LogLevel,
		"log-format":   &cfg.LogFormat,
		"schema-dir":   &cfg.SchemaDir,
		"redis-addr":   &cfg.Redis.Addr,
		"redis-prefix": &cfg.Redis.Prefix,
	}
	for name, field := range overrides {
		if cmd.Flags().Changed(name) {
			*field, _ = cmd.Flags().GetString(name)
		}
	}
	if cmd.Flags().Changed("cache-size") {
		cfg.CacheSize, _ = cmd.Flags().GetInt("cache-size")
		if cfg.CacheSize < 0 {
			cfg.CacheSize = 0
		}
	}
	return cfg, nil
}

// newApp wires the logger and the schema stores. The writable store is
// Redis when configured, then the schema directory, then memory.
func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	logger, err := logging.NewWithFormat(cmd.ErrOrStderr(), cfg.LogFormat, level)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: logger, registry: prometheus.NewRegistry()}
	a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if cfg.Redis.Addr != "" {
		var opts []redis.Option
		if cfg.Redis.Prefix != "" {
			opts = append(opts, redis.WithPrefix(cfg.Redis.Prefix))
		}
		if cfg.Redis.TTL > 0 {
			opts = append(opts, redis.WithTTL(cfg.Redis.TTL))
		}
		rs := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, opts...)
		a.store = rs
		a.resolvers = append(a.resolvers, rs)
		logger.Debug("schema registry", "backend", "redis", "addr", cfg.Redis.Addr)
	}
	if cfg.SchemaDir != "" {
		fs, err := file.New(cfg.SchemaDir)
		if err != nil {
			return nil, err
		}
		if a.store == nil {
			a.store = fs
		}
		a.resolvers = append(a.resolvers, fs)
		logger.Debug("schema directory", "root", fs.Root(), "base", fs.Base())
	}
	if a.store == nil {
		ms := memory.NewStore()
		a.store = ms
		a.resolvers = append(a.resolvers, ms)
	}
	return a, nil
}

// validator builds a validator resolving through the app's stores and any
// extra resolvers.
func (a *app) validator(extra ...ports.SchemaResolver) *jsonval.Validator {
	chain := append(ports.Chain{}, a.resolvers...)
	chain = append(chain, extra...)
	return jsonval.New(
		jsonval.WithResolver(chain),
		jsonval.WithCacheSize(a.cfg.CacheSize),
		jsonval.WithDeepCheck(a.cfg.Validation.DeepCheck),
		jsonval.WithLogLevel(a.cfg.Validation.LogLevel),
		jsonval.WithExceptionThreshold(a.cfg.Validation.ExceptionThreshold),
		jsonval.WithMaxDepth(a.cfg.Validation.MaxDepth),
		jsonval.WithLogger(a.logger),
		jsonval.WithMetrics(a.registry),
	)
}
