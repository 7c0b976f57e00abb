// Package main is the entry point for the link resolution service.
//
// With URL arguments it resolves each one against the route table and
// prints one JSON line per URL. Without arguments it serves the HTTP
// API and reloads the route table when the file changes.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/vyrodovalexey/linkrouter/internal/config"
	"github.com/vyrodovalexey/linkrouter/internal/observability"
	"github.com/vyrodovalexey/linkrouter/internal/router"
	"github.com/vyrodovalexey/linkrouter/internal/util"
)

// Version information (set at build time).
var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

// Exit codes.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

const (
	appName    = "linkrouter"
	configFile = "routes.yaml"
)

// cliFlags holds command line flags.
type cliFlags struct {
	configPath      string
	logLevel        string
	logFormat       string
	domain          string
	listen          string
	shutdownTimeout time.Duration
	showVersion     bool
	urls            []string
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	flags, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		fmt.Fprintf(stderr, "%v\n", err)
		return exitUsage
	}

	if flags.showVersion {
		printVersion(stdout)
		return exitOK
	}

	path, err := config.ResolveConfigPath(flags.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return exitError
	}

	loader := config.NewLoader()
	validator := config.NewValidator(config.WithPathChecker(router.ValidateTemplate))

	cfg, err := loadConfig(path, loader, validator)
	if err != nil {
		fmt.Fprintf(stderr, "failed to load route table: %v\n", err)
		return exitError
	}

	logger, err := initLogger(flags, cfg)
	if err != nil {
		fmt.Fprintf(stderr, "failed to initialize logger: %v\n", err)
		return exitError
	}
	defer func() { _ = logger.Sync() }()

	rt := router.New(router.WithLogger(logger.Named("router")))
	if err := rt.LoadRoutes(&cfg.Spec); err != nil {
		logger.Error("failed to load routes", observability.Error(err))
		return exitError
	}

	if len(flags.urls) > 0 {
		if err := resolveURLs(rt, flags.urls, flags.domain, stdout); err != nil {
			logger.Error("failed to write resolution", observability.Error(err))
			return exitError
		}
		return exitOK
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := &application{
		flags:     flags,
		path:      path,
		config:    cfg,
		router:    rt,
		loader:    loader,
		validator: validator,
		logger:    logger,
	}
	if err := app.serve(ctx); err != nil {
		logger.Error("service stopped with error", observability.Error(err))
		return exitError
	}
	return exitOK
}

// parseFlags parses command line flags. Unset flags fall back to
// LINKROUTER_* environment variables.
func parseFlags(args []string, output io.Writer) (cliFlags, error) {
	fs := flag.NewFlagSet(appName, flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {
		fmt.Fprintf(output, "Usage: %s [flags] [url ...]\n\n", appName)
		fs.PrintDefaults()
	}

	configPath := fs.String("config", getEnvOrDefault(envConfigPath, configFile),
		"Path to the route table")
	logLevel := fs.String("log-level", getEnvOrDefault(envLogLevel, ""),
		"Log level (debug, info, warn, error); overrides the route table")
	logFormat := fs.String("log-format", getEnvOrDefault(envLogFormat, ""),
		"Log format (json, console); overrides the route table")
	domain := fs.String("domain", getEnvOrDefault(envDomain, ""),
		"Domain of the logged-in user")
	listen := fs.String("listen", getEnvOrDefault(envListen, ""),
		"Listen address; overrides the route table")
	shutdown := fs.String("shutdown-timeout", getEnvOrDefault(envShutdownTimeout, ""),
		"Graceful shutdown timeout (e.g. 15s); overrides the route table")
	showVersion := fs.Bool("version", false, "Show version information")

	if err := fs.Parse(args); err != nil {
		return cliFlags{}, err
	}

	flags := cliFlags{
		configPath:  *configPath,
		logLevel:    *logLevel,
		logFormat:   *logFormat,
		domain:      strings.TrimSpace(*domain),
		listen:      *listen,
		showVersion: *showVersion,
		urls:        fs.Args(),
	}

	timeout, err := util.ParseDuration(*shutdown)
	if err != nil {
		return cliFlags{}, fmt.Errorf("invalid -shutdown-timeout: %w", err)
	}
	flags.shutdownTimeout = timeout

	if flags.domain != "" {
		if err := validateDomain(flags.domain); err != nil {
			return cliFlags{}, fmt.Errorf("invalid -domain: %w", err)
		}
	}
	if flags.listen != "" {
		if err := util.ValidateListenAddress(flags.listen); err != nil {
			return cliFlags{}, fmt.Errorf("invalid -listen: %w", err)
		}
	}

	return flags, nil
}

// validateDomain accepts a bare host, host:port or a URL and checks the
// host part.
func validateDomain(domain string) error {
	host := domain
	if strings.Contains(domain, "://") {
		u, err := url.Parse(domain)
		if err != nil {
			return err
		}
		host = u.Hostname()
	} else if h, _, err := net.SplitHostPort(domain); err == nil {
		host = h
	}
	return util.ValidateHostname(host)
}

// printVersion prints version information.
func printVersion(w io.Writer) {
	fmt.Fprintf(w, "%s version %s\n", appName, version)
	fmt.Fprintf(w, "  Build time: %s\n", buildTime)
	fmt.Fprintf(w, "  Git commit: %s\n", gitCommit)
}

// loadConfig loads and validates the route table at path.
func loadConfig(path string, loader *config.Loader, validator *config.Validator) (*config.RouterConfig, error) {
	cfg, err := loader.Load(path)
	if err != nil {
		return nil, err
	}
	if err := validator.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// initLogger builds the logger from the route table, with flags taking
// precedence.
func initLogger(flags cliFlags, cfg *config.RouterConfig) (observability.Logger, error) {
	logCfg := observability.DefaultLogConfig()
	if logging := cfg.Spec.Observability.Logging; logging != nil {
		logCfg.Level = logging.Level
		logCfg.Format = logging.Format
	}
	if flags.logLevel != "" {
		logCfg.Level = flags.logLevel
	}
	if flags.logFormat != "" {
		logCfg.Format = flags.logFormat
	}
	// Resolve mode owns stdout.
	if len(flags.urls) > 0 {
		logCfg.Output = "stderr"
	}

	logger, err := observability.NewLogger(logCfg)
	if err != nil {
		return nil, err
	}
	observability.SetGlobalLogger(logger)
	return logger, nil
}
