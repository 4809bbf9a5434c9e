package main

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/curator/internal/config"
	logpkg "github.com/kailas-cloud/curator/internal/logger"
	curator "github.com/kailas-cloud/curator/pkg/sdk"
)

// rootOptions holds the global flags shared by all subcommands.
type rootOptions struct {
	configPath  string
	env         string
	logLevel    string
	baseURL     string
	accessToken string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "curator",
		Short: "Curator search client",
		Long: `curator runs searches against Curator collections and serves a small HTTP
gateway in front of the Curator search API.

Configuration is read from the file given with --config, else from config/{env}.yaml.
${VAR} and ${VAR:-default} references in the file are expanded from the environment.
Without any config file, settings come from CURATOR_* environment variables
(CURATOR_BASE_URL, CURATOR_ACCESS_TOKEN, ...) and built-in defaults.
--base-url and --access-token override whatever was loaded.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default is config/{env}.yaml)")
	cmd.PersistentFlags().StringVar(&opts.env, "env", config.GetEnv(), "environment: local, dev, prod, test")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&opts.baseURL, "base-url", "", "Curator API base URL (overrides curator.base_url)")
	cmd.PersistentFlags().StringVar(&opts.accessToken, "access-token", "", "Curator access token (overrides curator.access_token)")

	cmd.AddCommand(
		newSearchCmd(opts),
		newServeCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

// load reads the configuration and builds the logger.
func (o *rootOptions) load() (config.Config, *zap.Logger, error) {
	var (
		cfg config.Config
		err error
	)
	if o.configPath != "" {
		cfg, err = config.LoadFile(o.configPath)
	} else {
		cfg, err = config.LoadOrEnv(o.env)
	}
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}
	if o.baseURL != "" {
		cfg.Curator.BaseURL = o.baseURL
	}
	if o.accessToken != "" {
		cfg.Curator.AccessToken = o.accessToken
	}

	level := cfg.Logging.Level
	if o.logLevel != "" {
		level = o.logLevel
	}
	logger, err := logpkg.NewLogger(o.env, level)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("create logger: %w", err)
	}
	return cfg, logger, nil
}

// newClient builds the SDK client from the curator config section.
// reg may be nil to disable SDK metrics.
func newClient(cfg config.CuratorConfig, logger *zap.Logger, reg prometheus.Registerer) (*curator.Client, error) {
	opts := []curator.Option{
		curator.WithBaseURL(cfg.BaseURL),
		curator.WithAccessToken(cfg.AccessToken),
		curator.WithTimeout(time.Duration(cfg.TimeoutSec) * time.Second),
		curator.WithDefaultPerPage(cfg.DefaultPerPage),
		curator.WithLogger(logger),
		curator.WithPrometheus(reg),
	}
	if cfg.UserAgent != "" {
		opts = append(opts, curator.WithUserAgent(cfg.UserAgent))
	}
	c, err := curator.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create curator client: %w", err)
	}
	return c, nil
}
