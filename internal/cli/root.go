// Package cli implements the coldsteel CLI commands.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rcliao/coldsteel/internal/config"
	"github.com/rcliao/coldsteel/internal/logging"
	"github.com/rcliao/coldsteel/internal/model"
	"github.com/rcliao/coldsteel/internal/provider"
	"github.com/rcliao/coldsteel/internal/session"
	"github.com/rcliao/coldsteel/internal/store"
)

var (
	dbPath     string
	configPath string
	logLevel   string
	formatFlag string

	cfg    *config.Config
	logger = zap.NewNop()
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "coldsteel",
	Short: "Identity-driven multi-agent orchestration",
	Long: "Cold Steel compiles a persistent identity into directives, fans each task out to four " +
		"specialist agents, synthesizes their outputs into a vaulted artifact and remembers it locally.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if dbPath != "" {
			c.DBPath = dbPath
		}
		if logLevel != "" {
			c.LogLevel = logLevel
		}
		l, err := logging.New(c.LogLevel, c.LogDev)
		if err != nil {
			return err
		}
		cfg, logger = c, l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (default: $COLDSTEEL_DB or ~/.coldsteel/coldsteel.db)")
	RootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: ~/.coldsteel/config.yaml)")
	RootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "json", "Output format: json or text")
}

func openStore() (*store.SQLiteStore, error) {
	return store.NewSQLiteStore(cfg.DBPath, store.WithLogger(logger))
}

// newGateway wires the Gemini backend as the default and Anthropic for
// ANTHROPIC configs. The returned func releases cached SDK clients.
func newGateway() (*provider.Gateway, func(), error) {
	gemini, err := provider.NewGeminiGenerator()
	if err != nil {
		return nil, nil, fmt.Errorf("gemini backend: %w", err)
	}
	claude, err := provider.NewAnthropicGenerator()
	if err != nil {
		gemini.Close()
		return nil, nil, fmt.Errorf("anthropic backend: %w", err)
	}
	gw := provider.NewGateway(gemini,
		provider.WithGenerator(model.ProviderAnthropic, claude),
		provider.WithFallbackKey(cfg.APIKey),
		provider.WithTimeout(cfg.ProviderTimeout),
		provider.WithLogger(logger))
	return gw, func() {
		gemini.Close()
		claude.Close()
	}, nil
}

// openSession opens the store and a loaded session over the live gateway.
// The returned func closes everything.
func openSession(ctx context.Context, opts ...session.Option) (*session.Session, *store.SQLiteStore, func(), error) {
	st, err := openStore()
	if err != nil {
		return nil, nil, nil, err
	}
	gw, closeGW, err := newGateway()
	if err != nil {
		st.Close()
		return nil, nil, nil, err
	}
	base := []session.Option{
		session.WithLogger(logger),
		session.WithOnline(cfg.Online),
		session.WithPriority(cfg.Priority),
		session.WithActiveProvider(cfg.ActiveProvider),
		session.WithFallbackKey(cfg.APIKey),
	}
	s := session.New(st, gw, append(base, opts...)...)
	cleanup := func() {
		closeGW()
		st.Close()
	}
	if err := s.Load(ctx); err != nil {
		cleanup()
		return nil, nil, nil, err
	}
	return s, st, cleanup, nil
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}

// openConfigSession is openSession without a provider gateway, for commands
// that only read or edit configuration.
func openConfigSession(ctx context.Context) (*session.Session, func(), error) {
	st, err := openStore()
	if err != nil {
		return nil, nil, err
	}
	s := session.New(st, nil,
		session.WithLogger(logger),
		session.WithActiveProvider(cfg.ActiveProvider))
	if err := s.Load(ctx); err != nil {
		st.Close()
		return nil, nil, err
	}
	return s, func() { st.Close() }, nil
}
