package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dsabanin/pygmentskit/internal/config"
	"github.com/dsabanin/pygmentskit/internal/engine"
	"github.com/dsabanin/pygmentskit/internal/log"
	"github.com/dsabanin/pygmentskit/internal/parser"
	"github.com/dsabanin/pygmentskit/internal/ranges"
	"github.com/dsabanin/pygmentskit/internal/tracing"
)

const localConfigPath = ".pygmentskit/config.yaml"

var (
	version    = "dev"
	cfgFile    string
	debugFlag  bool
	engineFlag string
	cfg        config.Config

	// rt is built in PersistentPreRunE and torn down by Execute.
	rt *runtime
)

var rootCmd = &cobra.Command{
	Use:   "pygmentskit",
	Short: "Tokenize and highlight source code with a Pygments-compatible engine",
	Long: `pygmentskit runs a lexing engine over source text, decodes its raw token
stream and maps every token back onto the exact range of the input it covers.

The engine is either chroma (in-process, the default) or an external
pygmentize executable speaking the raw token protocol.`,
	Version:           version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupRuntime,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ./"+localConfigPath+" or ~/.config/pygmentskit/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false,
		"write debug logs (also enabled by PYGMENTSKIT_DEBUG)")
	rootCmd.PersistentFlags().StringVarP(&engineFlag, "engine", "e", "",
		"lexing engine: chroma or pygments (overrides config)")
}

func initConfig() {
	viper.Reset()

	defaults := config.Defaults()
	viper.SetDefault("engine.kind", defaults.Engine.Kind)
	viper.SetDefault("engine.command", defaults.Engine.Command)
	viper.SetDefault("engine.timeout", defaults.Engine.Timeout)
	viper.SetDefault("theme.preset", defaults.Theme.Preset)
	viper.SetDefault("output.units", defaults.Output.Units)
	viper.SetDefault("output.color_profile", defaults.Output.ColorProfile)
	viper.SetDefault("output.line_numbers", defaults.Output.LineNumbers)
	viper.SetDefault("tracing.enabled", defaults.Tracing.Enabled)
	viper.SetDefault("tracing.exporter", defaults.Tracing.Exporter)
	viper.SetDefault("tracing.file_path", defaults.Tracing.FilePath)
	viper.SetDefault("tracing.otlp_endpoint", defaults.Tracing.OTLPEndpoint)
	viper.SetDefault("tracing.sample_rate", defaults.Tracing.SampleRate)
	viper.SetDefault("tracing.service_name", defaults.Tracing.ServiceName)
	viper.SetDefault("log_level", defaults.LogLevel)

	viper.SetEnvPrefix("PYGMENTSKIT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .pygmentskit/config.yaml (current directory)
		// 2. ~/.config/pygmentskit/config.yaml (user config)
		if _, err := os.Stat(localConfigPath); err == nil {
			viper.SetConfigFile(localConfigPath)
		} else if dir := userConfigDir(); dir != "" {
			viper.AddConfigPath(dir)
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			// First run: leave a commented user config behind to edit.
			if dir := userConfigDir(); dir != "" {
				userPath := filepath.Join(dir, "config.yaml")
				if writeErr := config.WriteDefaultConfig(userPath); writeErr == nil {
					viper.SetConfigFile(userPath)
					_ = viper.ReadInConfig()
				}
			}
		}
	}

	cfg = config.Config{}
	_ = viper.Unmarshal(&cfg)
}

// userConfigDir returns ~/.config/pygmentskit, or "" without a home directory.
func userConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "pygmentskit")
}

// configFilePath is where theme changes are saved.
func configFilePath() string {
	if used := viper.ConfigFileUsed(); used != "" {
		return used
	}
	if dir := userConfigDir(); dir != "" {
		return filepath.Join(dir, "config.yaml")
	}
	return localConfigPath
}

// runtime holds what every command needs for one invocation.
type runtime struct {
	parser   *parser.Parser
	unit     ranges.Unit
	tracing  *tracing.Provider
	closeLog func()
	// logFile is the debug log path, empty when logging is off or on stderr.
	logFile string
}

func setupRuntime(cmd *cobra.Command, _ []string) error {
	if engineFlag != "" {
		cfg.Engine.Kind = engineFlag
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	r := &runtime{}

	// Initialize logging if debug mode enabled (via flag or env var)
	if debugFlag || os.Getenv("PYGMENTSKIT_DEBUG") != "" {
		if err := r.initLog(cmd); err != nil {
			return err
		}
		log.Info(log.CatConfig, "pygmentskit starting",
			"command", cmd.Name(), "config", viper.ConfigFileUsed(), "engine", cfg.Engine.Kind)
	}

	provider, err := tracing.NewProvider(cfg.Tracing)
	if err != nil {
		r.close(cmd.Context())
		return fmt.Errorf("initializing tracing: %w", err)
	}
	r.tracing = provider

	unit, err := cfg.Output.Unit()
	if err != nil {
		r.close(cmd.Context())
		return err
	}
	r.unit = unit

	rt = r
	return nil
}

// initLog starts debug logging to cfg.DebugLog, ./debug.log by default, or
// to stderr when the path is "-".
func (r *runtime) initLog(cmd *cobra.Command) error {
	switch cfg.DebugLog {
	case "-":
		log.InitWriter(cmd.ErrOrStderr())
		r.closeLog = func() {}
	default:
		path := cfg.DebugLog
		if path == "" {
			path = "debug.log"
		}
		cleanup, err := log.Init(path)
		if err != nil {
			return fmt.Errorf("initializing logging: %w", err)
		}
		r.closeLog = cleanup
		r.logFile = path
	}
	log.SetMinLevel(log.ParseLevel(cfg.LogLevel))
	return nil
}

// Parser returns the parser for the configured engine, building it on first
// use so that commands which never parse do not need a working engine.
func (r *runtime) Parser() (*parser.Parser, error) {
	if r.parser != nil {
		return r.parser, nil
	}
	eng, err := newEngine(cfg.Engine)
	if err != nil {
		return nil, err
	}
	r.parser = parser.New(eng,
		parser.WithUnit(r.unit),
		parser.WithTracer(r.tracing.Tracer()),
	)
	log.Debug(log.CatEngine, "Engine ready", "engine", eng.Name(), "unit", r.unit)
	return r.parser, nil
}

func newEngine(ec config.EngineConfig) (engine.Engine, error) {
	switch ec.Kind {
	case config.EnginePygments:
		sub, err := engine.NewSubprocess(ec.Subprocess())
		if err != nil {
			return nil, err
		}
		return sub, nil
	default:
		return engine.NewChroma(), nil
	}
}

// parseContext applies the configured engine timeout to ctx.
func parseContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if cfg.Engine.Timeout > 0 {
		return context.WithTimeout(ctx, cfg.Engine.Timeout)
	}
	return context.WithCancel(ctx)
}

func (r *runtime) close(ctx context.Context) {
	if r == nil {
		return
	}
	if r.tracing != nil {
		if err := r.tracing.Shutdown(ctx); err != nil {
			log.ErrorErr(log.CatTrace, "Tracing shutdown failed", err)
		}
	}
	if r.closeLog != nil {
		r.closeLog()
		log.Reset()
	}
}

// exitError carries a process exit code without an extra message.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// ExitCode maps an error returned by Execute to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return 1
}

// Execute runs the root command
func Execute() error {
	err := rootCmd.Execute()
	rt.close(context.Background())
	rt = nil

	var ee *exitError
	if err != nil && !errors.As(err, &ee) {
		fmt.Fprintln(rootCmd.ErrOrStderr(), "Error:", err)
	}
	return err
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
