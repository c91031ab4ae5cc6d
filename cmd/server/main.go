package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/openmined/syncfolders/internal/server"
	"github.com/openmined/syncfolders/internal/server/auth"
	"github.com/openmined/syncfolders/internal/server/syncsvc"
	"github.com/openmined/syncfolders/internal/utils"
	"github.com/openmined/syncfolders/internal/version"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const envPrefix = "SYNCFOLDERS"

var (
	home, _        = os.UserHomeDir()
	defaultDataDir = filepath.Join(home, ".syncfolders")
	configFileName = "config"
)

var rootCmd = &cobra.Command{
	Use:     "syncfolders-server",
	Short:   "Sync Folders Server",
	Version: version.Detailed(),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		cmd.SilenceUsage = true

		closeLog, err := setupLogger(cfg.LogDir)
		if err != nil {
			return err
		}
		defer closeLog()

		color.New(color.FgHiCyan, color.Bold).Println(version.DetailedWithApp())
		slog.Info("config loaded", "file", viperFileUsed, "addr", cfg.HTTP.Addr, "data_dir", cfg.DataDir, "auth", cfg.Auth.Enabled)
		if cfg.Auth.Enabled {
			slog.Info("auth config", "issuer", cfg.Auth.TokenIssuer, "secret", utils.MaskSecret(cfg.Auth.AccessTokenSecret), "expiry", cfg.Auth.AccessTokenExpiry, "admins", len(cfg.Auth.Admins))
		}

		srv, err := server.New(cfg)
		if err != nil {
			return err
		}

		defer slog.Info("Bye!")
		return srv.Start(cmd.Context())
	},
}

var tokenCmd = &cobra.Command{
	Use:   "token <subject>",
	Short: "Issue an access token for a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if err := cfg.Auth.Validate(); err != nil {
			return err
		}
		cmd.SilenceUsage = true

		token, err := auth.NewAuthService(&cfg.Auth).IssueAccessToken(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

// viperFileUsed is the config file picked by the last loadConfig
var viperFileUsed string

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "Config file (json, yaml or toml)")
	rootCmd.PersistentFlags().String("env-file", ".env", "Dotenv file loaded into the environment")

	rootCmd.Flags().SortFlags = false
	rootCmd.Flags().StringP("bind", "b", server.DefaultAddr, "Address to bind the server")
	rootCmd.Flags().String("cert", "", "Path to the certificate file")
	rootCmd.Flags().String("key", "", "Path to the key file")
	rootCmd.Flags().StringP("data-dir", "d", defaultDataDir, "Data directory for the state database and locks")
	rootCmd.Flags().String("log-dir", "", "Log directory (default <data-dir>/logs)")

	rootCmd.AddCommand(tokenCmd)
}

func main() {
	// Setup root context with signal handling
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// loadConfig merges defaults, the config file, the environment and flags, in
// increasing precedence
func loadConfig(cmd *cobra.Command) (*server.Config, error) {
	if err := loadEnvFile(cmd); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)

	if f := cmd.Flag("config"); f != nil && f.Value.String() != "" {
		v.SetConfigFile(f.Value.String())
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath(defaultDataDir)
		v.AddConfigPath(filepath.Join(home, ".config", "syncfolders"))
		v.SetConfigName(configFileName)
	}

	if err := v.ReadInConfig(); err != nil {
		enoent := errors.Is(err, os.ErrNotExist)
		var notFound viper.ConfigFileNotFoundError
		if !enoent && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config read '%s': %w", v.ConfigFileUsed(), err)
		}
	}
	viperFileUsed = v.ConfigFileUsed()

	// flags only win when set explicitly
	bindFlag(v, cmd, "http.addr", "bind")
	bindFlag(v, cmd, "http.cert_file", "cert")
	bindFlag(v, cmd, "http.key_file", "key")
	bindFlag(v, cmd, "data_dir", "data-dir")
	bindFlag(v, cmd, "log_dir", "log-dir")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &server.Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config decode: %w", err)
	}

	dataDir, err := utils.ResolvePath(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("data_dir: %w", err)
	}
	cfg.DataDir = dataDir
	if cfg.LogDir == "" {
		cfg.LogDir = filepath.Join(cfg.DataDir, "logs")
	}
	return cfg, nil
}

// every key needs a default for AutomaticEnv to reach it through Unmarshal
func setDefaults(v *viper.Viper) {
	syncDefaults := syncsvc.DefaultConfig()

	v.SetDefault("http.addr", server.DefaultAddr)
	v.SetDefault("http.cert_file", "")
	v.SetDefault("http.key_file", "")
	v.SetDefault("http.rate_limit", server.DefaultImportRate)
	v.SetDefault("auth.enabled", false)
	v.SetDefault("auth.token_issuer", "")
	v.SetDefault("auth.access_token_secret", "")
	v.SetDefault("auth.access_token_expiry", 24*time.Hour)
	v.SetDefault("auth.admins", []string{})
	v.SetDefault("sync.checksum_size_limit", syncDefaults.ChecksumSizeLimit)
	v.SetDefault("sync.workers", syncDefaults.Workers)
	v.SetDefault("sync.exclude", []string{})
	v.SetDefault("progress.ttl", server.DefaultProgressTTL)
	v.SetDefault("data_dir", defaultDataDir)
	v.SetDefault("log_dir", "")
}

func bindFlag(v *viper.Viper, cmd *cobra.Command, key, name string) {
	if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
		v.Set(key, f.Value.String())
	}
}

func loadEnvFile(cmd *cobra.Command) error {
	f := cmd.Flag("env-file")
	if f == nil || f.Value.String() == "" {
		return nil
	}
	err := godotenv.Load(f.Value.String())
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("env file '%s': %w", f.Value.String(), err)
	}
	return nil
}

// setupLogger logs colored text to stdout and plain text to <logDir>/server.log
func setupLogger(logDir string) (func(), error) {
	if err := utils.EnsureDir(logDir); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := os.OpenFile(filepath.Join(logDir, "server.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	stdoutHandler := tint.NewHandler(os.Stdout, &tint.Options{
		Level:      slog.LevelDebug,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
		NoColor:    !isatty.IsTerminal(os.Stdout.Fd()),
	})
	fileHandler := slog.NewTextHandler(file, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})

	slog.SetDefault(slog.New(utils.NewMultiLogHandler(stdoutHandler, fileHandler)))
	return func() { file.Close() }, nil
}
