package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/openmined/syncfolders/internal/syncsdk"
	"github.com/openmined/syncfolders/internal/version"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	envPrefix        = "SYNCCTL"
	defaultServerURL = "http://127.0.0.1:8080"
)

var (
	red   = color.New(color.FgHiRed, color.Bold).SprintFunc()
	green = color.New(color.FgHiGreen).SprintFunc()
	cyan  = color.New(color.FgHiCyan).SprintFunc()
	gray  = color.New(color.FgHiBlack).SprintFunc()
)

var rootCmd = &cobra.Command{
	Use:           "syncctl",
	Short:         "Sync folders command line client",
	Version:       version.Detailed(),
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringP("server", "s", defaultServerURL, "Server URL")
	rootCmd.PersistentFlags().StringP("user", "u", "", "User, when the server runs without auth")
	rootCmd.PersistentFlags().StringP("token", "t", "", "Access token")
}

func main() {
	// a missing .env is fine
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%s %s\n", red("ERROR"), describeError(err))
		os.Exit(1)
	}
}

// newSDK builds a client from flags, falling back to SYNCCTL_* env vars
func newSDK(cmd *cobra.Command) (*syncsdk.SyncSDK, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.BindPFlag("server", cmd.Flag("server"))
	v.BindPFlag("user", cmd.Flag("user"))
	v.BindPFlag("token", cmd.Flag("token"))

	return syncsdk.New(&syncsdk.Config{
		ServerURL: v.GetString("server"),
		User:      v.GetString("user"),
		Token:     v.GetString("token"),
	})
}

func describeError(err error) string {
	var apiErr *syncsdk.APIError
	if errors.As(err, &apiErr) {
		return fmt.Sprintf("%s %s", apiErr.Message, gray("("+apiErr.Code+")"))
	}
	if errors.Is(err, syncsdk.ErrNoUser) {
		return "set --user or --token (or " + envPrefix + "_USER / " + envPrefix + "_TOKEN)"
	}
	return strings.TrimPrefix(err.Error(), "sdk: ")
}
