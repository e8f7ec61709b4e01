package main

import (
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

var (
	cfgFile  string
	logLevel string
	env      string
)

var rootCmd = &cobra.Command{
	Version: version,
	Use:     "signet",
	Short:   "Presign and credential gateway for S3-compatible storage",
	Long: `Signet is a backend gateway that authenticates callers and issues
presigned URLs, upload policies, and temporary credentials for
S3-compatible object stores (AWS, Wasabi, MinIO).`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path (default: ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (env: SIGNET_LOG_LEVEL)")
	rootCmd.PersistentFlags().StringVar(&env, "env", "", "environment: dev, prod (env: SIGNET_ENV)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
