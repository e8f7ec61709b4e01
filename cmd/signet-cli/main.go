package main

import (
	"errors"
	"os"

	"github.com/sagarc03/signet/clientcli"
	"github.com/spf13/cobra"
)

var (
	version = "dev"

	cfgFile     string
	server      string
	profileName string
	username    string
	password    string
	accessKey   string
	secretKey   string
	region      string
	jsonOutput  bool
	quiet       bool
)

var rootCmd = &cobra.Command{
	Use:     "signet-cli",
	Version: version,
	Short:   "Client for the signet credential gateway",
	Long: `Signet CLI - Client for the signet credential gateway

Authentication depends on the gateway's mode:
  - password mode:    run 'signet-cli login' style commands with a
    username and password; the CLI exchanges them for a bearer token.
  - passthrough mode: provide an access key and secret key; the CLI
    forwards them as x-aws-* headers on every request.

Profiles let you store settings for multiple gateways in
~/.signet/config.yaml and switch with --profile or SIGNET_PROFILE.`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: ~/.signet/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&server, "server", "s", "", "gateway URL (default: http://localhost:8080, env: SIGNET_ENDPOINT)")
	rootCmd.PersistentFlags().StringVarP(&profileName, "profile", "p", "", "profile name (env: SIGNET_PROFILE)")
	rootCmd.PersistentFlags().StringVarP(&username, "username", "u", "", "username for password mode (env: SIGNET_USERNAME)")
	rootCmd.PersistentFlags().StringVar(&password, "password", "", "password for password mode (env: SIGNET_PASSWORD)")
	rootCmd.PersistentFlags().StringVarP(&accessKey, "access-key", "a", "", "access key (env: SIGNET_ACCESS_KEY)")
	rootCmd.PersistentFlags().StringVarP(&secretKey, "secret-key", "k", "", "secret key (env: SIGNET_SECRET_KEY)")
	rootCmd.PersistentFlags().StringVarP(&region, "region", "r", "", "region (env: SIGNET_REGION)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-essential output")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(presignCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(configureCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// getConfigPath resolves the config file path from flag, env, or default.
func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	if envPath := clientcli.ConfigPathFromEnv(); envPath != "" {
		return envPath
	}
	return clientcli.DefaultConfigPath()
}

// buildConfig merges config from profile, env vars, and flags (flags take precedence).
func buildConfig() (*clientcli.Config, error) {
	var configs []*clientcli.Config

	// 1. Resolve profile from the config file
	name := profileName
	if name == "" {
		name = clientcli.ProfileFromEnv()
	}

	configPath := getConfigPath()
	if configPath != "" {
		fileCfg, err := clientcli.LoadConfigFile(configPath)
		switch {
		case err == nil:
			p, profileErr := fileCfg.GetProfile(name)
			if profileErr != nil {
				// A missing default profile is fine; a named profile must exist
				if name != "" && !errors.Is(profileErr, clientcli.ErrNoProfiles) {
					return nil, profileErr
				}
			} else {
				configs = append(configs, clientcli.ConfigFromProfile(p))
			}
		case cfgFile != "":
			// Only error if user explicitly specified a config file
			return nil, err
		}
	}

	// 2. Load from environment variables
	configs = append(configs, clientcli.ConfigFromEnv())

	// 3. Load from flags
	configs = append(configs, &clientcli.Config{
		Endpoint:  server,
		Username:  username,
		Password:  password,
		AccessKey: accessKey,
		SecretKey: secretKey,
		Region:    region,
	})

	return clientcli.MergeConfig(configs...), nil
}

// getFormatter returns the appropriate formatter based on flags.
func getFormatter() clientcli.Formatter {
	return clientcli.NewFormatter(jsonOutput, quiet)
}

// getClient creates and returns a configured client.
func getClient() (*clientcli.Client, error) {
	cfg, err := buildConfig()
	if err != nil {
		return nil, err
	}

	return clientcli.New(cfg)
}
