package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Verify credentials against the gateway",
	Long: `Verify credentials against the gateway's /token/login endpoint.

In password mode the gateway returns a bearer token; this command
confirms the username and password are valid. In passthrough mode the
gateway echoes back the storage credentials it would use.

Examples:
  signet-cli login -u testuser --password testpass
  signet-cli login --profile production`,
	RunE: runLogin,
}

func runLogin(_ *cobra.Command, _ []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	if err := client.Login(context.Background()); err != nil {
		formatter := getFormatter()
		_ = formatter.FormatError(os.Stderr, err)
		return err
	}

	if !quiet {
		fmt.Println("Login OK")
	}
	return nil
}
