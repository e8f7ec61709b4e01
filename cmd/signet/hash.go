package main

import (
	"fmt"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"
)

var hashCost int

var hashCmd = &cobra.Command{
	Use:   "hash",
	Short: "Hash a password for the auth.password_hash config key",
	Long: `Hash a password with bcrypt for use as auth.password_hash.

The password is read from the terminal without echo.`,
	RunE: runHash,
}

func init() {
	hashCmd.Flags().IntVar(&hashCost, "cost", bcrypt.DefaultCost, "bcrypt cost (4-31)")
	rootCmd.AddCommand(hashCmd)
}

func runHash(cmd *cobra.Command, args []string) error {
	fmt.Fprint(cmd.OutOrStdout(), "Password: ")
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(cmd.OutOrStdout())
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword(password, hashCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), string(hash))
	return nil
}
