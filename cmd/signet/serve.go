package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sagarc03/signet"
	"github.com/sagarc03/signet/config"
	signethttp "github.com/sagarc03/signet/http"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Start the signet gateway HTTP server.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().Int("port", 8080, "HTTP server port")
	serveCmd.Flags().String("auth-mode", "", "authentication mode (password, passthrough)")
	serveCmd.Flags().String("bucket", "", "default bucket for listing requests")
	serveCmd.Flags().String("region", "", "default storage region")
	serveCmd.Flags().String("endpoint", "", "default storage endpoint URL")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	var configFiles []string
	if cfgFile != "" {
		configFiles = append(configFiles, cfgFile)
	}

	cfg, err := config.Load(configFiles, cmd.Flags())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	mode, err := cfg.AuthMode()
	if err != nil {
		return fmt.Errorf("parse auth mode: %w", err)
	}

	var (
		issuer   *signet.TokenIssuer
		verifier *signet.TokenVerifier
	)
	if mode == signet.ModePassword {
		issuer = signet.NewTokenIssuer(cfg.Account(), cfg.TokenConfig())
		verifier = signet.NewTokenVerifier(cfg.Account(), cfg.TokenConfig())
	}

	auth, err := signet.NewAuthenticator(mode, issuer)
	if err != nil {
		return fmt.Errorf("create authenticator: %w", err)
	}

	handlerConfig := signethttp.HandlerConfig{
		Mode: mode,
		Credentials: signethttp.CredentialConfig{
			RequireSessionToken: cfg.Auth.RequireSessionToken,
			Defaults:            cfg.DefaultCredentials(),
		},
		CORS: cfg.CORS,
	}

	handler, err := signethttp.NewHandler(
		&handlerConfig,
		auth,
		verifier,
		signet.NewPresigner(),
		signet.NewLister(cfg.S3.Bucket),
		signet.NewSessionBroker(cfg.Wasabi.STSEndpoint),
		signet.NewWasabiBroker(cfg.Wasabi.AuthEndpoint, nil),
	)
	if err != nil {
		return fmt.Errorf("create handler: %w", err)
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)

	server := &http.Server{
		Addr:         addr,
		Handler:      handler.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "err", err)
		}
	}()

	slog.Info("starting server", "addr", addr, "auth_mode", mode)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}
