package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/sagarc03/signet"
)

// Credential headers accepted on presign and listing routes. Header lookup
// is case-insensitive; these are the canonical spellings.
const (
	HeaderAccessKey    = "x-aws-access-key-id"
	HeaderSecretKey    = "x-aws-secret-access-key"
	HeaderSessionToken = "x-aws-session-token"
	HeaderRegion       = "x-aws-region"
	HeaderEndpoint     = "x-aws-endpoint-url"
)

// RequestIDHeader carries the per-request correlation ID.
const RequestIDHeader = "X-Request-Id"

type contextKey string

const (
	credentialsKey contextKey = "storage_credentials"
	subjectKey     contextKey = "subject"
	requestIDKey   contextKey = "request_id"
)

// CredentialsFromContext returns the storage credentials resolved for this
// request by CredentialMiddleware.
func CredentialsFromContext(ctx context.Context) (signet.StorageCredentials, bool) {
	creds, ok := ctx.Value(credentialsKey).(signet.StorageCredentials)
	return creds, ok
}

// SubjectFromContext returns the verified token subject, if any.
func SubjectFromContext(ctx context.Context) (string, bool) {
	sub, ok := ctx.Value(subjectKey).(string)
	return sub, ok
}

// RequestIDMiddleware assigns each request a UUID, echoes it in the
// response, and makes it available to handlers.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

// BearerMiddleware enforces bearer-token authentication using the given
// verifier. The verified subject is stored in the request context.
func BearerMiddleware(verifier *signet.TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				HandleError(w, fmt.Errorf("authorize: %w", ErrNotAuthenticated))
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				HandleError(w, fmt.Errorf("authorize: %w", ErrNotAuthenticated))
				return
			}

			subject, err := verifier.Verify(parts[1])
			if err != nil {
				HandleError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), subjectKey, subject)))
		})
	}
}

// CredentialConfig controls per-request credential resolution.
type CredentialConfig struct {
	// RequireSessionToken makes x-aws-session-token mandatory on the
	// header path (strict deployments handing out only STS credentials).
	RequireSessionToken bool

	// Defaults are used when the caller sends no credential headers at
	// all. Header values always win over defaults field by field.
	Defaults signet.StorageCredentials
}

// ExtractCredentials builds a credential bundle from request headers,
// falling back to configured defaults. It fails closed: a partially
// supplied header set is rejected naming the first missing header, before
// any storage call is made.
func ExtractCredentials(h http.Header, cfg CredentialConfig) (signet.StorageCredentials, error) {
	accessKey := h.Get(HeaderAccessKey)
	secretKey := h.Get(HeaderSecretKey)
	sessionToken := h.Get(HeaderSessionToken)

	if accessKey == "" && secretKey == "" && sessionToken == "" {
		if cfg.Defaults.AccessKeyID == "" || cfg.Defaults.SecretAccessKey == "" {
			return signet.StorageCredentials{}, &MissingHeaderError{Header: HeaderAccessKey}
		}
		creds := cfg.Defaults
		if region := h.Get(HeaderRegion); region != "" {
			creds.Region = region
		}
		if endpoint := h.Get(HeaderEndpoint); endpoint != "" {
			creds.EndpointURL = endpoint
		}
		return creds, nil
	}

	if accessKey == "" {
		return signet.StorageCredentials{}, &MissingHeaderError{Header: HeaderAccessKey}
	}
	if secretKey == "" {
		return signet.StorageCredentials{}, &MissingHeaderError{Header: HeaderSecretKey}
	}
	if cfg.RequireSessionToken && sessionToken == "" {
		return signet.StorageCredentials{}, &MissingHeaderError{Header: HeaderSessionToken}
	}

	slog.Debug("credential headers observed",
		"access_key", signet.Redact(accessKey),
		"session_token", signet.Redact(sessionToken),
	)

	creds := signet.StorageCredentials{
		AccessKeyID:     accessKey,
		SecretAccessKey: secretKey,
		SessionToken:    sessionToken,
		Region:          h.Get(HeaderRegion),
		EndpointURL:     h.Get(HeaderEndpoint),
	}
	if creds.Region == "" {
		creds.Region = cfg.Defaults.Region
	}
	if creds.EndpointURL == "" {
		creds.EndpointURL = cfg.Defaults.EndpointURL
	}
	return creds, nil
}

// CredentialMiddleware resolves storage credentials before the handler
// runs, rejecting early with a 400 naming the missing header.
func CredentialMiddleware(cfg CredentialConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			creds, err := ExtractCredentials(r.Header, cfg)
			if err != nil {
				HandleError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), credentialsKey, creds)))
		})
	}
}
