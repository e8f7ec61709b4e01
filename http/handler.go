package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"

	"github.com/sagarc03/signet"
)

// PresignService produces presigned URLs and upload policies.
type PresignService interface {
	PresignGet(ctx context.Context, creds signet.StorageCredentials, req signet.PresignRequest) (signet.PresignedURL, error)
	PresignPut(ctx context.Context, creds signet.StorageCredentials, req signet.PresignRequest) (signet.PresignedURL, error)
	PresignDelete(ctx context.Context, creds signet.StorageCredentials, req signet.PresignRequest) (signet.PresignedURL, error)
	PresignPost(ctx context.Context, creds signet.StorageCredentials, req signet.PresignRequest) (signet.PostPolicy, error)
}

// ListService assembles full bucket listings.
type ListService interface {
	List(ctx context.Context, creds signet.StorageCredentials, bucket, prefix string) (signet.BucketListing, error)
}

// SessionService exchanges long-lived keys for temporary credentials.
type SessionService interface {
	GetSessionToken(ctx context.Context, req signet.SessionTokenRequest) (signet.TempCredentials, error)
}

// WasabiService exchanges an account login for temporary credentials.
type WasabiService interface {
	GetTempCredentials(ctx context.Context, req signet.TempCredentialRequest) (signet.TempCredentials, error)
}

type CORSConfig struct {
	Enabled          bool     `mapstructure:"enabled"`
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

// HandlerConfig wires the route surface. Exactly one auth mode is active
// per deployment; the mode decides whether presign/list routes demand a
// bearer token (password) or rely on credential headers alone (passthrough).
type HandlerConfig struct {
	Mode        signet.AuthMode
	Credentials CredentialConfig
	CORS        CORSConfig
}

// Handler provides HTTP handlers for the gateway routes.
type Handler struct {
	config   HandlerConfig
	auth     signet.Authenticator
	verifier *signet.TokenVerifier
	presign  PresignService
	lister   ListService
	sessions SessionService
	wasabi   WasabiService
	validate *validator.Validate
}

// NewHandler creates a Handler. verifier may be nil in passthrough mode;
// in password mode it must be set.
func NewHandler(
	config *HandlerConfig,
	auth signet.Authenticator,
	verifier *signet.TokenVerifier,
	presign PresignService,
	lister ListService,
	sessions SessionService,
	wasabi WasabiService,
) (*Handler, error) {
	if !config.Mode.IsValid() {
		return nil, fmt.Errorf("new handler: invalid auth mode: %s", config.Mode)
	}
	if config.Mode == signet.ModePassword && verifier == nil {
		return nil, errors.New("new handler: password mode requires a token verifier")
	}

	validate := validator.New()
	if err := validate.RegisterValidation("bucket", func(fl validator.FieldLevel) bool {
		return signet.IsValidBucketName(fl.Field().String())
	}); err != nil {
		return nil, fmt.Errorf("new handler: register bucket validation: %w", err)
	}

	return &Handler{
		config:   *config,
		auth:     auth,
		verifier: verifier,
		presign:  presign,
		lister:   lister,
		sessions: sessions,
		wasabi:   wasabi,
		validate: validate,
	}, nil
}

// Router returns an http.Handler with all gateway routes configured.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)

	if h.config.CORS.Enabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   h.config.CORS.AllowedOrigins,
			AllowedMethods:   h.config.CORS.AllowedMethods,
			AllowedHeaders:   h.config.CORS.AllowedHeaders,
			ExposedHeaders:   h.config.CORS.ExposedHeaders,
			AllowCredentials: h.config.CORS.AllowCredentials,
			MaxAge:           h.config.CORS.MaxAge,
		}))
	}

	r.Get("/healthz", h.handleHealth)
	r.Post("/token/login", h.handleLogin)
	r.Post("/wasabi/temp-credentials", h.handleWasabiTempCreds)
	r.Post("/wasabi/sts-session", h.handleSTSSession)

	r.Group(func(r chi.Router) {
		if h.config.Mode == signet.ModePassword {
			r.Use(BearerMiddleware(h.verifier))
		}
		r.Use(CredentialMiddleware(h.config.Credentials))

		r.Post("/presigned/get", h.handlePresign(h.presignGet))
		r.Post("/presigned/put", h.handlePresign(h.presignPut))
		r.Post("/presigned/post", h.handlePresign(h.presignPost))
		r.Post("/presigned/delete", h.handlePresign(h.presignDelete))
		r.Get("/bucket/list", h.handleList)
	})

	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	_ = WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req signet.LoginRequest

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "application/x-www-form-urlencoded") ||
		strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseForm(); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid_body", "Malformed form body")
			return
		}
		req.Username = r.PostFormValue("username")
		req.Password = r.PostFormValue("password")
	} else {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid_body", "Malformed JSON body")
			return
		}
	}

	resp, err := h.auth.Login(req)
	if err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, resp)
}

// presignFunc adapts one presign operation for the shared handler.
type presignFunc func(ctx context.Context, creds signet.StorageCredentials, req signet.PresignRequest) (any, error)

func (h *Handler) presignGet(ctx context.Context, creds signet.StorageCredentials, req signet.PresignRequest) (any, error) {
	return h.presign.PresignGet(ctx, creds, req)
}

func (h *Handler) presignPut(ctx context.Context, creds signet.StorageCredentials, req signet.PresignRequest) (any, error) {
	return h.presign.PresignPut(ctx, creds, req)
}

func (h *Handler) presignPost(ctx context.Context, creds signet.StorageCredentials, req signet.PresignRequest) (any, error) {
	return h.presign.PresignPost(ctx, creds, req)
}

func (h *Handler) presignDelete(ctx context.Context, creds signet.StorageCredentials, req signet.PresignRequest) (any, error) {
	return h.presign.PresignDelete(ctx, creds, req)
}

func (h *Handler) handlePresign(op presignFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		creds, ok := CredentialsFromContext(r.Context())
		if !ok {
			HandleError(w, &MissingHeaderError{Header: HeaderAccessKey})
			return
		}

		var req signet.PresignRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid_body", "Malformed JSON body")
			return
		}

		if err := h.validate.Struct(&req); err != nil {
			HandleError(w, err)
			return
		}

		resp, err := op(r.Context(), creds, req)
		if err != nil {
			HandleError(w, err)
			return
		}

		_ = WriteJSON(w, http.StatusOK, resp)
	}
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	creds, ok := CredentialsFromContext(r.Context())
	if !ok {
		HandleError(w, &MissingHeaderError{Header: HeaderAccessKey})
		return
	}

	bucket := r.URL.Query().Get("bucket")
	prefix := r.URL.Query().Get("prefix")

	if bucket != "" && !signet.IsValidBucketName(bucket) {
		WriteError(w, http.StatusUnprocessableEntity, "validation_error", "Invalid bucket name")
		return
	}

	result, err := h.lister.List(r.Context(), creds, bucket, prefix)
	if err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) handleWasabiTempCreds(w http.ResponseWriter, r *http.Request) {
	var req signet.TempCredentialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_body", "Malformed JSON body")
		return
	}

	if err := h.validate.Struct(&req); err != nil {
		HandleError(w, err)
		return
	}

	creds, err := h.wasabi.GetTempCredentials(r.Context(), req)
	if err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, creds)
}

func (h *Handler) handleSTSSession(w http.ResponseWriter, r *http.Request) {
	var req signet.SessionTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_body", "Malformed JSON body")
		return
	}

	if err := h.validate.Struct(&req); err != nil {
		HandleError(w, err)
		return
	}

	creds, err := h.sessions.GetSessionToken(r.Context(), req)
	if err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, creds)
}
