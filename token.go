package signet

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Account is the single configured API account. PasswordHash is a bcrypt
// hash; plaintext passwords never appear in configuration.
type Account struct {
	Username     string
	PasswordHash string
}

// TokenConfig configures token issuance and verification.
type TokenConfig struct {
	Secret   string
	TokenTTL time.Duration
}

const (
	minTokenTTL = 900 * time.Second
	maxTokenTTL = 43200 * time.Second
)

// Token is a signed bearer token plus its type, as returned by /token/login.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// TokenIssuer validates a username/password pair against the configured
// account and mints short-lived HS256 bearer tokens bound to the username.
type TokenIssuer struct {
	account Account
	cfg     TokenConfig
}

func NewTokenIssuer(account Account, cfg TokenConfig) *TokenIssuer {
	if cfg.TokenTTL < minTokenTTL {
		cfg.TokenTTL = time.Hour
	}
	if cfg.TokenTTL > maxTokenTTL {
		cfg.TokenTTL = maxTokenTTL
	}
	return &TokenIssuer{account: account, cfg: cfg}
}

// Issue authenticates username/password and returns a signed token whose
// expiry is now + the configured TTL.
func (i *TokenIssuer) Issue(username, password string) (Token, error) {
	if i.cfg.Secret == "" || i.account.PasswordHash == "" {
		return Token{}, fmt.Errorf("issue token: %w: signing secret or account unset", ErrMisconfigured)
	}

	if username != i.account.Username {
		slog.Info("authentication failure", "user", username)
		return Token{}, fmt.Errorf("issue token: %w", ErrInvalidCredentials)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(i.account.PasswordHash), []byte(password)); err != nil {
		slog.Info("authentication failure", "user", username)
		return Token{}, fmt.Errorf("issue token: %w", ErrInvalidCredentials)
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(i.cfg.TokenTTL)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(i.cfg.Secret))
	if err != nil {
		return Token{}, fmt.Errorf("issue token: sign: %w", err)
	}

	slog.Info("access token issued", "user", username)
	return Token{AccessToken: signed, TokenType: "bearer"}, nil
}

// TokenVerifier decodes and validates bearer tokens issued by TokenIssuer.
// Verification is pure: it reads only the fixed secret and performs no I/O.
type TokenVerifier struct {
	account Account
	secret  string
}

func NewTokenVerifier(account Account, cfg TokenConfig) *TokenVerifier {
	return &TokenVerifier{account: account, secret: cfg.Secret}
}

// Verify checks the token signature, expiry, and subject, and returns the
// subject. The subject must match the configured account.
func (v *TokenVerifier) Verify(tokenString string) (string, error) {
	if v.secret == "" {
		return "", fmt.Errorf("verify token: %w: signing secret unset", ErrMisconfigured)
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %s", t.Method.Alg())
		}
		return []byte(v.secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil {
		slog.Warn("token verification failed", "err", err)
		return "", fmt.Errorf("verify token: %w", ErrInvalidToken)
	}
	if !token.Valid {
		return "", fmt.Errorf("verify token: %w", ErrInvalidToken)
	}
	if claims.Subject == "" {
		slog.Warn("token has no subject claim")
		return "", fmt.Errorf("verify token: %w: missing subject", ErrInvalidToken)
	}
	if claims.Subject != v.account.Username {
		slog.Warn("token subject does not match configured account", "subject", claims.Subject)
		return "", fmt.Errorf("verify token: %w: unknown subject", ErrInvalidToken)
	}

	return claims.Subject, nil
}

// Authenticator is the capability behind POST /token/login: turn a validated
// login payload into a response body. Exactly one implementation is active
// per deployment, selected by AuthMode at startup.
type Authenticator interface {
	// Login handles a login payload and returns the response body to send.
	Login(req LoginRequest) (any, error)
}

// LoginRequest is the union of the two login payload shapes. Password mode
// reads Username/Password; passthrough mode reads the credential fields.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`

	AccessKeyID     string `json:"aws_access_key_id"`
	SecretAccessKey string `json:"aws_secret_access_key"`
	Region          string `json:"region_name"`
	EndpointURL     string `json:"endpoint_url"`
}

// PasswordAuthenticator implements the password-grant mode: check the
// configured account, mint a bearer token.
type PasswordAuthenticator struct {
	Issuer *TokenIssuer
}

func (a *PasswordAuthenticator) Login(req LoginRequest) (any, error) {
	return a.Issuer.Issue(req.Username, req.Password)
}

// PassthroughAuthenticator echoes the supplied storage credentials without
// issuing a token. Used when the gateway trusts callers to already hold
// valid storage credentials.
type PassthroughAuthenticator struct{}

func (a *PassthroughAuthenticator) Login(req LoginRequest) (any, error) {
	if req.AccessKeyID == "" || req.SecretAccessKey == "" {
		return nil, fmt.Errorf("login: %w: credential fields cannot be empty", ErrInvalidInput)
	}
	slog.Info("passthrough login", "access_key", Redact(req.AccessKeyID))
	return StorageCredentials{
		AccessKeyID:     req.AccessKeyID,
		SecretAccessKey: req.SecretAccessKey,
		Region:          req.Region,
		EndpointURL:     req.EndpointURL,
	}, nil
}

// NewAuthenticator selects the strategy for the configured mode.
func NewAuthenticator(mode AuthMode, issuer *TokenIssuer) (Authenticator, error) {
	switch mode {
	case ModePassword:
		if issuer == nil {
			return nil, errors.New("new authenticator: password mode requires a token issuer")
		}
		return &PasswordAuthenticator{Issuer: issuer}, nil
	case ModePassthrough:
		return &PassthroughAuthenticator{}, nil
	default:
		return nil, fmt.Errorf("new authenticator: invalid auth mode: %s", mode)
	}
}
