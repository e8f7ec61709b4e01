package signet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// Temporary-credential durations in seconds. STS and Wasabi both cap
// sessions at 36 hours.
const (
	minSessionDuration     = 900
	maxSessionDuration     = 129600
	defaultSessionDuration = 3600
)

// SessionTokenAPI is the subset of the STS API the session broker uses.
type SessionTokenAPI interface {
	GetSessionToken(ctx context.Context, params *sts.GetSessionTokenInput, optFns ...func(*sts.Options)) (*sts.GetSessionTokenOutput, error)
}

var _ SessionTokenAPI = (*sts.Client)(nil)

// SessionTokenRequest asks for temporary credentials via a direct STS
// get-session-token call using caller-supplied long-lived keys.
type SessionTokenRequest struct {
	AccessKey       string `json:"access_key" validate:"required"`
	SecretKey       string `json:"secret_key" validate:"required"`
	DurationSeconds int    `json:"duration_seconds" validate:"omitempty,min=900,max=129600"`
	Region          string `json:"region"`
	EndpointURL     string `json:"endpoint_url"`
}

// SessionBroker exchanges long-lived keys for temporary credentials against
// an STS-compatible endpoint. Failures are terminal; no retries.
type SessionBroker struct {
	newClient func(SessionTokenRequest) SessionTokenAPI
}

// NewSessionBroker returns a SessionBroker backed by real STS clients built
// per request from the supplied keys. defaultEndpoint applies when a request
// names no endpoint; empty means the SDK's standard STS endpoint.
func NewSessionBroker(defaultEndpoint string) *SessionBroker {
	return &SessionBroker{
		newClient: func(req SessionTokenRequest) SessionTokenAPI {
			opts := sts.Options{
				Region:      req.Region,
				Credentials: credentials.NewStaticCredentialsProvider(req.AccessKey, req.SecretKey, ""),
			}
			if opts.Region == "" {
				opts.Region = DefaultRegion
			}
			endpoint := req.EndpointURL
			if endpoint == "" {
				endpoint = defaultEndpoint
			}
			if endpoint != "" {
				opts.BaseEndpoint = aws.String(endpoint)
			}
			return sts.New(opts)
		},
	}
}

// NewSessionBrokerWithClient returns a SessionBroker using the supplied
// factory. Intended for tests.
func NewSessionBrokerWithClient(newClient func(SessionTokenRequest) SessionTokenAPI) *SessionBroker {
	return &SessionBroker{newClient: newClient}
}

// GetSessionToken performs the exchange. The requested duration is clamped
// to [900, 129600] seconds.
func (b *SessionBroker) GetSessionToken(ctx context.Context, req SessionTokenRequest) (TempCredentials, error) {
	duration := int32(ClampDuration(req.DurationSeconds, defaultSessionDuration, minSessionDuration, maxSessionDuration))

	client := b.newClient(req)
	out, err := client.GetSessionToken(ctx, &sts.GetSessionTokenInput{
		DurationSeconds: &duration,
	})
	if err != nil {
		slog.Error("sts get-session-token failed", "access_key", Redact(req.AccessKey), "err", err)
		return TempCredentials{}, fmt.Errorf("get session token: %w: %v", ErrBrokerFailed, err)
	}
	if out.Credentials == nil {
		return TempCredentials{}, fmt.Errorf("get session token: %w: empty credentials in response", ErrBrokerFailed)
	}

	creds := TempCredentials{}
	if out.Credentials.AccessKeyId != nil {
		creds.AccessKeyID = *out.Credentials.AccessKeyId
	}
	if out.Credentials.SecretAccessKey != nil {
		creds.SecretAccessKey = *out.Credentials.SecretAccessKey
	}
	if out.Credentials.SessionToken != nil {
		creds.SessionToken = *out.Credentials.SessionToken
	}
	if out.Credentials.Expiration != nil {
		creds.Expiration = *out.Credentials.Expiration
	}
	return creds, nil
}

// TempCredentialRequest asks Wasabi for temporary credentials using an
// account login rather than access keys.
type TempCredentialRequest struct {
	Account  string `json:"account" validate:"required"`
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	MFAToken string `json:"mfa_token,omitempty"`
	Expires  int    `json:"expires,omitempty" validate:"omitempty,min=900,max=129600"`
}

// WasabiBroker calls Wasabi's CreateTemporaryAccessCredentials action over
// plain HTTPS. Wasabi exposes this on its authentication endpoint, outside
// the S3/STS wire protocols.
type WasabiBroker struct {
	endpoint string
	client   *http.Client
}

// NewWasabiBroker returns a broker for the given Wasabi auth endpoint.
// Pass nil to use a default HTTP client with a 15s timeout.
func NewWasabiBroker(endpoint string, client *http.Client) *WasabiBroker {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &WasabiBroker{endpoint: endpoint, client: client}
}

type wasabiCredsRequest struct {
	AcctName string `json:"AcctName"`
	UserName string `json:"UserName"`
	Password string `json:"Password"`
	MFAToken string `json:"MFAToken,omitempty"`
	Expires  int    `json:"Expires,omitempty"`
}

type wasabiCredsResponse struct {
	AccessKeyID     string `json:"AccessKeyId"`
	SecretAccessKey string `json:"SecretAccessKey"`
	SessionToken    string `json:"SessionToken"`
	Expiration      string `json:"Expiration"`
}

// GetTempCredentials exchanges an account login for temporary credentials.
// The requested expiry is clamped to [900, 129600] seconds.
func (b *WasabiBroker) GetTempCredentials(ctx context.Context, req TempCredentialRequest) (TempCredentials, error) {
	if b.endpoint == "" {
		return TempCredentials{}, fmt.Errorf("wasabi temp credentials: %w: auth endpoint unset", ErrMisconfigured)
	}

	payload := wasabiCredsRequest{
		AcctName: req.Account,
		UserName: req.Username,
		Password: req.Password,
		MFAToken: req.MFAToken,
		Expires:  ClampDuration(req.Expires, defaultSessionDuration, minSessionDuration, maxSessionDuration),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return TempCredentials{}, fmt.Errorf("wasabi temp credentials: encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, b.endpoint, bytes.NewReader(body))
	if err != nil {
		return TempCredentials{}, fmt.Errorf("wasabi temp credentials: %w: %v", ErrBrokerFailed, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	slog.Info("requesting wasabi temporary credentials", "account", req.Account, "user", req.Username)

	resp, err := b.client.Do(httpReq)
	if err != nil {
		slog.Error("wasabi credential request failed", "err", err)
		return TempCredentials{}, fmt.Errorf("wasabi temp credentials: %w: %v", ErrBrokerFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode/100 != 2 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		slog.Error("wasabi credential request rejected", "status", resp.StatusCode, "body", string(msg))
		return TempCredentials{}, fmt.Errorf("wasabi temp credentials: %w: upstream status %d", ErrBrokerFailed, resp.StatusCode)
	}

	var wr wasabiCredsResponse
	if err := json.NewDecoder(resp.Body).Decode(&wr); err != nil {
		return TempCredentials{}, fmt.Errorf("wasabi temp credentials: %w: decode response: %v", ErrBrokerFailed, err)
	}

	creds := TempCredentials{
		AccessKeyID:     wr.AccessKeyID,
		SecretAccessKey: wr.SecretAccessKey,
		SessionToken:    wr.SessionToken,
	}
	if wr.Expiration != "" {
		exp, parseErr := time.Parse(time.RFC3339, wr.Expiration)
		if parseErr != nil {
			return TempCredentials{}, fmt.Errorf("wasabi temp credentials: %w: bad expiration %q", ErrBrokerFailed, wr.Expiration)
		}
		creds.Expiration = exp
	}
	return creds, nil
}
