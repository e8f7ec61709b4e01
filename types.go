package signet

import (
	"fmt"
	"regexp"
	"time"
)

// StorageCredentials is a fully-resolved set of credentials for one request
// against an S3-compatible store. It is built per request from headers,
// configuration, or an STS exchange, and is never persisted.
type StorageCredentials struct {
	AccessKeyID     string `json:"aws_access_key_id"`
	SecretAccessKey string `json:"aws_secret_access_key"`
	SessionToken    string `json:"aws_session_token,omitempty"`
	Region          string `json:"region_name"`
	EndpointURL     string `json:"endpoint_url"`
}

// PresignRequest describes one presign operation. Expiration is in seconds;
// zero means the default of 3600.
type PresignRequest struct {
	Bucket     string `json:"bucket" validate:"required,min=3,max=63,bucket"`
	Key        string `json:"key" validate:"required,min=1,max=1024"`
	Expiration int    `json:"expiration" validate:"omitempty,min=60,max=86400"`
}

// DefaultPresignExpiration is applied when a PresignRequest omits expiration.
const DefaultPresignExpiration = 3600

// TTL returns the requested expiration as a duration, defaulted when unset.
func (r PresignRequest) TTL() time.Duration {
	if r.Expiration == 0 {
		return DefaultPresignExpiration * time.Second
	}
	return time.Duration(r.Expiration) * time.Second
}

// ObjectInfo is one entry of a bucket listing.
type ObjectInfo struct {
	Key          string `json:"key"`
	Size         int64  `json:"size"`
	LastModified string `json:"last_modified"`
}

// TempCredentials is the result of a temporary-credential exchange.
type TempCredentials struct {
	AccessKeyID     string    `json:"access_key_id"`
	SecretAccessKey string    `json:"secret_access_key"`
	SessionToken    string    `json:"session_token"`
	Expiration      time.Time `json:"expiration"`
}

// AuthMode selects how the gateway authenticates callers.
type AuthMode string

const (
	// ModePassword issues and verifies bearer tokens for a configured account.
	ModePassword AuthMode = "password"
	// ModePassthrough relays caller-supplied storage credentials without tokens.
	ModePassthrough AuthMode = "passthrough"
)

func (m AuthMode) IsValid() bool {
	switch m {
	case ModePassword, ModePassthrough:
		return true
	default:
		return false
	}
}

func ParseAuthMode(s string) (AuthMode, error) {
	mode := AuthMode(s)
	if !mode.IsValid() {
		return "", fmt.Errorf("invalid auth mode: %s (valid modes: password, passthrough)", s)
	}
	return mode, nil
}

var validBucketRegex = regexp.MustCompile(`^[a-z0-9.-]+$`)

// IsValidBucketName checks a bucket name against S3 naming rules
// (lowercase letters, digits, dots, hyphens; 3-63 chars).
func IsValidBucketName(name string) bool {
	return len(name) >= 3 && len(name) <= 63 && validBucketRegex.MatchString(name)
}
