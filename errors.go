package signet

import "errors"

var (
	// ErrInvalidCredentials is returned when a username/password login fails
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken is returned when a bearer token fails verification
	ErrInvalidToken = errors.New("invalid token")
	// ErrBucketNotSpecified is returned when no bucket is given and no default is configured
	ErrBucketNotSpecified = errors.New("bucket not specified")
	// ErrPresignFailed is returned when the storage SDK fails to produce a presigned URL or policy
	ErrPresignFailed = errors.New("presign failed")
	// ErrListFailed is returned when a bucket listing fails upstream
	ErrListFailed = errors.New("listing failed")
	// ErrBrokerFailed is returned when a temporary-credential exchange fails upstream
	ErrBrokerFailed = errors.New("credential broker failed")
	// ErrMisconfigured is returned when a required secret or account is unset
	ErrMisconfigured = errors.New("server misconfigured")
	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")
)
