package clientcli

import "errors"

// Errors for profile operations.
var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrNoProfiles      = errors.New("no profiles configured")
	ErrProfileExists   = errors.New("profile already exists")
)

// Errors for configuration and request validation.
var (
	ErrLoginRequired  = errors.New("login credentials are required")
	ErrBucketRequired = errors.New("bucket is required")
	ErrKeyRequired    = errors.New("key is required")
)
