// Package config loads and validates signet configuration.
//
// Configuration is merged from, in increasing precedence: built-in
// defaults, YAML config files, SIGNET_* environment variables, and CLI
// flags. The result is validated with go-playground/validator before use
// and is immutable after startup; components receive the values they need
// through their constructors rather than reading global state.
package config
