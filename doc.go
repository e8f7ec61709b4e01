// Package signet is a credential and presign broker for S3-compatible
// object stores.
//
// Signet sits between a frontend application and an object store (AWS S3,
// Wasabi, MinIO) and issues the short-lived artifacts browser clients need
// for direct transfers: presigned GET/PUT/DELETE URLs, presigned POST upload
// policies, and temporary storage credentials. Clients never hold long-lived
// storage secrets.
//
// # Key Components
//
//   - Presigner: produces time-bounded presigned URLs and upload policies
//   - Lister: paginates bucket listings into a single ordered result
//   - TokenIssuer / TokenVerifier: bearer-token authentication for the API
//   - SessionBroker / WasabiBroker: temporary credential exchange (STS)
//
// # Authentication Modes
//
// The gateway supports two configuration-selected authentication modes:
//
//   - ModePassword: callers log in with username/password and receive a
//     signed bearer token; protected routes verify the token
//   - ModePassthrough: callers supply storage credentials directly and the
//     gateway relays them without issuing tokens
//
// The service is stateless across requests. Storage credentials are built
// per request from headers, configuration, or an STS exchange, and are never
// persisted. See the http package for the REST surface and the config
// package for configuration loading.
package signet
