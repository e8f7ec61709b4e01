// Package http provides the REST API for the signet gateway.
//
// Routes:
//
//	POST /token/login              login (password or passthrough mode)
//	POST /presigned/get            presigned download URL
//	POST /presigned/put            presigned upload URL
//	POST /presigned/post           presigned POST upload policy
//	POST /presigned/delete         presigned delete URL
//	GET  /bucket/list              full bucket listing
//	POST /wasabi/temp-credentials  Wasabi temporary credentials
//	POST /wasabi/sts-session       STS get-session-token exchange
//	GET  /healthz                  liveness probe
//
// Presign and listing routes resolve storage credentials per request: from
// the x-aws-* headers when present, falling back to configured defaults.
// In password mode they additionally require a bearer token.
package http
