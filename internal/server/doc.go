// Package server exposes the route table over HTTP.
//
// Endpoints:
//
//	GET /v1/resolve?url=&domain=          classify and resolve a URL
//	GET /v1/context-id?url=               context and course identifiers
//	GET /v1/screens/match?primary=&secondary=
//	GET /v1/routes                        the ordered route table
//	GET /healthz, /readyz, /metrics
//
// The gin engine is wrapped in net/http middleware for panic recovery,
// request IDs, tracing, access logging and rate limiting.
package server
