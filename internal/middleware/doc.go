// Package middleware provides net/http middleware for the link
// resolution API: request IDs, panic recovery, access logging, rate
// limiting and tracing.
//
// Middleware compose with Chain, outermost first:
//
//	handler := middleware.Chain(engine,
//	    middleware.Recovery(logger),
//	    middleware.RequestID(),
//	    middleware.Tracing(tracer),
//	    middleware.Logging(logger),
//	)
package middleware
