// Package observability provides logging, metrics, and tracing for
// linkrouter.
//
// Logging is structured via zap behind the Logger interface, metrics
// are exported through a dedicated Prometheus registry, and tracing
// uses the OpenTelemetry SDK with an optional OTLP gRPC exporter.
//
// # Logging
//
//	logger, err := observability.NewLogger(observability.LogConfig{
//	    Level:  "info",
//	    Format: "json",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer logger.Sync()
//
//	logger.Info("route table loaded",
//	    observability.Int("routes", 42),
//	)
//
// # Metrics
//
//	metrics := observability.NewMetrics("linkrouter")
//	metrics.SetRoutesLoaded(42)
//	handler := metrics.Handler()
//
// # Tracing
//
//	tracer, err := observability.NewTracer(observability.TracerConfig{
//	    ServiceName: "linkrouter",
//	    Enabled:     true,
//	})
//	defer tracer.Shutdown(ctx)
package observability
