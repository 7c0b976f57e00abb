package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/vyrodovalexey/linkrouter/internal/config"
	"github.com/vyrodovalexey/linkrouter/internal/observability"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
})

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestChain_Order(t *testing.T) {
	t.Parallel()

	var order []string
	mark := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := Chain(okHandler, mark("a"), mark("b"), mark("c"))
	serve(h, httptest.NewRequest(http.MethodGet, "/", http.NoBody))
	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestRequestID(t *testing.T) {
	t.Parallel()

	var seen string
	h := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = observability.RequestIDFromContext(r.Context())
	}))

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/", http.NoBody))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec = serve(h, req)
	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}

func TestRecovery(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.ErrorLevel)
	logger := observability.NewLoggerFromZap(zap.New(core))
	before := testutil.ToFloat64(GetMiddlewareMetrics().panicsRecovered)

	h := Recovery(logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/v1/resolve", http.NoBody))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, ErrInternalServerError, rec.Body.String())
	assert.Equal(t, 1, logs.FilterMessage("panic recovered").Len())
	assert.GreaterOrEqual(t, testutil.ToFloat64(GetMiddlewareMetrics().panicsRecovered), before+1)
}

func TestLogging(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.InfoLevel)
	logger := observability.NewLoggerFromZap(zap.New(core))

	teapot := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	})
	h := RequestIDWithGenerator(func() string { return "req-1" })(Logging(logger)(teapot))

	serve(h, httptest.NewRequest(http.MethodGet, "/v1/routes?x=1", http.NoBody))

	entries := logs.FilterMessage("http request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "GET", fields["method"])
	assert.Equal(t, "/v1/routes", fields["path"])
	assert.Equal(t, "x=1", fields["query"])
	assert.EqualValues(t, http.StatusTeapot, fields["status"])
	assert.EqualValues(t, len("short and stout"), fields["size"])
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "192.0.2.1", fields["client_ip"])
}

func TestRateLimit_Shared(t *testing.T) {
	t.Parallel()

	rejected := 0
	rl := NewRateLimiter(1, 2, false, WithRejectHook(func() { rejected++ }))
	defer rl.Stop()
	h := RateLimit(rl)(okHandler)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		codes = append(codes, serve(h, httptest.NewRequest(http.MethodGet, "/", http.NoBody)).Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	assert.Equal(t, 1, rejected)
}

func TestRateLimit_RejectedResponse(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(0.001, 1, false)
	h := RateLimit(rl)(okHandler)

	serve(h, httptest.NewRequest(http.MethodGet, "/", http.NoBody))
	rec := serve(h, httptest.NewRequest(http.MethodGet, "/", http.NoBody))

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get(HeaderRetryAfter))
	assert.Equal(t, ContentTypeJSON, rec.Header().Get(HeaderContentType))
	assert.JSONEq(t, ErrRateLimitExceeded, rec.Body.String())
}

func TestRateLimit_PerClient(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(0.001, 1, true)
	defer rl.Stop()
	h := RateLimit(rl)(okHandler)

	request := func(addr string) int {
		req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
		req.RemoteAddr = addr
		return serve(h, req).Code
	}

	assert.Equal(t, http.StatusOK, request("10.0.0.1:1234"))
	assert.Equal(t, http.StatusTooManyRequests, request("10.0.0.1:5678"))
	assert.Equal(t, http.StatusOK, request("10.0.0.2:1234"))
	assert.Equal(t, 2, rl.Clients())

	rl.CleanupOldClients(0)
	assert.Zero(t, rl.Clients())
}

func TestRateLimitFromConfig(t *testing.T) {
	t.Parallel()

	mw, rl := RateLimitFromConfig(nil, observability.NopLogger())
	assert.Nil(t, rl)
	assert.Equal(t, http.StatusOK, serve(mw(okHandler), httptest.NewRequest(http.MethodGet, "/", http.NoBody)).Code)

	mw, rl = RateLimitFromConfig(&config.RateLimitConfig{RPS: 10, Burst: 1, PerClient: true},
		observability.NopLogger(), WithClientTTL(time.Minute))
	require.NotNil(t, rl)
	defer rl.Stop()

	h := mw(okHandler)
	assert.Equal(t, http.StatusOK, serve(h, httptest.NewRequest(http.MethodGet, "/", http.NoBody)).Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(h, httptest.NewRequest(http.MethodGet, "/", http.NoBody)).Code)
}

func TestTracing(t *testing.T) {
	t.Parallel()

	recorder := tracetest.NewSpanRecorder()
	provider := trace.NewTracerProvider(trace.WithSpanProcessor(recorder))
	tracer := observability.NewTracerFromProvider(provider, "test")

	h := RequestIDWithGenerator(func() string { return "req-9" })(Tracing(tracer)(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}),
	))

	serve(h, httptest.NewRequest(http.MethodGet, "/v1/resolve", http.NoBody))

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "GET /v1/resolve", spans[0].Name())
	assert.Equal(t, "Error", spans[0].Status().Code.String())

	attrs := make(map[string]string)
	for _, kv := range spans[0].Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, "req-9", attrs["request.id"])
	assert.Equal(t, "502", attrs["http.response.status_code"])
}
