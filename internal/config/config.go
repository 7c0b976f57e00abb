package config

import "time"

// Route table identification.
const (
	APIVersionPrefix  = "linkrouter.io/"
	DefaultAPIVersion = "linkrouter.io/v1"
	KindRouteTable    = "RouteTable"
)

// Defaults applied by ApplyDefaults.
const (
	DefaultListenAddress   = ":8080"
	DefaultShutdownTimeout = 15 * time.Second
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "json"
	DefaultServiceName     = "linkrouter"
	DefaultSamplingRate    = 1.0
)

// RouterConfig is the root of a route table file.
type RouterConfig struct {
	APIVersion string     `yaml:"apiVersion" json:"apiVersion" validate:"required"`
	Kind       string     `yaml:"kind" json:"kind" validate:"required,eq=RouteTable"`
	Metadata   Metadata   `yaml:"metadata" json:"metadata"`
	Spec       RouterSpec `yaml:"spec" json:"spec"`
}

// Metadata names a route table.
type Metadata struct {
	Name   string            `yaml:"name" json:"name" validate:"required"`
	Labels map[string]string `yaml:"labels,omitempty" json:"labels,omitempty"`
}

// RouterSpec holds the routing table and the service settings.
type RouterSpec struct {
	// ScreenMatching is "legacy" (secondary screen only) or "strict".
	ScreenMatching     string               `yaml:"screenMatching,omitempty" json:"screenMatching,omitempty" validate:"omitempty,oneof=legacy strict"`
	FullscreenScreens  []string             `yaml:"fullscreenScreens,omitempty" json:"fullscreenScreens,omitempty" validate:"dive,required"`
	BottomSheetScreens []string             `yaml:"bottomSheetScreens,omitempty" json:"bottomSheetScreens,omitempty" validate:"dive,required"`
	Routes             []RouteConfig        `yaml:"routes" json:"routes" validate:"dive"`
	Server             *ServerConfig        `yaml:"server,omitempty" json:"server,omitempty"`
	Observability      *ObservabilityConfig `yaml:"observability,omitempty" json:"observability,omitempty"`
}

// RouteConfig is one entry of the routing table. Order is significant:
// the first matching entry wins.
type RouteConfig struct {
	Name          string               `yaml:"name" json:"name" validate:"required"`
	Path          string               `yaml:"path,omitempty" json:"path,omitempty" validate:"omitempty,urlpath"`
	QueryParams   []string             `yaml:"queryParams,omitempty" json:"queryParams,omitempty" validate:"dive,required"`
	Primary       string               `yaml:"primary,omitempty" json:"primary,omitempty"`
	Secondary     string               `yaml:"secondary,omitempty" json:"secondary,omitempty"`
	Context       string               `yaml:"context,omitempty" json:"context,omitempty" validate:"omitempty,oneof=unknown internal external do_not_route speed_grader file lti conference notification_preferences"` //nolint:lll // enum
	Type          string               `yaml:"type,omitempty" json:"type,omitempty" validate:"omitempty,oneof=master detail dialog fullscreen"`
	CanvasContext *CanvasContextConfig `yaml:"canvasContext,omitempty" json:"canvasContext,omitempty"`
	Arguments     map[string]string    `yaml:"arguments,omitempty" json:"arguments,omitempty"`
}

// CanvasContextConfig attaches a fixed course, group or user context.
type CanvasContextConfig struct {
	Type string `yaml:"type" json:"type" validate:"required,oneof=course group user"`
	ID   string `yaml:"id" json:"id" validate:"required"`
}

// ServerConfig configures the resolution service.
type ServerConfig struct {
	Listen          string           `yaml:"listen,omitempty" json:"listen,omitempty"`
	RateLimit       *RateLimitConfig `yaml:"rateLimit,omitempty" json:"rateLimit,omitempty"`
	ShutdownTimeout Duration         `yaml:"shutdownTimeout,omitempty" json:"shutdownTimeout,omitempty"`
}

// RateLimitConfig configures the token bucket in front of the API.
type RateLimitConfig struct {
	RPS   float64 `yaml:"rps" json:"rps" validate:"gt=0"`
	Burst int     `yaml:"burst" json:"burst" validate:"gt=0"`
	// PerClient keeps one bucket per client address instead of a shared one.
	PerClient bool `yaml:"perClient,omitempty" json:"perClient,omitempty"`
}

// ObservabilityConfig groups logging and tracing settings.
type ObservabilityConfig struct {
	Logging *LoggingConfig `yaml:"logging,omitempty" json:"logging,omitempty"`
	Tracing *TracingConfig `yaml:"tracing,omitempty" json:"tracing,omitempty"`
}

// LoggingConfig configures the logger.
type LoggingConfig struct {
	Level  string `yaml:"level,omitempty" json:"level,omitempty" validate:"omitempty,oneof=debug info warn error"`
	Format string `yaml:"format,omitempty" json:"format,omitempty" validate:"omitempty,oneof=json console"`
}

// TracingConfig configures OpenTelemetry tracing.
type TracingConfig struct {
	Enabled      bool    `yaml:"enabled" json:"enabled"`
	OTLPEndpoint string  `yaml:"otlpEndpoint,omitempty" json:"otlpEndpoint,omitempty"`
	SamplingRate float64 `yaml:"samplingRate,omitempty" json:"samplingRate,omitempty"`
	ServiceName  string  `yaml:"serviceName,omitempty" json:"serviceName,omitempty"`
}

// DefaultConfig returns an empty route table with default settings.
func DefaultConfig() *RouterConfig {
	cfg := &RouterConfig{
		APIVersion: DefaultAPIVersion,
		Kind:       KindRouteTable,
		Metadata:   Metadata{Name: "default"},
	}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills unset service settings.
func (c *RouterConfig) ApplyDefaults() {
	spec := &c.Spec

	if spec.ScreenMatching == "" {
		spec.ScreenMatching = "legacy"
	}

	if spec.Server == nil {
		spec.Server = &ServerConfig{}
	}
	if spec.Server.Listen == "" {
		spec.Server.Listen = DefaultListenAddress
	}
	if spec.Server.ShutdownTimeout == 0 {
		spec.Server.ShutdownTimeout = Duration(DefaultShutdownTimeout)
	}

	if spec.Observability == nil {
		spec.Observability = &ObservabilityConfig{}
	}
	if spec.Observability.Logging == nil {
		spec.Observability.Logging = &LoggingConfig{}
	}
	if spec.Observability.Logging.Level == "" {
		spec.Observability.Logging.Level = DefaultLogLevel
	}
	if spec.Observability.Logging.Format == "" {
		spec.Observability.Logging.Format = DefaultLogFormat
	}
	if spec.Observability.Tracing == nil {
		spec.Observability.Tracing = &TracingConfig{}
	}
	if spec.Observability.Tracing.SamplingRate == 0 {
		spec.Observability.Tracing.SamplingRate = DefaultSamplingRate
	}
	if spec.Observability.Tracing.ServiceName == "" {
		spec.Observability.Tracing.ServiceName = DefaultServiceName
	}
}

// HasPath reports whether the route is matched by URL.
func (r *RouteConfig) HasPath() bool {
	return r.Path != ""
}
