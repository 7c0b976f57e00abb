package router

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/vyrodovalexey/linkrouter/internal/util"
)

// ScreenKey identifies a destination screen in the client application.
type ScreenKey string

// RouteContext tells the caller how a resolved route must be dispatched.
type RouteContext string

// Route contexts.
const (
	RouteContextUnknown                 RouteContext = "unknown"
	RouteContextInternal                RouteContext = "internal"
	RouteContextExternal                RouteContext = "external"
	RouteContextDoNotRoute              RouteContext = "do_not_route"
	RouteContextSpeedGrader             RouteContext = "speed_grader"
	RouteContextFile                    RouteContext = "file"
	RouteContextLTI                     RouteContext = "lti"
	RouteContextConference              RouteContext = "conference"
	RouteContextNotificationPreferences RouteContext = "notification_preferences"
)

var routeContexts = map[RouteContext]bool{
	RouteContextUnknown:                 true,
	RouteContextInternal:                true,
	RouteContextExternal:                true,
	RouteContextDoNotRoute:              true,
	RouteContextSpeedGrader:             true,
	RouteContextFile:                    true,
	RouteContextLTI:                     true,
	RouteContextConference:              true,
	RouteContextNotificationPreferences: true,
}

// ParseRouteContext parses a route context name. Empty means unknown.
func ParseRouteContext(s string) (RouteContext, error) {
	if s == "" {
		return RouteContextUnknown, nil
	}
	rc := RouteContext(s)
	if !routeContexts[rc] {
		return "", fmt.Errorf("unknown route context %q: %w", s, util.ErrInvalidInput)
	}
	return rc, nil
}

// Suppressed reports whether routes with this context are recognized
// but must never be routed automatically.
func (rc RouteContext) Suppressed() bool {
	return rc == RouteContextInternal || rc == RouteContextDoNotRoute
}

// RouteType is the presentation style of a resolved screen.
type RouteType string

// Placements.
const (
	RouteTypeMaster     RouteType = "master"
	RouteTypeDetail     RouteType = "detail"
	RouteTypeDialog     RouteType = "dialog"
	RouteTypeFullscreen RouteType = "fullscreen"
)

// ParseRouteType parses a placement name. Empty means master.
func ParseRouteType(s string) (RouteType, error) {
	switch RouteType(s) {
	case "":
		return RouteTypeMaster, nil
	case RouteTypeMaster, RouteTypeDetail, RouteTypeDialog, RouteTypeFullscreen:
		return RouteType(s), nil
	default:
		return "", fmt.Errorf("unknown route type %q: %w", s, util.ErrInvalidInput)
	}
}

// ScreenMatchMode selects how screen pairs are compared.
type ScreenMatchMode string

const (
	// ScreenMatchLegacy compares only the secondary screen. The primary
	// comparison of the mobile clients was always true, and route tables
	// written against them depend on it.
	ScreenMatchLegacy ScreenMatchMode = "legacy"
	// ScreenMatchStrict compares both screens.
	ScreenMatchStrict ScreenMatchMode = "strict"
)

// ParseScreenMatchMode parses a screen match mode. Empty means legacy.
func ParseScreenMatchMode(s string) (ScreenMatchMode, error) {
	switch ScreenMatchMode(s) {
	case "", ScreenMatchLegacy:
		return ScreenMatchLegacy, nil
	case ScreenMatchStrict:
		return ScreenMatchStrict, nil
	default:
		return "", fmt.Errorf("unknown screen match mode %q: %w", s, util.ErrInvalidInput)
	}
}

// RouteTemplate is an immutable, compiled routing rule. It is safe for
// concurrent use; every successful Apply returns a fresh Match.
type RouteTemplate struct {
	name            string
	template        *Template
	pattern         *regexp.Regexp
	queryParamNames []string
	primary         ScreenKey
	secondary       ScreenKey
	routeContext    RouteContext
	routeType       RouteType
	canvasContext   *CanvasContext
	arguments       map[string]string
}

// RouteOption configures a RouteTemplate.
type RouteOption func(*RouteTemplate)

// WithName sets the registration name.
func WithName(name string) RouteOption {
	return func(t *RouteTemplate) {
		t.name = name
	}
}

// WithQueryParams requires at least one of the named query parameters
// to be present for a URL to match.
func WithQueryParams(names ...string) RouteOption {
	return func(t *RouteTemplate) {
		t.queryParamNames = append(t.queryParamNames, names...)
	}
}

// WithScreens sets the destination screens.
func WithScreens(primary, secondary ScreenKey) RouteOption {
	return func(t *RouteTemplate) {
		t.primary = primary
		t.secondary = secondary
	}
}

// WithRouteContext sets the dispatch context.
func WithRouteContext(rc RouteContext) RouteOption {
	return func(t *RouteTemplate) {
		t.routeContext = rc
	}
}

// WithRouteType sets the placement.
func WithRouteType(rt RouteType) RouteOption {
	return func(t *RouteTemplate) {
		t.routeType = rt
	}
}

// WithCanvasContext attaches a fixed context to the route.
func WithCanvasContext(cc CanvasContext) RouteOption {
	return func(t *RouteTemplate) {
		t.canvasContext = &cc
	}
}

// WithArguments sets the opaque arguments handed to the destination.
func WithArguments(args map[string]string) RouteOption {
	return func(t *RouteTemplate) {
		t.arguments = make(map[string]string, len(args))
		for k, v := range args {
			t.arguments[k] = v
		}
	}
}

// NewRoute compiles a path template into a RouteTemplate.
func NewRoute(path string, opts ...RouteOption) (*RouteTemplate, error) {
	tmpl, err := ParseTemplate(path)
	if err != nil {
		return nil, err
	}

	pattern, err := patternCache.compile(tmpl.Expr())
	if err != nil {
		return nil, util.NewTemplateErrorWithCause(path, "failed to compile", err)
	}

	t := newRouteTemplate(opts)
	t.template = tmpl
	t.pattern = pattern
	return t, nil
}

// MustRoute is like NewRoute but panics on error. It is intended for
// statically declared route tables.
func MustRoute(path string, opts ...RouteOption) *RouteTemplate {
	t, err := NewRoute(path, opts...)
	if err != nil {
		panic(err)
	}
	return t
}

// NewScreenRoute creates a route without a path. It never matches a
// URL and is resolved through screen pairs only.
func NewScreenRoute(primary, secondary ScreenKey, opts ...RouteOption) *RouteTemplate {
	t := newRouteTemplate(opts)
	t.primary = primary
	t.secondary = secondary
	return t
}

func newRouteTemplate(opts []RouteOption) *RouteTemplate {
	t := &RouteTemplate{
		routeContext: RouteContextUnknown,
		routeType:    RouteTypeMaster,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Name returns the registration name, if any.
func (t *RouteTemplate) Name() string {
	return t.name
}

// Path returns the template string, or "" for screen routes.
func (t *RouteTemplate) Path() string {
	if t.template == nil {
		return ""
	}
	return t.template.Raw()
}

// Template returns the parsed template, or nil for screen routes.
func (t *RouteTemplate) Template() *Template {
	return t.template
}

// Pattern returns the compiled expression, or nil for screen routes.
func (t *RouteTemplate) Pattern() *regexp.Regexp {
	return t.pattern
}

// ParamNames returns the path parameter names in declaration order.
func (t *RouteTemplate) ParamNames() []string {
	if t.template == nil {
		return nil
	}
	return t.template.ParamNames()
}

// QueryParamNames returns the query parameters of which at least one
// must be present.
func (t *RouteTemplate) QueryParamNames() []string {
	names := make([]string, len(t.queryParamNames))
	copy(names, t.queryParamNames)
	return names
}

// Primary returns the primary destination screen.
func (t *RouteTemplate) Primary() ScreenKey {
	return t.primary
}

// Secondary returns the secondary destination screen.
func (t *RouteTemplate) Secondary() ScreenKey {
	return t.secondary
}

// RouteContext returns the dispatch context.
func (t *RouteTemplate) RouteContext() RouteContext {
	return t.routeContext
}

// RouteType returns the placement.
func (t *RouteTemplate) RouteType() RouteType {
	return t.routeType
}

// CanvasContext returns the attached context, if any.
func (t *RouteTemplate) CanvasContext() (CanvasContext, bool) {
	if t.canvasContext == nil {
		return CanvasContext{}, false
	}
	return *t.canvasContext, true
}

// Arguments returns a copy of the route arguments.
func (t *RouteTemplate) Arguments() map[string]string {
	args := make(map[string]string, len(t.arguments))
	for k, v := range t.arguments {
		args[k] = v
	}
	return args
}

// String returns a short description for logs.
func (t *RouteTemplate) String() string {
	if t.template == nil {
		return fmt.Sprintf("screens(%s,%s)", t.primary, t.secondary)
	}
	return t.template.Raw()
}

// Apply matches rawURL against the template. Only the URL path takes
// part in pattern matching. Unparsable or empty input never matches.
//
// An external route reports a match without extracting anything: the
// caller hands the URL to an external handler.
func (t *RouteTemplate) Apply(rawURL string) (*Match, bool) {
	if rawURL == "" || t.pattern == nil {
		return nil, false
	}

	uri, err := url.Parse(rawURL)
	if err != nil {
		return nil, false
	}

	groups := t.pattern.FindStringSubmatch(uri.Path)
	if groups == nil {
		return nil, false
	}

	m := newMatch(t)
	if t.routeContext == RouteContextExternal {
		return m, true
	}

	m.URL = rawURL
	m.URI = uri

	for i, name := range t.template.paramNames {
		idx := t.template.paramGroups[i]
		if idx < len(groups) {
			m.Params[name] = groups[idx]
		}
	}
	if idx := t.template.wildcardGroup; idx > 0 && idx < len(groups) {
		m.Wildcard = groups[idx]
	}

	// ParseQuery keeps every well-formed pair even when others fail to
	// decode. A pair that does not decode is left out of QueryParams.
	query, _ := url.ParseQuery(uri.RawQuery)
	for name, values := range query {
		if len(values) > 0 {
			m.QueryParams[name] = values[0]
		}
	}

	if len(t.queryParamNames) > 0 && !hasAnyQueryParam(uri.RawQuery, t.queryParamNames) {
		return nil, false
	}

	return m, true
}

// hasAnyQueryParam reports whether at least one name is present in the
// raw query. Presence is decided on keys alone, so a value that fails to
// decode still counts.
func hasAnyQueryParam(rawQuery string, names []string) bool {
	keys := queryKeys(rawQuery)
	for _, name := range names {
		if _, ok := keys[name]; ok {
			return true
		}
	}
	return false
}

// queryKeys returns the set of keys in rawQuery. Pairs are split on '&'
// and ';'. A key that does not unescape is kept verbatim.
func queryKeys(rawQuery string) map[string]struct{} {
	keys := make(map[string]struct{})
	for _, pair := range strings.FieldsFunc(rawQuery, func(r rune) bool { return r == '&' || r == ';' }) {
		key, _, _ := strings.Cut(pair, "=")
		if unescaped, err := url.QueryUnescape(key); err == nil {
			key = unescaped
		}
		keys[key] = struct{}{}
	}
	return keys
}

// ApplyScreens reports whether the route resolves the given screen
// pair. External routes never do.
func (t *RouteTemplate) ApplyScreens(primary, secondary ScreenKey, mode ScreenMatchMode) bool {
	if t.routeContext == RouteContextExternal {
		return false
	}
	if mode == ScreenMatchStrict {
		return primary == t.primary && secondary == t.secondary
	}
	return secondary == t.secondary
}
