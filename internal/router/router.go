package router

import (
	"fmt"
	"sync"

	"github.com/vyrodovalexey/linkrouter/internal/config"
	"github.com/vyrodovalexey/linkrouter/internal/observability"
	"github.com/vyrodovalexey/linkrouter/internal/util"
)

// Outcome classifies the result of resolving a URL.
type Outcome string

// Resolution outcomes.
const (
	// OutcomeRouted means the URL resolved to an in-app route.
	OutcomeRouted Outcome = "routed"
	// OutcomeExternal means the URL matched a route that must be handed
	// to an external handler.
	OutcomeExternal Outcome = "external"
	// OutcomeSuppressed means the URL matched an internal or
	// do-not-route entry and must not be routed.
	OutcomeSuppressed Outcome = "suppressed"
	// OutcomeForeignHost means the URL host is not the user's domain.
	OutcomeForeignHost Outcome = "foreign_host"
	// OutcomeInvalid means the URL was empty or could not be parsed.
	OutcomeInvalid Outcome = "invalid"
	// OutcomeUnmatched means no route matched.
	OutcomeUnmatched Outcome = "unmatched"
)

// Resolution is the classified result of Router.Resolve.
type Resolution struct {
	Outcome Outcome
	// Match is set for routed, external and suppressed outcomes.
	Match *Match
}

// Route returns the matched route, or nil.
func (r Resolution) Route() *RouteTemplate {
	if r.Match == nil {
		return nil
	}
	return r.Match.Route
}

// Router holds an ordered route table. Lookups scan the table in
// registration order and the first matching route wins; the table is
// never re-sorted.
type Router struct {
	routes      []*RouteTemplate
	routeMap    map[string]*RouteTemplate
	fullscreen  map[ScreenKey]struct{}
	bottomSheet map[ScreenKey]struct{}
	mode        ScreenMatchMode
	logger      observability.Logger
	mu          sync.RWMutex
}

// Option configures a Router.
type Option func(*Router)

// WithLogger sets the router logger.
func WithLogger(logger observability.Logger) Option {
	return func(r *Router) {
		r.logger = logger
	}
}

// WithScreenMatchMode sets how screen pairs are compared.
func WithScreenMatchMode(mode ScreenMatchMode) Option {
	return func(r *Router) {
		r.mode = mode
	}
}

// WithFullscreenScreens marks screens that always open fullscreen.
func WithFullscreenScreens(keys ...ScreenKey) Option {
	return func(r *Router) {
		for _, k := range keys {
			r.fullscreen[k] = struct{}{}
		}
	}
}

// WithBottomSheetScreens marks screens that always open as a bottom sheet.
func WithBottomSheetScreens(keys ...ScreenKey) Option {
	return func(r *Router) {
		for _, k := range keys {
			r.bottomSheet[k] = struct{}{}
		}
	}
}

// New creates an empty router.
func New(opts ...Option) *Router {
	r := &Router{
		routes:      make([]*RouteTemplate, 0),
		routeMap:    make(map[string]*RouteTemplate),
		fullscreen:  make(map[ScreenKey]struct{}),
		bottomSheet: make(map[ScreenKey]struct{}),
		mode:        ScreenMatchLegacy,
		logger:      observability.NopLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// AddRoute appends a route to the end of the table. Named routes must
// have unique names.
func (r *Router) AddRoute(route *RouteTemplate) error {
	if route == nil {
		return fmt.Errorf("route is nil: %w", util.ErrInvalidInput)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if name := route.Name(); name != "" {
		if _, exists := r.routeMap[name]; exists {
			return fmt.Errorf("duplicate route name: %s: %w", name, util.ErrInvalidInput)
		}
		r.routeMap[name] = route
	}
	r.routes = append(r.routes, route)

	return nil
}

// Register appends routes in order, stopping at the first error.
func (r *Router) Register(routes ...*RouteTemplate) error {
	for _, route := range routes {
		if err := r.AddRoute(route); err != nil {
			return err
		}
	}
	return nil
}

// RemoveRoute removes a named route.
func (r *Router) RemoveRoute(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.routeMap[name]; !exists {
		return util.NewRouteNotFoundError(name)
	}
	delete(r.routeMap, name)

	for i, route := range r.routes {
		if route.Name() == name {
			r.routes = append(r.routes[:i:i], r.routes[i+1:]...)
			break
		}
	}

	return nil
}

// GetRoute returns a named route.
func (r *Router) GetRoute(name string) (*RouteTemplate, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	route, ok := r.routeMap[name]
	return route, ok
}

// Routes returns a copy of the table in matching order.
func (r *Router) Routes() []*RouteTemplate {
	r.mu.RLock()
	defer r.mu.RUnlock()
	routes := make([]*RouteTemplate, len(r.routes))
	copy(routes, r.routes)
	return routes
}

// Len returns the number of routes.
func (r *Router) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.routes)
}

// Clear removes all routes. Screen sets and mode are kept.
func (r *Router) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes = make([]*RouteTemplate, 0)
	r.routeMap = make(map[string]*RouteTemplate)
}

// ScreenMatchMode returns the current screen match mode.
func (r *Router) ScreenMatchMode() ScreenMatchMode {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.mode
}

// Match returns the first route that matches rawURL, without checking
// the host.
func (r *Router) Match(rawURL string) (*Match, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return firstMatch(rawURL, r.routes)
}

func firstMatch(rawURL string, routes []*RouteTemplate) (*Match, bool) {
	if rawURL == "" {
		return nil, false
	}
	for _, route := range routes {
		if m, ok := route.Apply(rawURL); ok {
			return m, true
		}
	}
	return nil, false
}

// Resolve checks rawURL against the user's domain, finds the first
// matching route and classifies the result.
func (r *Router) Resolve(rawURL, domain string) Resolution {
	res := r.resolve(rawURL, domain)
	getRouterMetrics().resolutions.WithLabelValues(string(res.Outcome)).Inc()

	fields := []observability.Field{
		observability.String("outcome", string(res.Outcome)),
	}
	if route := res.Route(); route != nil {
		fields = append(fields, observability.String("route", route.String()))
	}
	r.logger.Debug("resolved url", fields...)

	return res
}

func (r *Router) resolve(rawURL, domain string) Resolution {
	v := NewURLValidator(rawURL, domain)
	if !v.IsValid() {
		return Resolution{Outcome: OutcomeInvalid}
	}
	if !v.IsHostForLoggedInUser() {
		return Resolution{Outcome: OutcomeForeignHost}
	}

	m, ok := r.Match(rawURL)
	if !ok {
		return Resolution{Outcome: OutcomeUnmatched}
	}

	switch rc := m.RouteContext(); {
	case rc.Suppressed():
		return Resolution{Outcome: OutcomeSuppressed, Match: m}
	case rc == RouteContextExternal:
		return Resolution{Outcome: OutcomeExternal, Match: m}
	default:
		return Resolution{Outcome: OutcomeRouted, Match: m}
	}
}

// InternalRoute returns the route for a URL on the user's domain.
// Foreign hosts, invalid URLs, unmatched paths and suppressed routes
// yield no match. External routes are returned; the caller dispatches
// them by RouteContext.
func (r *Router) InternalRoute(rawURL, domain string) (*Match, bool) {
	res := r.Resolve(rawURL, domain)
	switch res.Outcome {
	case OutcomeRouted, OutcomeExternal:
		return res.Match, true
	default:
		return nil, false
	}
}

// MatchScreens returns the first route that resolves the screen pair.
func (r *Router) MatchScreens(primary, secondary ScreenKey) (*RouteTemplate, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, route := range r.routes {
		if route.ApplyScreens(primary, secondary, r.mode) {
			return route, true
		}
	}
	return nil, false
}

// ContextIDFromURL returns the context identifier ("course_42",
// "group_7") of the first route in routes that matches rawURL, or ""
// when nothing matches or no identifier was captured.
func ContextIDFromURL(rawURL string, routes []*RouteTemplate) string {
	m, ok := firstMatch(rawURL, routes)
	if !ok {
		return ""
	}
	return m.ContextID()
}

// ContextIDFromURL is ContextIDFromURL over the router's own table.
func (r *Router) ContextIDFromURL(rawURL string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return ContextIDFromURL(rawURL, r.routes)
}

// CourseIDFromURL returns the course_id captured by the first matching
// route, or "".
func (r *Router) CourseIDFromURL(rawURL string) string {
	m, ok := r.Match(rawURL)
	if !ok {
		return ""
	}
	id, _ := m.Param(ParamCourseID)
	return id
}

// IsFullscreen reports whether key always opens fullscreen.
func (r *Router) IsFullscreen(key ScreenKey) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.fullscreen[key]
	return ok
}

// IsBottomSheet reports whether key always opens as a bottom sheet.
func (r *Router) IsBottomSheet(key ScreenKey) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.bottomSheet[key]
	return ok
}

// Placement returns how the matched screen is presented. A route whose
// primary or secondary screen is in the fullscreen set opens fullscreen
// regardless of its route type.
func (r *Router) Placement(m *Match) RouteType {
	if m == nil || m.Route == nil {
		return RouteTypeMaster
	}
	if r.IsFullscreen(m.Route.Primary()) || r.IsFullscreen(m.Route.Secondary()) {
		return RouteTypeFullscreen
	}
	return m.Route.RouteType()
}

// BottomSheet reports whether the matched route opens as a bottom
// sheet. Like Placement it checks both screens of the route.
func (r *Router) BottomSheet(m *Match) bool {
	if m == nil || m.Route == nil {
		return false
	}
	return r.IsBottomSheet(m.Route.Primary()) || r.IsBottomSheet(m.Route.Secondary())
}

// LoadRoutes replaces the table, screen sets and screen match mode with
// the contents of spec. Every route is compiled before anything is
// swapped, so a failed load leaves the router unchanged.
func (r *Router) LoadRoutes(spec *config.RouterSpec) error {
	if spec == nil {
		return util.NewConfigError("spec", "route table spec is nil")
	}

	mode, err := ParseScreenMatchMode(spec.ScreenMatching)
	if err != nil {
		return util.NewConfigErrorWithCause("spec.screenMatching", "invalid screen match mode", err)
	}

	routes := make([]*RouteTemplate, 0, len(spec.Routes))
	routeMap := make(map[string]*RouteTemplate, len(spec.Routes))

	for i := range spec.Routes {
		rc := &spec.Routes[i]
		route, err := RouteFromConfig(rc)
		if err != nil {
			return util.NewConfigErrorWithCause(
				fmt.Sprintf("spec.routes[%d]", i),
				fmt.Sprintf("failed to compile route %s", rc.Name),
				err,
			)
		}
		if rc.Name != "" {
			if _, exists := routeMap[rc.Name]; exists {
				return util.NewConfigError(
					fmt.Sprintf("spec.routes[%d].name", i),
					"duplicate route name: "+rc.Name,
				)
			}
			routeMap[rc.Name] = route
		}
		routes = append(routes, route)
	}

	fullscreen := screenSet(spec.FullscreenScreens)
	bottomSheet := screenSet(spec.BottomSheetScreens)

	r.mu.Lock()
	r.routes = routes
	r.routeMap = routeMap
	r.fullscreen = fullscreen
	r.bottomSheet = bottomSheet
	r.mode = mode
	r.mu.Unlock()

	r.logger.Info("route table loaded",
		observability.Int("routes", len(routes)),
		observability.String("screen_matching", string(mode)),
	)

	return nil
}

func screenSet(keys []string) map[ScreenKey]struct{} {
	set := make(map[ScreenKey]struct{}, len(keys))
	for _, k := range keys {
		set[ScreenKey(k)] = struct{}{}
	}
	return set
}

// RouteFromConfig compiles a route table entry.
func RouteFromConfig(rc *config.RouteConfig) (*RouteTemplate, error) {
	routeContext, err := ParseRouteContext(rc.Context)
	if err != nil {
		return nil, err
	}
	routeType, err := ParseRouteType(rc.Type)
	if err != nil {
		return nil, err
	}

	opts := []RouteOption{
		WithName(rc.Name),
		WithRouteContext(routeContext),
		WithRouteType(routeType),
	}
	if len(rc.QueryParams) > 0 {
		opts = append(opts, WithQueryParams(rc.QueryParams...))
	}
	if len(rc.Arguments) > 0 {
		opts = append(opts, WithArguments(rc.Arguments))
	}
	if cc := rc.CanvasContext; cc != nil {
		ct, err := ParseContextType(cc.Type)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithCanvasContext(CanvasContext{Type: ct, ID: cc.ID}))
	}

	primary, secondary := ScreenKey(rc.Primary), ScreenKey(rc.Secondary)
	if !rc.HasPath() {
		return NewScreenRoute(primary, secondary, opts...), nil
	}

	opts = append(opts, WithScreens(primary, secondary))
	return NewRoute(rc.Path, opts...)
}

// ValidateTemplate reports whether path is a well-formed route
// template. It has the shape of config.PathChecker.
func ValidateTemplate(path string) error {
	_, err := ParseTemplate(path)
	return err
}
