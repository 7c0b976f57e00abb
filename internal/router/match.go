package router

import "net/url"

// Match is the result of applying a RouteTemplate to a URL. Each
// successful Apply returns a new Match.
type Match struct {
	Route       *RouteTemplate
	URL         string
	URI         *url.URL
	Params      map[string]string
	QueryParams map[string]string
	// Wildcard holds the text captured by a wildcard segment.
	Wildcard string
}

func newMatch(t *RouteTemplate) *Match {
	return &Match{
		Route:       t,
		Params:      make(map[string]string),
		QueryParams: make(map[string]string),
	}
}

// Param returns a path parameter value.
func (m *Match) Param(name string) (string, bool) {
	v, ok := m.Params[name]
	return v, ok
}

// QueryParam returns the first value of a query parameter.
func (m *Match) QueryParam(name string) (string, bool) {
	v, ok := m.QueryParams[name]
	return v, ok
}

// RouteContext returns the dispatch context of the matched route.
func (m *Match) RouteContext() RouteContext {
	return m.Route.RouteContext()
}

// RouteType returns the placement of the matched route.
func (m *Match) RouteType() RouteType {
	return m.Route.RouteType()
}

// Arguments returns a copy of the route arguments.
func (m *Match) Arguments() map[string]string {
	return m.Route.Arguments()
}

// CanvasContext resolves the context of the match. The identifier is
// always the captured course_id. The type comes from the context
// attached to the route, else from the path prefix.
func (m *Match) CanvasContext() (CanvasContext, bool) {
	id := m.Params[ParamCourseID]
	if id == "" {
		return CanvasContext{}, false
	}

	if cc, ok := m.Route.CanvasContext(); ok && cc.Type != "" {
		return CanvasContext{Type: cc.Type, ID: id}, true
	}
	if m.URI == nil {
		return CanvasContext{}, false
	}
	return CanvasContext{Type: contextTypeFromPath(m.URI.Path), ID: id}, true
}

// ContextID returns the composite context identifier or "".
func (m *Match) ContextID() string {
	cc, ok := m.CanvasContext()
	if !ok {
		return ""
	}
	return cc.ContextID()
}
