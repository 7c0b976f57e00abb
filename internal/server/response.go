package server

import (
	"github.com/vyrodovalexey/linkrouter/internal/router"
)

// RouteView is the JSON form of a route template.
type RouteView struct {
	Name          string            `json:"name,omitempty"`
	Path          string            `json:"path,omitempty"`
	QueryParams   []string          `json:"queryParams,omitempty"`
	Primary       string            `json:"primary,omitempty"`
	Secondary     string            `json:"secondary,omitempty"`
	Context       string            `json:"context"`
	Type          string            `json:"type"`
	CanvasContext string            `json:"canvasContext,omitempty"`
	Arguments     map[string]string `json:"arguments,omitempty"`
}

func newRouteView(t *router.RouteTemplate) *RouteView {
	if t == nil {
		return nil
	}
	v := &RouteView{
		Name:        t.Name(),
		Path:        t.Path(),
		QueryParams: t.QueryParamNames(),
		Primary:     string(t.Primary()),
		Secondary:   string(t.Secondary()),
		Context:     string(t.RouteContext()),
		Type:        string(t.RouteType()),
		Arguments:   t.Arguments(),
	}
	if cc, ok := t.CanvasContext(); ok {
		v.CanvasContext = cc.ContextID()
	}
	if len(v.QueryParams) == 0 {
		v.QueryParams = nil
	}
	if len(v.Arguments) == 0 {
		v.Arguments = nil
	}
	return v
}

// ResolveResponse is returned by GET /v1/resolve.
type ResolveResponse struct {
	Outcome     string            `json:"outcome"`
	Route       *RouteView        `json:"route,omitempty"`
	Params      map[string]string `json:"params,omitempty"`
	QueryParams map[string]string `json:"queryParams,omitempty"`
	Wildcard    string            `json:"wildcard,omitempty"`
	ContextID   string            `json:"contextId,omitempty"`
	Placement   string            `json:"placement,omitempty"`
	BottomSheet bool              `json:"bottomSheet,omitempty"`
}

// ContextIDResponse is returned by GET /v1/context-id.
type ContextIDResponse struct {
	ContextID string `json:"contextId"`
	CourseID  string `json:"courseId"`
}

// RoutesResponse is returned by GET /v1/routes.
type RoutesResponse struct {
	ScreenMatching string       `json:"screenMatching"`
	Count          int          `json:"count"`
	Routes         []*RouteView `json:"routes"`
}

// ErrorResponse is the body of every non-2xx API answer.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}
