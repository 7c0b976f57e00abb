package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/vyrodovalexey/linkrouter/internal/observability"
	"github.com/vyrodovalexey/linkrouter/internal/router"
	"github.com/vyrodovalexey/linkrouter/internal/util"
)

// Query parameter names.
const (
	queryURL       = "url"
	queryDomain    = "domain"
	queryPrimary   = "primary"
	querySecondary = "secondary"
)

func (s *Server) handleResolve(c *gin.Context) {
	rawURL, ok := s.requireQuery(c, queryURL)
	if !ok {
		return
	}
	domain := c.Query(queryDomain)
	if domain == "" {
		domain = s.defaultDomain
	}

	res := s.router.Resolve(rawURL, domain)

	span := trace.SpanFromContext(c.Request.Context())
	span.SetAttributes(attribute.String("linkrouter.outcome", string(res.Outcome)))
	if route := res.Route(); route != nil {
		span.SetAttributes(attribute.String("linkrouter.route", route.String()))
	}

	c.JSON(http.StatusOK, NewResolveResponse(s.router, res))
}

// NewResolveResponse builds the JSON form of a resolution made by rt.
func NewResolveResponse(rt *router.Router, res router.Resolution) *ResolveResponse {
	out := &ResolveResponse{Outcome: string(res.Outcome)}
	m := res.Match
	if m == nil {
		return out
	}

	out.Route = newRouteView(m.Route)
	if len(m.Params) > 0 {
		out.Params = m.Params
	}
	if len(m.QueryParams) > 0 {
		out.QueryParams = m.QueryParams
	}
	out.Wildcard = m.Wildcard
	out.ContextID = m.ContextID()
	out.Placement = string(rt.Placement(m))
	out.BottomSheet = rt.BottomSheet(m)
	return out
}

func (s *Server) handleContextID(c *gin.Context) {
	rawURL, ok := s.requireQuery(c, queryURL)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, ContextIDResponse{
		ContextID: s.router.ContextIDFromURL(rawURL),
		CourseID:  s.router.CourseIDFromURL(rawURL),
	})
}

func (s *Server) handleMatchScreens(c *gin.Context) {
	primary := router.ScreenKey(c.Query(queryPrimary))
	secondary := router.ScreenKey(c.Query(querySecondary))

	route, ok := s.router.MatchScreens(primary, secondary)
	if !ok {
		s.writeError(c, util.NewRouteNotFoundError("screens "+string(primary)+"/"+string(secondary)))
		return
	}
	c.JSON(http.StatusOK, newRouteView(route))
}

func (s *Server) handleRoutes(c *gin.Context) {
	routes := s.router.Routes()
	views := make([]*RouteView, 0, len(routes))
	for _, r := range routes {
		views = append(views, newRouteView(r))
	}

	c.JSON(http.StatusOK, RoutesResponse{
		ScreenMatching: string(s.router.ScreenMatchMode()),
		Count:          len(views),
		Routes:         views,
	})
}

// requireQuery returns the named query value or writes a 400.
func (s *Server) requireQuery(c *gin.Context, name string) (string, bool) {
	value := c.Query(name)
	if value != "" {
		return value, true
	}

	verr := util.NewValidationError("missing required query parameter")
	verr.AddField(name, "required")
	s.writeError(c, verr)
	return "", false
}

func (s *Server) writeError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.WithContext(c.Request.Context()).Error("request failed",
			observability.String("path", c.Request.URL.Path),
			observability.Error(err),
		)
	}

	body := ErrorResponse{Error: err.Error()}
	var verr *util.ValidationError
	if errors.As(err, &verr) && verr.HasFields() {
		body.Fields = verr.Fields
	}
	c.AbortWithStatusJSON(status, body)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, util.ErrNotFound):
		return http.StatusNotFound
	case util.IsClientError(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
