// Package router resolves LMS deep links to destination screens.
//
// A route template such as "/courses/:course_id/assignments/:assignment_id"
// is parsed into typed segments and compiled to an anchored regular
// expression. The "/api/v1" prefix and a trailing slash are optional
// on every template. Applying a RouteTemplate to a URL returns a new
// Match holding the path parameters, the query parameters and the
// resolved course, group or user context.
//
// A Router keeps templates in registration order and the first match
// wins:
//
//	r := router.New()
//	_ = r.Register(
//	    router.MustRoute("/courses/:course_id/assignments/:assignment_id",
//	        router.WithScreens("AssignmentList", "AssignmentDetails")),
//	    router.MustRoute("/courses/:course_id"),
//	)
//
//	if m, ok := r.InternalRoute(link, "school.instructure.com"); ok {
//	    // navigate using m.Route and m.Params
//	}
//
// Routes with the internal or do_not_route context are recognized but
// never returned by InternalRoute. External routes match without
// extracting parameters.
//
// The engine performs no I/O. Routers are safe for concurrent use and
// their tables can be replaced atomically with LoadRoutes.
package router
