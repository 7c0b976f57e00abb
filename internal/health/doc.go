// Package health provides liveness and readiness probe endpoints for
// the link resolution service.
//
// The service is live as long as it answers. It is ready once the
// active route table holds at least one template:
//
//	h := health.NewHandler(logger)
//	h.AddCheck(health.NewRouteTableCheck("routes", rt))
//	h.RegisterRoutes(engine)
package health
