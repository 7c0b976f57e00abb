package health

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNoRoutes is returned by the route table check while the active
// table is empty.
var ErrNoRoutes = errors.New("no routes loaded")

// RouteCounter reports the size of the active route table.
type RouteCounter interface {
	Len() int
}

// RouteTableCheck reports ready once the route table holds at least one
// template.
type RouteTableCheck struct {
	name  string
	table RouteCounter
}

// NewRouteTableCheck creates a readiness check over table.
func NewRouteTableCheck(name string, table RouteCounter) *RouteTableCheck {
	if name == "" {
		name = "routes"
	}
	return &RouteTableCheck{name: name, table: table}
}

// Name returns the name of the check.
func (c *RouteTableCheck) Name() string {
	return c.name
}

// Check fails when no routes are loaded.
func (c *RouteTableCheck) Check(ctx context.Context) error {
	start := time.Now()
	err := c.check(ctx)
	GetHealthMetrics().RecordCheck(c.name, err == nil, time.Since(start))
	return err
}

func (c *RouteTableCheck) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.table == nil || c.table.Len() == 0 {
		return ErrNoRoutes
	}
	return nil
}

// TimeoutHealthCheck wraps a health check with a timeout.
type TimeoutHealthCheck struct {
	check   HealthCheck
	timeout time.Duration
}

// NewTimeoutHealthCheck creates a new timeout health check.
func NewTimeoutHealthCheck(check HealthCheck, timeout time.Duration) *TimeoutHealthCheck {
	return &TimeoutHealthCheck{
		check:   check,
		timeout: timeout,
	}
}

// Name returns the name of the wrapped check.
func (t *TimeoutHealthCheck) Name() string {
	return t.check.Name()
}

// Check runs the wrapped check and gives up after the timeout.
func (t *TimeoutHealthCheck) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- t.check.Check(ctx)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("health check timed out after %v", t.timeout)
	}
}
