// Package util provides shared error types and validation helpers for
// linkrouter.
//
// # Error Types
//
// Structured error types for consistent error handling:
//
//   - ConfigError: route table configuration errors
//   - TemplateError: malformed path templates
//   - ValidationError: field-level validation failures
//   - Common sentinel errors: ErrNotFound, ErrInvalidInput, etc.
//
// # Validation
//
// Input validation helpers for hosts, route names, and listen
// addresses:
//
//	err := util.ValidateHostname("canvas.example.com")
//	err := util.ValidateRouteName("assignment-details")
package util
