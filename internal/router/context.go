package router

import (
	"fmt"
	"strings"

	"github.com/vyrodovalexey/linkrouter/internal/util"
)

// ContextType is the scope a navigation target belongs to.
type ContextType string

// Context types.
const (
	ContextCourse ContextType = "course"
	ContextGroup  ContextType = "group"
	ContextUser   ContextType = "user"
)

// ParamCourseID is the path parameter carrying the context identifier.
const ParamCourseID = "course_id"

// ParseContextType parses a context type name.
func ParseContextType(s string) (ContextType, error) {
	switch ContextType(s) {
	case ContextCourse, ContextGroup, ContextUser:
		return ContextType(s), nil
	default:
		return "", fmt.Errorf("unknown context type %q: %w", s, util.ErrInvalidInput)
	}
}

// CanvasContext identifies a course, group or user.
type CanvasContext struct {
	Type ContextType
	ID   string
}

// ContextID returns the composite identifier, e.g. "course_42".
// It is empty when either part is missing.
func (c CanvasContext) ContextID() string {
	if c.Type == "" || c.ID == "" {
		return ""
	}
	return string(c.Type) + "_" + c.ID
}

// contextTypeFromPath derives the context type from the first path
// segment after the optional API prefix.
func contextTypeFromPath(path string) ContextType {
	path = strings.TrimPrefix(path, APIPrefix)
	path = strings.TrimPrefix(path, "/")
	first, _, _ := strings.Cut(path, "/")

	switch first {
	case "groups":
		return ContextGroup
	case "users":
		return ContextUser
	default:
		return ContextCourse
	}
}
