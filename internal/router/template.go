package router

import (
	"regexp"
	"strings"

	"github.com/vyrodovalexey/linkrouter/internal/util"
)

// APIPrefix is the API version prefix that every compiled template
// accepts optionally in front of the path.
const APIPrefix = "/api/v1"

// SegmentKind identifies the type of a template segment.
type SegmentKind uint8

// Segment kinds.
const (
	// SegmentLiteral matches its text exactly.
	SegmentLiteral SegmentKind = iota
	// SegmentParam (":name") captures one path segment, possibly empty.
	SegmentParam
	// SegmentWildcard ("*" or "(.*)") captures any run of characters,
	// slashes included.
	SegmentWildcard
	// SegmentChoice ("(a|b)" or "(?:a|b)") matches one of several
	// literal alternatives without capturing.
	SegmentChoice
)

// String returns the segment kind name.
func (k SegmentKind) String() string {
	switch k {
	case SegmentLiteral:
		return "literal"
	case SegmentParam:
		return "param"
	case SegmentWildcard:
		return "wildcard"
	case SegmentChoice:
		return "choice"
	default:
		return "unknown"
	}
}

// Segment is one slash-separated element of a parsed template.
type Segment struct {
	Kind SegmentKind
	// Value is the literal text for literals and the parameter name
	// for params.
	Value   string
	Choices []string
}

// Template is the parsed form of a path template such as
// "/courses/:course_id/assignments/:assignment_id".
type Template struct {
	raw           string
	segments      []Segment
	trailingSlash bool
	paramNames    []string
	paramGroups   []int
	wildcardGroup int
}

// ParseTemplate parses a path template into typed segments.
func ParseTemplate(raw string) (*Template, error) {
	if raw == "" || raw[0] != '/' {
		return nil, util.NewTemplateError(raw, "template must start with /")
	}

	t := &Template{raw: raw}

	body := raw[1:]
	if strings.HasSuffix(body, "/") {
		t.trailingSlash = true
		body = body[:len(body)-1]
	}
	if body == "" {
		return t, nil
	}

	seen := make(map[string]bool)
	group := 0

	for _, part := range strings.Split(body, "/") {
		seg, err := parseSegment(raw, part)
		if err != nil {
			return nil, err
		}

		switch seg.Kind {
		case SegmentParam:
			if seen[seg.Value] {
				return nil, util.NewTemplateError(raw, "duplicate parameter :"+seg.Value)
			}
			seen[seg.Value] = true
			group++
			t.paramNames = append(t.paramNames, seg.Value)
			t.paramGroups = append(t.paramGroups, group)
		case SegmentWildcard:
			if t.wildcardGroup != 0 {
				return nil, util.NewTemplateError(raw, "only one wildcard segment is allowed")
			}
			group++
			t.wildcardGroup = group
		}

		t.segments = append(t.segments, seg)
	}

	return t, nil
}

// parseSegment classifies a single template segment.
func parseSegment(raw, part string) (Segment, error) {
	switch {
	case strings.HasPrefix(part, ":"):
		name := part[1:]
		if name == "" {
			return Segment{}, util.NewTemplateError(raw, "empty parameter name")
		}
		return Segment{Kind: SegmentParam, Value: name}, nil

	case part == "*" || part == "(.*)":
		return Segment{Kind: SegmentWildcard, Value: part}, nil

	case len(part) > 2 && part[0] == '(' && part[len(part)-1] == ')':
		inner := strings.TrimPrefix(part[1:len(part)-1], "?:")
		choices := strings.Split(inner, "|")
		for _, c := range choices {
			if c == "" {
				return Segment{}, util.NewTemplateError(raw, "empty alternative in "+part)
			}
		}
		return Segment{Kind: SegmentChoice, Value: part, Choices: choices}, nil

	default:
		return Segment{Kind: SegmentLiteral, Value: part}, nil
	}
}

// Raw returns the template string as written.
func (t *Template) Raw() string {
	return t.raw
}

// String implements fmt.Stringer.
func (t *Template) String() string {
	return t.raw
}

// Segments returns a copy of the parsed segments.
func (t *Template) Segments() []Segment {
	segments := make([]Segment, len(t.segments))
	copy(segments, t.segments)
	return segments
}

// ParamNames returns the parameter names in declaration order.
func (t *Template) ParamNames() []string {
	names := make([]string, len(t.paramNames))
	copy(names, t.paramNames)
	return names
}

// HasWildcard reports whether the template contains a wildcard capture.
func (t *Template) HasWildcard() bool {
	return t.wildcardGroup != 0
}

// TrailingSlash reports whether the template was written with a
// trailing slash. Matching treats the slash as optional either way.
func (t *Template) TrailingSlash() bool {
	return t.trailingSlash
}

// Expr compiles the template into an anchored regular expression.
// The API prefix and a trailing slash are both optional.
func (t *Template) Expr() string {
	var b strings.Builder
	b.WriteString("^(?:")
	b.WriteString(regexp.QuoteMeta(APIPrefix))
	b.WriteString(")?")

	for _, seg := range t.segments {
		b.WriteByte('/')
		switch seg.Kind {
		case SegmentParam:
			b.WriteString("([^/]*)")
		case SegmentWildcard:
			b.WriteString("(.*?)")
		case SegmentChoice:
			b.WriteString("(?:")
			for i, c := range seg.Choices {
				if i > 0 {
					b.WriteByte('|')
				}
				b.WriteString(regexp.QuoteMeta(c))
			}
			b.WriteByte(')')
		default:
			b.WriteString(regexp.QuoteMeta(seg.Value))
		}
	}

	b.WriteString("/?$")
	return b.String()
}

// CourseOrGroup builds a template rooted at either a course or a group,
// with the context identifier captured as course_id.
func CourseOrGroup(suffix string) string {
	return "/(?:courses|groups)/:course_id" + suffix
}
