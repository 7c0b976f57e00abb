package config

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vyrodovalexey/linkrouter/internal/util"
)

func loadTestConfig(t *testing.T, content string) *RouterConfig {
	t.Helper()
	cfg, err := LoadConfigFromReader(strings.NewReader(content))
	require.NoError(t, err)
	return cfg
}

func validationPaths(t *testing.T, err error) []string {
	t.Helper()
	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs), "expected ValidationErrors, got %T", err)
	paths := make([]string, 0, len(verrs))
	for _, e := range verrs {
		paths = append(paths, e.Path)
	}
	return paths
}

func TestValidateConfig_Valid(t *testing.T) {
	t.Parallel()

	cfg := loadTestConfig(t, validConfigYAML)
	assert.NoError(t, ValidateConfig(cfg))
}

func TestValidateConfig_Default(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidateConfig(DefaultConfig()))
}

func TestValidateConfig_Nil(t *testing.T) {
	t.Parallel()

	err := ValidateConfig(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration is nil")
}

func TestValidateConfig_Invalid(t *testing.T) {
	t.Parallel()

	base := func(routes string) string {
		return `
apiVersion: linkrouter.io/v1
kind: RouteTable
metadata: {name: t}
spec:
  routes:
` + routes
	}

	tests := []struct {
		name     string
		content  string
		wantPath string
		wantMsg  string
	}{
		{
			name: "wrong api version",
			content: `
apiVersion: other.io/v1
kind: RouteTable
metadata: {name: t}
`,
			wantPath: "apiVersion",
			wantMsg:  "must start with",
		},
		{
			name: "wrong kind",
			content: `
apiVersion: linkrouter.io/v1
kind: Gateway
metadata: {name: t}
`,
			wantPath: "kind",
		},
		{
			name: "missing metadata name",
			content: `
apiVersion: linkrouter.io/v1
kind: RouteTable
metadata: {}
`,
			wantPath: "metadata.name",
			wantMsg:  "required",
		},
		{
			name:     "missing route name",
			content:  base("    - path: /calendar\n"),
			wantPath: "spec.routes[0].name",
			wantMsg:  "required",
		},
		{
			name:     "path without leading slash",
			content:  base("    - name: a\n      path: calendar\n"),
			wantPath: "spec.routes[0].path",
			wantMsg:  "must start with /",
		},
		{
			name:     "unknown context",
			content:  base("    - name: a\n      path: /a\n      context: sideways\n"),
			wantPath: "spec.routes[0].context",
		},
		{
			name:     "unknown type",
			content:  base("    - name: a\n      path: /a\n      type: modal\n"),
			wantPath: "spec.routes[0].type",
		},
		{
			name:     "no path and no secondary screen",
			content:  base("    - name: a\n      primary: Dashboard\n"),
			wantPath: "spec.routes[0]",
			wantMsg:  "path or a secondary screen",
		},
		{
			name:     "duplicate names",
			content:  base("    - name: a\n      path: /a\n    - name: a\n      path: /b\n"),
			wantPath: "spec.routes[1].name",
			wantMsg:  "duplicate route name",
		},
		{
			name:     "invalid name characters",
			content:  base("    - name: \"bad name\"\n      path: /a\n"),
			wantPath: "spec.routes[0].name",
			wantMsg:  "invalid route name",
		},
		{
			name:     "query params without path",
			content:  base("    - name: a\n      secondary: X\n      queryParams: [q]\n"),
			wantPath: "spec.routes[0].queryParams",
		},
		{
			name:     "bad canvas context type",
			content:  base("    - name: a\n      path: /a\n      canvasContext: {type: account, id: \"1\"}\n"),
			wantPath: "spec.routes[0].canvasContext.type",
		},
		{
			name:     "canvas context without id",
			content:  base("    - name: a\n      path: /a\n      canvasContext: {type: course}\n"),
			wantPath: "spec.routes[0].canvasContext.id",
		},
		{
			name: "bad screen matching",
			content: `
apiVersion: linkrouter.io/v1
kind: RouteTable
metadata: {name: t}
spec:
  screenMatching: fuzzy
`,
			wantPath: "spec.screenMatching",
		},
		{
			name: "bad listen address",
			content: `
apiVersion: linkrouter.io/v1
kind: RouteTable
metadata: {name: t}
spec:
  server: {listen: "nope"}
`,
			wantPath: "spec.server.listen",
		},
		{
			name: "zero rate limit",
			content: `
apiVersion: linkrouter.io/v1
kind: RouteTable
metadata: {name: t}
spec:
  server: {rateLimit: {rps: 0, burst: 5}}
`,
			wantPath: "spec.server.rateLimit.rps",
		},
		{
			name: "burst below rps",
			content: `
apiVersion: linkrouter.io/v1
kind: RouteTable
metadata: {name: t}
spec:
  server: {rateLimit: {rps: 50, burst: 5}}
`,
			wantPath: "spec.server.rateLimit.burst",
			wantMsg:  "at least rps",
		},
		{
			name: "sampling rate out of range",
			content: `
apiVersion: linkrouter.io/v1
kind: RouteTable
metadata: {name: t}
spec:
  observability: {tracing: {enabled: true, samplingRate: 2}}
`,
			wantPath: "spec.observability.tracing.samplingRate",
		},
		{
			name: "bad log level",
			content: `
apiVersion: linkrouter.io/v1
kind: RouteTable
metadata: {name: t}
spec:
  observability: {logging: {level: loud}}
`,
			wantPath: "spec.observability.logging.level",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := loadTestConfig(t, tt.content)
			err := ValidateConfig(cfg)
			require.Error(t, err)
			assert.True(t, errors.Is(err, util.ErrConfigInvalid))
			assert.Contains(t, validationPaths(t, err), tt.wantPath)
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestValidator_CollectsAllErrors(t *testing.T) {
	t.Parallel()

	cfg := loadTestConfig(t, invalidConfigYAML)
	err := ValidateConfig(cfg)
	require.Error(t, err)

	paths := validationPaths(t, err)
	assert.Contains(t, paths, "apiVersion")
	assert.Contains(t, paths, "spec.routes[0]")
	assert.Contains(t, err.Error(), "validation errors:")
}

func TestValidator_PathChecker(t *testing.T) {
	t.Parallel()

	cfg := loadTestConfig(t, validConfigYAML)

	var checked []string
	v := NewValidator(WithPathChecker(func(path string) error {
		checked = append(checked, path)
		if strings.Contains(path, "pages") {
			return errors.New("pages are not supported")
		}
		return nil
	}))

	err := v.Validate(cfg)
	require.Error(t, err)
	assert.Equal(t, []string{"spec.routes[2].path"}, validationPaths(t, err))
	assert.Contains(t, err.Error(), "pages are not supported")
	assert.Len(t, checked, 3)
}

func TestValidationErrors_Error(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "no validation errors", ValidationErrors{}.Error())
	assert.False(t, ValidationErrors{}.HasErrors())

	single := ValidationErrors{{Path: "kind", Message: "bad"}}
	assert.Equal(t, "kind: bad", single.Error())

	noPath := ValidationError{Message: "nil"}
	assert.Equal(t, "nil", noPath.Error())
}
