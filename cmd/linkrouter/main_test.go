package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vyrodovalexey/linkrouter/internal/config"
	"github.com/vyrodovalexey/linkrouter/internal/observability"
	"github.com/vyrodovalexey/linkrouter/internal/router"
)

const testTable = `
apiVersion: linkrouter.io/v1
kind: RouteTable
metadata:
  name: cli
spec:
  fullscreenScreens: [ConferenceDetails]
  routes:
    - name: assignment
      path: /courses/:course_id/assignments/:assignment_id
      type: detail
    - name: conference
      path: /courses/:course_id/conferences/:conference_id
      secondary: ConferenceDetails
    - name: settings
      path: /courses/:course_id/settings
      context: do_not_route
  observability:
    logging: {level: error}
`

func writeTable(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "routes.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func decodeLines(t *testing.T, out string) []map[string]any {
	t.Helper()
	var lines []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m), line)
		lines = append(lines, m)
	}
	return lines
}

func TestParseFlags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		args    []string
		want    cliFlags
		wantErr string
	}{
		{
			name: "urls and flags",
			args: []string{"-config", "x.yaml", "-domain", "school.instructure.com", "-log-level", "debug", "/a", "/b"},
			want: cliFlags{
				configPath: "x.yaml",
				logLevel:   "debug",
				domain:     "school.instructure.com",
				urls:       []string{"/a", "/b"},
			},
		},
		{
			name: "listen and shutdown timeout in seconds",
			args: []string{"-config", "x.yaml", "-listen", "127.0.0.1:9000", "-shutdown-timeout", "20"},
			want: cliFlags{
				configPath:      "x.yaml",
				listen:          "127.0.0.1:9000",
				shutdownTimeout: 20 * time.Second,
				urls:            []string{},
			},
		},
		{
			name: "domain as url",
			args: []string{"-config", "x.yaml", "-domain", "https://school.instructure.com:443"},
			want: cliFlags{configPath: "x.yaml", domain: "https://school.instructure.com:443", urls: []string{}},
		},
		{name: "bad domain", args: []string{"-domain", "bad_host!"}, wantErr: "invalid -domain"},
		{name: "bad listen", args: []string{"-listen", "nope"}, wantErr: "invalid -listen"},
		{name: "bad timeout", args: []string{"-shutdown-timeout", "soon"}, wantErr: "invalid -shutdown-timeout"},
		{name: "unknown flag", args: []string{"-bogus"}, wantErr: "flag provided but not defined"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := parseFlags(tt.args, &bytes.Buffer{})
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFlags_EnvFallback(t *testing.T) {
	t.Setenv(envConfigPath, "/etc/linkrouter/table.yaml")
	t.Setenv(envDomain, "env.instructure.com")
	t.Setenv(envLogFormat, "console")

	got, err := parseFlags(nil, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, "/etc/linkrouter/table.yaml", got.configPath)
	assert.Equal(t, "env.instructure.com", got.domain)
	assert.Equal(t, "console", got.logFormat)

	got, err = parseFlags([]string{"-domain", "flag.instructure.com"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, "flag.instructure.com", got.domain)
}

func TestValidateDomain(t *testing.T) {
	t.Parallel()

	for _, domain := range []string{"school.instructure.com", "school.instructure.com:8443", "https://school.instructure.com/login"} {
		assert.NoError(t, validateDomain(domain), domain)
	}
	for _, domain := range []string{"school..com", "https://", "-bad.com"} {
		assert.Error(t, validateDomain(domain), domain)
	}
}

func TestRun_Version(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	code := run([]string{"-version"}, &stdout, &stderr)

	assert.Equal(t, exitOK, code)
	assert.Contains(t, stdout.String(), "linkrouter version dev")
}

func TestRun_UsageErrors(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	assert.Equal(t, exitUsage, run([]string{"-listen", "nope"}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "invalid -listen")

	stderr.Reset()
	assert.Equal(t, exitOK, run([]string{"-h"}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "Usage: linkrouter")
}

func TestRun_ConfigErrors(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	missing := filepath.Join(t.TempDir(), "missing.yaml")
	assert.Equal(t, exitError, run([]string{"-config", missing, "/courses/1"}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "config file not found")

	stderr.Reset()
	bad := writeTable(t, strings.Replace(testTable, "/courses/:course_id/settings", "/courses/:/settings", 1))
	assert.Equal(t, exitError, run([]string{"-config", bad, "/courses/1"}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "failed to load route table")
	assert.Contains(t, stderr.String(), "spec.routes[2].path")
}

func TestRun_ResolveMode(t *testing.T) {
	t.Parallel()

	path := writeTable(t, testTable)

	var stdout, stderr bytes.Buffer
	code := run([]string{
		"-config", path,
		"-domain", "school.instructure.com",
		"https://school.instructure.com/courses/1/assignments/2",
		"https://school.instructure.com/courses/1/conferences/3",
		"https://school.instructure.com/courses/1/settings",
		"https://elsewhere.edu/courses/1/assignments/2",
		"",
	}, &stdout, &stderr)
	require.Equal(t, exitOK, code, stderr.String())

	lines := decodeLines(t, stdout.String())
	require.Len(t, lines, 5)

	assert.Equal(t, "routed", lines[0]["outcome"])
	assert.Equal(t, "course_1", lines[0]["contextId"])
	assert.Equal(t, "detail", lines[0]["placement"])
	assert.Equal(t, map[string]any{"course_id": "1", "assignment_id": "2"}, lines[0]["params"])

	assert.Equal(t, "fullscreen", lines[1]["placement"])
	assert.Equal(t, "suppressed", lines[2]["outcome"])
	assert.Equal(t, "foreign_host", lines[3]["outcome"])
	assert.Equal(t, "invalid", lines[4]["outcome"])
	assert.Equal(t, "", lines[4]["url"])
}

func TestApplication_OnReload(t *testing.T) {
	t.Parallel()

	rt := router.New()
	app := &application{
		router:  rt,
		logger:  observability.NopLogger(),
		metrics: observability.NewMetrics("reload_test"),
	}

	cfg, err := config.NewLoader().LoadFromReader(strings.NewReader(testTable))
	require.NoError(t, err)

	app.onReload(cfg)
	assert.Equal(t, 3, rt.Len())

	broken := *cfg
	broken.Spec.Routes = []config.RouteConfig{{Name: "bad", Path: "/a/:id/b/:id"}}
	app.onReload(&broken)
	assert.Equal(t, 3, rt.Len(), "failed reload keeps the previous table")
}

func TestApplication_ServeReleasesOnStartFailure(t *testing.T) {
	t.Parallel()

	busy, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer busy.Close()

	path := writeTable(t, testTable)
	loader := config.NewLoader()
	cfg, err := loader.Load(path)
	require.NoError(t, err)

	rt := router.New()
	require.NoError(t, rt.LoadRoutes(&cfg.Spec))

	app := &application{
		flags:     cliFlags{listen: busy.Addr().String(), shutdownTimeout: time.Second},
		path:      path,
		config:    cfg,
		router:    rt,
		loader:    loader,
		validator: config.NewValidator(config.WithPathChecker(router.ValidateTemplate)),
		logger:    observability.NopLogger(),
	}

	err = app.serve(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), busy.Addr().String())

	require.NotNil(t, app.watcher)
	assert.False(t, app.watcher.IsRunning(), "watcher is stopped when the server cannot start")
}

func TestApplication_Settings(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	app := &application{config: cfg}
	assert.Equal(t, config.DefaultListenAddress, app.serverConfig().Listen)
	assert.Equal(t, config.DefaultShutdownTimeout, app.shutdownTimeout())

	app.flags = cliFlags{listen: "127.0.0.1:0", shutdownTimeout: time.Second}
	assert.Equal(t, "127.0.0.1:0", app.serverConfig().Listen)
	assert.Equal(t, time.Second, app.shutdownTimeout())
	assert.Equal(t, config.DefaultListenAddress, cfg.Spec.Server.Listen, "flags do not mutate the table")
}

func TestInitTracer(t *testing.T) {
	t.Parallel()

	tracer, err := initTracer(nil)
	require.NoError(t, err)
	assert.False(t, tracer.Enabled())

	tracer, err = initTracer(&config.TracingConfig{ServiceName: "custom"})
	require.NoError(t, err)
	assert.False(t, tracer.Enabled())
}
