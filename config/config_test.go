package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", `
api_token: file-token
data_center: ca1
default_survey_owner: UR_owner
default_library_owner: UR_library
filter:
  active: 'isActive == true'
export:
  poll_interval: 2s
  concurrency: 8
logging:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "file-token", cfg.APIToken)
	assert.Equal(t, "ca1", cfg.DataCenter)
	assert.Equal(t, "UR_library", cfg.DefaultLibraryOwner)
	assert.Equal(t, "isActive == true", cfg.Filter["active"])
	assert.Equal(t, 2*time.Second, cfg.Export.PollInterval)
	assert.Equal(t, 8, cfg.Export.Concurrency)
	assert.Equal(t, 30*time.Minute, cfg.Export.Timeout)
	assert.Equal(t, "csv", cfg.Export.Format)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", "data_center: ca1\napi_token: file-token\n")
	t.Setenv("QUALTRICS_API_TOKEN", "env-token")
	t.Setenv("QUALTRICS_EXPORT_CONCURRENCY", "2")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env-token", cfg.APIToken)
	assert.Equal(t, 2, cfg.Export.Concurrency)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadSearchWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("QUALTRICS_DATA_CENTER", "fra1")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "fra1", cfg.DataCenter)
}

func TestValidate(t *testing.T) {
	base := func() map[string]any {
		return map[string]any{"data_center": "ca1"}
	}

	tests := []struct {
		name    string
		mutate  func(m map[string]any)
		wantErr string
	}{
		{name: "defaults are valid", mutate: func(map[string]any) {}},
		{
			name:    "missing data center",
			mutate:  func(m map[string]any) { delete(m, "data_center") },
			wantErr: "data_center",
		},
		{
			name:    "data center with path",
			mutate:  func(m map[string]any) { m["data_center"] = "ca1/evil" },
			wantErr: "data_center",
		},
		{
			name:    "concurrency too high",
			mutate:  func(m map[string]any) { m["export"] = map[string]any{"concurrency": 50} },
			wantErr: "export.concurrency",
		},
		{
			name:    "undecodable export format",
			mutate:  func(m map[string]any) { m["export"] = map[string]any{"format": "spss"} },
			wantErr: "export.format",
		},
		{
			name:    "poll interval too short",
			mutate:  func(m map[string]any) { m["export"] = map[string]any{"poll_interval": "10ms"} },
			wantErr: "export.poll_interval",
		},
		{
			name:    "invalid logging level",
			mutate:  func(m map[string]any) { m["logging"] = map[string]any{"level": "verbose"} },
			wantErr: "invalid logging level: verbose",
		},
		{
			name:    "invalid logging format",
			mutate:  func(m map[string]any) { m["logging"] = map[string]any{"format": "xml"} },
			wantErr: "invalid logging format: xml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := base()
			tt.mutate(m)

			cfg, err := FromMap(m)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.NotNil(t, cfg)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestQualtricsConfig(t *testing.T) {
	cfg := &Config{DataCenter: "ca1", DefaultSurveyOwner: "UR_1", DefaultLibraryOwner: "UR_2"}
	qc := cfg.Qualtrics("tok")
	assert.Equal(t, "ca1", qc.DataCenter)
	assert.Equal(t, "tok", qc.APIToken)
	assert.Equal(t, "UR_2", qc.DefaultLibraryOwner)
}

func TestResolve(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	envPath := writeFile(t, dir, ".env", "QUALTRICS_API_TOKEN=dotenv-token\n")
	missing := filepath.Join(dir, "missing.env")

	notTTY, err := os.CreateTemp(dir, "stdin")
	require.NoError(t, err)
	t.Cleanup(func() { notTTY.Close() })
	prompt := FromPrompt(terminal.Stdio{In: notTTY, Out: os.Stdout, Err: os.Stderr})

	tests := []struct {
		name    string
		sources []TokenSource
		want    string
		wantErr error
	}{
		{
			name:    "config wins",
			sources: []TokenSource{FromConfig(&Config{APIToken: "cfg-token"}), FromDotenv(envPath)},
			want:    "cfg-token",
		},
		{
			name:    "falls through to dotenv",
			sources: []TokenSource{FromConfig(&Config{}), FromDotenv(envPath)},
			want:    "dotenv-token",
		},
		{
			name:    "missing dotenv skipped",
			sources: []TokenSource{FromDotenv(missing), FromConfig(&Config{APIToken: " spaced "})},
			want:    "spaced",
		},
		{
			name:    "prompt skipped without terminal",
			sources: []TokenSource{FromConfig(nil), FromDotenv(missing), prompt},
			wantErr: ErrNoToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := Resolve(ctx, tt.sources...)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, token)
		})
	}
}
