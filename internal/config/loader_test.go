package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xapi-tools/xenwrap/internal/errors"
)

// writeConfig writes content to a temp file and returns its path.
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rootwrap.conf")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
filters_path = /etc/xenwrap/filters.d, /usr/share/xenwrap/filters.d
exec_dirs = /sbin, /usr/sbin, /bin

[xenapi]
xenapi_connection_url = https://localhost:443
xenapi_connection_username = root
xenapi_connection_password = secret
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"/etc/xenwrap/filters.d", "/usr/share/xenwrap/filters.d"}, cfg.FilterPaths)
	assert.Equal(t, []string{"/sbin", "/usr/sbin", "/bin"}, cfg.ExecDirs)
	assert.Equal(t, "https://localhost:443", cfg.XenAPI.URL)
	assert.Equal(t, "root", cfg.XenAPI.Username)
	assert.Equal(t, "secret", cfg.XenAPI.Password)
}

func TestLoadSectionNameCaseInsensitive(t *testing.T) {
	path := writeConfig(t, `
filters_path = /etc/xenwrap/filters.d
exec_dirs = /sbin

[XenAPI]
xenapi_connection_url = https://localhost
xenapi_connection_password = secret
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://localhost", cfg.XenAPI.URL)
}

func TestLoadDefaultUsername(t *testing.T) {
	path := writeConfig(t, `
filters_path = /etc/xenwrap/filters.d
exec_dirs = /sbin

[xenapi]
xenapi_connection_url = https://localhost
xenapi_connection_password = secret
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultUsername, cfg.XenAPI.Username)
}

func TestLoadEmptyExecDirsFallsBackToPath(t *testing.T) {
	t.Setenv("PATH", "/sbin"+string(os.PathListSeparator)+"/usr/sbin")

	path := writeConfig(t, `
filters_path = /etc/xenwrap/filters.d
exec_dirs =

[xenapi]
xenapi_connection_url = https://localhost
xenapi_connection_password = secret
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"/sbin", "/usr/sbin"}, cfg.ExecDirs)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.conf"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name: "missing filters_path",
			content: `
exec_dirs = /sbin

[xenapi]
xenapi_connection_url = https://localhost
xenapi_connection_password = secret
`,
		},
		{
			name: "missing exec_dirs",
			content: `
filters_path = /etc/xenwrap/filters.d

[xenapi]
xenapi_connection_url = https://localhost
xenapi_connection_password = secret
`,
		},
		{
			name: "no xenapi section",
			content: `
filters_path = /etc/xenwrap/filters.d
exec_dirs = /sbin
`,
		},
		{
			name: "duplicate same-case xenapi sections",
			content: `
filters_path = /etc/xenwrap/filters.d
exec_dirs = /sbin

[xenapi]
xenapi_connection_url = https://one
xenapi_connection_password = secret

[xenapi]
xenapi_connection_url = https://two
xenapi_connection_password = other
`,
		},
		{
			name: "duplicate case-variant xenapi sections",
			content: `
filters_path = /etc/xenwrap/filters.d
exec_dirs = /sbin

[xenapi]
xenapi_connection_url = https://localhost
xenapi_connection_password = secret

[XENAPI]
xenapi_connection_url = https://other
xenapi_connection_password = other
`,
		},
		{
			name: "empty url",
			content: `
filters_path = /etc/xenwrap/filters.d
exec_dirs = /sbin

[xenapi]
xenapi_connection_url =
xenapi_connection_password = secret
`,
		},
		{
			name: "empty password",
			content: `
filters_path = /etc/xenwrap/filters.d
exec_dirs = /sbin

[xenapi]
xenapi_connection_url = https://localhost
xenapi_connection_password =
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrConfig), "want CONFIG error, got: %v", err)
		})
	}
}
