package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"

	"github.com/xapi-tools/xenwrap/internal/errors"
)

// xenapiSectionName is matched case-insensitively against section names.
// Exactly one section must match or the config is rejected.
const xenapiSectionName = "xenapi"

// Keys required in the default section.
const (
	keyFiltersPath = "filters_path"
	keyExecDirs    = "exec_dirs"
)

// Keys read from the xenapi section.
const (
	keyURL      = "xenapi_connection_url"
	keyUsername = "xenapi_connection_username"
	keyPassword = "xenapi_connection_password"
)

// Load reads and validates the config file at path.
// Every failure is a CONFIG error: the caller never proceeds to
// authorization or remote calls with a partially loaded config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Config file not found: "+path,
				"Check the path given as the first argument")
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to read config file: "+path,
			"Check file permissions")
	}

	f, err := ini.Load(data)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to parse config file: "+path,
			"Check the file is valid sectioned key/value text")
	}

	def := f.Section(ini.DefaultSection)
	for _, key := range []string{keyFiltersPath, keyExecDirs} {
		if !def.HasKey(key) {
			return nil, errors.New(errors.ErrConfig,
				fmt.Sprintf("Missing required key '%s' in %s", key, path),
				"Add the key to the top of the config file, before any section")
		}
	}

	cfg := &Config{
		FilterPaths: splitList(def.Key(keyFiltersPath).String()),
		ExecDirs:    splitList(def.Key(keyExecDirs).String()),
	}

	// A present-but-blank exec_dirs falls back to the invoking
	// environment's PATH entries.
	if len(cfg.ExecDirs) == 0 {
		cfg.ExecDirs = nonEmpty(filepath.SplitList(os.Getenv("PATH")))
	}

	sec, err := findXenAPISection(f, data, path)
	if err != nil {
		return nil, err
	}

	cfg.XenAPI = Credentials{
		URL:      sec.Key(keyURL).String(),
		Username: sec.Key(keyUsername).String(),
		Password: sec.Key(keyPassword).String(),
	}
	if cfg.XenAPI.Username == "" {
		cfg.XenAPI.Username = DefaultUsername
	}

	if cfg.XenAPI.URL == "" {
		return nil, errors.New(errors.ErrConfig,
			fmt.Sprintf("Missing or empty '%s' in %s", keyURL, path),
			"Set the XenAPI endpoint, e.g. https://localhost:443")
	}
	if cfg.XenAPI.Password == "" {
		return nil, errors.New(errors.ErrConfig,
			fmt.Sprintf("Missing or empty '%s' in %s", keyPassword, path),
			"Set the XenAPI login password")
	}

	return cfg, nil
}

// findXenAPISection locates the single section whose name equals
// "xenapi" case-insensitively. Zero or multiple matches is fatal:
// silently picking one would make the credential source ambiguous.
//
// The count comes from the raw text, not the parsed file: the parser
// merges identically named sections before Sections() can see them,
// which would let a duplicate [xenapi] section through with the later
// section's credentials quietly winning.
func findXenAPISection(f *ini.File, data []byte, path string) (*ini.Section, error) {
	switch count := countSectionHeaders(data, xenapiSectionName); {
	case count == 0:
		return nil, errors.New(errors.ErrConfig,
			fmt.Sprintf("No [%s] section in %s", xenapiSectionName, path),
			"Add a [xenapi] section with the connection credentials")
	case count > 1:
		return nil, errors.New(errors.ErrConfig,
			fmt.Sprintf("Multiple [%s] sections in %s", xenapiSectionName, path),
			"Keep exactly one xenapi section")
	}

	for _, sec := range f.Sections() {
		if strings.EqualFold(sec.Name(), xenapiSectionName) {
			return sec, nil
		}
	}
	return nil, errors.New(errors.ErrConfig,
		fmt.Sprintf("No [%s] section in %s", xenapiSectionName, path),
		"Add a [xenapi] section with the connection credentials")
}

// countSectionHeaders counts raw section-header lines whose name equals
// name case-insensitively.
func countSectionHeaders(data []byte, name string) int {
	count := 0
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "[") {
			continue
		}
		end := strings.Index(line, "]")
		if end < 0 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(line[1:end]), name) {
			count++
		}
	}
	return count
}

// splitList parses a comma-separated list, trimming whitespace and
// dropping empty entries.
func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

// nonEmpty filters empty strings out of a list.
func nonEmpty(items []string) []string {
	var out []string
	for _, item := range items {
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
