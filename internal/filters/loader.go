package filters

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/ini.v1"

	"github.com/xapi-tools/xenwrap/internal/errors"
	"github.com/xapi-tools/xenwrap/internal/logger"
)

// filtersSection is the section holding rule definitions inside a
// *.filters file.
const filtersSection = "Filters"

// fileSuffix selects rule files within a search directory.
const fileSuffix = ".filters"

// Load reads every rule file under the given search directories, in
// directory order, files sorted by name within each directory. A search
// directory that does not exist is skipped: the same config ships to
// hosts with different filter packages installed. A file that exists
// but cannot be parsed is a hard error.
func Load(dirs []string) (*RuleSet, error) {
	return LoadWithLogger(dirs, logger.Default())
}

// LoadWithLogger is Load with an explicit logger.
func LoadWithLogger(dirs []string, log logger.Logger) (*RuleSet, error) {
	var rules []Rule
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			log.Debug("[filters] skipping %s: %v", dir, err)
			continue
		}

		var names []string
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), fileSuffix) {
				continue
			}
			names = append(names, entry.Name())
		}
		sort.Strings(names)

		for _, name := range names {
			path := filepath.Join(dir, name)
			fileRules, err := loadFile(path)
			if err != nil {
				return nil, err
			}
			log.Debug("[filters] loaded %d rule(s) from %s", len(fileRules), path)
			rules = append(rules, fileRules...)
		}
	}
	return NewRuleSet(rules), nil
}

// loadFile parses one *.filters file.
func loadFile(path string) ([]Rule, error) {
	f, err := ini.Load(path)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to parse filter file: "+path,
			"Check the file is valid sectioned key/value text")
	}

	sec, err := f.GetSection(filtersSection)
	if err != nil {
		return nil, errors.New(errors.ErrConfig,
			fmt.Sprintf("No [%s] section in %s", filtersSection, path),
			"Every filter file needs a [Filters] section")
	}

	var rules []Rule
	for _, key := range sec.Keys() {
		rule, err := parseRule(key.Name(), key.String())
		if err != nil {
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				fmt.Sprintf("Invalid rule '%s' in %s", key.Name(), path),
				"Rules look like: name: CommandFilter, /sbin/ip, root")
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// parseRule parses a rule value of the form
// "<Kind>, <exec>, <run-as>[, <arg>...]".
func parseRule(name, value string) (Rule, error) {
	fields := strings.Split(value, ",")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	if len(fields) < 3 {
		return Rule{}, fmt.Errorf("expected at least kind, exec path and run-as, got %q", value)
	}

	rule := Rule{
		Name:  name,
		Kind:  fields[0],
		Exec:  fields[1],
		RunAs: fields[2],
		Args:  fields[3:],
	}

	switch rule.Kind {
	case KindCommand, KindRegExp, KindPath:
	default:
		return Rule{}, fmt.Errorf("unknown filter kind %q", rule.Kind)
	}
	if rule.Exec == "" {
		return Rule{}, fmt.Errorf("empty exec path in %q", value)
	}
	return rule, nil
}
