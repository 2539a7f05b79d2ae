package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/xapi-tools/xenwrap/internal/config"
	"github.com/xapi-tools/xenwrap/internal/errors"
	"github.com/xapi-tools/xenwrap/internal/filters"
	"github.com/xapi-tools/xenwrap/internal/input"
	"github.com/xapi-tools/xenwrap/internal/logger"
	"github.com/xapi-tools/xenwrap/internal/xenapi"
)

// RelayOptions holds the relay workflow inputs. Matcher, Dial, Stdin,
// and Stdout default to the real implementations when unset; tests
// substitute fakes through them.
type RelayOptions struct {
	ConfigPath string
	Tokens     []string

	Stdin  *os.File
	Stdout io.Writer

	Matcher filters.Matcher
	Dial    xenapi.Dialer
}

// Relay runs the full pipeline: load config, authorize, capture stdin,
// remote call, print result. Steps run in strict sequence and the first
// failure aborts with its class preserved for exit-status mapping.
func Relay(opts RelayOptions) error {
	log := logger.Default()

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}

	matcher := opts.Matcher
	if matcher == nil {
		matcher, err = filters.Load(cfg.FilterPaths)
		if err != nil {
			return err
		}
	}

	// Authorization is evaluated exactly once; the gate never rewrites
	// the tokens.
	rule, ok := matcher.Match(opts.Tokens, cfg.ExecDirs)
	if !ok {
		return errors.New(errors.ErrAuth,
			"Unauthorized command: "+strings.Join(opts.Tokens, " "),
			"No filter rule permits this command on this host")
	}
	log.Debug("[relay] permitted by rule %q", rule.Name)

	stdin := opts.Stdin
	if stdin == nil {
		stdin = os.Stdin
	}
	payload, err := input.Capture(stdin)
	if err != nil {
		return err
	}

	dial := opts.Dial
	if dial == nil {
		dial = xenapi.Dial
	}
	sess, err := dial(cfg.XenAPI.URL)
	if err != nil {
		return err
	}
	defer sess.Close()

	result, err := xenapi.RunCommand(sess,
		cfg.XenAPI.Username, cfg.XenAPI.Password, opts.Tokens, payload)
	if err != nil {
		return err
	}

	stdout := opts.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	out, err := json.Marshal(result)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrRemote,
			"Failed to encode plugin result", "")
	}
	fmt.Fprintln(stdout, string(out))
	return nil
}
