package xenapi

import (
	"encoding/json"

	"github.com/xapi-tools/xenwrap/internal/errors"
	"github.com/xapi-tools/xenwrap/internal/logger"
)

// The dom0 plugin and function handling relayed commands.
const (
	PluginName     = "netwrap"
	PluginFunction = "run_command"
)

// Argument names in the plugin call.
const (
	argCommand = "cmd"
	argInput   = "cmd_input"
)

// RunCommand performs the full remote round trip: login, resolve the
// local host, one plugin call, decode. Logout runs on every path,
// including failures in any stage; a logout failure never masks the
// primary error.
//
// The tokens and payload are each serialized to JSON independently. An
// absent payload serializes to null, which is distinct from an empty
// string and must stay that way: the plugin treats the two differently.
func RunCommand(sess Session, username, password string, tokens []string, payload *string) (interface{}, error) {
	defer func() {
		if err := sess.Logout(); err != nil {
			logger.Default().Warn("[xenapi] logout failed: %v", err)
		}
	}()

	if err := sess.LoginWithPassword(username, password); err != nil {
		return nil, err
	}

	hostRef, err := sess.GetThisHost()
	if err != nil {
		return nil, err
	}

	cmdArg, _ := json.Marshal(tokens)
	inputArg, _ := json.Marshal(payload)

	raw, err := sess.CallPlugin(hostRef, PluginName, PluginFunction, map[string]string{
		argCommand: string(cmdArg),
		argInput:   string(inputArg),
	})
	if err != nil {
		return nil, err
	}

	var result interface{}
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrRemote,
			"Failed to decode plugin response",
			"The dom0 plugin should return a JSON document")
	}
	return result, nil
}
