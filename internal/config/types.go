package config

// DefaultUsername is used when the xenapi section omits a username.
const DefaultUsername = "root"

// Config is the immutable result of loading a wrapper config file.
// It is built once per invocation and never mutated afterwards.
type Config struct {
	// FilterPaths are the directories searched for *.filters rule files.
	FilterPaths []string

	// ExecDirs are the directories a command's executable must live
	// under for a filter rule to apply.
	ExecDirs []string

	// XenAPI holds the management plane connection credentials.
	XenAPI Credentials
}

// Credentials identify the XenAPI endpoint and login.
type Credentials struct {
	URL      string
	Username string
	Password string
}
