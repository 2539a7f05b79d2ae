package xenapi

// Session is the narrow seam to the XenAPI management plane. The relay
// pipeline depends only on this interface; the concrete implementation
// speaks XML-RPC. A Session is used for exactly one command relay and
// then discarded.
type Session interface {
	// LoginWithPassword authenticates and binds the session handle.
	LoginWithPassword(username, password string) error

	// GetThisHost resolves the local host's reference as known to the
	// management plane.
	GetThisHost() (string, error)

	// CallPlugin invokes a named function of a host plugin and returns
	// its raw string result.
	CallPlugin(hostRef, plugin, fn string, args map[string]string) (string, error)

	// Logout terminates the session. Safe to call whether or not login
	// succeeded.
	Logout() error

	// Close releases the underlying connection.
	Close() error
}

// Dialer opens a session against a XenAPI endpoint URL. The relay takes
// a Dialer so tests can substitute a mock session.
type Dialer func(url string) (Session, error)
