// Package xenapi implements the remote execution client against a
// XenAPI management plane. The session lifecycle is fixed: login,
// resolve the local host, one plugin call, logout.
package xenapi

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"strings"

	"github.com/kolo/xmlrpc"

	"github.com/xapi-tools/xenwrap/internal/errors"
	"github.com/xapi-tools/xenwrap/internal/logger"
)

// statusSuccess is the Status value of a successful XenAPI response
// envelope.
const statusSuccess = "Success"

// Client is the XML-RPC backed Session implementation.
type Client struct {
	rpc *xmlrpc.Client
	log logger.Logger
	ref string // session handle, set by login, cleared by logout
}

var _ Session = (*Client)(nil)

// Dial opens an XML-RPC connection to the XenAPI endpoint at url.
// The management endpoint presents a self-signed certificate, so
// certificate verification is disabled, matching how local management
// agents connect to it.
func Dial(url string) (Session, error) {
	transport := &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
	}
	rpc, err := xmlrpc.NewClient(url, transport)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrRemote,
			"Failed to connect to XenAPI endpoint "+url,
			"Check xenapi_connection_url in the config file")
	}
	return &Client{rpc: rpc, log: logger.NewEnvLogger("[xenapi]")}, nil
}

// envelope is the structured response every XenAPI call returns.
type envelope struct {
	Status           string   `xmlrpc:"Status"`
	Value            string   `xmlrpc:"Value"`
	ErrorDescription []string `xmlrpc:"ErrorDescription"`
}

// call performs one XML-RPC round trip and unwraps the XenAPI response
// envelope.
func (c *Client) call(method string, params ...interface{}) (string, error) {
	c.log.Debug("calling %s", method)

	var res envelope
	if err := c.rpc.Call(method, params, &res); err != nil {
		return "", errors.WrapWithCode(err, errors.ErrRemote,
			fmt.Sprintf("XenAPI call %s failed", method),
			"Check the endpoint is reachable and speaks XML-RPC")
	}
	if res.Status != statusSuccess {
		return "", errors.New(errors.ErrRemote,
			fmt.Sprintf("XenAPI call %s returned %s: %s",
				method, res.Status, strings.Join(res.ErrorDescription, " ")),
			"")
	}
	return res.Value, nil
}

// LoginWithPassword implements Session.
func (c *Client) LoginWithPassword(username, password string) error {
	ref, err := c.call("session.login_with_password", username, password)
	if err != nil {
		return err
	}
	c.ref = ref
	return nil
}

// GetThisHost implements Session.
func (c *Client) GetThisHost() (string, error) {
	return c.call("session.get_this_host", c.ref, c.ref)
}

// CallPlugin implements Session.
func (c *Client) CallPlugin(hostRef, plugin, fn string, args map[string]string) (string, error) {
	return c.call("host.call_plugin", c.ref, hostRef, plugin, fn, args)
}

// Logout implements Session. Without a session handle there is nothing
// to terminate, so an unauthenticated logout is a no-op rather than an
// error.
func (c *Client) Logout() error {
	if c.ref == "" {
		return nil
	}
	_, err := c.call("session.logout", c.ref)
	c.ref = ""
	return err
}

// Close implements Session.
func (c *Client) Close() error {
	return c.rpc.Close()
}
