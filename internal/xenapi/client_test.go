package xenapi

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xapi-tools/xenwrap/internal/errors"
)

var methodNameRe = regexp.MustCompile(`<methodName>([^<]+)</methodName>`)

// fakeEndpoint is a minimal XenAPI XML-RPC endpoint returning canned
// response envelopes per method.
type fakeEndpoint struct {
	responses map[string]string // method -> response body
	requests  []string          // raw request bodies, in order
	methods   []string          // method names, in order
}

func (f *fakeEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.requests = append(f.requests, string(body))

	method := ""
	if m := methodNameRe.FindStringSubmatch(string(body)); m != nil {
		method = m[1]
	}
	f.methods = append(f.methods, method)

	w.Header().Set("Content-Type", "text/xml")
	if resp, ok := f.responses[method]; ok {
		fmt.Fprint(w, resp)
		return
	}
	fmt.Fprint(w, successEnvelope(""))
}

func successEnvelope(value string) string {
	return `<?xml version="1.0"?><methodResponse><params><param><value><struct>` +
		`<member><name>Status</name><value><string>Success</string></value></member>` +
		`<member><name>Value</name><value><string>` + value + `</string></value></member>` +
		`</struct></value></param></params></methodResponse>`
}

func failureEnvelope(desc ...string) string {
	var values strings.Builder
	for _, d := range desc {
		values.WriteString(`<value><string>` + d + `</string></value>`)
	}
	return `<?xml version="1.0"?><methodResponse><params><param><value><struct>` +
		`<member><name>Status</name><value><string>Failure</string></value></member>` +
		`<member><name>ErrorDescription</name><value><array><data>` + values.String() + `</data></array></value></member>` +
		`</struct></value></param></params></methodResponse>`
}

func TestClientSessionLifecycle(t *testing.T) {
	endpoint := &fakeEndpoint{
		responses: map[string]string{
			"session.login_with_password": successEnvelope("OpaqueRef:session-1"),
			"session.get_this_host":       successEnvelope("OpaqueRef:host-1"),
			"host.call_plugin":            successEnvelope(`{&quot;ok&quot;: true}`),
			"session.logout":              successEnvelope(""),
		},
	}
	srv := httptest.NewServer(http.HandlerFunc(endpoint.handler))
	defer srv.Close()

	sess, err := Dial(srv.URL)
	require.NoError(t, err)
	defer sess.Close()

	require.NoError(t, sess.LoginWithPassword("root", "secret"))

	hostRef, err := sess.GetThisHost()
	require.NoError(t, err)
	assert.Equal(t, "OpaqueRef:host-1", hostRef)

	result, err := sess.CallPlugin(hostRef, "netwrap", "run_command", map[string]string{
		"cmd":       `["ip","link","show"]`,
		"cmd_input": "null",
	})
	require.NoError(t, err)
	assert.Equal(t, `{"ok": true}`, result)

	require.NoError(t, sess.Logout())

	assert.Equal(t, []string{
		"session.login_with_password",
		"session.get_this_host",
		"host.call_plugin",
		"session.logout",
	}, endpoint.methods)

	// The session handle from login is threaded through later calls.
	assert.Contains(t, endpoint.requests[1], "OpaqueRef:session-1")
	assert.Contains(t, endpoint.requests[2], "OpaqueRef:session-1")
	assert.Contains(t, endpoint.requests[3], "OpaqueRef:session-1")
}

func TestClientLoginFailure(t *testing.T) {
	endpoint := &fakeEndpoint{
		responses: map[string]string{
			"session.login_with_password": failureEnvelope("SESSION_AUTHENTICATION_FAILED", "root"),
		},
	}
	srv := httptest.NewServer(http.HandlerFunc(endpoint.handler))
	defer srv.Close()

	sess, err := Dial(srv.URL)
	require.NoError(t, err)
	defer sess.Close()

	err = sess.LoginWithPassword("root", "wrong")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrRemote))
	assert.Contains(t, err.Error(), "SESSION_AUTHENTICATION_FAILED")
}

func TestClientUnreachableEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // listener gone: connections are refused

	sess, err := Dial(srv.URL)
	require.NoError(t, err)
	defer sess.Close()

	err = sess.LoginWithPassword("root", "secret")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrRemote))
}

func TestClientLogoutWithoutLogin(t *testing.T) {
	endpoint := &fakeEndpoint{}
	srv := httptest.NewServer(http.HandlerFunc(endpoint.handler))
	defer srv.Close()

	sess, err := Dial(srv.URL)
	require.NoError(t, err)
	defer sess.Close()

	// No session handle to terminate: logout is a no-op, not an error.
	require.NoError(t, sess.Logout())
	assert.Empty(t, endpoint.methods)
}
