// Package testing provides test doubles for the xenapi package.
package testing

import (
	"errors"
	"sync"

	"github.com/xapi-tools/xenwrap/internal/xenapi"
)

// PluginCall records one CallPlugin invocation.
type PluginCall struct {
	HostRef  string
	Plugin   string
	Function string
	Args     map[string]string
}

// MockSession simulates a XenAPI session for testing. Each stage can be
// scripted to fail, and every call is recorded so tests can assert the
// login/call/logout ordering guarantees.
type MockSession struct {
	mu sync.Mutex

	// Scripted failures, one per stage. nil means the stage succeeds.
	LoginErr  error
	HostErr   error
	CallErr   error
	LogoutErr error

	// HostRef is returned by GetThisHost. Defaults to a fixed opaque ref.
	HostRef string

	// CallResult is the raw string returned by CallPlugin.
	CallResult string

	// Call tracking.
	LoginCalled  bool
	LogoutCalled bool
	CloseCalled  bool
	Username     string
	Password     string
	PluginCalls  []PluginCall
}

var _ xenapi.Session = (*MockSession)(nil)

// LoginWithPassword implements xenapi.Session.
func (m *MockSession) LoginWithPassword(username, password string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LoginCalled = true
	m.Username = username
	m.Password = password
	return m.LoginErr
}

// GetThisHost implements xenapi.Session.
func (m *MockSession) GetThisHost() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.HostErr != nil {
		return "", m.HostErr
	}
	if m.HostRef == "" {
		return "OpaqueRef:mock-host", nil
	}
	return m.HostRef, nil
}

// CallPlugin implements xenapi.Session.
func (m *MockSession) CallPlugin(hostRef, plugin, fn string, args map[string]string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PluginCalls = append(m.PluginCalls, PluginCall{
		HostRef:  hostRef,
		Plugin:   plugin,
		Function: fn,
		Args:     args,
	})
	if m.CallErr != nil {
		return "", m.CallErr
	}
	return m.CallResult, nil
}

// Logout implements xenapi.Session.
func (m *MockSession) Logout() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LogoutCalled = true
	return m.LogoutErr
}

// Close implements xenapi.Session.
func (m *MockSession) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CloseCalled {
		return errors.New("session already closed")
	}
	m.CloseCalled = true
	return nil
}
