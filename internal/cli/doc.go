// Package cli implements the xenwrap command-line interface.
//
// The root command carries the whole relay: the first positional
// argument is the config file path and everything after it is the
// command to authorize and forward. Flag parsing stops at the first
// positional argument so command tokens reach the gate untouched.
//
// The pipeline is strictly sequential:
//
//  1. Load and validate the config file
//  2. Authorize the command against the filter rules
//  3. Capture an optional stdin payload (zero-timeout check)
//  4. Relay the command through a XenAPI session
//  5. Print the decoded result
//
// Every failure class maps to a fixed exit status: 98 for usage, 97
// for configuration, 99 for authorization, 96 for remote execution.
// Nothing is retried; the first failure aborts the invocation.
package cli
