// Package input captures an optional payload from standard input.
//
// The readiness check is a zero-timeout poll: the process never blocks
// waiting for a payload. Absence of a payload is a distinct state from
// an empty payload, and the remote call serializes the two differently.
package input

import (
	"io"
	"os"

	"golang.org/x/sys/unix"

	"github.com/xapi-tools/xenwrap/internal/errors"
)

// Capture checks f for buffered data without blocking and, if any is
// ready, drains it fully into a single payload. A nil result means no
// payload was present at the time of the check. Capture is meant to run
// exactly once per invocation, before the remote call.
func Capture(f *os.File) (*string, error) {
	ready, err := pollReadable(int(f.Fd()))
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrRemote,
			"Failed to poll standard input",
			"")
	}
	if !ready {
		return nil, nil
	}

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrRemote,
			"Failed to read standard input",
			"")
	}
	payload := string(data)
	return &payload, nil
}

// pollReadable performs a poll(2) with zero timeout on fd. A closed or
// errored stream counts as readable so the subsequent read can observe
// EOF, the same way select(2) reports it.
func pollReadable(fd int) (bool, error) {
	fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
	for {
		n, err := unix.Poll(fds, 0)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return false, err
		}
		if n == 0 {
			return false, nil
		}
		return fds[0].Revents&(unix.POLLIN|unix.POLLHUP|unix.POLLERR) != 0, nil
	}
}
