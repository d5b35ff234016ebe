// Package deploy pushes a completed local artifact to remote targets over
// SSH/SFTP, one target at a time, and runs templated post-transfer
// commands on each.
package deploy

import (
	"io"

	"github.com/franksops/shuttle/config"
)

// Conn is one authenticated session against a deployment target. It can
// create remote directories, stream remote files, and execute shell
// commands, all over the same underlying connection.
type Conn interface {
	// MkdirAll creates the remote directory and any missing parents.
	MkdirAll(path string) error

	// OpenWrite creates or truncates the remote file for streaming writes.
	OpenWrite(path string) (io.WriteCloser, error)

	// Exec runs a shell command remotely and returns its combined output
	// and exit status. A nonzero exit status is not an error.
	Exec(cmd string) (output string, exitStatus int, err error)

	Close() error
}

// Dialer connects and authenticates against a target. The pipeline
// depends on this seam rather than on a concrete transport so the fan-out
// logic is testable without a live SSH server.
type Dialer interface {
	Dial(target config.Target) (Conn, error)
}

// CheckConnection dials and authenticates against a target, then
// disconnects. It is the single-target connectivity test exposed on the
// control surface.
func CheckConnection(dialer Dialer, target config.Target) error {
	conn, err := dialer.Dial(target)
	if err != nil {
		return err
	}
	return conn.Close()
}
