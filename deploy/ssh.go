package deploy

import (
	"errors"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"

	"github.com/franksops/shuttle/config"
)

// SSHDialer is the production Dialer: password-authenticated SSH with an
// SFTP subsystem for file transfer and plain sessions for commands.
type SSHDialer struct {
	// Timeout bounds the TCP connect and handshake. Zero means no limit.
	Timeout time.Duration
}

// Dial connects and authenticates against the target.
func (d SSHDialer) Dial(target config.Target) (Conn, error) {
	cfg := &ssh.ClientConfig{
		User: target.User,
		Auth: []ssh.AuthMethod{
			ssh.Password(target.Password),
		},
		// Targets are provisioned hosts on a closed network; key pinning
		// is not part of the deployment contract.
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         d.Timeout,
	}

	client, err := ssh.Dial("tcp", target.Addr(), cfg)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", target.Addr(), err)
	}

	sftpClient, err := sftp.NewClient(client)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("open sftp subsystem on %s: %w", target.Addr(), err)
	}

	return &sshConn{client: client, sftp: sftpClient}, nil
}

type sshConn struct {
	client *ssh.Client
	sftp   *sftp.Client
}

func (c *sshConn) MkdirAll(p string) error {
	return c.sftp.MkdirAll(p)
}

func (c *sshConn) OpenWrite(p string) (io.WriteCloser, error) {
	if err := c.sftp.MkdirAll(path.Dir(p)); err != nil {
		return nil, err
	}
	return c.sftp.Create(p)
}

func (c *sshConn) Exec(cmd string) (string, int, error) {
	session, err := c.client.NewSession()
	if err != nil {
		return "", 0, fmt.Errorf("open session: %w", err)
	}
	defer session.Close()

	output, err := session.CombinedOutput(cmd)
	if err != nil {
		var exitErr *ssh.ExitError
		if errors.As(err, &exitErr) {
			return string(output), exitErr.ExitStatus(), nil
		}
		return string(output), 0, err
	}
	return string(output), 0, nil
}

func (c *sshConn) Close() error {
	c.sftp.Close()
	return c.client.Close()
}
