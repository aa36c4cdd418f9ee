package device

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"
)

// Transport is one interactive line-oriented connection to a device.
// Commands are sent one line at a time and responses read back until the
// device prompt reappears; the remote CLI has no framing, so callers must
// never pipeline sends.
type Transport interface {
	SendLine(line string) error
	ReadUntilPrompt(timeout time.Duration) (string, error)
	Close() error
}

// promptRe matches a Junos operational ("user@host> ") or configuration
// ("user@host# ") prompt at the end of the received text. "%" covers the
// root shell prompt seen before cli starts.
var promptRe = regexp.MustCompile(`[>#%] ?$`)

// sshTransport drives an interactive shell over SSH with a pty.
// A background goroutine pumps stdout into a channel; ReadUntilPrompt
// accumulates chunks until the prompt pattern matches or the timeout fires.
type sshTransport struct {
	client *ssh.Client
	sess   *ssh.Session
	stdin  io.WriteCloser
	chunks chan []byte
	errs   chan error
}

// DialSSH opens an interactive shell to addr ("host:port") with password
// authentication and returns it as a Transport.
func DialSSH(addr, username, password string, timeout time.Duration) (Transport, error) {
	config := &ssh.ClientConfig{
		User: username,
		Auth: []ssh.AuthMethod{
			ssh.Password(password),
		},
		// Device keys are not tracked in an inventory — production
		// deployments should pin host keys.
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         timeout,
	}

	client, err := ssh.Dial("tcp", addr, config)
	if err != nil {
		return nil, fmt.Errorf("SSH dial %s: %w", addr, err)
	}

	sess, err := client.NewSession()
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("SSH session: %w", err)
	}

	modes := ssh.TerminalModes{
		ssh.ECHO:          0,
		ssh.TTY_OP_ISPEED: 38400,
		ssh.TTY_OP_OSPEED: 38400,
	}
	if err := sess.RequestPty("vt100", 0, 80, modes); err != nil {
		sess.Close()
		client.Close()
		return nil, fmt.Errorf("request pty: %w", err)
	}

	stdin, err := sess.StdinPipe()
	if err != nil {
		sess.Close()
		client.Close()
		return nil, fmt.Errorf("stdin pipe: %w", err)
	}
	stdout, err := sess.StdoutPipe()
	if err != nil {
		sess.Close()
		client.Close()
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}

	if err := sess.Shell(); err != nil {
		sess.Close()
		client.Close()
		return nil, fmt.Errorf("start shell: %w", err)
	}

	t := &sshTransport{
		client: client,
		sess:   sess,
		stdin:  stdin,
		chunks: make(chan []byte, 16),
		errs:   make(chan error, 1),
	}
	go t.readLoop(stdout)

	return t, nil
}

func (t *sshTransport) readLoop(r io.Reader) {
	buf := make([]byte, 4096)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			t.chunks <- chunk
		}
		if err != nil {
			t.errs <- err
			return
		}
	}
}

// SendLine writes one command line to the remote shell.
func (t *sshTransport) SendLine(line string) error {
	if _, err := io.WriteString(t.stdin, line+"\n"); err != nil {
		return fmt.Errorf("send %q: %w", line, err)
	}
	return nil
}

// ReadUntilPrompt accumulates output until the device prompt reappears.
// On timeout it returns whatever was received together with the error, so
// partial echoes are preserved for diagnostics.
func (t *sshTransport) ReadUntilPrompt(timeout time.Duration) (string, error) {
	var sb strings.Builder
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for {
		select {
		case chunk := <-t.chunks:
			sb.Write(chunk)
			if promptRe.MatchString(strings.TrimRight(sb.String(), "\r\n")) {
				return sb.String(), nil
			}
		case err := <-t.errs:
			if err == io.EOF {
				return sb.String(), fmt.Errorf("connection closed by device")
			}
			return sb.String(), fmt.Errorf("read: %w", err)
		case <-deadline.C:
			return sb.String(), fmt.Errorf("timeout waiting for prompt after %s", timeout)
		}
	}
}

// Close tears down the shell and the SSH connection.
func (t *sshTransport) Close() error {
	t.stdin.Close()
	t.sess.Close()
	return t.client.Close()
}
