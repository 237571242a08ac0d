// Package remote runs preflight checks against the hosts a profile names:
// SSH reachability, presence of rsync, and existence of the remote base
// directory. Transfers themselves never go through this package; rsync
// owns its own SSH transport.
package remote

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/user"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/sftp"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
)

const dialTimeout = 10 * time.Second

// ErrNoAgent is returned when no SSH agent socket is available.
var ErrNoAgent = errors.New("no ssh agent (SSH_AUTH_SOCK unset)")

// Target identifies one remote endpoint parsed from a host spec.
type Target struct {
	User string
	Host string
	Port int
}

// ParseTarget parses "host", "user@host" or "user@host:port". The user
// defaults to the current user, the port to 22, matching what rsync's own
// SSH transport would do.
func ParseTarget(spec string) (Target, error) {
	t := Target{Port: 22}

	rest := spec
	if i := strings.IndexByte(rest, '@'); i >= 0 {
		t.User = rest[:i]
		rest = rest[i+1:]
	}
	if t.User == "" {
		t.User = os.Getenv("USER")
	}
	if t.User == "" {
		if u, err := user.Current(); err == nil {
			t.User = u.Username
		}
	}
	if t.User == "" {
		return Target{}, fmt.Errorf("remote: cannot determine ssh user for %q, use user@host", spec)
	}

	if i := strings.LastIndexByte(rest, ':'); i >= 0 {
		port, err := strconv.Atoi(rest[i+1:])
		if err != nil || port <= 0 || port > 65535 {
			return Target{}, fmt.Errorf("remote: bad port in %q", spec)
		}
		t.Port = port
		rest = rest[:i]
	}

	if rest == "" {
		return Target{}, fmt.Errorf("remote: empty host in %q", spec)
	}
	t.Host = rest
	return t, nil
}

// Addr returns the host:port dial address.
func (t Target) Addr() string {
	return net.JoinHostPort(t.Host, strconv.Itoa(t.Port))
}

func (t Target) String() string {
	if t.User != "" {
		return fmt.Sprintf("%s@%s", t.User, t.Addr())
	}
	return t.Addr()
}

// agentAuth returns public-key auth backed by the running SSH agent.
func agentAuth() (ssh.AuthMethod, func(), error) {
	sock := os.Getenv("SSH_AUTH_SOCK")
	if sock == "" {
		return nil, nil, ErrNoAgent
	}
	conn, err := net.Dial("unix", sock)
	if err != nil {
		return nil, nil, fmt.Errorf("remote: dial agent: %w", err)
	}
	ag := agent.NewClient(conn)
	return ssh.PublicKeysCallback(ag.Signers), func() { conn.Close() }, nil
}

// Dial opens an SSH connection to the target using agent auth. The dial
// respects ctx; the caller must close the returned client.
func Dial(ctx context.Context, t Target) (*ssh.Client, error) {
	auth, closeAgent, err := agentAuth()
	if err != nil {
		return nil, err
	}
	defer closeAgent()

	cfg := &ssh.ClientConfig{
		User:            t.User,
		Auth:            []ssh.AuthMethod{auth},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(), //nolint:gosec // hosts come from the user's own profile
		Timeout:         dialTimeout,
	}

	type dialResult struct {
		client *ssh.Client
		err    error
	}
	ch := make(chan dialResult, 1)
	go func() {
		cl, err := ssh.Dial("tcp", t.Addr(), cfg)
		ch <- dialResult{cl, err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.err != nil {
			return nil, fmt.Errorf("remote: dial %s: %w", t.Addr(), r.err)
		}
		return r.client, nil
	}
}

// run executes a command on an established connection and returns its
// trimmed stdout.
func run(client *ssh.Client, command string) (string, error) {
	session, err := client.NewSession()
	if err != nil {
		return "", fmt.Errorf("remote: session: %w", err)
	}
	defer session.Close()

	out, err := session.Output(command)
	if err != nil {
		return "", fmt.Errorf("remote: run %q: %w", command, err)
	}
	return strings.TrimSpace(string(out)), nil
}

// Report is the outcome of one host's preflight.
type Report struct {
	Target       Target
	RsyncVersion string
	BaseDirOK    bool
	Err          error
}

// Check verifies reachability, rsync availability and the base directory
// on one host. ensure creates the base directory when it is missing.
func Check(ctx context.Context, t Target, baseDir string, ensure bool) Report {
	rep := Report{Target: t}

	client, err := Dial(ctx, t)
	if err != nil {
		rep.Err = err
		return rep
	}
	defer client.Close()

	out, err := run(client, "rsync --version")
	if err != nil {
		rep.Err = fmt.Errorf("rsync not usable: %w", err)
		return rep
	}
	if i := strings.IndexByte(out, '\n'); i >= 0 {
		out = out[:i]
	}
	rep.RsyncVersion = out

	sf, err := sftp.NewClient(client)
	if err != nil {
		rep.Err = fmt.Errorf("remote: open sftp: %w", err)
		return rep
	}
	defer sf.Close()

	if _, err := sf.Stat(baseDir); err == nil {
		rep.BaseDirOK = true
		return rep
	}
	if !ensure {
		rep.Err = fmt.Errorf("remote: base dir %s missing on %s", baseDir, t.Host)
		return rep
	}
	if err := sf.MkdirAll(baseDir); err != nil {
		rep.Err = fmt.Errorf("remote: create base dir %s: %w", baseDir, err)
		return rep
	}
	log.Info().Str("host", t.Host).Str("dir", baseDir).Msg("created remote base dir")
	rep.BaseDirOK = true
	return rep
}
