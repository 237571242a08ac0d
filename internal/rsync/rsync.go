// Package rsync builds the transfer command lines a sync run executes.
// It never runs anything itself; the planned argv lists go to the process
// multiplexer.
package rsync

import (
	"errors"
	"fmt"
)

// ErrMasterRequired is returned when a reverse sync targets several hosts
// without naming which one to pull from.
var ErrMasterRequired = errors.New("master host required when syncing back from multiple hosts")

// Options control how a transfer command is assembled.
type Options struct {
	// Delete removes destination files absent from the source.
	Delete bool
	// Back reverses direction: remote becomes the source.
	Back bool
	// GitRepo syncs the .git directory instead of excluding it.
	GitRepo bool
	// GitIgnore is a .gitignore path used as an exclude file, "" for none.
	GitIgnore string
	// IgnoreFile is the shared exclude file, "" for none. Only applied on
	// forward syncs; pulls come back unfiltered.
	IgnoreFile string
}

// Command assembles one rsync argv for a local/remote directory pair.
// remote and local already carry any trailing slash that directory
// content semantics require.
func Command(remote, local string, opts Options) []string {
	src, dst := local, remote
	if opts.Back {
		src, dst = remote, local
	}

	args := []string{"rsync", "-ah", "--info=progress2"}
	if opts.Delete {
		args = append(args, "--delete")
	}
	if opts.GitIgnore != "" {
		args = append(args, "--exclude-from="+opts.GitIgnore)
	}
	if opts.IgnoreFile != "" && !opts.Back {
		args = append(args, "--exclude-from="+opts.IgnoreFile)
	}
	if !opts.GitRepo {
		args = append(args, "--exclude=.git")
	}
	return append(args, src, dst)
}

// Plan holds one transfer command per target host.
type Plan struct {
	Hosts    []string
	Commands [][]string
}

// NewPlan builds the per-host commands for a run. localDir and remoteDir
// are the resolved absolute paths; contentOnly appends the trailing slash
// that makes rsync transfer directory contents rather than the directory
// entry itself. A reverse sync against several hosts must name a master,
// and only that host is pulled from.
func NewPlan(hosts []string, remoteDir, localDir, master string, contentOnly bool, opts Options) (*Plan, error) {
	if opts.Back && len(hosts) > 1 {
		if master == "" {
			return nil, ErrMasterRequired
		}
		filtered := hosts[:0:0]
		for _, h := range hosts {
			if h == master {
				filtered = append(filtered, h)
			}
		}
		if len(filtered) == 0 {
			return nil, fmt.Errorf("rsync: master %q is not in the host list %v", master, hosts)
		}
		hosts = filtered
	}

	slash := ""
	if contentOnly {
		slash = "/"
	}

	p := &Plan{Hosts: hosts}
	for _, host := range hosts {
		remote := fmt.Sprintf("%s:%s%s", host, remoteDir, slash)
		local := localDir + slash
		p.Commands = append(p.Commands, Command(remote, local, opts))
	}
	return p, nil
}
