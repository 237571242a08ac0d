// Package syncer orchestrates one sync run: resolve the workspace, build
// the per-host transfer plan, spawn the transfers, and feed their output
// through the in-place terminal display.
package syncer

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/lsync/lsync/internal/config"
	"github.com/lsync/lsync/internal/history"
	"github.com/lsync/lsync/internal/mux"
	"github.com/lsync/lsync/internal/rsync"
	"github.com/lsync/lsync/internal/term"
	"github.com/lsync/lsync/internal/workspace"
)

// Request carries the flags of one sync invocation.
type Request struct {
	Server     string
	FileOrPath string
	Master     string
	Delete     bool
	Back       bool
	GitRepo    bool
	// Yes skips the confirmation prompt.
	Yes bool
}

// Runner executes sync runs. Out is the terminal; In feeds the
// confirmation prompt. History may be nil to disable run records.
type Runner struct {
	Out      io.Writer
	In       io.Reader
	Config   *config.Config
	Profiles *config.Profiles
	History  *history.Store
	// Plain disables the in-place display (stdout is not a terminal).
	Plain bool
}

// target is the fully resolved source/destination pair of a run.
type target struct {
	Root        string
	LocalDir    string
	RemoteDir   string
	Rel         string
	ContentOnly bool
	GitIgnore   string
}

// resolve maps the invocation onto concrete paths. With no explicit path
// the whole sync root is transferred; otherwise the named file or
// directory is, keeping its position relative to the root.
func resolve(cwd, fileOrPath, baseDir string, roots []string) (target, error) {
	root, err := workspace.FindRoot(cwd, roots)
	if err != nil {
		return target{}, err
	}

	local := root
	if fileOrPath != "" {
		local = filepath.Join(cwd, fileOrPath)
	}

	rel, err := workspace.Relativize(root, local)
	if err != nil {
		return target{}, err
	}

	return target{
		Root:        root,
		LocalDir:    local,
		RemoteDir:   filepath.Join(baseDir, rel),
		Rel:         rel,
		ContentOnly: workspace.IsDir(local),
		GitIgnore:   workspace.ProbeGitignore(local),
	}, nil
}

// Run performs one sync: banners, confirmation, transfer fan-out, live
// display, exit collection, history record.
func (r *Runner) Run(ctx context.Context, req Request) error {
	prof, err := r.Profiles.Profile(req.Server)
	if err != nil {
		return err
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("syncer: getwd: %w", err)
	}

	tgt, err := resolve(cwd, req.FileOrPath, prof.BaseDir, r.Profiles.SyncRoots)
	if err != nil {
		return err
	}

	plan, err := rsync.NewPlan(prof.Hosts, tgt.RemoteDir, tgt.LocalDir, req.Master, tgt.ContentOnly, rsync.Options{
		Delete:     req.Delete,
		Back:       req.Back,
		GitRepo:    req.GitRepo,
		GitIgnore:  tgt.GitIgnore,
		IgnoreFile: r.ignoreFile(),
	})
	if err != nil {
		return err
	}

	r.printPreamble(req, tgt, plan)

	if !req.Yes {
		fmt.Fprint(r.Out, "Press Enter to continue...")
		_, _ = bufio.NewReader(r.In).ReadString('\n')
	}

	term.NewCursor(r.Out).ClearScreen()
	r.printRunHeader(req, tgt, plan)

	started := time.Now()
	status, err := r.transfer(ctx, tgt, plan)
	if r.History != nil {
		r.History.Append(history.Run{
			Path:      tgt.Rel,
			Hosts:     plan.Hosts,
			Back:      req.Back,
			Delete:    req.Delete,
			GitRepo:   req.GitRepo,
			Status:    status,
			StartedAt: started,
			Duration:  time.Since(started),
		})
		r.printLastRun()
	}
	return err
}

// transfer spawns one process per planned command and drains their
// output into the display until all of them have exited.
func (r *Runner) transfer(ctx context.Context, tgt target, plan *rsync.Plan) (string, error) {
	procs := make([]*mux.Proc, 0, len(plan.Commands))
	handles := make([]mux.Handle, 0, len(plan.Commands))
	for _, argv := range plan.Commands {
		p, err := mux.StartProc(argv[0], argv[1:]...)
		if err != nil {
			for _, running := range procs {
				running.Kill()
			}
			return history.StatusFailed, err
		}
		procs = append(procs, p)
		handles = append(handles, p)
	}

	if err := r.drain(ctx, tgt, plan, handles); err != nil {
		for _, p := range procs {
			p.Kill()
		}
		return history.StatusFailed, err
	}

	var failed []string
	for i, p := range procs {
		if err := p.Wait(); err != nil {
			log.Error().Err(err).Str("host", plan.Hosts[i]).Msg("transfer failed")
			failed = append(failed, plan.Hosts[i])
		}
	}
	if len(failed) > 0 {
		return history.StatusFailed, fmt.Errorf("syncer: transfer failed on %s", strings.Join(failed, ", "))
	}
	return history.StatusSuccess, nil
}

func (r *Runner) drain(ctx context.Context, tgt target, plan *rsync.Plan, handles []mux.Handle) error {
	if r.Plain {
		sink := newPlainSink(r.Out, plan.Hosts)
		defer sink.Flush()
		return mux.Drain(ctx, sink, handles)
	}

	sess, err := term.NewSession(r.Out, len(handles), "syncing "+tgt.Rel)
	if err != nil {
		return err
	}
	defer sess.Close()
	return mux.Drain(ctx, sess, handles)
}

func (r *Runner) ignoreFile() string {
	path := r.Config.IgnoreFile()
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

func (r *Runner) printPreamble(req Request, tgt target, plan *rsync.Plan) {
	if req.Delete {
		banner := term.YellowBlock(strings.Repeat("#", 28))
		fmt.Fprintf(r.Out, "%s\n%s\n%s\n", banner,
			term.YellowBlock("# Delete option is enabled #"), banner)
	}
	if req.Back {
		banner := term.RedBlock(strings.Repeat("#", 26))
		fmt.Fprintf(r.Out, "%s\n%s\n%s\n", banner,
			term.RedBlock("# Back option is enabled #"), banner)
	}

	r.printLastRun()

	src, dst := "local", strings.Join(plan.Hosts, ",")
	if req.Back {
		src, dst = dst, src
	}
	fmt.Fprintf(r.Out, "Syncing folder %s from %s -> %s\n",
		term.BlueBlock(tgt.Rel), term.BlueBlock(src), term.BlueBlock(dst))

	for _, argv := range plan.Commands {
		fmt.Fprintf(r.Out, "Executing: %s\n", term.GreenBlock(strings.Join(argv, " ")))
	}
}

func (r *Runner) printRunHeader(req Request, tgt target, plan *rsync.Plan) {
	fmt.Fprintf(r.Out,
		"Syncing %s with hosts %s\n(delete=%v)\n(back=%v)\n(git_repo=%v)\n%s\n",
		term.BlueBlock(tgt.Rel), term.BlueBlock(strings.Join(plan.Hosts, ",")),
		req.Delete, req.Back, req.GitRepo,
		strings.Repeat("=", 68),
	)
}

func (r *Runner) printLastRun() {
	if r.History == nil {
		return
	}
	last, err := r.History.Last()
	if err != nil {
		log.Debug().Err(err).Msg("read last run")
		return
	}
	if last == nil {
		return
	}
	fmt.Fprintf(r.Out, "Last run: %s\n", history.Format(last))
}
