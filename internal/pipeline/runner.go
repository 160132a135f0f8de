package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/AndreiStanimir/codecrafters-shell-go/internal/builtins"
)

const (
	statusFailure  = 1
	statusNotExec  = 126
	statusNotFound = 127
)

var ErrCommandNotFound = errors.New("command not found")

// Builtins looks up in-process commands by name.
type Builtins interface {
	Lookup(name string) (builtins.Command, bool)
}

// Runner executes pipelines. Builtins are consulted first, then Path.
type Runner struct {
	Builtins Builtins
	Path     builtins.Lookuper
	Log      *slog.Logger
}

// Run executes p with the given standard streams and returns the exit status
// of the last stage. Errors from individual stages are written to the
// stage's stderr. The returned error is non-nil only when a redirection
// target cannot be opened, in which case nothing runs, or when a single
// stage exit builtin asks the shell to terminate.
func (r *Runner) Run(ctx context.Context, p *Pipeline, stdio builtins.IO) (int, error) {
	if len(p.Stages) == 0 {
		return 0, nil
	}

	stdout, err := openRedirection(p.Stdout)
	if err != nil {
		return statusFailure, err
	}
	if stdout != nil {
		defer stdout.Close()
		stdio.Stdout = stdout
	}

	stderr, err := openRedirection(p.Stderr)
	if err != nil {
		return statusFailure, err
	}
	if stderr != nil {
		defer stderr.Close()
		stdio.Stderr = stderr
	}

	if len(p.Stages) == 1 {
		return r.runSingle(ctx, p.Stages[0], stdio)
	}
	return r.runPipe(ctx, p.Stages, stdio), nil
}

func openRedirection(redir *Redirection) (*os.File, error) {
	if redir == nil {
		return nil, nil
	}
	flag := os.O_WRONLY | os.O_CREATE
	if redir.Append {
		flag |= os.O_APPEND
	} else {
		flag |= os.O_TRUNC
	}
	return os.OpenFile(redir.Target, flag, 0644)
}

// runSingle runs a lone stage. Builtins run in the interpreter itself.
func (r *Runner) runSingle(ctx context.Context, st Stage, stdio builtins.IO) (int, error) {
	if cmd, ok := r.Builtins.Lookup(st.Name()); ok {
		err := cmd.Run(ctx, stdio, st.Args[1:])
		if errors.Is(err, builtins.ErrExit) {
			return 0, err
		}
		return r.report(stdio.Stderr, err), nil
	}

	cmd, err := r.command(ctx, st, stdio)
	if err != nil {
		return r.fail(stdio.Stderr, st, err), nil
	}
	if err := cmd.Start(); err != nil {
		return r.fail(stdio.Stderr, st, err), nil
	}
	r.logger().Debug("stage started", "argv", st.Args, "pid", cmd.Process.Pid)
	return r.wait(st, cmd), nil
}

// stageIO holds the streams of one pipeline stage. closers are the pipe
// ends owned by the stage; they are closed once the stage no longer needs
// them so EOF reaches its neighbours.
type stageIO struct {
	builtins.IO
	closers []io.Closer
}

func (s *stageIO) close() {
	for _, c := range s.closers {
		_ = c.Close()
	}
	s.closers = nil
}

// runPipe connects every stage to the next with an anonymous pipe, starts
// all of them and waits for every one to finish.
func (r *Runner) runPipe(ctx context.Context, stages []Stage, stdio builtins.IO) int {
	stdio.Stdout = lockWriter(stdio.Stdout)
	stdio.Stderr = lockWriter(stdio.Stderr)

	ios := make([]*stageIO, len(stages))
	for i := range stages {
		ios[i] = &stageIO{IO: builtins.IO{Stdin: stdio.Stdin, Stdout: stdio.Stdout, Stderr: stdio.Stderr}}
	}
	for i := 0; i < len(stages)-1; i++ {
		pr, pw, err := os.Pipe()
		if err != nil {
			fmt.Fprintf(stdio.Stderr, "shell: pipe: %v\n", err)
			for _, s := range ios {
				s.close()
			}
			return statusFailure
		}
		ios[i].Stdout = pw
		ios[i].closers = append(ios[i].closers, pw)
		ios[i+1].Stdin = pr
		ios[i+1].closers = append(ios[i+1].closers, pr)
	}

	statuses := make([]int, len(stages))
	var g errgroup.Group
	for i, st := range stages {
		sio := ios[i]

		if cmd, ok := r.Builtins.Lookup(st.Name()); ok {
			g.Go(func() error {
				defer sio.close()
				err := cmd.Run(ctx, sio.IO, st.Args[1:])
				if errors.Is(err, syscall.EPIPE) {
					err = nil
				}
				var exitErr *builtins.ExitError
				if errors.As(err, &exitErr) {
					statuses[i] = exitErr.Code
					return nil
				}
				statuses[i] = r.report(sio.Stderr, err)
				return nil
			})
			continue
		}

		cmd, err := r.command(ctx, st, sio.IO)
		if err == nil {
			err = cmd.Start()
		}
		// the child has its own copies of the pipe ends now
		sio.close()
		if err != nil {
			statuses[i] = r.fail(sio.Stderr, st, err)
			continue
		}
		r.logger().Debug("stage started", "stage", i, "argv", st.Args, "pid", cmd.Process.Pid)
		g.Go(func() error {
			statuses[i] = r.wait(st, cmd)
			return nil
		})
	}
	_ = g.Wait()

	return statuses[len(statuses)-1]
}

// command resolves the stage against PATH and prepares it without starting.
func (r *Runner) command(ctx context.Context, st Stage, stdio builtins.IO) (*exec.Cmd, error) {
	path, ok := r.Path.Lookup(st.Name())
	if !ok {
		return nil, ErrCommandNotFound
	}
	cmd := exec.CommandContext(ctx, path, st.Args[1:]...)
	cmd.Args = st.Args
	cmd.Stdin = stdio.Stdin
	cmd.Stdout = stdio.Stdout
	cmd.Stderr = stdio.Stderr
	return cmd, nil
}

func (r *Runner) wait(st Stage, cmd *exec.Cmd) int {
	err := cmd.Wait()
	status := exitStatus(err)
	r.logger().Debug("stage exited", "argv", st.Args, "status", status)
	return status
}

func (r *Runner) logger() *slog.Logger {
	if r.Log == nil {
		return slog.New(slog.DiscardHandler)
	}
	return r.Log
}

func (r *Runner) fail(w io.Writer, st Stage, err error) int {
	if errors.Is(err, ErrCommandNotFound) {
		fmt.Fprintf(w, "%s: command not found\n", st.Name())
		return statusNotFound
	}
	fmt.Fprintf(w, "shell: %s: %v\n", st.Name(), err)
	return statusNotExec
}

func (r *Runner) report(w io.Writer, err error) int {
	if err == nil {
		return 0
	}
	fmt.Fprintln(w, err)
	return statusFailure
}

func exitStatus(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
			return 128 + int(status.Signal())
		}
		return exitErr.ExitCode()
	}
	return statusFailure
}

type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

// lockWriter serialises writes from concurrently running stages. Files are
// passed through so children inherit the descriptor directly.
func lockWriter(w io.Writer) io.Writer {
	if _, ok := w.(*os.File); ok || w == nil {
		return w
	}
	return &lockedWriter{w: w}
}
