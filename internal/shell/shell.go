// Package shell wires the line editor, tokenizer and pipeline runner into
// the interactive read-eval loop.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/AndreiStanimir/codecrafters-shell-go/internal/builtins"
	"github.com/AndreiStanimir/codecrafters-shell-go/internal/config"
	"github.com/AndreiStanimir/codecrafters-shell-go/internal/editor"
	"github.com/AndreiStanimir/codecrafters-shell-go/internal/history"
	"github.com/AndreiStanimir/codecrafters-shell-go/internal/lexer"
	"github.com/AndreiStanimir/codecrafters-shell-go/internal/pipeline"
	"github.com/AndreiStanimir/codecrafters-shell-go/internal/trie"
)

type Shell struct {
	cfg      config.Config
	stdin    io.Reader
	out      io.Writer
	errw     io.Writer
	editor   *editor.Editor
	history  *history.History
	commands *builtins.Registry
	runner   *pipeline.Runner
	log      *slog.Logger
}

// New builds a shell reading keystrokes from in. Commands inherit in as
// their standard input only when it is a file; otherwise they read nothing,
// so they cannot swallow the lines still queued for the shell.
func New(cfg config.Config, in io.Reader, out, errw io.Writer, term editor.Terminal, log *slog.Logger) *Shell {
	hist := history.New()
	commands := builtins.Standard(builtins.Env{
		Home:    cfg.Home,
		Path:    cfg.Path,
		History: hist,
	})

	names := trie.New()
	for _, name := range commands.Names() {
		names.Insert(name)
	}
	executables := cfg.Path.Executables()
	for _, name := range executables {
		names.Insert(name)
	}
	log.Debug("completion index built", "builtins", len(commands.Names()), "executables", len(executables))

	var stdin io.Reader
	if f, ok := in.(*os.File); ok {
		stdin = f
	}

	return &Shell{
		cfg:      cfg,
		stdin:    stdin,
		out:      out,
		errw:     errw,
		editor:   editor.New(in, out, term, names, hist),
		history:  hist,
		commands: commands,
		runner:   &pipeline.Runner{Builtins: commands, Path: cfg.Path, Log: log},
		log:      log,
	}
}

// Run reads and executes lines until exit or end of input and returns the
// status the process should exit with.
func (s *Shell) Run(ctx context.Context) int {
	s.loadHistory()
	defer s.saveHistory()

	for {
		line, err := s.editor.ReadLine()
		if errors.Is(err, io.EOF) {
			return 0
		}
		if err != nil {
			s.log.Error("read line", "error", err)
			return 1
		}

		if strings.TrimSpace(line) != "" {
			s.history.Add(line)
		}

		var exitErr *builtins.ExitError
		if err := s.Execute(ctx, line); errors.As(err, &exitErr) {
			return exitErr.Code
		}
	}
}

// Execute runs a single line. It reports every error itself and returns
// only an *builtins.ExitError.
func (s *Shell) Execute(ctx context.Context, line string) error {
	tokens := lexer.Split(line)
	if len(tokens) == 0 {
		return nil
	}

	p, err := pipeline.Build(tokens)
	if err != nil {
		fmt.Fprintf(s.errw, "shell: %v\n", err)
		return nil
	}

	status, err := s.runner.Run(ctx, p, builtins.IO{
		Stdin:  s.stdin,
		Stdout: s.out,
		Stderr: s.errw,
	})
	if errors.Is(err, builtins.ErrExit) {
		return err
	}
	if err != nil {
		fmt.Fprintf(s.errw, "shell: %v\n", err)
		return nil
	}
	s.log.Debug("line finished", "stages", len(p.Stages), "status", status)
	return nil
}

func (s *Shell) loadHistory() {
	if s.cfg.HistFile == "" {
		return
	}
	err := s.history.Load(s.cfg.HistFile)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.log.Warn("load history", "path", s.cfg.HistFile, "error", err)
		return
	}
	s.log.Debug("history loaded", "path", s.cfg.HistFile, "entries", s.history.Len())
}

func (s *Shell) saveHistory() {
	if s.cfg.HistFile == "" {
		return
	}
	if err := s.history.Save(s.cfg.HistFile); err != nil {
		s.log.Warn("save history", "path", s.cfg.HistFile, "error", err)
	}
}
