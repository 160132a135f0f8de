package builtins

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/AndreiStanimir/codecrafters-shell-go/internal/history"
)

var ErrExit = errors.New("exit")

// ExitError is returned by the exit builtin and carries the status the
// shell should terminate with.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit %d", e.Code)
}

func (e *ExitError) Unwrap() error {
	return ErrExit
}

// Lookuper resolves a command name to an executable path.
type Lookuper interface {
	Lookup(name string) (string, bool)
}

// Env is the interpreter state the standard builtins need.
type Env struct {
	Home    string
	Path    Lookuper
	History *history.History
}

// Standard returns a registry with exit, echo, pwd, cd, type and history.
func Standard(env Env) *Registry {
	r := NewRegistry()
	r.Register(exitCmd{})
	r.Register(echoCmd{})
	r.Register(pwdCmd{})
	r.Register(cdCmd{home: env.Home})
	r.Register(typeCmd{registry: r, path: env.Path})
	r.Register(historyCmd{history: env.History})
	return r
}

type exitCmd struct{}

func (exitCmd) Name() string { return "exit" }

func (exitCmd) Run(_ context.Context, _ IO, args []string) error {
	code := 0
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("exit: %s: numeric argument required", args[0])
		}
		code = n
	}
	return &ExitError{Code: code}
}

type echoCmd struct{}

func (echoCmd) Name() string { return "echo" }

func (echoCmd) Run(_ context.Context, stdio IO, args []string) error {
	_, err := fmt.Fprintln(stdio.Stdout, strings.Join(args, " "))
	return err
}

type pwdCmd struct{}

func (pwdCmd) Name() string { return "pwd" }

func (pwdCmd) Run(_ context.Context, stdio IO, _ []string) error {
	dir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("pwd: %w", err)
	}
	_, err = fmt.Fprintln(stdio.Stdout, dir)
	return err
}

type cdCmd struct {
	home string
}

func (cdCmd) Name() string { return "cd" }

func (c cdCmd) Run(_ context.Context, _ IO, args []string) error {
	arg := "~"
	if len(args) > 0 {
		arg = args[0]
	}

	target := arg
	switch {
	case arg == "~":
		target = c.home
	case strings.HasPrefix(arg, "~/"):
		target = filepath.Join(c.home, arg[2:])
	}
	if target == "" {
		return errors.New("cd: HOME not set")
	}

	if err := os.Chdir(target); err != nil {
		switch {
		case errors.Is(err, os.ErrNotExist):
			return fmt.Errorf("cd: %s: No such file or directory", arg)
		case errors.Is(err, os.ErrPermission):
			return fmt.Errorf("cd: %s: Permission denied", arg)
		default:
			return fmt.Errorf("cd: %s: Not a directory", arg)
		}
	}
	return nil
}

type typeCmd struct {
	registry *Registry
	path     Lookuper
}

func (typeCmd) Name() string { return "type" }

func (c typeCmd) Run(_ context.Context, stdio IO, args []string) error {
	var errs []error
	for _, name := range args {
		if _, ok := c.registry.Lookup(name); ok {
			fmt.Fprintf(stdio.Stdout, "%s is a shell builtin\n", name)
			continue
		}
		if c.path != nil {
			if path, ok := c.path.Lookup(name); ok {
				fmt.Fprintf(stdio.Stdout, "%s is %s\n", name, path)
				continue
			}
		}
		errs = append(errs, fmt.Errorf("%s: not found", name))
	}
	return errors.Join(errs...)
}

type historyCmd struct {
	history *history.History
}

func (historyCmd) Name() string { return "history" }

func (c historyCmd) Run(_ context.Context, stdio IO, args []string) error {
	if c.history == nil {
		return nil
	}

	if len(args) > 0 && strings.HasPrefix(args[0], "-") {
		if len(args) < 2 {
			return fmt.Errorf("history: %s: option requires an argument", args[0])
		}
		switch args[0] {
		case "-r":
			return c.history.Load(args[1])
		case "-w":
			return c.history.Save(args[1])
		case "-a":
			return c.history.AppendTo(args[1])
		default:
			return fmt.Errorf("history: %s: invalid option", args[0])
		}
	}

	entries := c.history.Entries()
	start := 0
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 0 {
			return fmt.Errorf("history: %s: numeric argument required", args[0])
		}
		start = max(len(entries)-n, 0)
	}
	return printEntries(stdio.Stdout, entries, start)
}

func printEntries(w io.Writer, entries []string, start int) error {
	for i := start; i < len(entries); i++ {
		if _, err := fmt.Fprintf(w, "%5d  %s\n", i+1, entries[i]); err != nil {
			return err
		}
	}
	return nil
}
