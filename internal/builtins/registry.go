// Package builtins holds the commands the shell runs in-process and the
// registry used to look them up by name.
package builtins

import (
	"context"
	"io"
	"slices"
	"sync"

	"github.com/samber/lo"
)

// IO is the set of standard streams a command runs with.
type IO struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Command is a builtin. Run writes its output to the given streams and
// returns an error whose message is reported on Stderr by the caller.
type Command interface {
	Name() string
	Run(ctx context.Context, stdio IO, args []string) error
}

// Registry manages the available builtins.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]Command
}

func NewRegistry() *Registry {
	return &Registry{
		commands: make(map[string]Command),
	}
}

// Register adds a command. A command with the same name is replaced.
func (r *Registry) Register(cmd Command) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands[cmd.Name()] = cmd
}

func (r *Registry) Lookup(name string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, ok := r.commands[name]
	return cmd, ok
}

// Names returns the registered command names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := lo.Keys(r.commands)
	slices.Sort(names)
	return names
}
