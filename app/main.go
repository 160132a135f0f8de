package main

import (
	"context"
	"errors"
	"os"

	"github.com/AndreiStanimir/codecrafters-shell-go/internal/config"
	"github.com/AndreiStanimir/codecrafters-shell-go/internal/editor"
	"github.com/AndreiStanimir/codecrafters-shell-go/internal/logging"
	"github.com/AndreiStanimir/codecrafters-shell-go/internal/shell"
	"github.com/AndreiStanimir/codecrafters-shell-go/internal/terminal"
)

func main() {
	cfg := config.Load(os.Getenv)
	log := logging.New(cfg.LogLevel)

	var term editor.Terminal = terminal.Nop{}
	raw, err := terminal.Open(int(os.Stdin.Fd()))
	switch {
	case err == nil:
		term = raw
	case !errors.Is(err, terminal.ErrNotTerminal):
		log.Warn("raw mode unavailable", "error", err)
	}

	s := shell.New(cfg, os.Stdin, os.Stdout, os.Stderr, term, log)
	os.Exit(s.Run(context.Background()))
}
