// Package config collects the environment the shell depends on.
package config

import (
	"log/slog"
	"os"

	"github.com/AndreiStanimir/codecrafters-shell-go/internal/logging"
	"github.com/AndreiStanimir/codecrafters-shell-go/internal/pathenv"
)

type Config struct {
	Path     pathenv.Path
	Home     string
	HistFile string
	LogLevel slog.Level
}

// Load reads the configuration through getenv. An empty HISTFILE disables
// history persistence.
func Load(getenv func(string) string) Config {
	if getenv == nil {
		getenv = os.Getenv
	}
	return Config{
		Path:     pathenv.Parse(getenv("PATH")),
		Home:     getenv("HOME"),
		HistFile: getenv("HISTFILE"),
		LogLevel: logging.ParseLevel(getenv("SHELL_LOG_LEVEL")),
	}
}
