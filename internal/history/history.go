// Package history keeps the list of submitted command lines and persists it
// to a newline-delimited file.
package history

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

type History struct {
	entries []string
	// appended marks how many entries are already on disk for AppendTo.
	appended int
}

func New() *History {
	return &History{}
}

func (h *History) Add(line string) {
	h.entries = append(h.entries, line)
}

func (h *History) Len() int {
	return len(h.entries)
}

// Entries returns a copy of all recorded lines, oldest first.
func (h *History) Entries() []string {
	return append([]string(nil), h.entries...)
}

// Recall returns the entry steps positions before the end, so Recall(1) is
// the most recent line.
func (h *History) Recall(steps int) (string, bool) {
	if steps < 1 || steps > len(h.entries) {
		return "", false
	}
	return h.entries[len(h.entries)-steps], true
}

// Load appends every non-empty line of the file at path. Loaded lines are
// already on disk, so they count as persisted for AppendTo.
func (h *History) Load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open history %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(transform.NewReader(f, unicode.UTF8BOM.NewDecoder()))
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		h.entries = append(h.entries, line)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read history %s: %w", path, err)
	}
	h.appended = len(h.entries)
	return nil
}

// Save overwrites path with the full history.
func (h *History) Save(path string) error {
	if err := writeLines(path, os.O_TRUNC, h.entries); err != nil {
		return err
	}
	h.appended = len(h.entries)
	return nil
}

// AppendTo writes the entries recorded since the previous AppendTo or Save.
func (h *History) AppendTo(path string) error {
	if err := writeLines(path, os.O_APPEND, h.entries[h.appended:]); err != nil {
		return err
	}
	h.appended = len(h.entries)
	return nil
}

func writeLines(path string, mode int, lines []string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|mode, 0644)
	if err != nil {
		return fmt.Errorf("open history %s: %w", path, err)
	}

	w := bufio.NewWriter(f)
	for _, line := range lines {
		w.WriteString(line)
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("write history %s: %w", path, err)
	}
	return f.Close()
}
