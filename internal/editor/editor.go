// Package editor implements the interactive line editor: a byte-at-a-time
// state machine with tab completion and history recall.
package editor

import (
	"bufio"
	"errors"
	"io"
	"os"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/chzyer/readline"
	"github.com/samber/lo"
)

const (
	bell      = string(rune(readline.CharBell))
	erase     = "\b \b"
	clearLine = "\x1b[2K\r"
)

// Completer answers prefix queries over the known command names.
type Completer interface {
	Completions(prefix string) []string
	LongestCommonPrefix(prefix string) string
}

// History gives read access to previously submitted lines.
type History interface {
	Len() int
	Recall(steps int) (string, bool)
}

// Terminal puts the input device into raw mode for the duration of a
// ReadLine call.
type Terminal interface {
	Enter() (restore func(), err error)
}

type Editor struct {
	in       io.ByteReader
	out      io.Writer
	term     Terminal
	complete Completer
	history  History
	Prompt   string
}

// New returns an editor reading keystrokes from in. A file is read one byte
// per call with no buffering, so keystrokes typed ahead of a command stay in
// the file for the command to read.
func New(in io.Reader, out io.Writer, term Terminal, complete Completer, history History) *Editor {
	var br io.ByteReader
	switch r := in.(type) {
	case *os.File:
		br = &fileReader{f: r}
	case io.ByteReader:
		br = r
	default:
		br = bufio.NewReader(in)
	}
	return &Editor{
		in:       br,
		out:      out,
		term:     term,
		complete: complete,
		history:  history,
		Prompt:   "$ ",
	}
}

// editBuffer is the state of one input cycle.
type editBuffer struct {
	line   string
	tabs   int
	recall int
}

// ReadLine prints the prompt and collects one line. On end of input it
// returns an empty line and io.EOF.
func (e *Editor) ReadLine() (string, error) {
	restore, err := e.term.Enter()
	defer restore()
	if err != nil {
		return "", err
	}

	e.write(e.Prompt)

	var buf editBuffer
	for {
		c, err := e.in.ReadByte()
		if err != nil {
			e.write("\n")
			if errors.Is(err, io.EOF) {
				return "", io.EOF
			}
			return "", err
		}

		switch c {
		case readline.CharEnter, readline.CharCtrlJ:
			e.write("\n")
			return buf.line, nil
		case readline.CharTab:
			e.tab(&buf)
			continue
		case readline.CharBackspace, readline.CharCtrlH:
			if buf.line != "" {
				r, size := utf8.DecodeLastRuneInString(buf.line)
				buf.line = buf.line[:len(buf.line)-size]
				e.write(strings.Repeat(erase, readline.Runes{}.Width(r)))
			}
		case readline.CharEsc:
			if err := e.escape(&buf); err != nil {
				e.write("\n")
				if errors.Is(err, io.EOF) {
					return "", io.EOF
				}
				return "", err
			}
		default:
			if c >= ' ' {
				buf.line += string([]byte{c})
				e.out.Write([]byte{c})
			}
		}
		buf.tabs = 0
	}
}

func (e *Editor) tab(buf *editBuffer) {
	matches := e.matches(buf.line)

	switch len(matches) {
	case 0:
		e.write(bell)
		buf.tabs = 0
	case 1:
		suffix := matches[0][len(buf.line):] + " "
		buf.line += suffix
		e.write(suffix)
		buf.tabs = 0
	default:
		lcp := e.complete.LongestCommonPrefix(buf.line)
		if len(lcp) > len(buf.line) {
			e.write(lcp[len(buf.line):])
			buf.line = lcp
			return
		}

		buf.tabs++
		if buf.tabs == 1 {
			e.write(bell)
			return
		}
		e.write("\n" + strings.Join(matches, "  ") + "\n" + e.Prompt + buf.line)
		buf.tabs = 0
	}
}

func (e *Editor) matches(prefix string) []string {
	if prefix == "" {
		return nil
	}
	matches := lo.Uniq(e.complete.Completions(prefix))
	slices.Sort(matches)
	return matches
}

// escape consumes an ESC [ <dir> sequence. Unknown sequences are dropped.
func (e *Editor) escape(buf *editBuffer) error {
	c, err := e.in.ReadByte()
	if err != nil {
		return err
	}
	if c != readline.CharEscapeEx {
		return nil
	}
	dir, err := e.in.ReadByte()
	if err != nil {
		return err
	}

	switch dir {
	case 'A':
		if buf.recall >= e.history.Len() {
			return nil
		}
		buf.recall++
		buf.line, _ = e.history.Recall(buf.recall)
		e.redraw(buf.line)
	case 'B':
		if buf.recall == 0 {
			return nil
		}
		buf.recall--
		buf.line = ""
		if buf.recall > 0 {
			buf.line, _ = e.history.Recall(buf.recall)
		}
		e.redraw(buf.line)
	case 'C', 'D':
		// cursor movement is not supported
	}
	return nil
}

func (e *Editor) redraw(line string) {
	e.write(clearLine + e.Prompt + line)
}

func (e *Editor) write(s string) {
	io.WriteString(e.out, s)
}

type fileReader struct {
	f   *os.File
	buf [1]byte
}

func (r *fileReader) ReadByte() (byte, error) {
	for {
		n, err := r.f.Read(r.buf[:])
		if n == 1 {
			return r.buf[0], nil
		}
		if err != nil {
			return 0, err
		}
	}
}
