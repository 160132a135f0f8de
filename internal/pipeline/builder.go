// Package pipeline turns a tokenized line into stages joined by pipes and
// runs them.
package pipeline

import (
	"errors"
	"fmt"

	"github.com/AndreiStanimir/codecrafters-shell-go/internal/lexer"
)

var ErrSyntax = errors.New("syntax error")

// SyntaxError reports the token the parser did not expect. Token is
// "newline" when the line ended early.
type SyntaxError struct {
	Token string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error near unexpected token `%s'", e.Token)
}

func (e *SyntaxError) Unwrap() error {
	return ErrSyntax
}

type Stream int

const (
	Stdout Stream = 1
	Stderr Stream = 2
)

func (s Stream) String() string {
	if s == Stderr {
		return "stderr"
	}
	return "stdout"
}

// Redirection sends one standard stream of the pipeline to a file.
type Redirection struct {
	Stream Stream
	Target string
	Append bool
}

type Stage struct {
	Args []string
}

func (s Stage) Name() string {
	return s.Args[0]
}

// Pipeline is a list of stages plus at most one redirection per stream.
// Stdout applies to the last stage, Stderr to every stage.
type Pipeline struct {
	Stages []Stage
	Stdout *Redirection
	Stderr *Redirection
}

type redirectOp struct {
	stream Stream
	append bool
}

var redirectOps = map[string]redirectOp{
	lexer.OpStdout:       {Stdout, false},
	lexer.OpStdoutFD:     {Stdout, false},
	lexer.OpAppend:       {Stdout, true},
	lexer.OpAppendFD:     {Stdout, true},
	lexer.OpStderr:       {Stderr, false},
	lexer.OpStderrAppend: {Stderr, true},
}

// Build splits tokens at every bare "|" and pulls redirections out of each
// stage. Stages left without arguments are dropped.
func Build(tokens []lexer.Token) (*Pipeline, error) {
	p := &Pipeline{}

	var current []lexer.Token
	flush := func() error {
		args, err := p.extractRedirections(current)
		if err != nil {
			return err
		}
		if len(args) > 0 {
			p.Stages = append(p.Stages, Stage{Args: args})
		}
		current = nil
		return nil
	}

	for _, tok := range tokens {
		if tok.Is(lexer.OpPipe) {
			if err := flush(); err != nil {
				return nil, err
			}
			continue
		}
		current = append(current, tok)
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Pipeline) extractRedirections(tokens []lexer.Token) ([]string, error) {
	var args []string
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		op, ok := redirectOps[tok.Text]
		if !ok || tok.Quoted {
			args = append(args, tok.Text)
			continue
		}

		if i+1 >= len(tokens) {
			return nil, &SyntaxError{Token: "newline"}
		}
		target := tokens[i+1]
		if target.IsOperator() {
			return nil, &SyntaxError{Token: target.Text}
		}

		r := &Redirection{Stream: op.stream, Target: target.Text, Append: op.append}
		if op.stream == Stderr {
			p.Stderr = r
		} else {
			p.Stdout = r
		}
		i++
	}
	return args, nil
}
