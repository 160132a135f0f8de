package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AndreiStanimir/codecrafters-shell-go/internal/lexer"
)

func build(t *testing.T, line string) *Pipeline {
	t.Helper()
	p, err := Build(lexer.Split(line))
	require.NoError(t, err)
	return p
}

func stageArgs(p *Pipeline) [][]string {
	var out [][]string
	for _, st := range p.Stages {
		out = append(out, st.Args)
	}
	return out
}

func TestBuild_Stages(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected [][]string
	}{
		{"single command", "echo hello world", [][]string{{"echo", "hello", "world"}}},
		{"two stages", "printf 'a\\nb' | grep b", [][]string{{"printf", `a\nb`}, {"grep", "b"}}},
		{"three stages", "cat f | sort | uniq -c", [][]string{{"cat", "f"}, {"sort"}, {"uniq", "-c"}}},
		{"quoted pipe is an argument", "echo '|' x", [][]string{{"echo", "|", "x"}}},
		{"empty stages dropped", "| ls | | wc", [][]string{{"ls"}, {"wc"}}},
		{"empty line", "   ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, stageArgs(build(t, tt.input)))
		})
	}
}

func TestBuild_Redirections(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		args   [][]string
		stdout *Redirection
		stderr *Redirection
	}{
		{
			name:   "stdout truncate",
			input:  "echo hi > out.txt",
			args:   [][]string{{"echo", "hi"}},
			stdout: &Redirection{Stream: Stdout, Target: "out.txt"},
		},
		{
			name:   "explicit fd 1",
			input:  "echo hi 1> out.txt",
			args:   [][]string{{"echo", "hi"}},
			stdout: &Redirection{Stream: Stdout, Target: "out.txt"},
		},
		{
			name:   "stdout append",
			input:  "echo hi >> out.txt",
			args:   [][]string{{"echo", "hi"}},
			stdout: &Redirection{Stream: Stdout, Target: "out.txt", Append: true},
		},
		{
			name:   "explicit fd 1 append",
			input:  "echo hi 1>> out.txt",
			args:   [][]string{{"echo", "hi"}},
			stdout: &Redirection{Stream: Stdout, Target: "out.txt", Append: true},
		},
		{
			name:   "stderr truncate and append",
			input:  "ls nope 2> a.txt 2>> b.txt",
			args:   [][]string{{"ls", "nope"}},
			stderr: &Redirection{Stream: Stderr, Target: "b.txt", Append: true},
		},
		{
			name:   "both streams",
			input:  "cat x 2> err.txt > out.txt",
			args:   [][]string{{"cat", "x"}},
			stdout: &Redirection{Stream: Stdout, Target: "out.txt"},
			stderr: &Redirection{Stream: Stderr, Target: "err.txt"},
		},
		{
			name:   "later stdout wins",
			input:  "echo a > first > second",
			args:   [][]string{{"echo", "a"}},
			stdout: &Redirection{Stream: Stdout, Target: "second"},
		},
		{
			name:   "redirection in the middle of args",
			input:  "echo a > f b",
			args:   [][]string{{"echo", "a", "b"}},
			stdout: &Redirection{Stream: Stdout, Target: "f"},
		},
		{
			name:   "quoted target",
			input:  `echo a > "my file.txt"`,
			args:   [][]string{{"echo", "a"}},
			stdout: &Redirection{Stream: Stdout, Target: "my file.txt"},
		},
		{
			name:  "quoted operator is an argument",
			input: `echo ">" x`,
			args:  [][]string{{"echo", ">", "x"}},
		},
		{
			name:   "redirection on last stage of pipe",
			input:  "cat f | wc -l > n.txt",
			args:   [][]string{{"cat", "f"}, {"wc", "-l"}},
			stdout: &Redirection{Stream: Stdout, Target: "n.txt"},
		},
		{
			name:   "stage emptied by redirection is dropped",
			input:  "> only.txt",
			args:   nil,
			stdout: &Redirection{Stream: Stdout, Target: "only.txt"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := build(t, tt.input)
			assert.Equal(t, tt.args, stageArgs(p))
			assert.Equal(t, tt.stdout, p.Stdout)
			assert.Equal(t, tt.stderr, p.Stderr)
		})
	}
}

func TestBuild_SyntaxErrors(t *testing.T) {
	tests := []struct {
		input string
		token string
	}{
		{"echo hi >", "newline"},
		{"echo hi 2>>", "newline"},
		{"echo hi > | cat", "newline"},
		{"echo hi > >> f", ">>"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			p, err := Build(lexer.Split(tt.input))
			assert.Nil(t, p)
			require.ErrorIs(t, err, ErrSyntax)

			var syntaxErr *SyntaxError
			require.ErrorAs(t, err, &syntaxErr)
			assert.Equal(t, tt.token, syntaxErr.Token)
		})
	}

	_, err := Build(lexer.Split("echo >"))
	assert.EqualError(t, err, "syntax error near unexpected token `newline'")
}
