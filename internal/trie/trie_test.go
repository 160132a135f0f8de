package trie

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrie_InsertAndSearch(t *testing.T) {
	tr := New()
	tr.Insert("echo")
	tr.Insert("exit")

	assert.True(t, tr.Search("echo"))
	assert.True(t, tr.Search("exit"))
	assert.False(t, tr.Search("ech"))
	assert.False(t, tr.Search("echoes"))
	assert.True(t, tr.StartsWith("ec"))
	assert.True(t, tr.StartsWith(""))
	assert.False(t, tr.StartsWith("x"))
}

func TestTrie_Completions(t *testing.T) {
	tests := []struct {
		name     string
		words    []string
		prefix   string
		expected []string
	}{
		{
			name:     "two matches",
			words:    []string{"echo", "ecxx", "exit"},
			prefix:   "ec",
			expected: []string{"echo", "ecxx"},
		},
		{
			name:     "prefix is a word",
			words:    []string{"git", "git-shell", "gitk"},
			prefix:   "git",
			expected: []string{"git", "git-shell", "gitk"},
		},
		{
			name:     "no match",
			words:    []string{"echo"},
			prefix:   "ls",
			expected: nil,
		},
		{
			name:     "walk fails midway",
			words:    []string{"echo"},
			prefix:   "ecz",
			expected: nil,
		},
		{
			name:     "empty prefix returns everything",
			words:    []string{"pwd", "cd"},
			prefix:   "",
			expected: []string{"cd", "pwd"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := New()
			for _, w := range tt.words {
				tr.Insert(w)
			}
			assert.Equal(t, tt.expected, tr.Completions(tt.prefix))
		})
	}
}

func TestTrie_DuplicateInsertIsIdempotent(t *testing.T) {
	once := New()
	once.Insert("history")

	twice := New()
	twice.Insert("history")
	twice.Insert("history")

	assert.Equal(t, once.Completions("h"), twice.Completions("h"))
	assert.Equal(t, []string{"history"}, twice.Completions("hist"))
}

func TestTrie_CompletionsAreDeterministic(t *testing.T) {
	tr := New()
	for _, w := range []string{"ecxx", "echo", "eca", "ecb"} {
		tr.Insert(w)
	}

	first := tr.Completions("ec")
	for range 20 {
		assert.Equal(t, first, tr.Completions("ec"))
	}
	assert.Equal(t, []string{"eca", "ecb", "echo", "ecxx"}, first)
}

func TestTrie_LongestCommonPrefix(t *testing.T) {
	tests := []struct {
		name     string
		words    []string
		prefix   string
		expected string
	}{
		{"diverging words", []string{"git", "give"}, "gi", "gi"},
		{"single word", []string{"list"}, "li", "list"},
		{"shared stem", []string{"xyz_foo", "xyz_bar"}, "x", "xyz_"},
		{"stops at complete word", []string{"git", "gitk"}, "g", "git"},
		{"no match returns input", []string{"echo"}, "zz", "zz"},
		{"already complete", []string{"echo"}, "echo", "echo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := New()
			for _, w := range tt.words {
				tr.Insert(w)
			}
			assert.Equal(t, tt.expected, tr.LongestCommonPrefix(tt.prefix))
		})
	}
}

func TestTrie_NonUTF8NamesRoundTrip(t *testing.T) {
	tr := New()
	tr.Insert("ab\xffcd")
	tr.Insert("abz")

	assert.True(t, tr.Search("ab\xffcd"))
	assert.Equal(t, []string{"abz", "ab\xffcd"}, tr.Completions("ab"))
	assert.Equal(t, "ab\xffcd", tr.LongestCommonPrefix("ab\xff"))
}

func TestTrie_MultiByteNames(t *testing.T) {
	tests := []struct {
		name     string
		words    []string
		prefix   string
		expected string
	}{
		{"whole rune extended", []string{"café"}, "ca", "café"},
		{"split inside a rune stops before it", []string{"caé", "caè"}, "ca", "ca"},
		{"shared rune then split", []string{"éa", "éb"}, "", "é"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := New()
			for _, w := range tt.words {
				tr.Insert(w)
			}
			assert.Equal(t, tt.expected, tr.LongestCommonPrefix(tt.prefix))
		})
	}

	tr := New()
	tr.Insert("naïve")
	tr.Insert("naïf")
	assert.Equal(t, []string{"naïf", "naïve"}, tr.Completions("na"))
}
