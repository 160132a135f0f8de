// Package trie stores command names for prefix completion.
package trie

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/samber/lo"
)

// Trie is keyed by byte so file names that are not valid UTF-8 round-trip
// unchanged.
type Trie struct {
	next   map[byte]*Trie
	isWord bool
}

func New() *Trie {
	return &Trie{
		next: make(map[byte]*Trie),
	}
}

// Insert adds word to the trie. Inserting a word twice is a no-op.
func (t *Trie) Insert(word string) {
	node := t
	for i := 0; i < len(word); i++ {
		ch := word[i]
		if node.next[ch] == nil {
			node.next[ch] = New()
		}
		node = node.next[ch]
	}
	node.isWord = true
}

func (t *Trie) Search(word string) bool {
	node := t.walk(word)
	return node != nil && node.isWord
}

func (t *Trie) StartsWith(prefix string) bool {
	return t.walk(prefix) != nil
}

// Completions returns every stored word that starts with prefix.
// Children are visited in byte order, which for UTF-8 is also code point
// order, so the result is deterministic.
func (t *Trie) Completions(prefix string) []string {
	node := t.walk(prefix)
	if node == nil {
		return nil
	}

	var results []string
	node.collect([]byte(prefix), &results)
	return results
}

// LongestCommonPrefix extends prefix while the continuation is unambiguous:
// the current node has exactly one child and is not itself a stored word.
// The result never ends in the middle of a multi-byte character.
func (t *Trie) LongestCommonPrefix(prefix string) string {
	node := t.walk(prefix)
	if node == nil {
		return prefix
	}

	var sb strings.Builder
	sb.WriteString(prefix)
	for len(node.next) == 1 && !node.isWord {
		for ch, child := range node.next {
			sb.WriteByte(ch)
			node = child
		}
	}
	return trimPartialRune(sb.String(), len(prefix))
}

// trimPartialRune drops a trailing incomplete UTF-8 sequence from s, without
// cutting into the first keep bytes.
func trimPartialRune(s string, keep int) string {
	for i := len(s) - 1; i >= keep && i >= len(s)-utf8.UTFMax; i-- {
		if !utf8.RuneStart(s[i]) {
			continue
		}
		if !utf8.FullRuneInString(s[i:]) {
			return s[:i]
		}
		break
	}
	return s
}

func (t *Trie) walk(prefix string) *Trie {
	node := t
	for i := 0; i < len(prefix); i++ {
		child, ok := node.next[prefix[i]]
		if !ok {
			return nil
		}
		node = child
	}
	return node
}

func (t *Trie) collect(path []byte, results *[]string) {
	if t.isWord {
		*results = append(*results, string(path))
	}

	keys := lo.Keys(t.next)
	slices.Sort(keys)
	for _, ch := range keys {
		t.next[ch].collect(append(path, ch), results)
	}
}
