package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "plain", input: "Quick sort", expected: "Quick sort"},
		{name: "slashes and colons", input: "a/b: c\\d", expected: "a b c d"},
		{name: "quotes removed", input: `say "hi"`, expected: "say hi"},
		{name: "newlines collapsed", input: "line\none\t two", expected: "line one two"},
		{name: "leading dots trimmed", input: "..hidden", expected: "hidden"},
		{name: "empty", input: "  ", expected: "spell"},
		{name: "only invalid chars", input: "<>?*", expected: "spell"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeFilename(tt.input))
		})
	}
}

func TestSanitizeFilename_Length(t *testing.T) {
	result := SanitizeFilename(strings.Repeat("a", 300))
	assert.Len(t, result, 200)
}

func TestSpellFilename(t *testing.T) {
	assert.Equal(t, "Fizz Buzz.py", SpellFilename("Fizz/Buzz", "Python"))
	assert.Equal(t, "query.sql", SpellFilename("query", "sql"))
	assert.Equal(t, "notes.txt", SpellFilename("notes", "plaintext"))
	assert.Equal(t, "spell.cs", SpellFilename("", "C Sharp"))
}
