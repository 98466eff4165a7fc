// Package id generates the prefixed public identifiers used as primary keys.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Record prefixes.
const (
	PrefixUser      = "usr"
	PrefixSpell     = "spl"
	PrefixSpellbook = "bk"
	PrefixRune      = "rn"
	PrefixFavorite  = "fav"
)

// Generate returns prefix + "-" + a 21 character URL-safe nanoid.
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// MustGenerate is like Generate but panics when the system has no entropy.
func MustGenerate(prefix string) string {
	id, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return id
}
