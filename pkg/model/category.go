package model

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Category is a topical tag attached to a record.
type Category string

// Built-in category tokens.
const (
	CategoryEnvironment    Category = "environment"
	CategoryImmigration    Category = "immigration"
	CategoryEnergy         Category = "energy"
	CategoryTechnology     Category = "technology"
	CategoryInfrastructure Category = "infrastructure"
	CategoryEconomy        Category = "economy"
	CategoryForeignPolicy  Category = "foreign-policy"
	CategoryOther          Category = "other"
)

// Label returns a capitalized display label ("Foreign-policy").
func (c Category) Label() string {
	s := string(c)
	if s == "" {
		return "All"
	}
	return Capitalize(s)
}

// Capitalize upper-cases the first rune of s.
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// Vocabulary is the set of category tokens a deployment recognizes. The zero
// value recognizes nothing; use DefaultVocabulary or NewVocabulary.
type Vocabulary struct {
	order []Category
	known map[Category]struct{}
}

// DefaultVocabulary returns the built-in categories in display order.
func DefaultVocabulary() Vocabulary {
	return NewVocabulary(
		CategoryEnvironment,
		CategoryImmigration,
		CategoryEnergy,
		CategoryTechnology,
		CategoryInfrastructure,
		CategoryEconomy,
		CategoryForeignPolicy,
		CategoryOther,
	)
}

// NewVocabulary builds a vocabulary from the given tokens. Tokens are
// normalized to lower case; empty tokens and duplicates are ignored.
func NewVocabulary(tokens ...Category) Vocabulary {
	v := Vocabulary{known: make(map[Category]struct{}, len(tokens))}
	return v.With(tokens...)
}

// With returns a copy of v extended with extra tokens, keeping v's order and
// appending new tokens in the order given.
func (v Vocabulary) With(extra ...Category) Vocabulary {
	out := Vocabulary{
		order: append([]Category(nil), v.order...),
		known: make(map[Category]struct{}, len(v.known)+len(extra)),
	}
	for c := range v.known {
		out.known[c] = struct{}{}
	}
	for _, c := range extra {
		c = NormalizeCategory(string(c))
		if c == "" {
			continue
		}
		if _, dup := out.known[c]; dup {
			continue
		}
		out.known[c] = struct{}{}
		out.order = append(out.order, c)
	}
	return out
}

// Contains reports whether c is a recognized token.
func (v Vocabulary) Contains(c Category) bool {
	_, ok := v.known[c]
	return ok
}

// Categories returns the recognized tokens in display order.
func (v Vocabulary) Categories() []Category {
	return append([]Category(nil), v.order...)
}

// Len returns the number of recognized tokens.
func (v Vocabulary) Len() int {
	return len(v.order)
}

// NormalizeCategory trims and lower-cases a raw token.
func NormalizeCategory(s string) Category {
	return Category(strings.ToLower(strings.TrimSpace(s)))
}
